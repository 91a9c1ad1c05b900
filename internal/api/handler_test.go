package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
)

// MockAggregator is a testify mock of aggregator.Aggregator
type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) CompareRepos(ctx context.Context, days int, field domain.SortField, direction domain.SortDirection) (*domain.ComparisonStats, error) {
	args := m.Called(ctx, days, field, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComparisonStats), args.Error(1)
}

func (m *MockAggregator) GetAllDaily(ctx context.Context, days int) ([]*domain.RepoDaily, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RepoDaily), args.Error(1)
}

func (m *MockAggregator) GetRepoDaily(ctx context.Context, id int64, days int) (*domain.RepoDaily, error) {
	args := m.Called(ctx, id, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepoDaily), args.Error(1)
}

func (m *MockAggregator) GetRepoStory(ctx context.Context, id int64, windows []int) (*domain.StorySummary, error) {
	args := m.Called(ctx, id, windows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StorySummary), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, agg *MockAggregator, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	router := SetupRoutes(NewHandler(agg, "1.2.3", 360))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func errorMessage(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func TestHealthCheckAndVersion(t *testing.T) {
	agg := new(MockAggregator)

	w, body := perform(t, agg, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w, body = perform(t, agg, "/api/v1/version")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"version": "1.2.3"}, body["data"])
}

func TestGetStats(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(*MockAggregator)
		wantStatus int
		wantCode   string
	}{
		{
			name: "defaults",
			path: "/api/v1/stats",
			setup: func(m *MockAggregator) {
				m.On("CompareRepos", mock.Anything, 360, domain.SortByName, domain.SortAsc).
					Return(&domain.ComparisonStats{Period: "360d", Repos: []domain.RepoSummary{}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "explicit sort",
			path: "/api/v1/stats?days=30&sort=totalCommits&dir=DESC",
			setup: func(m *MockAggregator) {
				m.On("CompareRepos", mock.Anything, 30, domain.SortByTotalCommits, domain.SortDesc).
					Return(&domain.ComparisonStats{Period: "30d"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown sort field",
			path:       "/api/v1/stats?sort=stars",
			setup:      func(m *MockAggregator) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "days out of range",
			path:       "/api/v1/stats?days=400",
			setup:      func(m *MockAggregator) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name: "engine contract violation",
			path: "/api/v1/stats?days=7",
			setup: func(m *MockAggregator) {
				m.On("CompareRepos", mock.Anything, 7, domain.SortByName, domain.SortAsc).
					Return(nil, apperrors.NewInvalidInputError("days not strictly ascending"))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := new(MockAggregator)
			tt.setup(agg)

			w, body := perform(t, agg, tt.path)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(body))
			} else {
				assert.Contains(t, body, "data")
			}
			agg.AssertExpectations(t)
		})
	}
}

func TestGetRepoDaily(t *testing.T) {
	daily := []domain.DailyCommitRecord{{Day: "2025-03-09", Commits: 1}, {Day: "2025-03-10", Commits: 0}}

	t.Run("default window", func(t *testing.T) {
		agg := new(MockAggregator)
		agg.On("GetRepoDaily", mock.Anything, int64(4), 90).Return(&domain.RepoDaily{
			Repo:  &domain.Repository{ID: 4, Owner: "acme", Name: "api", NetLoc: 99},
			Daily: daily,
		}, nil)

		w, body := perform(t, agg, "/api/v1/repos/4/daily")
		assert.Equal(t, http.StatusOK, w.Code)
		data := body["data"].(map[string]any)
		assert.Equal(t, map[string]any{"id": float64(4), "owner": "acme", "name": "api"}, data["repo"])
		assert.Len(t, data["daily"], 2)
	})

	t.Run("invalid id", func(t *testing.T) {
		w, body := perform(t, new(MockAggregator), "/api/v1/repos/abc/daily")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid repo ID", errorMessage(body))
	})

	t.Run("invalid days", func(t *testing.T) {
		for _, days := range []string{"0", "366", "ten"} {
			w, body := perform(t, new(MockAggregator), "/api/v1/repos/4/daily?days="+days)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Invalid days parameter (must be 1-365)", errorMessage(body))
		}
	})

	t.Run("unknown repository", func(t *testing.T) {
		agg := new(MockAggregator)
		agg.On("GetRepoDaily", mock.Anything, int64(8), 90).Return(nil, apperrors.NewNotFoundError("repository"))

		w, body := perform(t, agg, "/api/v1/repos/8/daily")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", errorCode(body))
	})
}

func TestGetAllDaily(t *testing.T) {
	agg := new(MockAggregator)
	agg.On("GetAllDaily", mock.Anything, 360).Return([]*domain.RepoDaily{
		{Repo: &domain.Repository{ID: 1, Owner: "acme", Name: "api"}, Daily: []domain.DailyCommitRecord{}},
	}, nil)

	w, body := perform(t, agg, "/api/v1/daily")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)
}

func TestGetRepoStory(t *testing.T) {
	agg := new(MockAggregator)
	agg.On("GetRepoStory", mock.Anything, int64(2), []int{7, 30}).Return(&domain.StorySummary{
		ID: 2, Owner: "acme", Name: "api",
		Windows: []domain.WindowStory{{WindowDays: 7, Trend: domain.TrendFlat}, {WindowDays: 30, Trend: domain.TrendIncreasing}},
	}, nil)

	w, body := perform(t, agg, "/api/v1/repos/2/story?windows=7,30")
	assert.Equal(t, http.StatusOK, w.Code)
	windows := body["data"].(map[string]any)["windows"].([]any)
	require.Len(t, windows, 2)
	assert.Equal(t, "increasing", windows[1].(map[string]any)["trend"])

	w, _ = perform(t, new(MockAggregator), "/api/v1/repos/2/story?windows=7,x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInternalErrorsAreMasked(t *testing.T) {
	agg := new(MockAggregator)
	agg.On("GetAllDaily", mock.Anything, 360).Return(nil, assert.AnError)

	w, body := perform(t, agg, "/api/v1/daily")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(body))
	assert.Equal(t, "internal server error", errorMessage(body))
}
