package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL + "/")
}

func TestGetStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stats", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		assert.Equal(t, "lastCommitDate", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("dir"))
		fmt.Fprint(w, `{"data":{"period":"30d","repos":[{"id":1,"owner":"acme","name":"api","totalCommits":12,"regularity":0.5,"lastCommitDate":null}]}}`)
	})

	stats, err := c.GetStats(context.Background(), 30, domain.SortByLastCommitDate, domain.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, "30d", stats.Period)
	require.Len(t, stats.Repos, 1)
	assert.Equal(t, 12, stats.Repos[0].TotalCommits)
	assert.Nil(t, stats.Repos[0].LastCommitDate)
}

func TestGetStats_OmitsDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		fmt.Fprint(w, `{"data":{"period":"360d","repos":[]}}`)
	})

	stats, err := c.GetStats(context.Background(), 0, "", "")
	require.NoError(t, err)
	assert.Equal(t, "360d", stats.Period)
}

func TestGetRepoDaily(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/repos/7/daily", r.URL.Path)
		fmt.Fprint(w, `{"data":{"repo":{"id":7,"owner":"acme","name":"api"},"daily":[{"day":"2025-03-10","commits":3}]}}`)
	})

	rd, err := c.GetRepoDaily(context.Background(), 7, 90)
	require.NoError(t, err)
	assert.Equal(t, domain.RepoRef{ID: 7, Owner: "acme", Name: "api"}, rd.Repo)
	assert.Equal(t, []domain.DailyCommitRecord{{Day: "2025-03-10", Commits: 3}}, rd.Daily)
}

func TestGetRepoStory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30,90", r.URL.Query().Get("windows"))
		fmt.Fprint(w, `{"data":{"id":7,"owner":"acme","name":"api","windows":[{"windowDays":30,"trend":"decreasing"},{"windowDays":90,"trend":"flat"}]}}`)
	})

	story, err := c.GetRepoStory(context.Background(), 7, []int{30, 90})
	require.NoError(t, err)
	require.Len(t, story.Windows, 2)
	assert.Equal(t, domain.TrendDecreasing, story.Windows[0].Trend)
}

func TestGetAllDailyAndVersion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/daily":
			fmt.Fprint(w, `{"data":[{"repo":{"id":1,"owner":"acme","name":"api"},"daily":[],"firstCommitDate":"2024-01-01","lastCommitDate":null,"netLoc":10}]}`)
		case "/api/v1/version":
			fmt.Fprint(w, `{"data":{"version":"1.2.3"}}`)
		case "/health":
			fmt.Fprint(w, `{"status":"ok"}`)
		}
	})
	ctx := context.Background()

	dailies, err := c.GetAllDaily(ctx, 360)
	require.NoError(t, err)
	require.Len(t, dailies, 1)
	assert.Equal(t, "2024-01-01", *dailies[0].FirstCommitDate)
	assert.Equal(t, int64(10), dailies[0].NetLoc)

	version, err := c.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", version)

	assert.NoError(t, c.HealthCheck(ctx))
}

func TestErrorEnvelopeBecomesAppError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"NOT_FOUND","message":"repository not found"}}`)
	})

	_, err := c.GetRepoDaily(context.Background(), 99, 0)
	assert.True(t, apperrors.IsNotFound(err))
	assert.EqualError(t, err, "NOT_FOUND: repository not found")
}

func TestNonEnvelopeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := c.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
