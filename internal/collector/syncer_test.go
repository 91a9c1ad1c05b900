package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	"github.com/kurihiro0119/commit-cadence/internal/storage"
	"github.com/kurihiro0119/commit-cadence/internal/storage/sqlite"
)

// fakeCollector serves canned data per repository name
type fakeCollector struct {
	pushedAt time.Time
	daily    map[string][]domain.DailyCommitRecord
	netLoc   *int64
	fail     map[string]error
}

func (f *fakeCollector) GetRepository(ctx context.Context, owner, name string) (*RepoInfo, error) {
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	pushed := f.pushedAt
	return &RepoInfo{Owner: owner, Name: name, PushedAt: &pushed}, nil
}

func (f *fakeCollector) GetCommits(ctx context.Context, owner, name string, since, until time.Time) ([]*domain.CommitEvent, error) {
	return nil, nil
}

func (f *fakeCollector) GetDailyCommits(ctx context.Context, owner, name string, since, until time.Time) ([]domain.DailyCommitRecord, error) {
	return f.daily[name], nil
}

func (f *fakeCollector) GetNetLoc(ctx context.Context, owner, name string) (*int64, error) {
	return f.netLoc, nil
}

var syncNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestSyncer(t *testing.T, c Collector) (*Syncer, storage.Storage) {
	t.Helper()
	s, err := sqlite.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	syncer := NewSyncer(c, s)
	syncer.now = func() time.Time { return syncNow }
	return syncer, s
}

func TestSyncRepository(t *testing.T) {
	loc := int64(512)
	fc := &fakeCollector{
		pushedAt: syncNow.Add(-time.Hour),
		netLoc:   &loc,
		daily: map[string][]domain.DailyCommitRecord{
			"api": {{Day: "2025-03-08", Commits: 2}, {Day: "2025-03-10", Commits: 1}},
		},
	}
	syncer, s := newTestSyncer(t, fc)
	ctx := context.Background()

	id, err := s.SaveRepository(ctx, &domain.Repository{Owner: "acme", Name: "api"})
	require.NoError(t, err)
	// a stale count that no longer exists upstream
	require.NoError(t, s.UpsertDailyCommits(ctx, id, []domain.DailyCommitRecord{{Day: "2025-03-09", Commits: 4}}))

	repo, err := s.GetRepositoryByID(ctx, id)
	require.NoError(t, err)

	run, err := syncer.SyncRepository(ctx, repo, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusCompleted, run.Status)
	assert.Equal(t, 3, run.Commits)
	assert.Equal(t, 2, run.Days)
	assert.Equal(t, time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), run.Since)

	daily, err := s.GetDailyCommits(ctx, id, 3, syncNow)
	require.NoError(t, err)
	assert.Equal(t, []domain.DailyCommitRecord{
		{Day: "2025-03-08", Commits: 2},
		{Day: "2025-03-09", Commits: 0},
		{Day: "2025-03-10", Commits: 1},
	}, daily)

	repo, err = s.GetRepositoryByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(512), repo.NetLoc)
	require.NotNil(t, repo.LastSyncAt)
	require.NotNil(t, repo.LastPushedAt)
	assert.True(t, repo.LastPushedAt.Equal(fc.pushedAt))
}

func TestSyncAll_ContinuesPastFailures(t *testing.T) {
	fc := &fakeCollector{
		pushedAt: syncNow,
		daily: map[string][]domain.DailyCommitRecord{
			"web": {{Day: "2025-03-10", Commits: 5}},
		},
		fail: map[string]error{"api": errors.New("boom")},
	}
	syncer, s := newTestSyncer(t, fc)
	ctx := context.Background()

	for _, name := range []string{"api", "web"} {
		_, err := s.SaveRepository(ctx, &domain.Repository{Owner: "acme", Name: name})
		require.NoError(t, err)
	}
	repos, err := s.GetRepositories(ctx)
	require.NoError(t, err)

	var progress []float64
	runs, err := syncer.SyncAll(ctx, repos, 7, func(repo string, p float64) {
		progress = append(progress, p)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	require.Len(t, runs, 2)
	assert.Equal(t, domain.SyncStatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].Error)
	assert.Equal(t, "boom", *runs[0].Error)
	assert.Equal(t, domain.SyncStatusCompleted, runs[1].Status)
	assert.Equal(t, []float64{0.5, 1}, progress)
}
