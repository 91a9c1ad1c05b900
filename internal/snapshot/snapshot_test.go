package snapshot

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	"github.com/kurihiro0119/commit-cadence/internal/storage/sqlite"
)

func seededSnapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	s, err := sqlite.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	apiID, err := s.SaveRepository(ctx, &domain.Repository{Owner: "acme", Name: "api"})
	require.NoError(t, err)
	webID, err := s.SaveRepository(ctx, &domain.Repository{Owner: "acme", Name: "web"})
	require.NoError(t, err)

	require.NoError(t, s.UpsertDailyCommits(ctx, apiID, []domain.DailyCommitRecord{
		{Day: "2025-03-01", Commits: 2},
		{Day: "2025-03-04", Commits: 1},
	}))
	require.NoError(t, s.UpsertDailyCommits(ctx, webID, []domain.DailyCommitRecord{
		{Day: "2025-02-27", Commits: 6},
	}))

	snap, err := Build(ctx, s, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return snap
}

func TestBuild_KeepsRawRows(t *testing.T) {
	snap := seededSnapshot(t)

	require.Len(t, snap.Repos, 2)
	assert.Equal(t, "api", snap.Repos[0].Name)
	// sparse rows are exported unpadded
	assert.Equal(t, []domain.DailyCommitRecord{
		{Day: "2025-03-01", Commits: 2},
		{Day: "2025-03-04", Commits: 1},
	}, snap.Repos[0].Daily)
	assert.Equal(t, 3, snap.DailyEntries())
}

func TestWriteJSON(t *testing.T) {
	snap := seededSnapshot(t)
	outputPath := filepath.Join(t.TempDir(), "static", "snapshot.json")

	require.NoError(t, WriteJSON(snap, outputPath))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2025-03-05T09:00:00Z", decoded["generatedAt"])
	repos := decoded["repos"].([]any)
	require.Len(t, repos, 2)
	first := repos[0].(map[string]any)
	assert.Equal(t, "acme", first["owner"])
	assert.Nil(t, first["lastSyncAt"])
	assert.Len(t, first["daily"], 2)
}

func TestWriteParquet(t *testing.T) {
	snap := seededSnapshot(t)
	outputPath := filepath.Join(t.TempDir(), "snapshot.parquet")

	require.NoError(t, WriteParquet(snap, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[Row](file)
	defer reader.Close()

	rows := make([]Row, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 3, n)
	assert.Equal(t, Rows(snap), rows)
	assert.Equal(t, Row{RepoID: snap.Repos[1].ID, Owner: "acme", Name: "web", Day: "2025-02-27", Commits: 6}, rows[2])
}
