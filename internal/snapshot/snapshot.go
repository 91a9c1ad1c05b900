// Package snapshot exports the raw stored daily rows of every repository so the
// data can be served or analyzed without the database.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	"github.com/kurihiro0119/commit-cadence/internal/logger"
	"github.com/kurihiro0119/commit-cadence/internal/storage"
)

// Row is one (repository, day) pair in the Parquet export
type Row struct {
	RepoID  int64  `parquet:"repo_id,snappy"`
	Owner   string `parquet:"owner,snappy,dict"`
	Name    string `parquet:"name,snappy,dict"`
	Day     string `parquet:"day,snappy"`
	Commits int32  `parquet:"commits,snappy"`
}

// Build gathers every repository's stored rows as they are, without padding or scoring
func Build(ctx context.Context, s storage.Storage, generatedAt time.Time) (*domain.Snapshot, error) {
	repos, err := s.GetRepositories(ctx)
	if err != nil {
		return nil, err
	}

	snap := &domain.Snapshot{
		GeneratedAt: generatedAt.UTC(),
		Repos:       make([]domain.SnapshotRepo, 0, len(repos)),
	}
	for _, repo := range repos {
		daily, err := s.GetRawDailyCommits(ctx, repo.ID)
		if err != nil {
			return nil, err
		}
		snap.Repos = append(snap.Repos, domain.SnapshotRepo{
			ID:         repo.ID,
			Owner:      repo.Owner,
			Name:       repo.Name,
			LastSyncAt: repo.LastSyncAt,
			Daily:      daily,
		})
	}

	logger.Info("Built snapshot",
		zap.Int("repos", len(snap.Repos)),
		zap.Int("daily_entries", snap.DailyEntries()),
	)
	return snap, nil
}

// Rows flattens a snapshot into one row per (repository, day)
func Rows(snap *domain.Snapshot) []Row {
	rows := make([]Row, 0, snap.DailyEntries())
	for _, repo := range snap.Repos {
		for _, d := range repo.Daily {
			rows = append(rows, Row{
				RepoID:  repo.ID,
				Owner:   repo.Owner,
				Name:    repo.Name,
				Day:     d.Day,
				Commits: int32(d.Commits),
			})
		}
	}
	return rows
}

// WriteJSON writes the snapshot as indented JSON, creating parent directories
func WriteJSON(snap *domain.Snapshot, outputPath string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// WriteParquet writes the flattened snapshot rows to a Parquet file
func WriteParquet(snap *domain.Snapshot, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[Row](file)
	if _, err := writer.Write(Rows(snap)); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}
