package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	"github.com/kurihiro0119/commit-cadence/internal/logger"
	"github.com/kurihiro0119/commit-cadence/internal/storage"
)

// Syncer pulls commit history from a Collector into Storage
type Syncer struct {
	collector Collector
	storage   storage.Storage
	now       func() time.Time
}

// NewSyncer creates a new syncer
func NewSyncer(c Collector, s storage.Storage) *Syncer {
	return &Syncer{collector: c, storage: s, now: time.Now}
}

// SyncRepository refreshes the last days of repo. Every day of the window is
// written, so days whose commits disappeared upstream drop back to zero.
func (s *Syncer) SyncRepository(ctx context.Context, repo *domain.Repository, days int) (*domain.SyncRun, error) {
	if days <= 0 {
		return nil, fmt.Errorf("sync window must be positive, got %d", days)
	}

	now := s.now().UTC()
	start, _ := storage.WindowBounds(days, now)
	since, _ := time.Parse(domain.DayLayout, start)

	run := &domain.SyncRun{
		ID:        uuid.New().String(),
		RepoID:    repo.ID,
		Since:     since,
		Until:     now,
		Status:    domain.SyncStatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.SaveSyncRun(ctx, run); err != nil {
		return nil, err
	}

	if err := s.collect(ctx, repo, run, days); err != nil {
		msg := err.Error()
		run.Status = domain.SyncStatusFailed
		run.Error = &msg
		run.UpdatedAt = s.now().UTC()
		if saveErr := s.storage.SaveSyncRun(ctx, run); saveErr != nil {
			logger.Error("Failed to record sync failure", zap.String("run_id", run.ID), zap.Error(saveErr))
		}
		return run, err
	}

	run.Status = domain.SyncStatusCompleted
	run.UpdatedAt = s.now().UTC()
	if err := s.storage.SaveSyncRun(ctx, run); err != nil {
		return run, err
	}

	logger.Info("Synced repository",
		zap.String("repo", repo.FullName()),
		zap.Int("commits", run.Commits),
		zap.Int("active_days", run.Days),
	)
	return run, nil
}

func (s *Syncer) collect(ctx context.Context, repo *domain.Repository, run *domain.SyncRun, days int) error {
	info, err := s.collector.GetRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		return err
	}

	records, err := s.collector.GetDailyCommits(ctx, repo.Owner, repo.Name, run.Since, run.Until)
	if err != nil {
		return err
	}
	for _, r := range records {
		run.Commits += r.Commits
	}
	run.Days = len(records)

	if err := s.storage.UpsertDailyCommits(ctx, repo.ID, storage.FillWindow(records, days, run.Until)); err != nil {
		return err
	}

	netLoc, err := s.collector.GetNetLoc(ctx, repo.Owner, repo.Name)
	if err != nil {
		// net LoC is informational; keep the stored value
		logger.Warn("Failed to fetch code frequency", zap.String("repo", repo.FullName()), zap.Error(err))
		netLoc = nil
	}

	return s.storage.UpdateRepositorySync(ctx, repo.ID, s.now().UTC(), info.PushedAt, netLoc)
}

// SyncAll syncs repos one after another. Failures are logged and the rest continue;
// the returned error reports how many failed.
func (s *Syncer) SyncAll(ctx context.Context, repos []*domain.Repository, days int, onProgress ProgressCallback) ([]*domain.SyncRun, error) {
	runs := make([]*domain.SyncRun, 0, len(repos))
	failed := 0

	for i, repo := range repos {
		if err := ctx.Err(); err != nil {
			return runs, err
		}

		run, err := s.SyncRepository(ctx, repo, days)
		if run != nil {
			runs = append(runs, run)
		}
		if err != nil {
			failed++
			logger.Warn("Sync failed", zap.String("repo", repo.FullName()), zap.Error(err))
		}

		if onProgress != nil {
			onProgress(repo.FullName(), float64(i+1)/float64(len(repos)))
		}
	}

	if failed > 0 {
		return runs, fmt.Errorf("%d of %d repositories failed to sync", failed, len(repos))
	}
	return runs, nil
}
