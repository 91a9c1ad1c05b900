package storage

import (
	"context"
	"time"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
)

// Storage is the abstract interface for the persistence layer
type Storage interface {
	// Repository operations
	SaveRepository(ctx context.Context, repo *domain.Repository) (int64, error)
	GetRepositories(ctx context.Context) ([]*domain.Repository, error)
	GetRepositoryByID(ctx context.Context, id int64) (*domain.Repository, error)
	GetRepositoryByName(ctx context.Context, owner, name string) (*domain.Repository, error)
	UpdateRepositorySync(ctx context.Context, id int64, syncedAt time.Time, pushedAt *time.Time, netLoc *int64) error

	// Daily commit operations
	UpsertDailyCommits(ctx context.Context, repoID int64, records []domain.DailyCommitRecord) error
	// GetDailyCommits returns exactly days records ending at today, zero-padded
	GetDailyCommits(ctx context.Context, repoID int64, days int, today time.Time) ([]domain.DailyCommitRecord, error)
	// GetRawDailyCommits returns the stored rows in day order without padding
	GetRawDailyCommits(ctx context.Context, repoID int64) ([]domain.DailyCommitRecord, error)
	GetCommitBounds(ctx context.Context, repoID int64) (*domain.CommitBounds, error)

	// Sync bookkeeping
	SaveSyncRun(ctx context.Context, run *domain.SyncRun) error

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
