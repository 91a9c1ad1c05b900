package collector

import (
	"context"
	"time"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
)

// RepoInfo is the repository metadata read from GitHub
type RepoInfo struct {
	Owner       string
	Name        string
	Description string
	PushedAt    *time.Time
}

// Collector defines the interface for collecting GitHub data
type Collector interface {
	// GetRepository retrieves repository metadata, including the last push time
	GetRepository(ctx context.Context, owner, name string) (*RepoInfo, error)

	// GetCommits retrieves commits for a repository
	GetCommits(ctx context.Context, owner, name string, since, until time.Time) ([]*domain.CommitEvent, error)

	// GetDailyCommits retrieves commits and counts them per UTC day
	GetDailyCommits(ctx context.Context, owner, name string, since, until time.Time) ([]domain.DailyCommitRecord, error)

	// GetNetLoc returns lines added minus lines deleted over the repository's history.
	// It returns nil when GitHub is still computing the statistics.
	GetNetLoc(ctx context.Context, owner, name string) (*int64, error)
}

// ProgressCallback is a callback function for reporting progress
type ProgressCallback func(repo string, progress float64)
