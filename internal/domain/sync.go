package domain

import "time"

// SyncStatus is the lifecycle state of a SyncRun
type SyncStatus string

const (
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusCompleted  SyncStatus = "completed"
	SyncStatusFailed     SyncStatus = "failed"
)

// SyncRun records one collection job for a repository
type SyncRun struct {
	ID        string     `db:"id"`
	RepoID    int64      `db:"repo_id"`
	Since     time.Time  `db:"window_start"`
	Until     time.Time  `db:"window_end"`
	Status    SyncStatus `db:"status"`
	Commits   int        `db:"commits"`
	Days      int        `db:"days"`
	Error     *string    `db:"error"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}
