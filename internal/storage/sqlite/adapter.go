package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
	"github.com/kurihiro0119/commit-cadence/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sqlx.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer, and ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS repositories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		display_name TEXT,
		last_sync_at TIMESTAMP,
		last_pushed_at TIMESTAMP,
		net_loc INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (owner, name)
	);

	CREATE TABLE IF NOT EXISTS daily (
		repo_id INTEGER NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
		day TEXT NOT NULL,
		commits INTEGER NOT NULL CHECK (commits >= 0),
		PRIMARY KEY (repo_id, day)
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		repo_id INTEGER NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
		window_start TIMESTAMP NOT NULL,
		window_end TIMESTAMP NOT NULL,
		status TEXT NOT NULL DEFAULT 'in_progress',
		commits INTEGER NOT NULL DEFAULT 0,
		days INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sync_runs_repo ON sync_runs(repo_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRepository inserts a repository or refreshes its display name, returning its id
func (s *sqliteStorage) SaveRepository(ctx context.Context, repo *domain.Repository) (int64, error) {
	createdAt := repo.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err := s.db.GetContext(ctx, &id, `
		INSERT INTO repositories (owner, name, display_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner, name) DO UPDATE SET
			display_name = COALESCE(excluded.display_name, repositories.display_name)
		RETURNING id
	`, repo.Owner, repo.Name, repo.DisplayName, createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to save repository %s: %w", repo.FullName(), err)
	}
	return id, nil
}

const repoColumns = `id, owner, name, display_name, last_sync_at, last_pushed_at, net_loc, created_at`

// GetRepositories returns every tracked repository ordered by id
func (s *sqliteStorage) GetRepositories(ctx context.Context) ([]*domain.Repository, error) {
	var repos []*domain.Repository
	if err := s.db.SelectContext(ctx, &repos, `SELECT `+repoColumns+` FROM repositories ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	return repos, nil
}

// GetRepositoryByID returns a repository or a NOT_FOUND error
func (s *sqliteStorage) GetRepositoryByID(ctx context.Context, id int64) (*domain.Repository, error) {
	var repo domain.Repository
	err := s.db.GetContext(ctx, &repo, `SELECT `+repoColumns+` FROM repositories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("repository")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %d: %w", id, err)
	}
	return &repo, nil
}

// GetRepositoryByName returns a repository or a NOT_FOUND error
func (s *sqliteStorage) GetRepositoryByName(ctx context.Context, owner, name string) (*domain.Repository, error) {
	var repo domain.Repository
	err := s.db.GetContext(ctx, &repo, `SELECT `+repoColumns+` FROM repositories WHERE owner = ? AND name = ?`, owner, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("repository")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, name, err)
	}
	return &repo, nil
}

// UpdateRepositorySync records a completed sync. Nil pushedAt or netLoc keep the stored value.
func (s *sqliteStorage) UpdateRepositorySync(ctx context.Context, id int64, syncedAt time.Time, pushedAt *time.Time, netLoc *int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE repositories SET
			last_sync_at = ?,
			last_pushed_at = COALESCE(?, last_pushed_at),
			net_loc = COALESCE(?, net_loc)
		WHERE id = ?
	`, syncedAt, pushedAt, netLoc, id)
	if err != nil {
		return fmt.Errorf("failed to update repository %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError("repository")
	}
	return nil
}

// UpsertDailyCommits stores daily counts, replacing the count of days already present
func (s *sqliteStorage) UpsertDailyCommits(ctx context.Context, repoID int64, records []domain.DailyCommitRecord) error {
	if err := storage.CheckRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO daily (repo_id, day, commits) VALUES (?, ?, ?)
		ON CONFLICT (repo_id, day) DO UPDATE SET commits = excluded.commits
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, repoID, r.Day, r.Commits); err != nil {
			return fmt.Errorf("failed to upsert %s for repository %d: %w", r.Day, repoID, err)
		}
	}

	return tx.Commit()
}

// GetDailyCommits returns a dense window of days records ending at today
func (s *sqliteStorage) GetDailyCommits(ctx context.Context, repoID int64, days int, today time.Time) ([]domain.DailyCommitRecord, error) {
	if days <= 0 {
		return []domain.DailyCommitRecord{}, nil
	}

	start, end := storage.WindowBounds(days, today)
	var rows []domain.DailyCommitRecord
	err := s.db.SelectContext(ctx, &rows, `
		SELECT day, commits FROM daily
		WHERE repo_id = ? AND day >= ? AND day <= ?
		ORDER BY day
	`, repoID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily commits for repository %d: %w", repoID, err)
	}

	return storage.FillWindow(rows, days, today), nil
}

// GetRawDailyCommits returns every stored row for a repository
func (s *sqliteStorage) GetRawDailyCommits(ctx context.Context, repoID int64) ([]domain.DailyCommitRecord, error) {
	rows := []domain.DailyCommitRecord{}
	err := s.db.SelectContext(ctx, &rows, `SELECT day, commits FROM daily WHERE repo_id = ? ORDER BY day`, repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raw daily commits for repository %d: %w", repoID, err)
	}
	return rows, nil
}

// GetCommitBounds returns the first and last day with commits across the whole history
func (s *sqliteStorage) GetCommitBounds(ctx context.Context, repoID int64) (*domain.CommitBounds, error) {
	var bounds domain.CommitBounds
	err := s.db.GetContext(ctx, &bounds, `
		SELECT MIN(day) AS first_day, MAX(day) AS last_day
		FROM daily WHERE repo_id = ? AND commits > 0
	`, repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit bounds for repository %d: %w", repoID, err)
	}
	return &bounds, nil
}

// SaveSyncRun inserts or updates a sync run
func (s *sqliteStorage) SaveSyncRun(ctx context.Context, run *domain.SyncRun) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO sync_runs (id, repo_id, window_start, window_end, status, commits, days, error, created_at, updated_at)
		VALUES (:id, :repo_id, :window_start, :window_end, :status, :commits, :days, :error, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			commits = excluded.commits,
			days = excluded.days,
			error = excluded.error,
			updated_at = excluded.updated_at
	`, run)
	if err != nil {
		return fmt.Errorf("failed to save sync run %s: %w", run.ID, err)
	}
	return nil
}

// Close closes the database connection
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}
