package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/kurihiro0119/commit-cadence/internal/domain"
	apperrors "github.com/kurihiro0119/commit-cadence/internal/errors"
	"github.com/kurihiro0119/commit-cadence/internal/storage"
)

// postgresStorage implements the Storage interface for PostgreSQL
type postgresStorage struct {
	db *sqlx.DB
}

// NewPostgresStorage creates a new PostgreSQL storage instance
func NewPostgresStorage(connStr string) (storage.Storage, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, err
	}

	s := &postgresStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *postgresStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS repositories (
		id BIGSERIAL PRIMARY KEY,
		owner VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		display_name VARCHAR(255),
		last_sync_at TIMESTAMPTZ,
		last_pushed_at TIMESTAMPTZ,
		net_loc BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (owner, name)
	);

	CREATE TABLE IF NOT EXISTS daily (
		repo_id BIGINT NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
		day DATE NOT NULL,
		commits INTEGER NOT NULL CHECK (commits >= 0),
		PRIMARY KEY (repo_id, day)
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id VARCHAR(36) PRIMARY KEY,
		repo_id BIGINT NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
		window_start TIMESTAMPTZ NOT NULL,
		window_end TIMESTAMPTZ NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'in_progress',
		commits INTEGER NOT NULL DEFAULT 0,
		days INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_sync_runs_repo ON sync_runs(repo_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRepository inserts a repository or refreshes its display name, returning its id
func (s *postgresStorage) SaveRepository(ctx context.Context, repo *domain.Repository) (int64, error) {
	createdAt := repo.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err := s.db.GetContext(ctx, &id, `
		INSERT INTO repositories (owner, name, display_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner, name) DO UPDATE SET
			display_name = COALESCE(EXCLUDED.display_name, repositories.display_name)
		RETURNING id
	`, repo.Owner, repo.Name, repo.DisplayName, createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to save repository %s: %w", repo.FullName(), err)
	}
	return id, nil
}

const repoColumns = `id, owner, name, display_name, last_sync_at, last_pushed_at, net_loc, created_at`

// GetRepositories returns every tracked repository ordered by id
func (s *postgresStorage) GetRepositories(ctx context.Context) ([]*domain.Repository, error) {
	var repos []*domain.Repository
	if err := s.db.SelectContext(ctx, &repos, `SELECT `+repoColumns+` FROM repositories ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	return repos, nil
}

// GetRepositoryByID returns a repository or a NOT_FOUND error
func (s *postgresStorage) GetRepositoryByID(ctx context.Context, id int64) (*domain.Repository, error) {
	var repo domain.Repository
	err := s.db.GetContext(ctx, &repo, `SELECT `+repoColumns+` FROM repositories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("repository")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %d: %w", id, err)
	}
	return &repo, nil
}

// GetRepositoryByName returns a repository or a NOT_FOUND error
func (s *postgresStorage) GetRepositoryByName(ctx context.Context, owner, name string) (*domain.Repository, error) {
	var repo domain.Repository
	err := s.db.GetContext(ctx, &repo, `SELECT `+repoColumns+` FROM repositories WHERE owner = $1 AND name = $2`, owner, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("repository")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", owner, name, err)
	}
	return &repo, nil
}

// UpdateRepositorySync records a completed sync. Nil pushedAt or netLoc keep the stored value.
func (s *postgresStorage) UpdateRepositorySync(ctx context.Context, id int64, syncedAt time.Time, pushedAt *time.Time, netLoc *int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE repositories SET
			last_sync_at = $1,
			last_pushed_at = COALESCE($2, last_pushed_at),
			net_loc = COALESCE($3, net_loc)
		WHERE id = $4
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
func (s *postgresStorage) UpsertDailyCommits(ctx context.Context, repoID int64, records []domain.DailyCommitRecord) error {
	if err := storage.CheckRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO daily (repo_id, day, commits) VALUES ($1, $2, $3)
			ON CONFLICT (repo_id, day) DO UPDATE SET commits = EXCLUDED.commits
		`, repoID, r.Day, r.Commits)
		if err != nil {
			return fmt.Errorf("failed to upsert %s for repository %d: %w", r.Day, repoID, err)
		}
	}

	return tx.Commit()
}

// GetDailyCommits returns a dense window of days records ending at today
func (s *postgresStorage) GetDailyCommits(ctx context.Context, repoID int64, days int, today time.Time) ([]domain.DailyCommitRecord, error) {
	if days <= 0 {
		return []domain.DailyCommitRecord{}, nil
	}

	start, end := storage.WindowBounds(days, today)
	var rows []domain.DailyCommitRecord
	err := s.db.SelectContext(ctx, &rows, `
		SELECT to_char(day, 'YYYY-MM-DD') AS day, commits FROM daily
		WHERE repo_id = $1 AND day BETWEEN $2 AND $3
		ORDER BY day
	`, repoID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily commits for repository %d: %w", repoID, err)
	}

	return storage.FillWindow(rows, days, today), nil
}

// GetRawDailyCommits returns every stored row for a repository
func (s *postgresStorage) GetRawDailyCommits(ctx context.Context, repoID int64) ([]domain.DailyCommitRecord, error) {
	rows := []domain.DailyCommitRecord{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT to_char(day, 'YYYY-MM-DD') AS day, commits FROM daily
		WHERE repo_id = $1 ORDER BY day
	`, repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get raw daily commits for repository %d: %w", repoID, err)
	}
	return rows, nil
}

// GetCommitBounds returns the first and last day with commits across the whole history
func (s *postgresStorage) GetCommitBounds(ctx context.Context, repoID int64) (*domain.CommitBounds, error) {
	var bounds domain.CommitBounds
	err := s.db.GetContext(ctx, &bounds, `
		SELECT to_char(MIN(day), 'YYYY-MM-DD') AS first_day, to_char(MAX(day), 'YYYY-MM-DD') AS last_day
		FROM daily WHERE repo_id = $1 AND commits > 0
	`, repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit bounds for repository %d: %w", repoID, err)
	}
	return &bounds, nil
}

// SaveSyncRun inserts or updates a sync run
func (s *postgresStorage) SaveSyncRun(ctx context.Context, run *domain.SyncRun) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO sync_runs (id, repo_id, window_start, window_end, status, commits, days, error, created_at, updated_at)
		VALUES (:id, :repo_id, :window_start, :window_end, :status, :commits, :days, :error, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			commits = EXCLUDED.commits,
			days = EXCLUDED.days,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`, run)
	if err != nil {
		return fmt.Errorf("failed to save sync run %s: %w", run.ID, err)
	}
	return nil
}

// Close closes the database connection
func (s *postgresStorage) Close() error {
	return s.db.Close()
}
