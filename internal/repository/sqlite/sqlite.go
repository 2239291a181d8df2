package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"switchmap/internal/domain"
	"switchmap/internal/repository"
)

// Repository implements repository.RunStore using SQLite
type Repository struct {
	db *sql.DB
}

// New opens the database at dbPath and migrates the schema. The pool is
// pinned to a single connection so the session pragmas hold for every
// statement.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	statements := []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			hosts_queried INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_hosts (
			run_id TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			host TEXT NOT NULL,
			PRIMARY KEY (run_id, ordinal),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS run_links (
			run_id TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			source_host TEXT NOT NULL,
			source_port TEXT NOT NULL,
			destination_host TEXT NOT NULL,
			destination_port TEXT NOT NULL,
			PRIMARY KEY (run_id, ordinal),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at);`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	return nil
}

// SaveRun persists a finished run with its hosts and links in one
// transaction. Host and link ordinals preserve slice order; the graph
// projection depends on it.
func (r *Repository) SaveRun(ctx context.Context, run *domain.DiscoveryRun) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, hosts_queried)
		VALUES (?, ?, ?, ?)
	`, run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.HostsQueried); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	hostStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_hosts (run_id, ordinal, host) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare host statement: %w", err)
	}
	defer hostStmt.Close()

	for i, host := range run.Hosts {
		if _, err := hostStmt.ExecContext(ctx, run.ID, i, host); err != nil {
			return fmt.Errorf("failed to insert host %s: %w", host, err)
		}
	}

	linkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_links (run_id, ordinal, source_host, source_port, destination_host, destination_port)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare link statement: %w", err)
	}
	defer linkStmt.Close()

	for i, link := range run.Links {
		if _, err := linkStmt.ExecContext(ctx, run.ID, i,
			link.SourceHost, link.SourcePort, link.DestinationHost, link.DestinationPort); err != nil {
			return fmt.Errorf("failed to insert link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun retrieves a single run by id
func (r *Repository) GetRun(ctx context.Context, id string) (*domain.DiscoveryRun, error) {
	var startedAt, finishedAt string
	run := &domain.DiscoveryRun{ID: id}

	err := r.db.QueryRowContext(ctx, `
		SELECT started_at, finished_at, hosts_queried FROM runs WHERE id = ?
	`, id).Scan(&startedAt, &finishedAt, &run.HostsQueried)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("bad started_at for run %s: %w", id, err)
	}
	if run.FinishedAt, err = parseTime(finishedAt); err != nil {
		return nil, fmt.Errorf("bad finished_at for run %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT host FROM run_hosts WHERE run_id = ? ORDER BY ordinal
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run hosts: %w", err)
	}
	defer rows.Close()

	run.Hosts = make([]string, 0)
	for rows.Next() {
		var host string
		if err := rows.Scan(&host); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		run.Hosts = append(run.Hosts, host)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hosts: %w", err)
	}

	linkRows, err := r.db.QueryContext(ctx, `
		SELECT source_host, source_port, destination_host, destination_port
		FROM run_links WHERE run_id = ? ORDER BY ordinal
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run links: %w", err)
	}
	defer linkRows.Close()

	run.Links = make([]domain.Link, 0)
	for linkRows.Next() {
		var link domain.Link
		if err := linkRows.Scan(&link.SourceHost, &link.SourcePort,
			&link.DestinationHost, &link.DestinationPort); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		run.Links = append(run.Links, link)
	}
	if err := linkRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return run, nil
}

// LatestRun retrieves the most recently finished run
func (r *Repository) LatestRun(ctx context.Context) (*domain.DiscoveryRun, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT 1
	`).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	return r.GetRun(ctx, id)
}

// ListRuns returns run summaries newest first, at most limit entries.
// A non-positive limit falls back to 50.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, hosts_queried,
			(SELECT COUNT(*) FROM run_hosts WHERE run_id = runs.id),
			(SELECT COUNT(*) FROM run_links WHERE run_id = runs.id)
		FROM runs
		ORDER BY finished_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.RunSummary, 0)
	for rows.Next() {
		var s domain.RunSummary
		var startedAt, finishedAt string
		if err := rows.Scan(&s.ID, &startedAt, &finishedAt, &s.HostsQueried, &s.HostsUp, &s.LinkCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if s.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("bad started_at for run %s: %w", s.ID, err)
		}
		if s.FinishedAt, err = parseTime(finishedAt); err != nil {
			return nil, fmt.Errorf("bad finished_at for run %s: %w", s.ID, err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return summaries, nil
}

// PruneRuns deletes all but the keep most recent runs. Child rows go
// with them via cascade. A non-positive keep is a no-op.
func (r *Repository) PruneRuns(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}

	pruned, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned runs: %w", err)
	}
	return int(pruned), nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
