package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nandeep-biztech/pim-etl/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/nandeep-biztech/pim-etl/internal/core/domain"
	"github.com/nandeep-biztech/pim-etl/internal/core/ports/driven"
)

// DBFile is the database file name inside the state directory.
const DBFile = "runs.db"

// Ensure Store implements the interface.
var _ driven.RunReportStore = (*Store)(nil)

// Store is an SQLite-based driven.RunReportStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified state directory.
// If dataDir is empty, defaults to ~/.pim-etl/state/runs.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pim-etl", "state")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Run Report Store ====================

// Save stores or replaces a report and its supplier outcomes.
func (s *Store) Save(ctx context.Context, report domain.RunReport) error {
	if report.ID == "" {
		return fmt.Errorf("%w: report id is empty", domain.ErrInvalidInput)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO run_reports (id, action, status, error, since, started_at, ended_at, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			action = excluded.action,
			status = excluded.status,
			error = excluded.error,
			since = excluded.since,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			report_json = excluded.report_json
	`, report.ID, string(report.Action), string(report.Status), report.Error,
		nullableUnix(report.Since), toUnix(report.StartedAt), toUnix(report.EndedAt), string(reportJSON))
	if err != nil {
		return fmt.Errorf("saving run report: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_outcomes WHERE report_id = ?", report.ID); err != nil {
		return fmt.Errorf("clearing run outcomes: %w", err)
	}

	for i, o := range report.Outcomes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_outcomes (report_id, supplier_id, position, status,
				extracted, correlated, transformed, loaded, skipped, failed, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, report.ID, o.SupplierID, i, string(o.Status),
			o.Counts.Extracted, o.Counts.Correlated, o.Counts.Transformed,
			o.Counts.Loaded, o.Counts.Skipped, o.Counts.Failed, o.Error)
		if err != nil {
			return fmt.Errorf("saving outcome for %s: %w", o.SupplierID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run report: %w", err)
	}
	return nil
}

// Get retrieves a report by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.RunReport, error) {
	row := s.db.QueryRowContext(ctx, "SELECT report_json FROM run_reports WHERE id = ?", id)
	return scanReport(row)
}

// Latest returns the most recently started report.
func (s *Store) Latest(ctx context.Context) (*domain.RunReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT report_json FROM run_reports
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`)
	return scanReport(row)
}

// List returns up to limit reports, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]domain.RunReport, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT report_json FROM run_reports
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.RunReport //nolint:prealloc // size unknown from query
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning run report: %w", err)
		}
		report, err := decodeReport(raw)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run reports: %w", err)
	}

	return reports, nil
}

// LastSuccess returns the start time of the newest run in which the
// supplier succeeded.
func (s *Store) LastSuccess(ctx context.Context, supplierID string) (time.Time, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.started_at
		FROM run_outcomes o
		JOIN run_reports r ON r.id = o.report_id
		WHERE o.supplier_id = ? AND o.status = ?
		ORDER BY r.started_at DESC
		LIMIT 1
	`, supplierID, string(domain.StatusSuccess))

	var startedAt int64
	if err := row.Scan(&startedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, domain.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("querying last success: %w", err)
	}
	return fromUnix(startedAt), nil
}

// Prune deletes all but the newest keep reports.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("%w: keep must not be negative", domain.ErrInvalidInput)
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM run_reports WHERE id NOT IN (
			SELECT id FROM run_reports ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning run reports: %w", err)
	}
	return res.RowsAffected()
}

// ==================== Helpers ====================

func scanReport(row *sql.Row) (*domain.RunReport, error) {
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run report: %w", err)
	}
	return decodeReport(raw)
}

func decodeReport(raw string) (*domain.RunReport, error) {
	var report domain.RunReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("unmarshalling run report: %w", err)
	}
	return &report, nil
}

// Times are stored as Unix nanoseconds so ORDER BY is chronological.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func nullableUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toUnix(*t), Valid: true}
}
