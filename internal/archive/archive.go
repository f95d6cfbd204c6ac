// Package archive keeps a SQLite history of fetch runs so successive data
// pulls can be compared and audited.
package archive

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sklopivo/sklopivo.github.io/internal/batch"
	"github.com/sklopivo/sklopivo.github.io/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Archive wraps the fetch history database.
type Archive struct {
	db *sql.DB
}

// Run is one recorded fetch of the upstream batch list.
type Run struct {
	ID         string    `json:"run_id"`
	FetchedAt  time.Time `json:"fetched_at"`
	BatchCount int       `json:"batch_count"`
	RawPath    string    `json:"raw_path"`
}

// Open opens (or creates) the archive at path and applies any pending
// migrations.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}

	a := &Archive{db: db}
	if err := a.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(a.db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// migrateLogger implements migrate.Logger interface
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// RecordRun stores one fetch run and a summary row per batch, in a single
// transaction. It returns the generated run record.
func (a *Archive) RecordRun(fetchedAt time.Time, rawPath string, batches []batch.Batch) (*Run, error) {
	run := &Run{
		ID:         uuid.NewString(),
		FetchedAt:  fetchedAt.UTC(),
		BatchCount: len(batches),
		RawPath:    rawPath,
	}

	tx, err := a.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO fetch_runs (run_id, fetched_at, batch_count, raw_path) VALUES (?, ?, ?, ?)`,
		run.ID, run.FetchedAt, run.BatchCount, run.RawPath,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert fetch run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO run_batches (run_id, batch_id, name, style, status, brew_date_ms, abv)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for i := range batches {
		b := &batches[i]
		if b.ID == "" {
			continue
		}

		var style *string
		if s, ok := b.StyleName(); ok {
			style = &s
		}
		var abv *float64
		if v, ok := b.ABV(); ok {
			abv = &v
		}

		_, err := stmt.Exec(run.ID, b.ID, b.Name, style,
			batch.NormalizeStatus(b.Status), b.BrewDate, abv)
		if err != nil {
			return nil, fmt.Errorf("failed to insert batch %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit fetch run: %w", err)
	}
	return run, nil
}

// RecentRuns returns the most recent fetch runs, newest first.
func (a *Archive) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := a.db.Query(
		`SELECT run_id, fetched_at, batch_count, raw_path
		 FROM fetch_runs ORDER BY fetched_at DESC, run_id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.FetchedAt, &r.BatchCount, &r.RawPath); err != nil {
			return nil, fmt.Errorf("failed to scan fetch run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// BatchCountForRun returns how many batch rows were stored for the run.
func (a *Archive) BatchCountForRun(runID string) (int, error) {
	var n int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM run_batches WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count batches for run %s: %w", runID, err)
	}
	return n, nil
}
