// Package journal keeps an append-only SQLite record of sync runs. It is
// operator telemetry: reconciliation never reads it, so no sync state is
// carried between runs.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is the journaled outcome of one sync run against one target.
type Run struct {
	ID           string
	Target       string
	StartedAt    time.Time
	FinishedAt   time.Time
	Offers       int
	NonEmpty     int
	Prices       int
	StockBatches int
	PriceBatches int
	Error        string
}

type Journal struct {
	sql *sql.DB
}

func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1) // SQLite best practice for embedded use
	sqldb.SetConnMaxLifetime(0)

	j := &Journal{sql: sqldb}
	if err := j.migrate(context.Background()); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error {
	return j.sql.Close()
}

func (j *Journal) migrate(ctx context.Context) error {
	_, err := j.sql.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		offers INTEGER NOT NULL,
		non_empty INTEGER NOT NULL,
		prices INTEGER NOT NULL,
		stock_batches INTEGER NOT NULL,
		price_batches INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);`)
	return err
}

func (j *Journal) Append(ctx context.Context, run Run) error {
	_, err := j.sql.ExecContext(ctx,
		`INSERT INTO runs (id, target, started_at, finished_at, offers, non_empty, prices, stock_batches, price_batches, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Target, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Offers, run.NonEmpty, run.Prices, run.StockBatches, run.PriceBatches, run.Error)
	return err
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := j.sql.QueryContext(ctx,
		`SELECT id, target, started_at, finished_at, offers, non_empty, prices, stock_batches, price_batches, error
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Target, &started, &finished,
			&r.Offers, &r.NonEmpty, &r.Prices, &r.StockBatches, &r.PriceBatches, &r.Error); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(started, 0).UTC()
		r.FinishedAt = time.Unix(finished, 0).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
