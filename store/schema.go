// Package store persists runs, their stats windows and optimizer evaluations
// in an embedded SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    seed INTEGER NOT NULL,
    boundary TEXT NOT NULL,
    prey INTEGER NOT NULL,
    predators INTEGER NOT NULL,
    length REAL NOT NULL,
    end_time REAL NOT NULL,
    config TEXT,              -- YAML of the full configuration
    started_at TEXT NOT NULL,

    -- Filled in by FinishRun
    finished_at TEXT,
    ticks INTEGER,
    prey_alive INTEGER,
    prop_dead REAL,
    max_kills INTEGER
);

CREATE TABLE IF NOT EXISTS window_stats (
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    window_end INTEGER NOT NULL,
    sim_time REAL NOT NULL,
    prey INTEGER NOT NULL,
    predators INTEGER NOT NULL,
    kills INTEGER NOT NULL,
    polarization REAL NOT NULL,
    prey_speed_mean REAL NOT NULL,
    group_count INTEGER NOT NULL,
    largest_group INTEGER NOT NULL,
    PRIMARY KEY (run_id, window_end)
);

CREATE TABLE IF NOT EXISTS evaluations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    study TEXT NOT NULL,
    eval INTEGER NOT NULL,
    params TEXT NOT NULL,     -- JSON array in parameter order
    fitness REAL NOT NULL,
    prop_dead REAL NOT NULL,
    polarization REAL NOT NULL,
    accepted INTEGER DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_study ON evaluations(study, fitness);
`

// InitSchema creates the tables if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	version, err := getSchemaVersion(ctx, db)
	if err == nil && version >= SchemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}

// getSchemaVersion returns the current schema version from the database.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	return int(version.Int64), nil
}
