package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

const schemaWeighingHistory = `
CREATE TABLE IF NOT EXISTS weighing_history (
    weighing_id INTEGER PRIMARY KEY,
    dispatch_id INTEGER,
    plate_number TEXT NOT NULL,
    company_name TEXT NOT NULL,
    item_name TEXT NOT NULL,
    mode TEXT NOT NULL,
    gross_kg REAL NOT NULL,
    tare_kg REAL NOT NULL,
    net_kg REAL NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

const indexWeighingHistory = `
CREATE INDEX IF NOT EXISTS idx_weighing_history_created_at
ON weighing_history (created_at DESC);
`

// Init opens/creates the local archive file and ensures the schema exists.
func Init(path string) (*sql.DB, error) {
	conn, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Single writer keeps SQLite happy.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	for i, stmt := range []string{schemaWeighingHistory, indexWeighingHistory} {
		if _, err := conn.Exec(stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return conn, nil
}
