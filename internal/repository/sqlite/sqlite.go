// Package sqlite implements repository.UserStore on an embedded SQLite file.
//
// A user document is split over two tables: users holds the id and username,
// activities holds the embedded log with a position column that preserves
// append order. SaveUser rewrites a user's activities inside one transaction,
// so a failed save never leaves a half-written log behind.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary needs
// no C toolchain. Use ":memory:" for throwaway databases in tests.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements repository.UserStore.
type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/exercise.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database, lost on Close
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would otherwise see its own empty
	// database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while an append is being written.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// dsn adds the per-connection pragmas to dbPath. Pragmas such as foreign_keys
// only affect the connection they run on, so they go in the DSN where the
// driver applies them to every connection the pool opens.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)"
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
//
// Activity dates are stored as Unix milliseconds so ordering in SQL and in Go
// agree, and so the full range of representable dates survives a round trip.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			username   TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS activities (
			user_id     TEXT NOT NULL REFERENCES users(id),
			position    INTEGER NOT NULL,
			description TEXT NOT NULL,
			duration    REAL NOT NULL CHECK (duration > 0),
			date_ms     INTEGER NOT NULL,
			PRIMARY KEY (user_id, position)
		);
		CREATE INDEX IF NOT EXISTS idx_activities_user_date ON activities(user_id, date_ms);
	`)
	if err != nil {
		return fmt.Errorf("creating activities table: %w", err)
	}

	return nil
}
