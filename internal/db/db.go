package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Pragmas ride on the DSN so every pooled connection gets them. Issuing them
// with Exec would configure only the single connection the pool hands out for
// that call: foreign keys would be off and busy_timeout zero on the rest,
// and a commit colliding with another connection's read fails immediately
// with SQLITE_BUSY instead of waiting.
const connPragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

func New(databaseURL string) (*DB, error) {
	sep := "?"
	if strings.Contains(databaseURL, "?") {
		sep = "&"
	}

	conn, err := sql.Open("sqlite", databaseURL+sep+connPragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Migrate runs embedded migrations
func (db *DB) Migrate() error {
	return RunMigrations(db.conn)
}
