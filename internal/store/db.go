package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the engine database at path.
func Open(path string) (*sql.DB, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Checkpoint flushes the WAL into the main database file.
func Checkpoint(db *sql.DB) error {
	_, err := db.Exec(`PRAGMA wal_checkpoint(FULL);`)
	return err
}
