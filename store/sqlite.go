package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is a persistent Store backed by SQLite.
//
// SQLite allows a single writer, so the store keeps one open connection and
// lets database/sql queue callers behind it. This also keeps ":memory:"
// databases alive for the lifetime of the store.
type SQLiteStore struct {
	sqlStore
}

var sqliteQueries = queries{
	itemLikes:    `SELECT likes FROM posts WHERE slug = ?1`,
	sessionLikes: `SELECT likes FROM likes_sessions WHERE id = ?1`,
	aggregate:    `SELECT COALESCE(SUM(likes), 0) FROM likes_sessions`,
	upsertSession: `
		INSERT INTO likes_sessions (id, likes) VALUES (?1, ?2)
		ON CONFLICT (id) DO UPDATE SET likes = likes_sessions.likes + excluded.likes
		WHERE likes_sessions.likes + excluded.likes <= ?3
		RETURNING likes`,
	upsertItem: `
		INSERT INTO posts (slug, likes) VALUES (?1, ?2)
		ON CONFLICT (slug) DO UPDATE SET likes = posts.likes + excluded.likes
		RETURNING likes`,
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path and
// migrates the schema. Use ":memory:" for an in-memory SQLite database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("likes/store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("likes/store: sqlite pragma: %w", err)
	}

	if _, err := Migrate(ctx, db, goose.DialectSQLite3); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{sqlStore{db: db, q: sqliteQueries, retryable: sqliteRetryable}}, nil
}

// sqliteRetryable reports whether err is a lock conflict with another
// connection, typically a second process sharing the database file.
func sqliteRetryable(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}
