package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// PostgresStore is a persistent Store backed by PostgreSQL.
//
// The session upsert takes a row lock and re-evaluates its guard against the
// latest committed value, so concurrent increments for one session queue on
// that row instead of racing past the cap.
type PostgresStore struct {
	sqlStore
}

var postgresQueries = queries{
	itemLikes:    `SELECT likes FROM posts WHERE slug = $1`,
	sessionLikes: `SELECT likes FROM likes_sessions WHERE id = $1`,
	aggregate:    `SELECT COALESCE(SUM(likes), 0) FROM likes_sessions`,
	upsertSession: `
		INSERT INTO likes_sessions (id, likes) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET likes = likes_sessions.likes + EXCLUDED.likes
		WHERE likes_sessions.likes + EXCLUDED.likes <= $3
		RETURNING likes`,
	upsertItem: `
		INSERT INTO posts (slug, likes) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET likes = posts.likes + EXCLUDED.likes
		RETURNING likes`,
}

// NewPostgresStore connects to PostgreSQL using dsn, verifies the connection
// and migrates the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("likes/store: open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("likes/store: ping postgres: %w", err)
	}

	if _, err := Migrate(ctx, db, goose.DialectPostgres); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresStore{sqlStore{db: db, q: postgresQueries, retryable: postgresRetryable}}, nil
}

func postgresRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code.Name() {
	case "serialization_failure", "deadlock_detected":
		return true
	}
	return false
}
