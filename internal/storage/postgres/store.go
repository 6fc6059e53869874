package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/fanclub/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for the fan club tables.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			nickname TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_idx ON users (LOWER(email));`,
		`CREATE TABLE IF NOT EXISTS fanclubs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			purpose TEXT NOT NULL DEFAULT '',
			monthly_fee INTEGER NOT NULL DEFAULT 0,
			cover_image_url TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL REFERENCES users(id),
			owner_name TEXT NOT NULL DEFAULT '',
			member_count INTEGER NOT NULL DEFAULT 0 CHECK (member_count >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS memberships (
			fanclub_id TEXT NOT NULL REFERENCES fanclubs(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL CHECK (role IN ('owner', 'member')),
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (fanclub_id, user_id)
		);`,
		`CREATE INDEX IF NOT EXISTS memberships_user_idx ON memberships (user_id);`,
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			fanclub_id TEXT NOT NULL REFERENCES fanclubs(id) ON DELETE CASCADE,
			author_id TEXT NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			excerpt TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			featured_image_url TEXT NOT NULL DEFAULT '',
			visibility TEXT NOT NULL DEFAULT 'public' CHECK (visibility IN ('public', 'members')),
			like_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS posts_fanclub_idx ON posts (fanclub_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS post_likes (
			post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			PRIMARY KEY (post_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			fanclub_id TEXT NOT NULL REFERENCES fanclubs(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS chat_messages_fanclub_idx ON chat_messages (fanclub_id, seq);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
