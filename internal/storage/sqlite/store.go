package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"flex_reviews/internal/domain"
	"flex_reviews/internal/storage/reviewsql"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database file at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		external_id TEXT NOT NULL UNIQUE,
		listing_id TEXT NOT NULL DEFAULT '',
		listing_name TEXT NOT NULL DEFAULT '',
		property_id TEXT NOT NULL DEFAULT '',
		review_type TEXT NOT NULL,
		status TEXT NOT NULL,
		rating REAL,
		public_review TEXT,
		review_categories JSON,
		guest_name TEXT,
		channel TEXT,
		submitted_at DATETIME NOT NULL,
		is_approved BOOLEAN NOT NULL DEFAULT FALSE,
		is_featured BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_property ON reviews(property_id);
	CREATE INDEX IF NOT EXISTS idx_reviews_listing ON reviews(listing_id);
	CREATE INDEX IF NOT EXISTS idx_reviews_submitted ON reviews(submitted_at);

	CREATE TABLE IF NOT EXISTS review_revision (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		rev INTEGER NOT NULL DEFAULT 0
	);
	INSERT OR IGNORE INTO review_revision (id, rev) VALUES (1, 0);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) InsertIfAbsent(ctx context.Context, r domain.Review) (bool, error) {
	return reviewsql.InsertIfAbsent(ctx, s.db, r, isDuplicate)
}

func (s *Store) UpdateFlags(ctx context.Context, externalID string, u domain.FlagsUpdate) error {
	return reviewsql.UpdateFlags(ctx, s.db, externalID, u)
}

func (s *Store) List(ctx context.Context, f domain.ListFilter) ([]domain.Review, error) {
	q, args := reviewsql.ListQuery(f)
	return reviewsql.QueryReviews(ctx, s.db, q, args...)
}

func (s *Store) All(ctx context.Context) ([]domain.Review, error) {
	return reviewsql.QueryReviews(ctx, s.db, reviewsql.AllSQL)
}

func (s *Store) Revision(ctx context.Context) (int64, error) {
	return reviewsql.Revision(ctx, s.db)
}

func isDuplicate(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
