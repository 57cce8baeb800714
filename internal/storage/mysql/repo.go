package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"flex_reviews/internal/domain"
	"flex_reviews/internal/storage/reviewsql"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open connects with parseTime and UTC forced, then applies the schema.
func Open(ctx context.Context, dsn string) (*Repo, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	r := New(db)
	if err := r.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Migrate(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) InsertIfAbsent(ctx context.Context, rv domain.Review) (bool, error) {
	return reviewsql.InsertIfAbsent(ctx, r.db, rv, isDuplicate)
}

func (r *Repo) UpdateFlags(ctx context.Context, externalID string, u domain.FlagsUpdate) error {
	return reviewsql.UpdateFlags(ctx, r.db, externalID, u)
}

func (r *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Review, error) {
	q, args := reviewsql.ListQuery(f)
	return reviewsql.QueryReviews(ctx, r.db, q, args...)
}

func (r *Repo) All(ctx context.Context) ([]domain.Review, error) {
	return reviewsql.QueryReviews(ctx, r.db, reviewsql.AllSQL)
}

func (r *Repo) Revision(ctx context.Context) (int64, error) {
	return reviewsql.Revision(ctx, r.db)
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}
