// Package reviewsql holds the SQL shared by the MySQL and SQLite review stores.
// Both drivers use '?' placeholders, so the statements are portable.
package reviewsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"flex_reviews/internal/domain"
)

// Columns in the order ScanReview expects them.
const Columns = `external_id, listing_id, listing_name, property_id, review_type, status, rating,
  public_review, review_categories, guest_name, channel, submitted_at, is_approved, is_featured,
  created_at, updated_at`

const InsertSQL = `
INSERT INTO reviews
  (external_id, listing_id, listing_name, property_id, review_type, status, rating,
   public_review, review_categories, guest_name, channel, submitted_at, is_approved, is_featured)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const ExistsSQL = `SELECT 1 FROM reviews WHERE external_id = ?`

// Absent flags are passed as NULL and keep their current value.
const UpdateFlagsSQL = `
UPDATE reviews
SET is_approved = COALESCE(?, is_approved),
    is_featured = COALESCE(?, is_featured),
    updated_at  = CURRENT_TIMESTAMP
WHERE external_id = ?
`

// The revision row is bumped in the same transaction as every review write,
// so readers can key derived data on it.
const (
	RevisionSQL     = `SELECT rev FROM review_revision WHERE id = 1`
	BumpRevisionSQL = `UPDATE review_revision SET rev = rev + 1 WHERE id = 1`
)

const AllSQL = `SELECT ` + Columns + ` FROM reviews ORDER BY submitted_at DESC, id DESC`

// ListQuery builds the filtered, paginated select. Filters are ANDed.
func ListQuery(f domain.ListFilter) (string, []any) {
	var where []string
	var args []any
	if f.PropertyID != nil && *f.PropertyID != "" {
		where = append(where, "property_id = ?")
		args = append(args, *f.PropertyID)
	}
	if f.Channel != nil && *f.Channel != "" {
		where = append(where, "channel = ?")
		args = append(args, *f.Channel)
	}
	if f.MinRating != nil {
		where = append(where, "rating >= ?")
		args = append(args, *f.MinRating)
	}
	if f.IsApproved != nil {
		where = append(where, "is_approved = ?")
		args = append(args, *f.IsApproved)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(Columns)
	b.WriteString(" FROM reviews")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY submitted_at DESC, id DESC LIMIT ? OFFSET ?")
	args = append(args, f.Limit, f.Offset)
	return b.String(), args
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

// InsertArgs returns the InsertSQL arguments for r.
func InsertArgs(r domain.Review) ([]any, error) {
	cats := r.Categories
	if cats == nil {
		cats = []domain.Category{}
	}
	catsJSON, err := json.Marshal(cats)
	if err != nil {
		return nil, err
	}
	return []any{
		r.ExternalID,
		r.ListingID,
		r.ListingName,
		r.PropertyID,
		string(r.Type),
		string(r.Status),
		valF64(r.Rating),
		r.PublicReview,
		string(catsJSON),
		r.GuestName,
		valStr(r.Channel),
		r.SubmittedAt.UTC(),
		r.IsApproved,
		r.IsFeatured,
	}, nil
}

// UpdateFlagsArgs returns the UpdateFlagsSQL arguments.
func UpdateFlagsArgs(externalID string, u domain.FlagsUpdate) []any {
	return []any{valBool(u.IsApproved), valBool(u.IsFeatured), externalID}
}

type scanner interface {
	Scan(dest ...any) error
}

// ScanReview reads one row selected with Columns.
func ScanReview(s scanner) (domain.Review, error) {
	var rv domain.Review
	var (
		reviewType, status string
		rating             sql.NullFloat64
		publicReview       sql.NullString
		catsRaw            []byte
		guestName          sql.NullString
		channel            sql.NullString
		createdAt          sql.NullTime
		updatedAt          sql.NullTime
	)
	if err := s.Scan(
		&rv.ExternalID,
		&rv.ListingID,
		&rv.ListingName,
		&rv.PropertyID,
		&reviewType,
		&status,
		&rating,
		&publicReview,
		&catsRaw,
		&guestName,
		&channel,
		&rv.SubmittedAt,
		&rv.IsApproved,
		&rv.IsFeatured,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Review{}, err
	}

	rv.Type = domain.ReviewType(reviewType)
	rv.Status = domain.ReviewStatus(status)
	if rating.Valid {
		f := rating.Float64
		rv.Rating = &f
	}
	rv.PublicReview = publicReview.String
	rv.GuestName = guestName.String
	if channel.Valid {
		s := channel.String
		rv.Channel = &s
	}
	if len(catsRaw) > 0 {
		if err := json.Unmarshal(catsRaw, &rv.Categories); err != nil {
			return domain.Review{}, fmt.Errorf("review %s categories: %w", rv.ExternalID, err)
		}
	}
	if rv.Categories == nil {
		rv.Categories = []domain.Category{}
	}
	rv.SubmittedAt = rv.SubmittedAt.UTC()
	if createdAt.Valid {
		rv.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		rv.UpdatedAt = updatedAt.Time
	}
	return rv, nil
}

// QueryReviews runs q and scans every row.
func QueryReviews(ctx context.Context, db *sql.DB, q string, args ...any) ([]domain.Review, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := ScanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether a review with externalID is stored.
func Exists(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, externalID string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, ExistsSQL, externalID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertIfAbsent looks the review up by external id and inserts it only when
// absent. isDuplicate classifies a driver's unique-key violation, which means a
// concurrent writer got there first.
func InsertIfAbsent(ctx context.Context, db *sql.DB, r domain.Review, isDuplicate func(error) bool) (inserted bool, err error) {
	exists, err := Exists(ctx, db, r.ExternalID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	args, err := InsertArgs(r)
	if err != nil {
		return false, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil || !inserted {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, InsertSQL, args...); err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, err
	}
	if _, err = tx.ExecContext(ctx, BumpRevisionSQL); err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateFlags runs the existence check and update in one transaction, which
// is rolled back on every error path.
func UpdateFlags(ctx context.Context, db *sql.DB, externalID string, u domain.FlagsUpdate) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exists, err := Exists(ctx, tx, externalID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	if !u.Empty() {
		if _, err = tx.ExecContext(ctx, UpdateFlagsSQL, UpdateFlagsArgs(externalID, u)...); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, BumpRevisionSQL); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Revision returns the store's write counter.
func Revision(ctx context.Context, db *sql.DB) (int64, error) {
	var rev int64
	if err := db.QueryRowContext(ctx, RevisionSQL).Scan(&rev); err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return rev, nil
}
