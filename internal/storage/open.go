// Package storage selects the review store backend from configuration.
package storage

import (
	"context"
	"fmt"

	"flex_reviews/internal/domain"
	mysqlrepo "flex_reviews/internal/storage/mysql"
	"flex_reviews/internal/storage/sqlite"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// Store is a review repository that owns its connection.
type Store interface {
	domain.ReviewRepository
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the configured backend and makes sure the schema exists.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", DriverSQLite, "sqlite":
		s, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
		}
		return s, nil
	case DriverMySQL:
		r, err := mysqlrepo.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}
