package domain

import "context"

type ReviewRepository interface {
	// Write paths
	InsertIfAbsent(ctx context.Context, r Review) (bool, error)
	UpdateFlags(ctx context.Context, externalID string, u FlagsUpdate) error

	// Read paths
	List(ctx context.Context, f ListFilter) ([]Review, error)
	All(ctx context.Context) ([]Review, error)
	// Revision changes on every committed insert or flag change.
	Revision(ctx context.Context) (int64, error)
}

// ReviewSource returns the current batch of raw reviews from the upstream platform.
type ReviewSource interface {
	FetchReviews(ctx context.Context) ([]RawReview, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
