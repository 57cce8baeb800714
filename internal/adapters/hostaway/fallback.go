package hostaway

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

//go:embed fallback_reviews.json
var fallbackJSON []byte

// SampleReviews returns the fixed sample dataset served while the source is unreachable.
func SampleReviews() ([]domain.RawReview, error) {
	var env domain.RawEnvelope
	if err := json.Unmarshal(fallbackJSON, &env); err != nil {
		return nil, fmt.Errorf("decode sample reviews: %w", err)
	}
	return env.Result, nil
}

// FallbackSource serves the sample dataset when the primary source is
// unreachable. Any other error, including malformed payloads, is returned as is.
type FallbackSource struct {
	primary  domain.ReviewSource
	fallback func() ([]domain.RawReview, error)
}

func WithFallback(primary domain.ReviewSource) *FallbackSource {
	return &FallbackSource{primary: primary, fallback: SampleReviews}
}

func (s *FallbackSource) FetchReviews(ctx context.Context) ([]domain.RawReview, error) {
	rs, err := s.primary.FetchReviews(ctx)
	if err == nil {
		return rs, nil
	}
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		return nil, err
	}
	log.Warn().Err(err).Msg("review source unavailable; serving sample dataset")
	observability.ObserveFallback()
	return s.fallback()
}
