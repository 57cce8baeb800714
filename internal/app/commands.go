package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

// DefaultSyncTimeout bounds a shared sync run once it no longer follows its first caller's context.
const DefaultSyncTimeout = 2 * time.Minute

type IngestionService struct {
	source  domain.ReviewSource
	repo    domain.ReviewRepository
	group   singleflight.Group
	timeout time.Duration
}

func NewIngestionService(src domain.ReviewSource, r domain.ReviewRepository) *IngestionService {
	return &IngestionService{source: src, repo: r, timeout: DefaultSyncTimeout}
}

// WithTimeout overrides DefaultSyncTimeout.
func (s *IngestionService) WithTimeout(d time.Duration) *IngestionService {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// FetchNormalized pulls the current source batch and normalizes it without
// touching storage.
func (s *IngestionService) FetchNormalized(ctx context.Context) ([]domain.Review, error) {
	raws, err := s.source.FetchReviews(ctx)
	if err != nil {
		return nil, err
	}
	out, skipped := NormalizeBatch(raws)
	if skipped > 0 {
		observability.ObserveSkipped(skipped)
	}
	return out, nil
}

// Sync inserts every source review not yet stored. Each insert commits on its
// own, so a failure partway keeps earlier inserts and a rerun only adds the
// missing ones. Concurrent callers in this process share one run, which is
// detached from the first caller's cancellation and bounded by the service timeout.
func (s *IngestionService) Sync(ctx context.Context) (domain.SyncResult, error) {
	v, err, shared := s.group.Do("sync", func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.sync(runCtx)
	})
	if shared {
		log.Debug().Msg("sync joined an in-flight run")
	}
	res, _ := v.(domain.SyncResult)
	return res, err
}

func (s *IngestionService) sync(ctx context.Context) (domain.SyncResult, error) {
	runID := uuid.NewString()
	logger := log.With().Str("sync_id", runID).Logger()

	raws, err := s.source.FetchReviews(ctx)
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("fetch reviews: %w", err)
	}
	reviews, skipped := NormalizeBatch(raws)
	res := domain.SyncResult{Fetched: len(raws), Skipped: skipped}
	if skipped > 0 {
		observability.ObserveSkipped(skipped)
	}

	for _, rv := range reviews {
		inserted, err := s.repo.InsertIfAbsent(ctx, rv)
		if err != nil {
			// earlier inserts stay committed; a rerun picks up the rest
			observeSynced(res.Inserted)
			return res, fmt.Errorf("insert review %s: %w", rv.ExternalID, err)
		}
		if inserted {
			res.Inserted++
		}
	}
	observeSynced(res.Inserted)

	logger.Info().
		Int("fetched", res.Fetched).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Msg("sync completed")
	return res, nil
}

func observeSynced(inserted int) {
	if inserted > 0 {
		observability.ObserveSynced(inserted)
	}
}

type ModerationService struct {
	repo domain.ReviewRepository
}

func NewModerationService(r domain.ReviewRepository) *ModerationService {
	return &ModerationService{repo: r}
}

// UpdateFlags changes only the supplied moderation flags.
// An unknown id yields domain.ErrNotFound.
func (s *ModerationService) UpdateFlags(ctx context.Context, externalID string, u domain.FlagsUpdate) error {
	if err := s.repo.UpdateFlags(ctx, externalID, u); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update review %s: %w", externalID, err)
	}
	return nil
}
