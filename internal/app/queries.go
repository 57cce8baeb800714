package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// ListReviews returns stored reviews, newest first. Limit 0 means the default.
func (s *QueryService) ListReviews(ctx context.Context, f domain.ListFilter) ([]domain.Review, error) {
	if f.Limit == 0 {
		f.Limit = domain.DefaultListLimit
	}
	if err := ValidateFilter(f); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, f)
}

// Dashboard aggregates over every stored review. Cached copies are keyed by
// the store revision, so any committed write, from this process or another,
// makes them unreachable. A cacheTTL of zero or less disables caching.
func (s *QueryService) Dashboard(ctx context.Context) (domain.DashboardStats, error) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return s.buildDashboard(ctx)
	}
	rev, err := s.repo.Revision(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("store revision unavailable; dashboard not cached")
		return s.buildDashboard(ctx)
	}

	key := dashboardKey(rev)
	var ds domain.DashboardStats
	if ok, err := s.cache.Get(ctx, key, &ds); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		return ds, nil
	}

	// reads are at least as new as rev, so storing under rev never goes stale
	ds, err = s.buildDashboard(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	if err := s.cache.Set(ctx, key, ds, max(int(s.cacheTTL.Seconds()), 1)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return ds, nil
}

func (s *QueryService) buildDashboard(ctx context.Context) (domain.DashboardStats, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	return BuildDashboard(all), nil
}

func dashboardKey(rev int64) string { return fmt.Sprintf("stats:dashboard:r%d", rev) }

// ValidateFilter reports out-of-range paging or rating bounds as domain.ErrInvalidFilter.
func ValidateFilter(f domain.ListFilter) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidFilter, strings.Join(msgs, "; "))
}
