package app

import (
	"sort"

	"flex_reviews/internal/domain"
)

const (
	trendMinReviews = 6
	trendWindow     = 3
	trendThreshold  = 0.5
)

// BuildDashboard aggregates the full review set. Values keep full precision;
// rounding belongs to the presentation layer.
func BuildDashboard(reviews []domain.Review) domain.DashboardStats {
	byProperty := make(map[string][]domain.Review)
	var sum float64
	var rated int
	for _, r := range reviews {
		byProperty[r.PropertyID] = append(byProperty[r.PropertyID], r)
		if r.Rating != nil {
			sum += *r.Rating
			rated++
		}
	}

	out := domain.DashboardStats{
		TotalReviews:    len(reviews),
		TotalProperties: len(byProperty),
		Properties:      make([]domain.PropertyStats, 0, len(byProperty)),
	}
	if rated > 0 {
		out.AverageRating = sum / float64(rated)
	}

	ids := make([]string, 0, len(byProperty))
	for id := range byProperty {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out.Properties = append(out.Properties, BuildPropertyStats(id, byProperty[id]))
	}
	return out
}

// BuildPropertyStats computes the stats of one property from its reviews.
func BuildPropertyStats(propertyID string, reviews []domain.Review) domain.PropertyStats {
	ps := domain.PropertyStats{
		PropertyID:       propertyID,
		ListingName:      propertyID,
		TotalReviews:     len(reviews),
		RatingsBreakdown: map[string]float64{},
		RecentTrend:      TrendOf(reviews),
	}

	var sum float64
	var rated int
	totals := map[string]float64{}
	counts := map[string]int{}
	var latest *domain.Review
	for i := range reviews {
		r := &reviews[i]
		if r.Rating != nil {
			sum += *r.Rating
			rated++
		}
		for _, c := range r.Categories {
			totals[c.Category] += c.Rating
			counts[c.Category]++
		}
		if r.IsApproved {
			ps.ApprovedCount++
		}
		if r.IsFeatured {
			ps.FeaturedCount++
		}
		if latest == nil || r.SubmittedAt.After(latest.SubmittedAt) {
			latest = r
		}
	}
	if rated > 0 {
		ps.AverageRating = sum / float64(rated)
	}
	for name, total := range totals {
		ps.RatingsBreakdown[name] = total / float64(counts[name])
	}
	if latest != nil && latest.ListingName != "" {
		ps.ListingName = latest.ListingName
	}
	return ps
}

// TrendOf compares the mean rating of the 3 most recent reviews against the
// 3 before them. It reports stable below 6 reviews or when either window has
// no rated review.
func TrendOf(reviews []domain.Review) domain.Trend {
	if len(reviews) < trendMinReviews {
		return domain.TrendStable
	}
	sorted := make([]domain.Review, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.After(sorted[j].SubmittedAt)
	})

	recent, okRecent := meanRating(sorted[:trendWindow])
	older, okOlder := meanRating(sorted[trendWindow : 2*trendWindow])
	if !okRecent || !okOlder {
		return domain.TrendStable
	}
	switch {
	case recent > older+trendThreshold:
		return domain.TrendImproving
	case recent < older-trendThreshold:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

func meanRating(rs []domain.Review) (float64, bool) {
	var sum float64
	var n int
	for _, r := range rs {
		if r.Rating != nil {
			sum += *r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
