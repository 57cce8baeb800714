package app_test

import (
	"math"
	"testing"
	"time"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// series returns reviews for one property, oldest first, one day apart.
func series(property string, ratings ...*float64) []domain.Review {
	out := make([]domain.Review, 0, len(ratings))
	for i, r := range ratings {
		out = append(out, domain.Review{
			ExternalID:  property + "-" + string(rune('a'+i)),
			PropertyID:  property,
			ListingName: property + " - Listing",
			Rating:      r,
			SubmittedAt: t0.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	return out
}

func ratings(vs ...float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		out[i] = pf(vs[i])
	}
	return out
}

func TestTrendOf(t *testing.T) {
	cases := []struct {
		name string
		rs   []*float64
		want domain.Trend
	}{
		// oldest first: the 3 most recent are the tail
		{"improving", ratings(5, 5, 5, 10, 10, 10), domain.TrendImproving},
		{"declining", ratings(10, 10, 10, 5, 5, 5), domain.TrendDeclining},
		{"flat", ratings(8, 8, 8, 8, 8, 8), domain.TrendStable},
		{"within threshold", ratings(8, 8, 8, 8.5, 8.5, 8.5), domain.TrendStable},
		{"too few", ratings(1, 1, 10, 10, 10), domain.TrendStable},
		{"unrated older window", []*float64{nil, nil, nil, pf(10), pf(10), pf(10)}, domain.TrendStable},
		{"partially rated windows", []*float64{pf(4), nil, nil, nil, pf(9), nil}, domain.TrendImproving},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := app.TrendOf(series("P", tc.rs...)); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestTrendOf_OrderIndependent(t *testing.T) {
	rs := series("P", ratings(5, 5, 5, 10, 10, 10)...)
	// newest first input must give the same answer
	rev := make([]domain.Review, len(rs))
	for i := range rs {
		rev[len(rs)-1-i] = rs[i]
	}
	if got := app.TrendOf(rev); got != domain.TrendImproving {
		t.Fatalf("got %s", got)
	}
}

func TestBuildPropertyStats(t *testing.T) {
	rs := series("2B N1 A", pf(9), nil, pf(7))
	rs[0].Categories = []domain.Category{{Category: "cleanliness", Rating: 10}, {Category: "value", Rating: 8}}
	rs[1].Categories = []domain.Category{{Category: "cleanliness", Rating: 9}}
	rs[2].ListingName = "2B N1 A - Renamed"
	rs[0].IsApproved = true
	rs[2].IsApproved = true
	rs[2].IsFeatured = true

	ps := app.BuildPropertyStats("2B N1 A", rs)
	if ps.TotalReviews != 3 || ps.ApprovedCount != 2 || ps.FeaturedCount != 1 {
		t.Fatalf("unexpected counts: %+v", ps)
	}
	if ps.AverageRating != 8 {
		t.Fatalf("average over rated reviews = %v, want 8", ps.AverageRating)
	}
	if ps.RatingsBreakdown["cleanliness"] != 9.5 || ps.RatingsBreakdown["value"] != 8 {
		t.Fatalf("unexpected breakdown: %v", ps.RatingsBreakdown)
	}
	if ps.ListingName != "2B N1 A - Renamed" {
		t.Fatalf("listing name should come from the latest review, got %q", ps.ListingName)
	}
	if ps.RecentTrend != domain.TrendStable {
		t.Fatalf("trend = %s", ps.RecentTrend)
	}
}

func TestBuildDashboard(t *testing.T) {
	var all []domain.Review
	all = append(all, series("B", pf(10), pf(9))...)
	all = append(all, series("A", pf(7.333))...)
	all = append(all, series("C", nil)...)

	ds := app.BuildDashboard(all)
	if ds.TotalReviews != 4 || ds.TotalProperties != 3 {
		t.Fatalf("unexpected totals: %+v", ds)
	}
	want := (10 + 9 + 7.333) / 3
	if math.Abs(ds.AverageRating-want) > 1e-9 {
		t.Fatalf("average = %v, want full precision %v", ds.AverageRating, want)
	}
	if ds.Properties[0].PropertyID != "A" || ds.Properties[1].PropertyID != "B" || ds.Properties[2].PropertyID != "C" {
		t.Fatalf("properties should be sorted by id")
	}
	if ds.Properties[2].AverageRating != 0 {
		t.Fatalf("property without ratings should average 0")
	}
}

func TestBuildDashboard_Empty(t *testing.T) {
	ds := app.BuildDashboard(nil)
	if ds.TotalReviews != 0 || ds.AverageRating != 0 || ds.Properties == nil || len(ds.Properties) != 0 {
		t.Fatalf("unexpected empty dashboard: %+v", ds)
	}
}
