package httpserver

import (
	"math"
	"time"

	"flex_reviews/internal/domain"
)

type reviewJSON struct {
	ID               string            `json:"id"`
	ListingID        string            `json:"listing_id"`
	ListingName      string            `json:"listing_name"`
	PropertyID       string            `json:"property_id"`
	ReviewType       string            `json:"review_type"`
	Status           string            `json:"status"`
	Rating           *float64          `json:"rating"`
	AverageRating    *float64          `json:"average_rating"`
	PublicReview     string            `json:"public_review"`
	ReviewCategories []domain.Category `json:"review_categories"`
	GuestName        string            `json:"guest_name"`
	Channel          *string           `json:"channel"`
	SubmittedAt      string            `json:"submitted_at"`
	IsApproved       bool              `json:"is_approved"`
	IsFeatured       bool              `json:"is_featured"`
}

type reviewList struct {
	Status string       `json:"status"`
	Total  int          `json:"total"`
	Data   []reviewJSON `json:"data"`
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func newReview(r domain.Review) reviewJSON {
	avg := r.AverageRating()
	if avg != nil {
		v := round2(*avg)
		avg = &v
	}
	cats := r.Categories
	if cats == nil {
		cats = []domain.Category{}
	}
	return reviewJSON{
		ID:               r.ExternalID,
		ListingID:        r.ListingID,
		ListingName:      r.ListingName,
		PropertyID:       r.PropertyID,
		ReviewType:       string(r.Type),
		Status:           string(r.Status),
		Rating:           r.Rating,
		AverageRating:    avg,
		PublicReview:     r.PublicReview,
		ReviewCategories: cats,
		GuestName:        r.GuestName,
		Channel:          r.Channel,
		SubmittedAt:      r.SubmittedAt.UTC().Format(time.RFC3339),
		IsApproved:       r.IsApproved,
		IsFeatured:       r.IsFeatured,
	}
}

func newReviewList(rs []domain.Review) reviewList {
	out := reviewList{Status: "success", Total: len(rs), Data: make([]reviewJSON, 0, len(rs))}
	for _, r := range rs {
		out.Data = append(out.Data, newReview(r))
	}
	return out
}

// newDashboard rounds every average to 2 decimals. Aggregation itself keeps full precision.
func newDashboard(ds domain.DashboardStats) domain.DashboardStats {
	out := ds
	out.AverageRating = round2(ds.AverageRating)
	out.Properties = make([]domain.PropertyStats, 0, len(ds.Properties))
	for _, p := range ds.Properties {
		p.AverageRating = round2(p.AverageRating)
		breakdown := make(map[string]float64, len(p.RatingsBreakdown))
		for k, v := range p.RatingsBreakdown {
			breakdown[k] = round2(v)
		}
		p.RatingsBreakdown = breakdown
		out.Properties = append(out.Properties, p)
	}
	return out
}
