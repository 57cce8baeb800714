package domain

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// PropertyStats is derived per request and never persisted.
type PropertyStats struct {
	PropertyID       string             `json:"property_id"`
	ListingName      string             `json:"listing_name"`
	TotalReviews     int                `json:"total_reviews"`
	AverageRating    float64            `json:"average_rating"`
	RatingsBreakdown map[string]float64 `json:"ratings_breakdown"`
	RecentTrend      Trend              `json:"recent_trend"`
	ApprovedCount    int                `json:"approved_count"`
	FeaturedCount    int                `json:"featured_count"`
}

type DashboardStats struct {
	TotalReviews    int             `json:"total_reviews"`
	TotalProperties int             `json:"total_properties"`
	AverageRating   float64         `json:"average_rating"`
	Properties      []PropertyStats `json:"properties"`
}
