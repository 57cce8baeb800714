package domain

import "time"

type ReviewType string

const (
	GuestToHost ReviewType = "guest-to-host"
	HostToGuest ReviewType = "host-to-guest"
)

type ReviewStatus string

const (
	StatusPublished ReviewStatus = "published"
	StatusPending   ReviewStatus = "pending"
)

type Category struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

// Review is the canonical, stored representation of a guest review.
// ExternalID is the natural key assigned by the source.
type Review struct {
	ExternalID   string
	ListingID    string
	ListingName  string
	PropertyID   string // derived from ListingName, see PropertyIDFromListing
	Type         ReviewType
	Status       ReviewStatus
	Rating       *float64
	PublicReview string
	Categories   []Category
	GuestName    string
	Channel      *string
	SubmittedAt  time.Time
	IsApproved   bool
	IsFeatured   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AverageRating is Rating when present, otherwise the unweighted mean of
// the category ratings, otherwise nil.
func (r Review) AverageRating() *float64 {
	if r.Rating != nil {
		v := *r.Rating
		return &v
	}
	if len(r.Categories) == 0 {
		return nil
	}
	var sum float64
	for _, c := range r.Categories {
		sum += c.Rating
	}
	avg := sum / float64(len(r.Categories))
	return &avg
}

// FlagsUpdate carries the moderation flags to change; nil fields are left untouched.
type FlagsUpdate struct {
	IsApproved *bool `json:"is_approved"`
	IsFeatured *bool `json:"is_featured"`
}

func (u FlagsUpdate) Empty() bool { return u.IsApproved == nil && u.IsFeatured == nil }

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

type ListFilter struct {
	PropertyID *string
	Channel    *string
	MinRating  *float64 `validate:"omitempty,gte=0"`
	IsApproved *bool
	Limit      int `validate:"min=1,max=500"`
	Offset     int `validate:"min=0"`
}

type SyncResult struct {
	Fetched  int
	Inserted int
	Skipped  int
}
