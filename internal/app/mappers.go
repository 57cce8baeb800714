package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

// SubmittedAtLayout is the only timestamp format the source emits.
const SubmittedAtLayout = "2006-01-02 15:04:05"

const listingSeparator = " - "

/********** tiny helpers **********/

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orDefault(s, def string) string {
	if t := strings.TrimSpace(s); t != "" {
		return s
	}
	return def
}

// PropertyIDFromListing returns the listing code before the first " - ",
// or the whole name when the separator is absent.
func PropertyIDFromListing(listingName string) string {
	if i := strings.Index(listingName, listingSeparator); i >= 0 {
		return listingName[:i]
	}
	return listingName
}

/********** review mapper **********/

// Normalize maps one source record into the canonical review shape.
// Moderation flags always start false regardless of source data.
func Normalize(raw domain.RawReview) (domain.Review, error) {
	submitted, err := time.ParseInLocation(SubmittedAtLayout, raw.SubmittedAt, time.UTC)
	if err != nil {
		return domain.Review{}, fmt.Errorf("review %s: %w: %q", raw.ID, domain.ErrInvalidTimestamp, raw.SubmittedAt)
	}

	cats := make([]domain.Category, 0, len(raw.Categories))
	for _, c := range raw.Categories {
		cats = append(cats, domain.Category{Category: c.Category, Rating: float64(c.Rating)})
	}

	var rating *float64
	if raw.Rating != nil {
		v := float64(*raw.Rating)
		rating = &v
	}

	id := string(raw.ID)
	listingID := id
	if raw.ListingMapID != nil && *raw.ListingMapID != "" {
		listingID = string(*raw.ListingMapID)
	}

	var channel *string
	if raw.Channel != nil {
		channel = ptrStr(*raw.Channel)
	}

	return domain.Review{
		ExternalID:   id,
		ListingID:    listingID,
		ListingName:  raw.ListingName,
		PropertyID:   PropertyIDFromListing(raw.ListingName),
		Type:         domain.ReviewType(orDefault(raw.Type, string(domain.GuestToHost))),
		Status:       domain.ReviewStatus(orDefault(raw.Status, string(domain.StatusPublished))),
		Rating:       rating,
		PublicReview: raw.PublicReview,
		Categories:   cats,
		GuestName:    orDefault(raw.GuestName, "Anonymous"),
		Channel:      channel,
		SubmittedAt:  submitted,
		IsApproved:   false,
		IsFeatured:   false,
	}, nil
}

// NormalizeBatch normalizes every record it can. Records with a malformed
// timestamp are logged and skipped; the rest of the batch continues.
func NormalizeBatch(raws []domain.RawReview) ([]domain.Review, int) {
	out := make([]domain.Review, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		rv, err := Normalize(raw)
		if err != nil {
			skipped++
			log.Warn().Err(err).
				Str("context", "NormalizeBatch").
				Str("external_id", string(raw.ID)).
				Msg("skipping source review")
			continue
		}
		out = append(out, rv)
	}
	return out, skipped
}
