package domain

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// RawReview is one record as returned by the Hostaway reviews endpoint.
type RawReview struct {
	ID           FlexString    `json:"id"`
	Type         string        `json:"type"`
	Status       string        `json:"status"`
	Rating       *FlexFloat    `json:"rating"`
	PublicReview string        `json:"publicReview"`
	Categories   []RawCategory `json:"reviewCategory"`
	SubmittedAt  string        `json:"submittedAt"`
	GuestName    string        `json:"guestName"`
	ListingName  string        `json:"listingName"`
	ListingMapID *FlexString   `json:"listingMapId,omitempty"`
	Channel      *string       `json:"channel"`
}

type RawCategory struct {
	Category string    `json:"category"`
	Rating   FlexFloat `json:"rating"`
}

// RawEnvelope is the top-level response of the reviews endpoint.
type RawEnvelope struct {
	Status string      `json:"status"`
	Result []RawReview `json:"result"`
}

// FlexFloat accepts a JSON number or a numeric string ("9", "8,5").
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// FlexString accepts a JSON string or number and keeps its textual form.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(s), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(s))
}
