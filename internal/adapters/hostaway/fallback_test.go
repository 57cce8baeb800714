package hostaway_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/domain"
)

type stubSource struct {
	out []domain.RawReview
	err error
}

func (s stubSource) FetchReviews(ctx context.Context) ([]domain.RawReview, error) {
	return s.out, s.err
}

func TestSampleReviews(t *testing.T) {
	rs, err := hostaway.SampleReviews()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rs) != 39 {
		t.Fatalf("expected 39 sample reviews, got %d", len(rs))
	}
	first := rs[0]
	if first.ID != "7453" || first.Rating != nil || len(first.Categories) != 5 {
		t.Fatalf("unexpected first sample: %+v", first)
	}
}

func TestFallbackSource_UsesSamplesWhenUnavailable(t *testing.T) {
	src := hostaway.WithFallback(stubSource{err: fmt.Errorf("%w: dial tcp: refused", domain.ErrSourceUnavailable)})
	rs, err := src.FetchReviews(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rs) != 39 {
		t.Fatalf("expected sample dataset, got %d records", len(rs))
	}
}

func TestFallbackSource_PassesThroughPrimary(t *testing.T) {
	want := []domain.RawReview{{ID: "1"}}
	rs, err := hostaway.WithFallback(stubSource{out: want}).FetchReviews(context.Background())
	if err != nil || len(rs) != 1 || rs[0].ID != "1" {
		t.Fatalf("unexpected: %v / %v", rs, err)
	}
}

func TestFallbackSource_DoesNotMaskPayloadErrors(t *testing.T) {
	src := hostaway.WithFallback(stubSource{err: fmt.Errorf("%w: bad json", domain.ErrMalformedPayload)})
	_, err := src.FetchReviews(context.Background())
	if !errors.Is(err, domain.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}
