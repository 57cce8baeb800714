package hostaway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/domain"
)

func newClient(t *testing.T, base string) *hostaway.Client {
	t.Helper()
	cl, err := hostaway.New(hostaway.Options{BaseURL: base, APIKey: "test-key", Timeout: time.Second, RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestClient_FetchReviews_Success(t *testing.T) {
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reviews" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","result":[
			{"id":7453,"type":"guest-to-host","status":"published","rating":null,
			 "reviewCategory":[{"category":"cleanliness","rating":10},{"category":"value","rating":"9"}],
			 "submittedAt":"2024-01-15 14:30:00","guestName":"Sarah","listingName":"2B N1 A - 29 Shoreditch Heights","channel":"Airbnb"}]}`))
	}))
	defer ts.Close()

	got, err := newClient(t, ts.URL).FetchReviews(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if auth != "Bearer test-key" {
		t.Fatalf("authorization header = %q", auth)
	}
	if len(got) != 1 || got[0].ID != "7453" || got[0].Rating != nil {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if len(got[0].Categories) != 2 || float64(got[0].Categories[1].Rating) != 9 {
		t.Fatalf("category rating not coerced: %+v", got[0].Categories)
	}
}

func TestClient_FetchReviews_Non2xxIsUnavailable(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).FetchReviews(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestClient_FetchReviews_NetworkErrorIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close() // nothing listening anymore

	_, err := newClient(t, base).FetchReviews(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestClient_FetchReviews_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","result":[{"id":`))
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).FetchReviews(context.Background())
	if !errors.Is(err, domain.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
	if errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("malformed payload must not look like an outage")
	}
}

func TestClient_FetchReviews_NonSuccessStatusIsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","result":[]}`))
	}))
	defer ts.Close()

	got, err := newClient(t, ts.URL).FetchReviews(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty batch, got %v / %v", got, err)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := hostaway.New(hostaway.Options{}); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}
