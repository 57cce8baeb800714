package app_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"flex_reviews/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu        sync.Mutex
	rows      map[string]domain.Review
	inserts   int
	allCalls  int
	failOnID  string // InsertIfAbsent fails for this id
	lastQuery domain.ListFilter
	rev       int64
	onAll     func() // runs after All has taken its snapshot
}

func newFakeRepo() *fakeRepo { return &fakeRepo{rows: map[string]domain.Review{}} }

var errBoom = errors.New("boom")

func (f *fakeRepo) InsertIfAbsent(ctx context.Context, r domain.Review) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ExternalID == f.failOnID {
		return false, errBoom
	}
	if _, ok := f.rows[r.ExternalID]; ok {
		return false, nil
	}
	f.rows[r.ExternalID] = r
	f.inserts++
	f.rev++
	return true, nil
}

func (f *fakeRepo) UpdateFlags(ctx context.Context, id string, u domain.FlagsUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	if u.IsApproved != nil {
		r.IsApproved = *u.IsApproved
	}
	if u.IsFeatured != nil {
		r.IsFeatured = *u.IsFeatured
	}
	f.rows[id] = r
	if !u.Empty() {
		f.rev++
	}
	return nil
}

func (f *fakeRepo) List(ctx context.Context, q domain.ListFilter) ([]domain.Review, error) {
	f.mu.Lock()
	f.lastQuery = q
	f.mu.Unlock()
	return f.All(ctx)
}

func (f *fakeRepo) All(ctx context.Context) ([]domain.Review, error) {
	f.mu.Lock()
	f.allCalls++
	out := make([]domain.Review, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	hook := f.onAll
	f.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	if hook != nil {
		hook()
	}
	return out, nil
}

func (f *fakeRepo) Revision(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rev, nil
}

type fakeSource struct {
	mu    sync.Mutex
	out   []domain.RawReview
	err   error
	calls int
	gate  chan struct{} // when set, FetchReviews blocks until closed
}

func (s *fakeSource) FetchReviews(ctx context.Context) ([]domain.RawReview, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.out, s.err
}

// fakeCache round-trips through JSON like the real adapters do.
type fakeCache struct {
	store map[string][]byte
	sets  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.sets++
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

// ---- builders ----

func ff(v float64) *domain.FlexFloat { f := domain.FlexFloat(v); return &f }
func pf(v float64) *float64          { return &v }
func pb(v bool) *bool                { return &v }
func ps(v string) *string            { return &v }

func rawReview(id string, rating *domain.FlexFloat, listing, at string) domain.RawReview {
	return domain.RawReview{
		ID:          domain.FlexString(id),
		Type:        "guest-to-host",
		Status:      "published",
		Rating:      rating,
		SubmittedAt: at,
		GuestName:   "Guest " + id,
		ListingName: listing,
		Channel:     ps("Airbnb"),
	}
}
