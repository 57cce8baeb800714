// internal/adapters/hostaway/client.go
package hostaway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

const serviceName = "hostaway"

type Options struct {
	BaseURL   string
	APIKey    string
	AccountID string
	Timeout   time.Duration
	RPS       int
}

type Client struct {
	base      string
	key       string
	accountID string
	hc        *http.Client
	rl        *rate.Limiter
	cb        *gobreaker.CircuitBreaker[[]domain.RawReview]
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 5
	}
	c := &Client{
		base:      strings.TrimRight(opts.BaseURL, "/"),
		key:       opts.APIKey,
		accountID: opts.AccountID,
		hc:        &http.Client{Timeout: opts.Timeout},
		rl:        rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS),
	}
	c.cb = gobreaker.NewCircuitBreaker[[]domain.RawReview](gobreaker.Settings{
		Name:    "hostaway-reviews",
		Timeout: time.Minute, // open -> half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// payload errors mean the source answered; only transport failures count
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrMalformedPayload)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return c, nil
}

// FetchReviews performs a single GET against {base}/reviews. There is no retry:
// transport failures, non-2xx responses and an open breaker come back wrapped
// in domain.ErrSourceUnavailable, an undecodable body in domain.ErrMalformedPayload.
func (c *Client) FetchReviews(ctx context.Context) ([]domain.RawReview, error) {
	out, err := c.cb.Execute(func() ([]domain.RawReview, error) {
		return c.fetch(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return out, err
}

func (c *Client) fetch(ctx context.Context) ([]domain.RawReview, error) {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	url := c.base + "/reviews"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "flex-reviews/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(serviceName, "/reviews", 0, time.Since(start))
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal(serviceName, "/reviews", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var env domain.RawEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if env.Status != "success" {
		log.Warn().Str("status", env.Status).Str("account_id", c.accountID).Msg("hostaway returned non-success status; empty batch")
		return nil, nil
	}
	return env.Result, nil
}
