package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/shared"
	"flex_reviews/internal/storage"
)

func main() {
	noFallback := flag.Bool("no-fallback", false, "fail instead of syncing the sample dataset when the source is unreachable")
	timeout := flag.Duration("timeout", app.DefaultSyncTimeout, "upper bound for the whole sync run")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	// the run outlives the first interrupt up to -timeout; a second one kills the process
	go func() {
		<-ctx.Done()
		log.Warn().Dur("timeout", *timeout).Msg("interrupt received; finishing current run")
		stop()
	}()

	res, err := run(ctx, cfg, !*noFallback, *timeout)
	if err != nil {
		log.Error().Err(err).Int("inserted", res.Inserted).Msg("sync failed")
		os.Exit(1)
	}
	log.Info().
		Int("fetched", res.Fetched).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Msg("sync completed")
}

// run performs one sync and always closes the store it opened.
func run(ctx context.Context, cfg shared.Config, fallback bool, timeout time.Duration) (domain.SyncResult, error) {
	log.Info().
		Str("base", cfg.HostawayBase).
		Str("driver", cfg.DBDriver).
		Bool("fallback", fallback).
		Msg("sync starting")

	client, err := hostaway.New(hostaway.Options{
		BaseURL:   cfg.HostawayBase,
		APIKey:    cfg.HostawayKey,
		AccountID: cfg.HostawayAccountID,
		Timeout:   cfg.HostawayTimeout,
		RPS:       cfg.HostawayRPS,
	})
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("init hostaway client: %w", err)
	}
	var source domain.ReviewSource = client
	if fallback {
		source = hostaway.WithFallback(client)
	}

	store, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return domain.SyncResult{}, fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	return app.NewIngestionService(source, store).WithTimeout(timeout).Sync(ctx)
}
