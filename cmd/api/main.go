package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/hostaway"
	server "flex_reviews/internal/adapters/http_server"
	"flex_reviews/internal/adapters/memcache"
	"flex_reviews/internal/adapters/observability"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/shared"
	"flex_reviews/internal/storage"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	cache := newCache(cfg)
	client, err := hostaway.New(hostaway.Options{
		BaseURL:   cfg.HostawayBase,
		APIKey:    cfg.HostawayKey,
		AccountID: cfg.HostawayAccountID,
		Timeout:   cfg.HostawayTimeout,
		RPS:       cfg.HostawayRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
	}
	source := hostaway.WithFallback(client)

	// db
	store, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("storage open failed")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")

	h := &server.Handlers{
		Q:        app.NewQueryService(store, cache, cfg.CacheTTL),
		Ingest:   app.NewIngestionService(source, store),
		Moderate: app.NewModerationService(store),
		Env:      cfg.AppEnv,
		Version:  version,
	}

	// http
	srv := server.New(server.Options{
		CORSOrigins:  cfg.CORSOrigins(),
		RateLimitRPM: cfg.RateLimitRPM,
		Timeout:      cfg.HostawayTimeout + 15*time.Second,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h, cfg.APIPrefix)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("prefix", cfg.APIPrefix).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// newCache prefers Redis when configured and falls back to an in-process cache.
// A non-positive CACHE_TTL disables dashboard caching.
func newCache(cfg shared.Config) domain.Cache {
	if cfg.CacheTTL <= 0 {
		log.Info().Msg("CACHE_TTL <= 0; dashboard caching disabled")
		return nil
	}
	if cfg.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR not set; using in-process cache")
		return memcache.New(cfg.CacheTTL)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
	return redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
}
