package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/adapter/backend"
	httpadapter "github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/adapter/http"
	kafkaadapter "github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/adapter/kafka"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/config"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/research"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/view"
)

// sweepInterval is how often expired view sessions are dropped.
const sweepInterval = time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, metrics, logger)
	ready := httpadapter.Checks{client}

	// Response cache: in-process LRU, backed by redis when REDIS_ADDR is set.
	var cache backend.Cache = backend.NewLRU(cfg.BackendCacheSize, cfg.BackendCacheTTL, nil)
	rdb := backend.OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		shared := backend.NewRedisCache(rdb, cfg.BackendCacheTTL, logger)
		cache = backend.Tiered{cache, shared}
		ready = append(ready, shared)
		logger.Info("redis response cache enabled", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	}
	api := backend.NewCachedBackend(client, cache, metrics)
	logger.Info("prediction API configured",
		"url", cfg.BackendURL,
		"timeout", cfg.BackendTimeout,
		"cache_size", cfg.BackendCacheSize,
		"cache_ttl", cfg.BackendCacheTTL,
	)

	opts := []view.Option{
		view.WithDefaultCity(cfg.DefaultCity),
		view.WithAnchor(domain.Position{Lat: cfg.AnchorLat, Lng: cfg.AnchorLng}),
	}
	var writer *kafkaadapter.EventWriter
	if cfg.SimEventsEnabled {
		writer = kafkaadapter.NewEventWriter(cfg, metrics, logger)
		opts = append(opts, view.WithPublisher(writer))
		logger.Info("simulation events enabled", "topic", cfg.SimEventsTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("simulation events disabled")
	}

	store := view.NewStore(cfg.SessionTTL, metrics, logger)
	svc := view.NewService(api, store, metrics, logger, opts...)

	var gate *research.Gate
	if cfg.ResearchEnabled() {
		verifier, err := research.NewBcryptVerifier(cfg.ResearchPasscodeHash)
		if err != nil {
			logger.Error("invalid RESEARCH_PASSCODE_HASH", "error", err)
			os.Exit(1)
		}
		gate = research.NewGate(verifier, research.NewIssuer(cfg.ResearchTokenSecret, cfg.ResearchTokenTTL, nil), metrics, logger)
		logger.Info("research access enabled", "token_ttl", cfg.ResearchTokenTTL)
	} else {
		logger.Info("research access disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, httpadapter.NewAPI(svc, gate, cfg.BackendTimeout, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Expire idle sessions.
	go store.Run(ctx, sweepInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
