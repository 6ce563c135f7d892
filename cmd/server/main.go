package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rampgw/internal/catalog"
	"rampgw/internal/catalog/cache"
	"rampgw/internal/platform/config"
	"rampgw/internal/platform/httpserver"
	"rampgw/internal/platform/logger"
	"rampgw/internal/platform/metrics"
	platformredis "rampgw/internal/platform/redis"
	"rampgw/internal/ramp"
	"rampgw/internal/ramp/handler"
	"rampgw/internal/selection"
	"rampgw/internal/signer"
	"rampgw/internal/upstream"
	"rampgw/pkg/audit"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()
	ctx := context.Background()

	sgn, err := signer.New(signer.Credential{
		KeyID:      cfg.APIKeyID,
		PrivateKey: cfg.APIPrivateKey,
	}, cfg.UpstreamHost)
	if err != nil {
		log.Error("credential configuration", "error", err.Error())
		os.Exit(1)
	}

	client, err := upstream.New(cfg.UpstreamBaseURL, sgn, cfg.UpstreamTimeout, log, upstream.WithMetrics(m))
	if err != nil {
		log.Error("upstream client", "error", err.Error())
		os.Exit(1)
	}

	names := catalog.DefaultDisplayNames()
	if cfg.DisplayNamesPath != "" {
		names, err = catalog.LoadDisplayNames(cfg.DisplayNamesPath)
		if err != nil {
			log.Error("load display names", "path", cfg.DisplayNamesPath, "error", err.Error())
			os.Exit(1)
		}
	}
	normalizer := catalog.NewNormalizer(names, log, m)

	table := selection.DefaultTable()
	if cfg.CompatibilityTablePath != "" {
		table, err = selection.LoadTable(cfg.CompatibilityTablePath)
		if err != nil {
			log.Error("load compatibility table", "path", cfg.CompatibilityTablePath, "error", err.Error())
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection", "error", err.Error())
		os.Exit(1)
	}
	var store cache.Store = cache.NewMemoryStore()
	if redisClient != nil {
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient.Client)
		log.Info("catalog cache backed by redis")
	}
	catalogCache := cache.New(store, cfg.CatalogTTL, log, cache.WithMetrics(m))

	var auditStore audit.Store = audit.NewMemoryStore()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		auditStore, err = audit.NewPostgresStore(ctx, db)
		if err != nil {
			log.Error("audit store", "error", err.Error())
			os.Exit(1)
		}
		log.Info("audit trail backed by postgres")
	}

	links, err := ramp.NewLinkBuilder(cfg.CheckoutBaseURL)
	if err != nil {
		log.Error("checkout link builder", "error", err.Error())
		os.Exit(1)
	}

	opts := []ramp.Option{
		ramp.WithMetrics(m),
		ramp.WithAudit(auditStore),
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka publisher", "error", err.Error())
			os.Exit(1)
		}
		defer publisher.Close()
		opts = append(opts, ramp.WithPublisher(publisher))
		log.Info("audit events mirrored to kafka", "topic", cfg.KafkaTopic)
	}

	service := ramp.NewService(client, normalizer, catalogCache, selection.NewResolver(table), links, log, opts...)

	router := chi.NewRouter()
	handler.New(service, log, m).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, `{"status":"degraded"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting ramp gateway", "addr", cfg.Addr, "upstream", cfg.UpstreamBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}
