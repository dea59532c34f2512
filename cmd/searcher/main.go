// Command searcher serves the food search API: query search over the Boolean
// and vector models, filtered recommendations, and ranking evaluation.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/dataset"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "dataset", cfg.Dataset.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker()

	col, err := loadCollection(ctx, cfg, checker)
	if err != nil {
		slog.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	slog.Info("dataset loaded", "documents", col.Len())

	m := metrics.New(prometheus.DefaultRegisterer)
	texts := col.Texts()
	executors := make(map[executor.Model]handler.SearchExecutor, len(executor.Models))
	for _, model := range executor.Models {
		exec, err := executor.New(model, texts,
			executor.WithTieBreak(col.Rating),
			executor.WithDedupKey(col.FoodID),
		)
		if err != nil {
			slog.Error("failed to build index", "model", model.String(), "error", err)
			os.Exit(1)
		}
		executors[model] = exec
		m.IndexedDocs.WithLabelValues(model.String()).Set(float64(exec.DocCount()))
		m.VocabularySize.WithLabelValues(model.String()).Set(float64(exec.VocabularySize()))
		checker.Register("index_"+model.String(), health.IndexCheck(exec.DocCount))
	}

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, pkgredis.IsNilError)
			checker.Register("redis", health.PingCheck(redisClient.Ping, true))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var tracker handler.Tracker
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, cfg.Analytics.BufferSize, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval)
		collector.Start(ctx)
		defer collector.Close()
		tracker = collector
		slog.Info("analytics collector enabled", "topic", cfg.Kafka.Topics.SearchEvents)
	}

	h, err := handler.New(executors, col, cfg.Search, queryCache, tracker, m)
	if err != nil {
		slog.Error("failed to create handler", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	h.Routes(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if cfg.Server.RequestTimeout > 0 {
		chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	}
	if cfg.Server.RateLimit > 0 {
		limiter := middleware.NewClientLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
		go sweepLimiter(ctx, limiter)
		chain = middleware.RateLimit(limiter)(chain)
		slog.Info("rate limiting enabled", "per_second", cfg.Server.RateLimit, "burst", cfg.Server.RateBurst)
	}
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

func sweepLimiter(ctx context.Context, l *middleware.ClientLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// loadCollection reads the dataset from the configured source. The postgres
// connection is closed once the rows are read.
func loadCollection(ctx context.Context, cfg *config.Config, checker *health.Checker) (*dataset.Collection, error) {
	switch cfg.Dataset.Source {
	case "postgres":
		var db *postgres.Client
		err := resilience.Retry(ctx, "postgres-connect", resilience.DefaultBackoff(), func(ctx context.Context) error {
			var err error
			db, err = postgres.New(ctx, cfg.Postgres)
			return err
		})
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return dataset.LoadPostgres(ctx, db.DB, cfg.Dataset.Query)
	default:
		checker.Register("dataset", func(context.Context) health.ComponentHealth {
			return health.ComponentHealth{Status: health.StatusUp, Message: cfg.Dataset.FoodPath}
		})
		return dataset.LoadCSV(cfg.Dataset.FoodPath, cfg.Dataset.RatingsPath)
	}
}
