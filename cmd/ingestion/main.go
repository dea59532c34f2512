// Command ingestion loads the food and ratings CSV files into PostgreSQL so
// the searcher can run with dataset.source: postgres.
//
// Usage:
//
//	go run ./cmd/ingestion [-config configs/development.yaml] [-data data/food.csv] [-ratings data/ratings.csv]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/dataset"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	foodPath := flag.String("data", "", "food CSV (defaults to dataset.foodPath)")
	ratingsPath := flag.String("ratings", "", "ratings CSV (defaults to dataset.ratingsPath)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *foodPath == "" {
		*foodPath = cfg.Dataset.FoodPath
	}
	if *ratingsPath == "" {
		*ratingsPath = cfg.Dataset.RatingsPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	col, err := dataset.LoadCSV(*foodPath, *ratingsPath)
	if err != nil {
		slog.Error("failed to read dataset", "error", err)
		os.Exit(1)
	}

	var db *postgres.Client
	err = resilience.Retry(ctx, "postgres-connect", resilience.DefaultBackoff(), func(ctx context.Context) error {
		db, err = postgres.New(ctx, cfg.Postgres)
		return err
	})
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := dataset.ImportPostgres(ctx, db, col.Foods()); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
	slog.Info("dataset ingested",
		"foods", col.Len(),
		"source", *foodPath,
		"database", cfg.Postgres.Database,
		"elapsed", time.Since(start),
	)
}
