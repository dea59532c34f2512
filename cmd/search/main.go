// Command search runs one query against the food dataset and prints the
// ranked results.
//
// Usage:
//
//	go run ./cmd/search -model vsm -query "spicy chicken" [-k 5] [-data data/food.csv]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/dataset"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "search: %v\n", err)
		}
		os.Exit(2)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(stderr)
	model := fs.String("model", "", "retrieval model: boolean or vsm (required)")
	query := fs.String("query", "", "query text (required)")
	k := fs.Int("k", 5, "number of results")
	data := fs.String("data", "data/food.csv", "food dataset CSV with a Describe column")
	ratings := fs.String("ratings", "", "optional ratings CSV joined on Food_ID")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *model == "" || *query == "" {
		fs.Usage()
		return fmt.Errorf("-model and -query are required")
	}

	logger.SetupWriter(stderr, *logLevel, "text")

	m, err := executor.ParseModel(*model)
	if err != nil {
		return err
	}
	col, err := dataset.LoadCSV(*data, *ratings)
	if err != nil {
		return err
	}
	exec, err := executor.New(m, col.Texts())
	if err != nil {
		return err
	}

	fmt.Fprint(stdout, "\n=== SEARCH RESULTS ===\n\n")
	for rank, d := range exec.Search(*query, *k) {
		fmt.Fprintf(stdout, "%d. DocID: %d | Score: %.4f\n", rank+1, d.DocID, d.Score)
	}
	return nil
}
