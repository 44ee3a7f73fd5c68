package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"libraryhub/internal/config"
	"libraryhub/internal/store"
)

var json = jsoniter.ConfigFastest

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		source string
		reset  bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a catalog snapshot into the library database",
		Long: "Loads the demo catalog, or a dataset read from a JSON file or fetched from an URL.\n" +
			"Records that already exist are skipped, so the command can be run repeatedly.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), config.Load(), source, reset)
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "dataset file or http(s) URL (default: demo catalog)")
	cmd.Flags().BoolVar(&reset, "reset", false, "drop and recreate every table first")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, source string, reset bool) error {
	logger := slog.Default().With("module", "seed")

	st, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer st.Close()
	logger.Info("connected to database", "driver", cfg.DBDriver)

	if reset {
		if err := st.Reset(ctx); err != nil {
			return fmt.Errorf("reset database: %w", err)
		}
		logger.Warn("tables dropped and recreated")
	}

	data, err := loadDataset(ctx, source)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded",
		"source", sourceName(source),
		"users", len(data.Users),
		"books", len(data.Books),
		"loans", len(data.Loans),
	)

	report, err := st.Seed(ctx, data)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("seed completed", "created", report.Created, "skipped", report.Skipped)
	return nil
}

// loadDataset reads the dataset named by source: empty for the demo
// catalog, an http(s) URL, or a file path.
func loadDataset(ctx context.Context, source string) (*store.Dataset, error) {
	switch {
	case source == "":
		return store.DemoData(), nil
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return fetchDataset(ctx, source)
	default:
		return readDataset(source)
	}
}

// fetchDataset downloads a dataset from an external API.
func fetchDataset(ctx context.Context, url string) (*store.Dataset, error) {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetHeader("Accept", "application/json")

	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch dataset: API returned status %d", resp.StatusCode())
	}
	var data store.Dataset
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &data, nil
}

func readDataset(path string) (*store.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var data store.Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return &data, nil
}

func sourceName(source string) string {
	if source == "" {
		return "demo"
	}
	return source
}
