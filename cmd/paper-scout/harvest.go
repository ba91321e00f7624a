package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-scout/internal/harvest"
	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/internal/venue"
	"github.com/pdiddy/paper-scout/pkg/types"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultDelay           = 800 * time.Millisecond
	defaultMaxAttempts     = 3
	defaultCheckpointEvery = 10
	defaultUserAgent       = "paper-scout/0.1 (research paper crawler)"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Collect paper metadata and code links for a venue",
	Long: `Harvest lists a venue's accepted papers, visits each paper page, and
records title, PDF link, arXiv link, and code repository URL in a CSV
table. Progress is checkpointed every few papers; re-running the same
venue resumes where the previous run stopped.

Venues come from --venue (one run) or --venue-file (several runs in
sequence, each with its own output directory).`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().String("venue", "", "venue key to harvest (see 'paper-scout venues')")
	harvestCmd.Flags().String("venue-file", "", "YAML file listing venue runs")
	harvestCmd.Flags().String("output-dir", "", "directory for CSV and checkpoint files (default \".\")")
	harvestCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	harvestCmd.Flags().Duration("delay", 0, "delay between consecutive papers (default 800ms)")
	harvestCmd.Flags().Int("max-attempts", 0, "attempts per page fetch (default 3)")
	harvestCmd.Flags().Int("checkpoint-every", 0, "papers between checkpoint saves (default 10)")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	venueKey, _ := cmd.Flags().GetString("venue")
	venueFile, _ := cmd.Flags().GetString("venue-file")
	if (venueKey == "") == (venueFile == "") {
		return fmt.Errorf("provide exactly one of --venue or --venue-file")
	}

	cfg := types.HarvestConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   durationSetting(cmd, "timeout", defaultTimeout),
			UserAgent: defaultUserAgent,
		},
		MaxAttempts:     intSetting(cmd, "max-attempts", defaultMaxAttempts),
		RecordDelay:     durationSetting(cmd, "delay", defaultDelay),
		CheckpointEvery: intSetting(cmd, "checkpoint-every", defaultCheckpointEvery),
		OutputDir:       stringSetting(cmd, "output-dir", "."),
	}

	runs := []venue.RunSpec{{Venue: venueKey}}
	if venueFile != "" {
		vf, err := venue.ReadVenueFile(venueFile)
		if err != nil {
			return err
		}
		runs = vf.Runs
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var failed int
	for i, run := range runs {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		runCfg := cfg
		if run.OutputDir != "" {
			runCfg.OutputDir = run.OutputDir
		}
		if err := harvestOne(ctx, run.Venue, runCfg); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("interrupted; progress saved at the last checkpoint")
			}
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", run.Venue, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d venue run(s) failed", failed)
	}
	return nil
}

func harvestOne(ctx context.Context, key string, cfg types.HarvestConfig) error {
	fetcher := &httputil.Fetcher{
		Client:      &http.Client{Timeout: cfg.Timeout},
		UserAgent:   cfg.UserAgent,
		MaxAttempts: cfg.MaxAttempts,
		Log:         os.Stdout,
	}
	src, err := venue.New(key, fetcher, cfg.RecordDelay)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	sum, err := harvest.Run(ctx, src, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if sum.HasFailures() {
		return fmt.Errorf("%d paper(s) failed", sum.Failed)
	}
	return nil
}
