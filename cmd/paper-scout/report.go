package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-scout/internal/report"
	"github.com/pdiddy/paper-scout/pkg/types"
)

const defaultRequestDelay = 2 * time.Second

var reportCmd = &cobra.Command{
	Use:   "report <csv>",
	Short: "Render a Markdown report of harvested papers with code",
	Long: `Report reads a harvest CSV, looks up GitHub statistics (description,
language, stars, forks, watches) for every paper with a code repository,
and writes readme.md next to the CSV. Statistics are cached in
github_cache.db so repeated runs stay within the API rate limit.

The GitHub token comes from --github-token, .secrets/github-token, or the
GITHUB_TOKEN environment variable; without one the anonymous rate limit
applies.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	reportCmd.Flags().Duration("delay", 0, "delay between GitHub API calls (default 2s)")
	reportCmd.Flags().String("github-token", "", "GitHub API token")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	flagToken, _ := cmd.Flags().GetString("github-token")

	cfg := types.ReportConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   durationSetting(cmd, "timeout", defaultTimeout),
			UserAgent: defaultUserAgent,
		},
		RequestDelay: durationSetting(cmd, "delay", defaultRequestDelay),
		Token:        secretDefault("github-token", "GITHUB_TOKEN", flagToken),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := report.NewClient(ctx, cfg.Token, cfg.UserAgent, cfg.Timeout)
	return report.Generate(ctx, client, args[0], cfg, os.Stdout)
}
