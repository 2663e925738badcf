package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/use-agent/zillow/config"
	"github.com/use-agent/zillow/cookies"
	"github.com/use-agent/zillow/engine"
	"github.com/use-agent/zillow/models"
	"github.com/use-agent/zillow/output"
	"github.com/use-agent/zillow/scraper"
)

// runtimeFactory builds the browser launchers for one run.
type runtimeFactory func(config.BrowserConfig, config.ScraperConfig) (*engine.Runtime, error)

// newRootCmd builds the CLI. Flag defaults come from cfg, so environment
// values apply unless a flag overrides them.
func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zillow <zipcode> [newest|cheapest]",
		Short: "Scrape for-sale listings for a postal code into a CSV file",
		Long: `Scrape for-sale listings for a postal code into properties-<zipcode>.csv.

Available sort orders are:
  newest   : Latest property details
  cheapest : Properties with cheapest price`,
		Args:          validateArgs,
		ValidArgs:     models.SortChoices,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			sort := ""
			if len(args) == 2 {
				sort = args[1]
			}
			return run(cmd.Context(), cfg, engine.New, args[0], sort)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Browser.Backend, "backend", cfg.Browser.Backend, "browser automation backend: playwright or rod")
	f.StringSliceVar(&cfg.Browser.Engines, "engines", cfg.Browser.Engines, "browser engines to run, in order")
	f.BoolVar(&cfg.Browser.Headless, "headless", cfg.Browser.Headless, "run browsers headless")
	f.BoolVar(&cfg.Browser.Stealth, "stealth", cfg.Browser.Stealth, "inject anti-bot-detection evasions")
	f.BoolVar(&cfg.Browser.InstallBrowsers, "install", cfg.Browser.InstallBrowsers, "install playwright browsers before running")
	f.IntVar(&cfg.Scraper.Repeats, "repeats", cfg.Scraper.Repeats, "page loads per engine")
	f.DurationVar(&cfg.Scraper.NavigationTimeout, "nav-timeout", cfg.Scraper.NavigationTimeout, "timeout for a single navigation")
	f.StringVar(&cfg.Scraper.ScreenshotDir, "screenshot-dir", cfg.Scraper.ScreenshotDir, "directory for example-<n>.png captures")
	f.StringVar(&cfg.Cookies.ProjectRoot, "project-root", cfg.Cookies.ProjectRoot, "project root holding .build/cookies.json (default: discovered)")
	f.StringVar(&cfg.Cookies.Path, "cookies", cfg.Cookies.Path, "cookie file path (overrides --project-root)")
	f.StringVar(&cfg.Output.Dir, "out-dir", cfg.Output.Dir, "directory for the CSV file")
	f.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")
	f.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "text or json")

	return cmd
}

// validateArgs enforces <zipcode> [newest|cheapest].
func validateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
		return models.NewScrapeError(models.ErrCodeUsage, err.Error(), nil)
	}
	if args[0] == "" {
		return models.NewScrapeError(models.ErrCodeUsage, "missing zipcode", models.ErrMissingZipCode)
	}
	if len(args) == 2 && !slices.Contains(models.SortChoices, args[1]) {
		return models.NewScrapeError(models.ErrCodeUsage,
			fmt.Sprintf("invalid choice %q (choose from %s)", args[1], strings.Join(models.SortChoices, ", ")),
			models.ErrInvalidSort,
		)
	}
	return nil
}

// run executes one scrape: cookies, fetch loop, CSV.
func run(ctx context.Context, cfg *config.Config, newRuntime runtimeFactory, zipCode, sort string) error {
	if err := cfg.Validate(); err != nil {
		return models.NewScrapeError(models.ErrCodeUsage, "invalid configuration", err)
	}
	initLogger(cfg.Log)

	input, err := models.NewInputData(zipCode, sort)
	if err != nil {
		return err
	}

	// ── Cookies ─────────────────────────────────────────────────────
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	jar, err := cookies.Load(cookies.ResolvePath(cfg.Cookies, cwd))
	if err != nil {
		return err
	}

	// ── Browsers ────────────────────────────────────────────────────
	rt, err := newRuntime(cfg.Browser, cfg.Scraper)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil {
			slog.Warn("failed to stop browser driver", "error", closeErr)
		}
	}()

	listings, err := scraper.NewScraper(rt.Launchers(), cfg.Scraper).Run(ctx, input, jar)
	if err != nil {
		return err
	}

	// ── Output ──────────────────────────────────────────────────────
	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return models.NewScrapeError(models.ErrCodeOutput, "failed to create output dir", err)
		}
	}
	path := filepath.Join(cfg.Output.Dir, output.FileName(input.ZipCode()))
	slog.Info("Writing data to output file", "path", path, "listings", len(listings))
	return output.WriteCSV(path, listings)
}
