package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/use-agent/zillow/cleaner"
	"github.com/use-agent/zillow/config"
	"github.com/use-agent/zillow/engine"
	"github.com/use-agent/zillow/models"
)

// Scraper runs the fetch-and-extract loop over every configured engine.
// It is not safe for concurrent use; a run is strictly sequential.
type Scraper struct {
	launchers []engine.Launcher
	cfg       config.ScraperConfig
}

// NewScraper creates a Scraper that visits launchers in order.
func NewScraper(launchers []engine.Launcher, cfg config.ScraperConfig) *Scraper {
	return &Scraper{launchers: launchers, cfg: cfg}
}

// ScreenshotPath returns the capture path of the n-th page load. Names are
// not namespaced per engine, so each engine overwrites the previous one's
// captures.
func (s *Scraper) ScreenshotPath(n int) string {
	return filepath.Join(s.cfg.ScreenshotDir, fmt.Sprintf("example-%d.png", n))
}

// Run loads the search page Repeats times in every engine and returns all
// for-sale listings found, in load order.
//
// Any launch, navigation or capture error aborts the whole run and the
// records collected so far are discarded. Each launched browser is closed
// exactly once, whether or not its iterations succeeded.
func (s *Scraper) Run(ctx context.Context, input models.InputData, cookies []models.Cookie) ([]models.Listing, error) {
	targetURL := BuildURL(input.ZipCode(), input.Sort())
	slog.Info("scrape starting",
		"zipcode", input.ZipCode(),
		"sort", string(input.Sort()),
		"url", targetURL,
		"engines", len(s.launchers),
		"repeats", s.cfg.Repeats,
		"cookies", len(cookies),
	)

	if s.cfg.ScreenshotDir != "" {
		if err := os.MkdirAll(s.cfg.ScreenshotDir, 0o755); err != nil {
			return nil, models.NewScrapeError(models.ErrCodeCapture, "failed to create screenshot dir", err)
		}
	}

	var all []models.Listing
	for _, l := range s.launchers {
		found, err := s.runEngine(ctx, l, input, targetURL, cookies)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.Name(), err)
		}
		all = append(all, found...)
	}
	return all, nil
}

// runEngine launches one browser and performs every repeat inside it.
func (s *Scraper) runEngine(ctx context.Context, l engine.Launcher, input models.InputData, targetURL string, cookies []models.Cookie) ([]models.Listing, error) {
	browser, err := l.Launch(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			slog.Warn("failed to close browser", "engine", l.Name(), "error", closeErr)
		}
	}()

	var found []models.Listing
	for i := 0; i < s.cfg.Repeats; i++ {
		listings, err := s.fetchOnce(ctx, browser, i, input, targetURL, cookies)
		if err != nil {
			return nil, err
		}
		slog.Info("page extracted", "engine", l.Name(), "iteration", i, "listings", len(listings))
		found = append(found, listings...)
	}
	return found, nil
}

// fetchOnce performs a single page load in a fresh browsing context.
func (s *Scraper) fetchOnce(ctx context.Context, browser engine.Browser, i int, input models.InputData, targetURL string, cookies []models.Cookie) ([]models.Listing, error) {
	bctx, err := browser.NewContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := bctx.Close(); closeErr != nil {
			slog.Debug("failed to close browsing context", "error", closeErr)
		}
	}()

	if err := bctx.AddCookies(ctx, cookies, targetURL); err != nil {
		return nil, err
	}

	page, err := bctx.NewPage(ctx)
	if err != nil {
		return nil, err
	}

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()
	if err := page.Navigate(navCtx, targetURL); err != nil {
		return nil, err
	}

	if err := page.Screenshot(ctx, s.ScreenshotPath(i)); err != nil {
		return nil, err
	}

	rawHTML, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("Fetching data", "zipcode", input.ZipCode())
	slog.Debug("page content", "bytes", len(rawHTML), "html", rawHTML)

	listings, err := cleaner.ExtractListings(rawHTML, SiteOrigin)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeCapture, "failed to parse page HTML", err)
	}
	return listings, nil
}
