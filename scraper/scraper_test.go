package scraper

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/use-agent/zillow/config"
	"github.com/use-agent/zillow/engine"
	"github.com/use-agent/zillow/models"
)

const resultsPage = `<div id="search-results">
	<article>
		<a class="zsg-photo-card-overlay-link" href="/homedetails/1/"></a>
		<h4>House For Sale</h4>
		<span itemprop="address"><span itemprop="streetAddress">1 Main St</span></span>
		<span class="zsg-icon-for-sale"></span>
	</article>
	<article>
		<h4>Sold</h4>
	</article>
</div>`

// recorder collects every call made against the fake engine.
type recorder struct {
	launched    []string
	closed      []string
	contexts    int
	ctxClosed   int
	navigated   []string
	screenshots []string
	cookies     [][]models.Cookie
}

type fakeLauncher struct {
	name      string
	rec       *recorder
	launchErr error
	navErr    error
}

func (l *fakeLauncher) Name() string { return l.name }

func (l *fakeLauncher) Launch(context.Context) (engine.Browser, error) {
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	l.rec.launched = append(l.rec.launched, l.name)
	return &fakeBrowser{l: l}, nil
}

type fakeBrowser struct{ l *fakeLauncher }

func (b *fakeBrowser) NewContext(context.Context) (engine.BrowsingContext, error) {
	b.l.rec.contexts++
	return &fakeContext{l: b.l}, nil
}

func (b *fakeBrowser) Close() error {
	b.l.rec.closed = append(b.l.rec.closed, b.l.name)
	return nil
}

type fakeContext struct{ l *fakeLauncher }

func (c *fakeContext) AddCookies(_ context.Context, cookies []models.Cookie, _ string) error {
	c.l.rec.cookies = append(c.l.rec.cookies, cookies)
	return nil
}

func (c *fakeContext) NewPage(context.Context) (engine.Page, error) {
	return &fakePage{l: c.l}, nil
}

func (c *fakeContext) Close() error {
	c.l.rec.ctxClosed++
	return nil
}

type fakePage struct{ l *fakeLauncher }

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("navigation without deadline")
	}
	if p.l.navErr != nil {
		return p.l.navErr
	}
	p.l.rec.navigated = append(p.l.rec.navigated, url)
	return nil
}

func (p *fakePage) Screenshot(_ context.Context, path string) error {
	p.l.rec.screenshots = append(p.l.rec.screenshots, path)
	return nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	return resultsPage, nil
}

func testConfig(dir string) config.ScraperConfig {
	return config.ScraperConfig{
		Repeats:           5,
		NavigationTimeout: time.Second,
		ScreenshotDir:     dir,
	}
}

func mustInput(t *testing.T, zip, sort string) models.InputData {
	t.Helper()
	in, err := models.NewInputData(zip, sort)
	if err != nil {
		t.Fatalf("NewInputData: %v", err)
	}
	return in
}

func TestRun_AllEnginesAllRepeats(t *testing.T) {
	rec := &recorder{}
	launchers := []engine.Launcher{
		&fakeLauncher{name: "chromium", rec: rec},
		&fakeLauncher{name: "firefox", rec: rec},
		&fakeLauncher{name: "webkit", rec: rec},
	}
	cookies := []models.Cookie{{Name: "zguid", Value: "x", Domain: ".zillow.com"}}
	dir := t.TempDir()

	s := NewScraper(launchers, testConfig(dir))
	got, err := s.Run(context.Background(), mustInput(t, "90210", "cheapest"), cookies)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(got) != 15 {
		t.Errorf("got %d listings, want 15 (one per page load)", len(got))
	}
	if got[0].URL != "https://www.zillow.com/homedetails/1/" {
		t.Errorf("URL = %q", got[0].URL)
	}
	if len(rec.launched) != 3 || len(rec.closed) != 3 {
		t.Errorf("launched %v, closed %v; want each engine once", rec.launched, rec.closed)
	}
	if rec.contexts != 15 || rec.ctxClosed != 15 {
		t.Errorf("contexts created %d closed %d, want 15/15", rec.contexts, rec.ctxClosed)
	}
	want := BuildURL("90210", models.SortCheapest)
	for _, u := range rec.navigated {
		if u != want {
			t.Fatalf("navigated to %q, want %q", u, want)
		}
	}
	for _, c := range rec.cookies {
		if len(c) != 1 || c[0].Name != "zguid" {
			t.Fatalf("cookies not registered on context: %v", c)
		}
	}
	if rec.screenshots[0] != filepath.Join(dir, "example-0.png") ||
		rec.screenshots[4] != filepath.Join(dir, "example-4.png") ||
		rec.screenshots[5] != filepath.Join(dir, "example-0.png") {
		t.Errorf("unexpected screenshot paths %v", rec.screenshots)
	}
}

func TestRun_LaunchFailureAborts(t *testing.T) {
	rec := &recorder{}
	boom := models.NewScrapeError(models.ErrCodeBrowserLaunch, "no firefox", nil)
	launchers := []engine.Launcher{
		&fakeLauncher{name: "chromium", rec: rec},
		&fakeLauncher{name: "firefox", rec: rec, launchErr: boom},
		&fakeLauncher{name: "webkit", rec: rec},
	}

	s := NewScraper(launchers, testConfig(t.TempDir()))
	got, err := s.Run(context.Background(), mustInput(t, "90210", ""), nil)

	if !errors.Is(err, boom) {
		t.Fatalf("want launch error, got %v", err)
	}
	if got != nil {
		t.Errorf("records from earlier engines must be discarded, got %d", len(got))
	}
	if len(rec.launched) != 1 || rec.launched[0] != "chromium" {
		t.Errorf("launched %v, want only chromium", rec.launched)
	}
	if len(rec.closed) != 1 {
		t.Errorf("closed %v, want chromium closed once", rec.closed)
	}
}

func TestRun_NavigationFailureClosesBrowser(t *testing.T) {
	rec := &recorder{}
	navErr := models.NewScrapeError(models.ErrCodeTimeout, "navigation timed out", context.DeadlineExceeded)
	launchers := []engine.Launcher{
		&fakeLauncher{name: "chromium", rec: rec, navErr: navErr},
		&fakeLauncher{name: "firefox", rec: rec},
	}

	s := NewScraper(launchers, testConfig(t.TempDir()))
	_, err := s.Run(context.Background(), mustInput(t, "90210", ""), nil)

	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeTimeout {
		t.Fatalf("want TIMEOUT ScrapeError, got %v", err)
	}
	if len(rec.closed) != 1 || rec.closed[0] != "chromium" {
		t.Errorf("closed %v, want chromium only", rec.closed)
	}
	if rec.ctxClosed != 1 {
		t.Errorf("browsing context closed %d times, want 1", rec.ctxClosed)
	}
	if len(rec.screenshots) != 0 {
		t.Errorf("no screenshot expected after failed navigation, got %v", rec.screenshots)
	}
}

func TestScreenshotPath(t *testing.T) {
	s := NewScraper(nil, config.ScraperConfig{ScreenshotDir: "shots"})
	if got, want := s.ScreenshotPath(3), filepath.Join("shots", "example-3.png"); got != want {
		t.Errorf("ScreenshotPath(3) = %q, want %q", got, want)
	}
}
