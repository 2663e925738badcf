package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/stealth"
	"github.com/playwright-community/playwright-go"
	"github.com/use-agent/zillow/config"
	"github.com/use-agent/zillow/models"
)

// PlaywrightRuntime owns the playwright driver process shared by all engines.
type PlaywrightRuntime struct {
	pw         *playwright.Playwright
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
}

// StartPlaywright starts the playwright driver, installing it and the
// configured browsers first when requested.
func StartPlaywright(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*PlaywrightRuntime, error) {
	if browserCfg.InstallBrowsers {
		slog.Info("installing playwright browsers", "engines", browserCfg.Engines)
		if err := playwright.Install(&playwright.RunOptions{Browsers: browserCfg.Engines}); err != nil {
			return nil, models.NewScrapeError(models.ErrCodeBrowserLaunch, "failed to install playwright browsers", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserLaunch, "failed to start playwright driver", err)
	}
	return &PlaywrightRuntime{pw: pw, browserCfg: browserCfg, scraperCfg: scraperCfg}, nil
}

// Launcher returns the launcher for one of chromium, firefox or webkit.
func (r *PlaywrightRuntime) Launcher(name string) (Launcher, error) {
	var bt playwright.BrowserType
	switch name {
	case "chromium":
		bt = r.pw.Chromium
	case "firefox":
		bt = r.pw.Firefox
	case "webkit":
		bt = r.pw.WebKit
	default:
		return nil, fmt.Errorf("playwright: %q: %w", name, ErrUnsupportedEngine)
	}
	return &playwrightLauncher{name: name, browserType: bt, runtime: r}, nil
}

// Stop shuts the driver down.
func (r *PlaywrightRuntime) Stop() error {
	return r.pw.Stop()
}

type playwrightLauncher struct {
	name        string
	browserType playwright.BrowserType
	runtime     *PlaywrightRuntime
}

func (l *playwrightLauncher) Name() string { return l.name }

func (l *playwrightLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, categorizeError(err, models.ErrCodeBrowserLaunch, "launch canceled")
	}

	cfg := l.runtime.browserCfg
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}
	if l.name == "chromium" {
		opts.ChromiumSandbox = playwright.Bool(!cfg.NoSandbox)
		if cfg.BrowserBin != "" {
			opts.ExecutablePath = playwright.String(cfg.BrowserBin)
		}
	}

	browser, err := l.browserType.Launch(opts)
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to launch "+l.name,
			err,
		)
	}
	slog.Debug("browser launched", "engine", l.name, "version", browser.Version())
	return &playwrightBrowser{browser: browser, runtime: l.runtime}, nil
}

type playwrightBrowser struct {
	browser playwright.Browser
	runtime *PlaywrightRuntime
}

func (b *playwrightBrowser) NewContext(ctx context.Context) (BrowsingContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, categorizeError(err, models.ErrCodeBrowserLaunch, "context creation canceled")
	}

	cfg := b.runtime.browserCfg
	opts := playwright.BrowserNewContextOptions{}
	if headers := extraHeaders(cfg); len(headers) > 0 {
		opts.ExtraHttpHeaders = headers
	}
	if cfg.UserAgent != "" {
		opts.UserAgent = playwright.String(cfg.UserAgent)
	}

	bctx, err := b.browser.NewContext(opts)
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeBrowserLaunch, "failed to create browser context")
	}

	if cfg.Stealth {
		if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(stealth.JS)}); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", err,
			)
		}
	}
	return &playwrightContext{context: bctx, fullPage: b.runtime.scraperCfg.FullPageScreenshot}, nil
}

func (b *playwrightBrowser) Close() error {
	return b.browser.Close()
}

type playwrightContext struct {
	context  playwright.BrowserContext
	fullPage bool
}

func (c *playwrightContext) AddCookies(ctx context.Context, cookies []models.Cookie, targetURL string) error {
	if len(cookies) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "adding cookies canceled")
	}

	params := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, ck := range normalizeCookies(cookies, targetURL) {
		params = append(params, toOptionalCookie(ck))
	}
	if err := c.context.AddCookies(params); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "failed to add cookies")
	}
	return nil
}

func (c *playwrightContext) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, categorizeError(err, models.ErrCodeBrowserLaunch, "page creation canceled")
	}
	page, err := c.context.NewPage()
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeBrowserLaunch, "failed to open page")
	}
	return &playwrightPage{page: page, fullPage: c.fullPage}, nil
}

func (c *playwrightContext) Close() error {
	return c.context.Close()
}

type playwrightPage struct {
	page     playwright.Page
	fullPage bool
}

func (p *playwrightPage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "navigation canceled")
	}
	opts := playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateLoad}
	if ms, ok := timeoutMillis(ctx); ok {
		opts.Timeout = playwright.Float(ms)
	}
	if _, err := p.page.Goto(url, opts); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "navigation to target URL failed")
	}
	return nil
}

func (p *playwrightPage) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return categorizeError(err, models.ErrCodeCapture, "screenshot canceled")
	}
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(p.fullPage),
	})
	if err != nil {
		return categorizeError(err, models.ErrCodeCapture, "screenshot failed")
	}
	return nil
}

func (p *playwrightPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", categorizeError(err, models.ErrCodeCapture, "content retrieval canceled")
	}
	html, err := p.page.Content()
	if err != nil {
		return "", categorizeError(err, models.ErrCodeCapture, "failed to extract page HTML")
	}
	return html, nil
}

// toOptionalCookie converts a loaded cookie into playwright's cookie param,
// leaving unset attributes nil. A non-positive expiry keeps it a session cookie.
func toOptionalCookie(c models.Cookie) playwright.OptionalCookie {
	oc := playwright.OptionalCookie{Name: c.Name, Value: c.Value}
	if c.URL != "" {
		oc.URL = playwright.String(c.URL)
	}
	if c.Domain != "" {
		oc.Domain = playwright.String(c.Domain)
	}
	if c.Path != "" {
		oc.Path = playwright.String(c.Path)
	}
	if c.Expires > 0 {
		oc.Expires = playwright.Float(c.Expires)
	}
	if c.HTTPOnly {
		oc.HttpOnly = playwright.Bool(true)
	}
	if c.Secure {
		oc.Secure = playwright.Bool(true)
	}
	if c.SameSite != "" {
		ss := playwright.SameSiteAttribute(c.SameSite)
		oc.SameSite = &ss
	}
	return oc
}

// timeoutMillis converts the context deadline into playwright's millisecond
// timeout. Playwright treats 0 as "no timeout", so at least 1ms is returned.
func timeoutMillis(ctx context.Context) (float64, bool) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, false
	}
	ms := float64(time.Until(deadline).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return ms, true
}
