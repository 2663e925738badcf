package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/zillow/config"
	"github.com/use-agent/zillow/models"
	"github.com/ysmood/gson"
)

// RodLauncher drives a local Chromium through the DevTools protocol.
// Only the "chromium" engine is available.
type RodLauncher struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
}

// NewRodLauncher creates a RodLauncher.
func NewRodLauncher(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) *RodLauncher {
	return &RodLauncher{browserCfg: browserCfg, scraperCfg: scraperCfg}
}

func (l *RodLauncher) Name() string { return "chromium" }

// Launch starts Chromium and connects to it.
func (l *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	ln := launcher.New().
		Context(ctx).
		Headless(l.browserCfg.Headless).
		NoSandbox(l.browserCfg.NoSandbox)

	if l.browserCfg.BrowserBin != "" {
		ln = ln.Bin(l.browserCfg.BrowserBin)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	ln.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	ln.Delete(flags.Flag("enable-automation"))
	ln.Set(flags.Flag("disable-features"), "TranslateUI")
	ln.Set(flags.Flag("disable-popup-blocking"))
	ln.Set(flags.Flag("disable-component-update"))
	ln.Set(flags.Flag("disable-default-apps"))
	ln.Set(flags.Flag("disable-dev-shm-usage"))
	ln.Set(flags.Flag("disable-extensions"))
	ln.Set(flags.Flag("no-first-run"))

	controlURL, err := ln.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to launch chromium",
			err,
		)
	}
	slog.Debug("browser launched", "engine", l.Name(), "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		ln.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to connect to chromium",
			err,
		)
	}

	return &rodBrowser{
		browser:    browser,
		launcher:   ln,
		browserCfg: l.browserCfg,
		scraperCfg: l.scraperCfg,
	}, nil
}

type rodBrowser struct {
	browser    *rod.Browser
	launcher   *launcher.Launcher
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
}

// NewContext opens an incognito browser context.
func (b *rodBrowser) NewContext(ctx context.Context) (BrowsingContext, error) {
	incognito, err := b.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeBrowserLaunch, "failed to create browser context")
	}
	return &rodContext{browser: incognito, parent: b}, nil
}

// Close kills the browser process and removes its user-data dir.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}

type rodContext struct {
	browser *rod.Browser
	parent  *rodBrowser
	routers []*rod.HijackRouter
}

func (c *rodContext) AddCookies(ctx context.Context, cookies []models.Cookie, targetURL string) error {
	if len(cookies) == 0 {
		return nil
	}
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, ck := range normalizeCookies(cookies, targetURL) {
		params = append(params, toCookieParam(ck))
	}
	if err := c.browser.Context(ctx).SetCookies(params); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "failed to set cookies")
	}
	return nil
}

func (c *rodContext) NewPage(ctx context.Context) (Page, error) {
	page, err := c.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeBrowserLaunch, "failed to open page")
	}

	// Stealth JS and resource blocking only apply to later navigations.
	if c.parent.browserCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	if err := applyNetworkOverrides(page, c.parent.browserCfg); err != nil {
		slog.Warn("network overrides failed, proceeding with browser defaults",
			"error", err,
		)
	}

	if router := setupHijack(page, c.parent.browserCfg.BlockedResourceTypes); router != nil {
		c.routers = append(c.routers, router)
	}

	return &rodPage{page: page, fullPage: c.parent.scraperCfg.FullPageScreenshot}, nil
}

// Close stops any request hijacking and disposes the incognito context
// together with its pages.
func (c *rodContext) Close() error {
	for _, r := range c.routers {
		_ = r.Stop()
	}
	return c.browser.Close()
}

type rodPage struct {
	page     *rod.Page
	fullPage bool
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)
	if err := pg.Navigate(url); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "navigation to target URL failed")
	}
	if err := pg.WaitLoad(); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, "page did not finish loading")
	}
	if stableErr := pg.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"error", stableErr,
		)
	}
	return nil
}

func (p *rodPage) Screenshot(ctx context.Context, path string) error {
	data, err := p.page.Context(ctx).Screenshot(p.fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return categorizeError(err, models.ErrCodeCapture, "screenshot failed")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return models.NewScrapeError(models.ErrCodeCapture, "failed to write screenshot", err)
	}
	return nil
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return "", categorizeError(err, models.ErrCodeCapture, "failed to extract page HTML")
	}
	return html, nil
}

// applyNetworkOverrides sets the configured user agent and extra headers on
// a page. Every override is attempted; failures are joined.
func applyNetworkOverrides(client proto.Client, cfg config.BrowserConfig) error {
	var errs []error
	if cfg.UserAgent != "" {
		err := proto.NetworkSetUserAgentOverride{
			UserAgent:      cfg.UserAgent,
			AcceptLanguage: cfg.AcceptLanguage,
		}.Call(client)
		if err != nil {
			errs = append(errs, fmt.Errorf("user agent override: %w", err))
		}
	}
	if headers := extraHeaders(cfg); len(headers) > 0 {
		err := proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(headers),
		}.Call(client)
		if err != nil {
			errs = append(errs, fmt.Errorf("extra headers: %w", err))
		}
	}
	return errors.Join(errs...)
}

// toCookieParam converts a loaded cookie into a CDP cookie. A non-positive
// expiry marks a session cookie and is left unset.
func toCookieParam(ck models.Cookie) *proto.NetworkCookieParam {
	p := &proto.NetworkCookieParam{
		Name:     ck.Name,
		Value:    ck.Value,
		URL:      ck.URL,
		Domain:   ck.Domain,
		Path:     ck.Path,
		Secure:   ck.Secure,
		HTTPOnly: ck.HTTPOnly,
		SameSite: proto.NetworkCookieSameSite(ck.SameSite),
	}
	if ck.Expires > 0 {
		p.Expires = proto.TimeSinceEpoch(ck.Expires)
	}
	return p
}

// extraHeaders returns the headers sent with every request of a context.
func extraHeaders(cfg config.BrowserConfig) map[string]string {
	h := make(map[string]string, 1)
	if cfg.AcceptLanguage != "" {
		h["Accept-Language"] = cfg.AcceptLanguage
	}
	return h
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
