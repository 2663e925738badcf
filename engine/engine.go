package engine

import (
	"context"
	"errors"
	"net/url"

	"github.com/use-agent/zillow/models"
)

// ErrUnsupportedEngine is returned when a backend cannot drive the requested engine.
var ErrUnsupportedEngine = errors.New("engine not supported by backend")

// Launcher starts one browser engine (e.g. "chromium", "firefox", "webkit").
type Launcher interface {
	// Name returns the engine identifier.
	Name() string

	// Launch starts a browser process and connects to it.
	Launch(ctx context.Context) (Browser, error)
}

// Browser is a running browser process. Close must be called exactly once.
type Browser interface {
	// NewContext creates an isolated browsing context with its own cookies and storage.
	NewContext(ctx context.Context) (BrowsingContext, error)
	Close() error
}

// BrowsingContext is an isolated session inside a Browser.
type BrowsingContext interface {
	// AddCookies registers cookies on the context. targetURL supplies the
	// domain for cookies that carry neither a url nor a domain.
	AddCookies(ctx context.Context, cookies []models.Cookie, targetURL string) error
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab inside a BrowsingContext.
type Page interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// Screenshot writes a PNG capture of the page to path.
	Screenshot(ctx context.Context, path string) error
	// HTML returns the rendered document markup.
	HTML(ctx context.Context) (string, error)
}

// normalizeCookies fills the attributes browsers insist on: a cookie needs
// either a url or a domain plus path.
func normalizeCookies(cookies []models.Cookie, targetURL string) []models.Cookie {
	host := ""
	if u, err := url.Parse(targetURL); err == nil {
		host = u.Hostname()
	}

	out := make([]models.Cookie, len(cookies))
	for i, c := range cookies {
		if c.URL == "" {
			if c.Domain == "" {
				c.Domain = host
			}
			if c.Path == "" {
				c.Path = "/"
			}
		}
		out[i] = c
	}
	return out
}
