package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Validation errors returned by Config.Validate.
var (
	ErrNoEngines        = errors.New("at least one browser engine is required")
	ErrUnknownBackend   = errors.New("backend must be 'playwright' or 'rod'")
	ErrInvalidRepeats   = errors.New("repeats must be at least 1")
	ErrInvalidTimeout   = errors.New("navigation timeout must be positive")
	ErrInvalidLogFormat = errors.New("log format must be 'text' or 'json'")
)

// Backend names accepted by BrowserConfig.Backend.
const (
	BackendPlaywright = "playwright"
	BackendRod        = "rod"
)

// Config holds all application configuration.
type Config struct {
	Browser BrowserConfig
	Scraper ScraperConfig
	Cookies CookieConfig
	Output  OutputConfig
	Log     LogConfig
}

// BrowserConfig controls how browsers are launched.
type BrowserConfig struct {
	// Backend selects the automation driver: "playwright" or "rod".
	Backend string // default: "playwright"

	// Engines is the ordered list of engines to run, e.g. chromium,firefox,webkit.
	Engines []string

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path (rod only).
	BrowserBin string

	// Stealth injects anti-bot-detection evasions into every browsing context.
	Stealth bool // default: false

	// InstallBrowsers downloads the playwright driver and browsers before launch.
	InstallBrowsers bool // default: false

	UserAgent      string
	AcceptLanguage string // default: "en-US,en;q=0.9"

	// BlockedResourceTypes lists resource types to block (rod only).
	BlockedResourceTypes []string
}

// ScraperConfig controls the fetch loop.
type ScraperConfig struct {
	// Repeats is the number of page loads per engine.
	Repeats int // default: 5

	// NavigationTimeout bounds a single navigation.
	NavigationTimeout time.Duration // default: 30s

	// ScreenshotDir receives example-<n>.png files.
	ScreenshotDir string // default: "."

	FullPageScreenshot bool // default: true
}

// CookieConfig locates the cookie file. Explicit values take precedence over
// discovery from the working directory.
type CookieConfig struct {
	// ProjectRoot is the directory holding .build/cookies.json.
	ProjectRoot string

	// ProjectMarker identifies the project root during upward discovery.
	ProjectMarker string // default: "go.mod"

	// Path is the cookie file itself; overrides ProjectRoot.
	Path string
}

// OutputConfig controls where the CSV is written.
type OutputConfig struct {
	Dir string // default: "."
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Backend:              envOr("ZILLOW_BACKEND", BackendPlaywright),
			Engines:              envSliceOr("ZILLOW_ENGINES", []string{"chromium", "firefox", "webkit"}),
			Headless:             envBoolOr("ZILLOW_HEADLESS", true),
			NoSandbox:            envBoolOr("ZILLOW_NO_SANDBOX", false),
			BrowserBin:           os.Getenv("ZILLOW_BROWSER_BIN"),
			Stealth:              envBoolOr("ZILLOW_STEALTH", false),
			InstallBrowsers:      envBoolOr("ZILLOW_INSTALL_BROWSERS", false),
			UserAgent:            os.Getenv("ZILLOW_USER_AGENT"),
			AcceptLanguage:       envOr("ZILLOW_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			BlockedResourceTypes: envSliceOr("ZILLOW_BLOCKED_RESOURCES", nil),
		},
		Scraper: ScraperConfig{
			Repeats:            envIntOr("ZILLOW_REPEATS", 5),
			NavigationTimeout:  envDurationOr("ZILLOW_NAV_TIMEOUT", 30*time.Second),
			ScreenshotDir:      envOr("ZILLOW_SCREENSHOT_DIR", "."),
			FullPageScreenshot: envBoolOr("ZILLOW_FULL_PAGE_SCREENSHOT", true),
		},
		Cookies: CookieConfig{
			ProjectRoot:   os.Getenv("ZILLOW_PROJECT_ROOT"),
			ProjectMarker: envOr("ZILLOW_PROJECT_MARKER", "go.mod"),
			Path:          os.Getenv("ZILLOW_COOKIES"),
		},
		Output: OutputConfig{
			Dir: envOr("ZILLOW_OUTPUT_DIR", "."),
		},
		Log: LogConfig{
			Level:  envOr("ZILLOW_LOG_LEVEL", "info"),
			Format: envOr("ZILLOW_LOG_FORMAT", "text"),
		},
	}
}

// Validate checks the values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.Browser.Backend {
	case BackendPlaywright, BackendRod:
	default:
		return ErrUnknownBackend
	}
	if len(c.Browser.Engines) == 0 {
		return ErrNoEngines
	}
	if c.Scraper.Repeats < 1 {
		return ErrInvalidRepeats
	}
	if c.Scraper.NavigationTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return ErrInvalidLogFormat
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
