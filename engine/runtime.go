package engine

import (
	"fmt"

	"github.com/use-agent/zillow/config"
)

// Runtime holds the launchers for one run plus whatever driver process
// backs them.
type Runtime struct {
	launchers []Launcher
	stop      func() error
}

// New builds a launcher for every configured engine, in order, using the
// configured backend. Unknown engines fail before any browser is started.
func New(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Runtime, error) {
	switch browserCfg.Backend {
	case config.BackendRod:
		launchers := make([]Launcher, 0, len(browserCfg.Engines))
		for _, name := range browserCfg.Engines {
			if name != "chromium" {
				return nil, fmt.Errorf("rod: %q: %w", name, ErrUnsupportedEngine)
			}
			launchers = append(launchers, NewRodLauncher(browserCfg, scraperCfg))
		}
		return &Runtime{launchers: launchers, stop: func() error { return nil }}, nil

	case config.BackendPlaywright:
		for _, name := range browserCfg.Engines {
			if !isPlaywrightEngine(name) {
				return nil, fmt.Errorf("playwright: %q: %w", name, ErrUnsupportedEngine)
			}
		}
		pw, err := StartPlaywright(browserCfg, scraperCfg)
		if err != nil {
			return nil, err
		}
		launchers := make([]Launcher, 0, len(browserCfg.Engines))
		for _, name := range browserCfg.Engines {
			l, err := pw.Launcher(name)
			if err != nil {
				_ = pw.Stop()
				return nil, err
			}
			launchers = append(launchers, l)
		}
		return &Runtime{launchers: launchers, stop: pw.Stop}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", browserCfg.Backend)
	}
}

// NewRuntime wraps already-built launchers, e.g. test doubles.
func NewRuntime(launchers []Launcher, stop func() error) *Runtime {
	if stop == nil {
		stop = func() error { return nil }
	}
	return &Runtime{launchers: launchers, stop: stop}
}

// Launchers returns the engines in run order.
func (r *Runtime) Launchers() []Launcher {
	return r.launchers
}

// Close stops the backing driver.
func (r *Runtime) Close() error {
	return r.stop()
}

func isPlaywrightEngine(name string) bool {
	switch name {
	case "chromium", "firefox", "webkit":
		return true
	}
	return false
}
