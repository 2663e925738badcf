// Package cookies locates and loads the saved browser session cookies that
// are replayed into every browsing context.
package cookies

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/use-agent/zillow/config"
	"github.com/use-agent/zillow/models"
)

// NotFoundMessage is logged when the cookie file cannot be read.
const NotFoundMessage = "Cookie file not found. Please log in and save the cookies to continue"

// DefaultRelPath is the cookie file location relative to the project root.
var DefaultRelPath = filepath.Join(".build", "cookies.json")

// FindProjectRoot walks upward from start until it finds a directory that
// contains marker. It returns false when the filesystem root is reached.
func FindProjectRoot(start, marker string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ResolvePath returns the cookie file to load. An explicit path wins, then an
// explicit project root; only when neither is configured is the root
// discovered from cwd. An empty result means cookie loading is skipped.
func ResolvePath(cfg config.CookieConfig, cwd string) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	root := cfg.ProjectRoot
	if root == "" {
		found, ok := FindProjectRoot(cwd, cfg.ProjectMarker)
		if !ok {
			slog.Debug("no project root found, skipping cookies",
				"cwd", cwd, "marker", cfg.ProjectMarker)
			return ""
		}
		root = found
	}
	return filepath.Join(root, DefaultRelPath)
}

// Load reads a JSON array of cookie objects from path.
//
// A missing or unreadable file is not an error: the fixed NotFoundMessage is
// logged and no cookies are returned. A JSON document whose root is not an array is skipped
// with a warning. Malformed JSON is returned as a COOKIE_FILE error.
func Load(path string) ([]models.Cookie, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn(NotFoundMessage, "path", path)
		} else {
			slog.Warn(NotFoundMessage, "path", path, "error", err)
		}
		return nil, nil
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeCookieFile, "cookie file is not valid JSON", err)
	}
	if _, ok := root.([]any); !ok {
		slog.Warn("cookie file root is not a list, ignoring cookies", "path", path)
		return nil, nil
	}

	var raw []models.Cookie
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeCookieFile, "cookie entry has unexpected shape", err)
	}

	out := make([]models.Cookie, 0, len(raw))
	for _, c := range raw {
		c.Name = c.DefaultName()
		out = append(out, c)
	}
	slog.Info("cookies loaded", "path", path, "count", len(out))
	return out, nil
}
