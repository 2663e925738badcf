package engine

import (
	"context"
	"errors"

	"github.com/playwright-community/playwright-go"
	"github.com/use-agent/zillow/models"
)

// categorizeError wraps raw driver errors into typed ScrapeErrors so the
// CLI can report timeouts separately from other failures.
func categorizeError(err error, code, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, playwright.ErrTimeout):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "run canceled", err)
	default:
		return models.NewScrapeError(code, msg, err)
	}
}
