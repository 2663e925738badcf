package models

import (
	"errors"
	"fmt"
)

// Error codes used for run-level failures.
const (
	ErrCodeUsage         = "USAGE"
	ErrCodeBrowserLaunch = "BROWSER_LAUNCH"
	ErrCodeNavigation    = "NAVIGATION"
	ErrCodeTimeout       = "TIMEOUT"
	ErrCodeCapture       = "CAPTURE"
	ErrCodeCookieFile    = "COOKIE_FILE"
	ErrCodeOutput        = "OUTPUT"
)

// Usage errors returned while resolving CLI input.
var (
	ErrMissingZipCode = errors.New("zipcode is required")
	ErrInvalidSort    = errors.New("sort must be one of: newest, cheapest")
)

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// IsUsage reports whether err is (or wraps) a usage error.
func IsUsage(err error) bool {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code == ErrCodeUsage
	}
	return errors.Is(err, ErrMissingZipCode) || errors.Is(err, ErrInvalidSort)
}
