package models

import "strings"

// SortMode selects which listing-search URL template is used.
type SortMode string

const (
	SortDefault  SortMode = ""
	SortNewest   SortMode = "newest"
	SortCheapest SortMode = "cheapest"
)

// SortChoices lists the tokens accepted on the command line.
var SortChoices = []string{string(SortNewest), string(SortCheapest)}

// ParseSortMode maps a CLI token to a SortMode. An empty token selects the
// default ordering; any other unrecognised token is a usage error.
func ParseSortMode(token string) (SortMode, error) {
	switch SortMode(token) {
	case SortDefault, SortNewest, SortCheapest:
		return SortMode(token), nil
	default:
		return SortDefault, NewScrapeError(ErrCodeUsage, "invalid sort "+strings.TrimSpace(token), ErrInvalidSort)
	}
}

// InputData is the resolved, immutable input of one run.
type InputData struct {
	zipCode string
	sort    SortMode
}

// NewInputData validates the raw CLI arguments. The postal code is only
// checked for presence; its format is never inspected.
func NewInputData(zipCode, sortToken string) (InputData, error) {
	if zipCode == "" {
		return InputData{}, NewScrapeError(ErrCodeUsage, "missing zipcode", ErrMissingZipCode)
	}
	sort, err := ParseSortMode(sortToken)
	if err != nil {
		return InputData{}, err
	}
	return InputData{zipCode: zipCode, sort: sort}, nil
}

// ZipCode returns the postal code as given on the command line.
func (in InputData) ZipCode() string { return in.zipCode }

// Sort returns the selected sort mode.
func (in InputData) Sort() SortMode { return in.sort }
