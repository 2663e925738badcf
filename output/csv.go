// Package output serializes scraped listings.
package output

import (
	"encoding/csv"
	"os"

	"github.com/use-agent/zillow/models"
)

// FileName returns the CSV file name for a postal code.
func FileName(zipCode string) string {
	return "properties-" + zipCode + ".csv"
}

// WriteCSV truncates path and writes the header followed by one row per
// listing. Missing values become empty cells.
func WriteCSV(path string, listings []models.Listing) error {
	f, err := os.Create(path)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeOutput, "failed to create output file", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.CSVHeader); err != nil {
		f.Close()
		return models.NewScrapeError(models.ErrCodeOutput, "failed to write header", err)
	}
	for _, l := range listings {
		if err := w.Write(l.Row()); err != nil {
			f.Close()
			return models.NewScrapeError(models.ErrCodeOutput, "failed to write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return models.NewScrapeError(models.ErrCodeOutput, "failed to flush output", err)
	}
	if err := f.Close(); err != nil {
		return models.NewScrapeError(models.ErrCodeOutput, "failed to close output file", err)
	}
	return nil
}
