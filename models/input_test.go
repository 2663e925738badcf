package models

import (
	"errors"
	"testing"
)

func TestNewInputData(t *testing.T) {
	cases := []struct {
		zip, sort string
		want      SortMode
		wantErr   error
	}{
		{"90210", "", SortDefault, nil},
		{"90210", "newest", SortNewest, nil},
		{"90210", "cheapest", SortCheapest, nil},
		{"90210", "oldest", "", ErrInvalidSort},
		{"90210", "homes for you", "", ErrInvalidSort},
		{"", "newest", "", ErrMissingZipCode},
	}
	for _, tc := range cases {
		in, err := NewInputData(tc.zip, tc.sort)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("NewInputData(%q, %q) err = %v, want %v", tc.zip, tc.sort, err, tc.wantErr)
			}
			if !IsUsage(err) {
				t.Errorf("NewInputData(%q, %q) err should be a usage error", tc.zip, tc.sort)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewInputData(%q, %q) unexpected err %v", tc.zip, tc.sort, err)
			continue
		}
		if in.ZipCode() != tc.zip || in.Sort() != tc.want {
			t.Errorf("NewInputData(%q, %q) = %q/%q", tc.zip, tc.sort, in.ZipCode(), in.Sort())
		}
	}
}

func TestCookieDefaultName(t *testing.T) {
	cases := []struct {
		c    Cookie
		want string
	}{
		{Cookie{Name: "zguid", Domain: ".zillow.com"}, "zguid"},
		{Cookie{Domain: ".zillow.com"}, ".zillow.com"},
		{Cookie{}, "other"},
	}
	for _, tc := range cases {
		if got := tc.c.DefaultName(); got != tc.want {
			t.Errorf("DefaultName(%+v) = %q, want %q", tc.c, got, tc.want)
		}
	}
}

func TestListingRowMatchesHeader(t *testing.T) {
	l := Listing{Title: "t", URL: "u", Broker: "b", FactsAndFeatures: "f"}
	row := l.Row()
	if len(row) != len(CSVHeader) {
		t.Fatalf("row has %d cells, header %d", len(row), len(CSVHeader))
	}
	if row[0] != "t" || row[6] != "f" || row[7] != "b" || row[8] != "u" {
		t.Errorf("row order mismatch: %v", row)
	}
}

func TestScrapeErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := NewScrapeError(ErrCodeNavigation, "navigation failed", base)
	if !errors.Is(err, base) {
		t.Error("ScrapeError should unwrap to its cause")
	}
	if got := err.Error(); got != "NAVIGATION: navigation failed: boom" {
		t.Errorf("Error() = %q", got)
	}
}
