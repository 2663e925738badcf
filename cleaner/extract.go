package cleaner

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/zillow/models"
)

// middleDot separates facts in the card info line ("3 bds · 2 ba").
const middleDot = "·"

// ExtractListings parses the rendered search-results markup and returns one
// Listing per for-sale card. Cards without the for-sale icon are dropped.
// Relative listing links are resolved against origin.
//
// Every field is extracted independently; a missing element only leaves
// that field empty.
func ExtractListings(rawHTML string, origin string) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(origin)
	if err != nil {
		return nil, err
	}

	listings := []models.Listing{}
	doc.FindMatcher(selContainer).Each(func(_ int, card *goquery.Selection) {
		listing := extractCard(card, base)
		if card.FindMatcher(selForSale).Length() == 0 {
			return
		}
		listings = append(listings, listing)
	})
	return listings, nil
}

// extractCard pulls every field out of a single listing container.
func extractCard(card *goquery.Selection, base *url.URL) models.Listing {
	addr := card.FindMatcher(selAddress)
	return models.Listing{
		Title:            concatText(card.FindMatcher(selTitle)),
		Address:          collapsedText(addr.FindMatcher(selStreet)),
		City:             strings.TrimSpace(concatText(addr.FindMatcher(selCity))),
		State:            strings.TrimSpace(concatText(addr.FindMatcher(selState))),
		PostalCode:       strings.TrimSpace(concatText(addr.FindMatcher(selPostalCode))),
		Price:            strings.TrimSpace(concatText(card.FindMatcher(selPrice))),
		FactsAndFeatures: strings.ReplaceAll(collapsedText(card.FindMatcher(selInfo)), middleDot, ","),
		Broker:           strings.TrimSpace(concatText(card.FindMatcher(selBroker))),
		URL:              listingURL(card, base),
	}
}

// listingURL resolves the first overlay link carrying an href against base.
func listingURL(card *goquery.Selection, base *url.URL) string {
	href, exists := card.FindMatcher(selLink).First().Attr("href")
	if !exists {
		return ""
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return ""
	}
	return resolved.String()
}
