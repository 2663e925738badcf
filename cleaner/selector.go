package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Selectors for a search-results page. Attribute selectors with "=" match
// the whole class attribute, so a card carrying extra classes does not match.
// Address parts are looked up below the card's own address span.
var (
	selContainer  = cascadia.MustCompile(`div[id="search-results"] article`)
	selAddress    = cascadia.MustCompile(`span[itemprop="address"]`)
	selStreet     = cascadia.MustCompile(`span[itemprop="streetAddress"]`)
	selCity       = cascadia.MustCompile(`span[itemprop="addressLocality"]`)
	selState      = cascadia.MustCompile(`span[itemprop="addressRegion"]`)
	selPostalCode = cascadia.MustCompile(`span[itemprop="postalCode"]`)
	selPrice      = cascadia.MustCompile(`span[class="zsg-photo-card-price"]`)
	selInfo       = cascadia.MustCompile(`span[class="zsg-photo-card-info"]`)
	selBroker     = cascadia.MustCompile(`span[class="zsg-photo-card-broker-name"]`)
	selLink       = cascadia.MustCompile(`a[class*="overlay-link"][href]`)
	selTitle      = cascadia.MustCompile(`h4`)
	selForSale    = cascadia.MustCompile(`span[class="zsg-icon-for-sale"]`)
)

// textNodes returns the text nodes under every element of s in document
// order. A node reachable from two nested matches is reported once.
func textNodes(s *goquery.Selection) []string {
	var out []string
	seen := make(map[*html.Node]struct{})

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		if n.Type == html.TextNode {
			out = append(out, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return out
}

// concatText joins the text nodes with nothing in between.
func concatText(s *goquery.Selection) string {
	return strings.Join(textNodes(s), "")
}

// collapsedText joins the text nodes with a space and collapses every run of
// whitespace into a single space.
func collapsedText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(strings.Join(textNodes(s), " ")), " ")
}
