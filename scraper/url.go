package scraper

import "github.com/use-agent/zillow/models"

// SiteOrigin is the origin relative listing links are resolved against.
const SiteOrigin = "https://www.zillow.com"

// BuildURL returns the search-results URL for a postal code and sort mode.
// The postal code is interpolated as given.
func BuildURL(zipCode string, sort models.SortMode) string {
	switch sort {
	case models.SortNewest:
		return SiteOrigin + "/homes/for_sale/" + zipCode + "/0_singlestory/days_sort"
	case models.SortCheapest:
		return SiteOrigin + "/homes/for_sale/" + zipCode + "/0_singlestory/pricea_sort/"
	default:
		return SiteOrigin + "/homes/for_sale/" + zipCode + "_rb/?fromHomePage=true" +
			"&shouldFireSellPageImplicitClaimGA=false&fromHomePageTab=buy"
	}
}
