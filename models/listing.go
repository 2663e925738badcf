package models

// Listing is one property extracted from a search-results page.
// Every field is optional; an empty string means the source had no value.
type Listing struct {
	Title            string `json:"title"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	PostalCode       string `json:"postal_code"`
	Price            string `json:"price"`
	FactsAndFeatures string `json:"facts and features"`
	Broker           string `json:"real estate provider"`
	URL              string `json:"url"`
}

// CSVHeader is the fixed column order of the output file.
var CSVHeader = []string{
	"title",
	"address",
	"city",
	"state",
	"postal_code",
	"price",
	"facts and features",
	"real estate provider",
	"url",
}

// Row returns the listing's values in CSVHeader order.
func (l Listing) Row() []string {
	return []string{
		l.Title,
		l.Address,
		l.City,
		l.State,
		l.PostalCode,
		l.Price,
		l.FactsAndFeatures,
		l.Broker,
		l.URL,
	}
}
