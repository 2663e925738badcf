package cleaner

import (
	"os"
	"testing"
)

const testOrigin = "https://www.zillow.com"

func loadFixture(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/search_results.html")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(b)
}

func TestExtractListings_Fixture(t *testing.T) {
	listings, err := ExtractListings(loadFixture(t), testOrigin)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2: %+v", len(listings), listings)
	}

	first := listings[0]
	checks := []struct {
		field, got, want string
	}{
		{"Title", first.Title, "House For Sale"},
		{"Address", first.Address, "123 Main St Apt 4"},
		{"City", first.City, "Beverly Hills"},
		{"State", first.State, "CA"},
		{"PostalCode", first.PostalCode, "90210"},
		{"Price", first.Price, "$1,250,000"},
		{"FactsAndFeatures", first.FactsAndFeatures, "3 bds , 2 ba , 1,500 sqft"},
		{"Broker", first.Broker, "Sunset Realty"},
		{"URL", first.URL, "https://www.zillow.com/homedetails/123-Main-St-Beverly-Hills-CA-90210/1_zpid/"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestExtractListings_MissingFieldsAreEmpty(t *testing.T) {
	listings, err := ExtractListings(loadFixture(t), testOrigin)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(listings) < 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	second := listings[1]
	if second.City != "" || second.State != "" || second.PostalCode != "" {
		t.Errorf("expected empty locality fields, got %+v", second)
	}
	if second.Broker != "" || second.FactsAndFeatures != "" {
		t.Errorf("expected empty broker/info, got %+v", second)
	}
	if second.URL != "https://www.zillow.com/homedetails/9-Elm-Dr/2_zpid/" {
		t.Errorf("absolute URL should be kept as is, got %q", second.URL)
	}
}

func TestExtractListings_NotForSaleDropped(t *testing.T) {
	const page = `<div id="search-results"><article>
		<h4>Sold</h4>
		<span itemprop="address"><span itemprop="streetAddress">1 A St</span></span>
		<span class="zsg-photo-card-price">$1</span>
		<span class="zsg-photo-card-broker-name">Broker</span>
		<a class="overlay-link" href="/x"></a>
	</article></div>`

	listings, err := ExtractListings(page, testOrigin)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("got %d listings, want 0", len(listings))
	}
}

func TestExtractListings_ForSaleClassMustMatchExactly(t *testing.T) {
	const page = `<div id="search-results"><article>
		<span class="zsg-icon-for-sale extra"></span>
	</article></div>`

	listings, err := ExtractListings(page, testOrigin)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("got %d listings, want 0", len(listings))
	}
}

func TestExtractListings_AddressJoinsSubfields(t *testing.T) {
	const page = `<div id="search-results"><article>
		<span itemprop="address"><span itemprop="streetAddress">
			<b>500</b><i>Ocean</i>  Ave<br/>Unit   12
		</span></span>
		<span class="zsg-icon-for-sale"></span>
	</article></div>`

	listings, err := ExtractListings(page, testOrigin)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}
	if got, want := listings[0].Address, "500 Ocean Ave Unit 12"; got != want {
		t.Errorf("Address = %q, want %q", got, want)
	}
}

func TestExtractListings_AddressSpanMustBeInsideCard(t *testing.T) {
	const page = `<div id="search-results"><span itemprop="address"><article>
		<span itemprop="streetAddress">Leaked St</span>
		<span itemprop="postalCode">00000</span>
		<span class="zsg-icon-for-sale"></span>
	</article></span></div>`

	listings, err := ExtractListings(page, testOrigin)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}
	if listings[0].Address != "" || listings[0].PostalCode != "" {
		t.Errorf("address fields should be empty without an address span in the card, got %+v", listings[0])
	}
}

func TestExtractListings_LinkSkipsAnchorWithoutHref(t *testing.T) {
	const page = `<div id="search-results"><article>
		<a class="zsg-photo-card-overlay-link"></a>
		<a class="zsg-photo-card-overlay-link" href="/homedetails/1/"></a>
		<span class="zsg-icon-for-sale"></span>
	</article></div>`

	listings, err := ExtractListings(page, testOrigin)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}
	if got, want := listings[0].URL, "https://www.zillow.com/homedetails/1/"; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}

func TestExtractListings_NoResults(t *testing.T) {
	listings, err := ExtractListings(`<html><body><p>captcha</p></body></html>`, testOrigin)
	if err != nil {
		t.Fatalf("ExtractListings: %v", err)
	}
	if listings == nil || len(listings) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", listings)
	}
}

func TestExtractListings_BadOrigin(t *testing.T) {
	if _, err := ExtractListings(`<html></html>`, "://bad"); err == nil {
		t.Error("expected error for invalid origin")
	}
}
