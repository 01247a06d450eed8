package scraper

import "time"

// Listing is a raw prospective lead pulled from one external source.
// Listings are produced per search request and never persisted unless
// the user saves one into the CRM.
type Listing struct {
	SourceID     string    `json:"source_id"` // identifier within the originating source
	Source       string    `json:"source"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Zip          string    `json:"zip"`
	Price        int       `json:"price"`
	DaysOnMarket int       `json:"days_on_market"`
	PropertyType string    `json:"property_type"`
	ListingURL   string    `json:"listing_url"`
	Description  string    `json:"description"`
	DateListed   time.Time `json:"date_listed"`
}
