package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Known source identifiers
const (
	SourceMLS       = "mls"
	SourceFSBO      = "fsbo"
	SourceAuction   = "auction"
	SourceWholesale = "wholesale"
)

// AllSources returns every registered source identifier.
func AllSources() []string {
	return []string{SourceMLS, SourceFSBO, SourceAuction, SourceWholesale}
}

// Source fetches raw listings from one external provider. Implementations
// are treated as untrusted black boxes: possibly slow, possibly failing.
type Source interface {
	Name() string
	Fetch(ctx context.Context, city string, keywords []string) ([]Listing, error)
}

// sourceListing is the wire shape shared by the listing feed providers
type sourceListing struct {
	ID           string `json:"id"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	Price        int    `json:"price"`
	DaysOnMarket int    `json:"days_on_market"`
	PropertyType string `json:"property_type"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	ListedAt     string `json:"listed_at"` // RFC 3339
}

// httpSource is a JSON-over-HTTP listing feed client
type httpSource struct {
	name    string
	baseURL string
	path    string
	apiKey  string
	client  *fasthttp.Client
}

func newHTTPSource(name, baseURL, path, apiKey string) *httpSource {
	return &httpSource{
		name:    name,
		baseURL: baseURL,
		path:    path,
		apiKey:  apiKey,
		client: &fasthttp.Client{
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// NewMLSSource queries an MLS aggregation feed
func NewMLSSource(baseURL, apiKey string) Source {
	return newHTTPSource(SourceMLS, baseURL, "/v2/listings", apiKey)
}

// NewFSBOSource queries a for-sale-by-owner listing feed
func NewFSBOSource(baseURL, apiKey string) Source {
	return newHTTPSource(SourceFSBO, baseURL, "/api/listings", apiKey)
}

// NewAuctionSource queries a foreclosure/auction data feed
func NewAuctionSource(baseURL, apiKey string) Source {
	return newHTTPSource(SourceAuction, baseURL, "/v1/auctions", apiKey)
}

// NewWholesaleSource queries a wholesale deal feed
func NewWholesaleSource(baseURL, apiKey string) Source {
	return newHTTPSource(SourceWholesale, baseURL, "/v1/deals", apiKey)
}

func (s *httpSource) Name() string {
	return s.name
}

func (s *httpSource) Fetch(ctx context.Context, city string, keywords []string) ([]Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("city", city)
	if len(keywords) > 0 {
		query.Set("keywords", strings.Join(keywords, ","))
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.baseURL + s.path + "?" + query.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	deadline := time.Now().Add(15 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%s fetch failed: %w", s.name, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", s.name, resp.StatusCode())
	}

	var payload struct {
		Listings []sourceListing `json:"listings"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%s response decode failed: %w", s.name, err)
	}

	listings := make([]Listing, 0, len(payload.Listings))
	for _, raw := range payload.Listings {
		listing := Listing{
			SourceID:     raw.ID,
			Source:       s.name,
			Address:      raw.Address,
			City:         raw.City,
			State:        raw.State,
			Zip:          raw.Zip,
			Price:        raw.Price,
			DaysOnMarket: raw.DaysOnMarket,
			PropertyType: raw.PropertyType,
			ListingURL:   raw.URL,
			Description:  raw.Description,
		}
		if raw.ListedAt != "" {
			if t, err := time.Parse(time.RFC3339, raw.ListedAt); err == nil {
				listing.DateListed = t
			}
		}
		listings = append(listings, listing)
	}
	return listings, nil
}
