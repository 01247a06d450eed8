package utils

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"
)

// PropertyDetails is the third-party property data attached to a lead
// when enrichment succeeds
type PropertyDetails struct {
	EstimatedValue int     `json:"estimated_value"`
	LastSalePrice  int     `json:"last_sale_price"`
	LastSaleDate   string  `json:"last_sale_date"`
	YearBuilt      int     `json:"year_built"`
	SquareFeet     int     `json:"square_feet"`
	Bedrooms       int     `json:"bedrooms"`
	Bathrooms      float64 `json:"bathrooms"`
	LotSize        int     `json:"lot_size"`
	OwnerName      string  `json:"owner_name"`
	Zoning         string  `json:"zoning"`
}

// Enricher fetches property details from the enrichment provider.
// Results are cached by normalized address and concurrent lookups for
// the same address are coalesced through singleflight.
type Enricher struct {
	client   *fasthttp.Client
	cache    Cache
	group    singleflight.Group
	baseURL  string
	apiKey   string
	cacheTTL time.Duration
	logger   *logrus.Logger
}

func NewEnricher(baseURL, apiKey string, cacheTTL time.Duration, cache Cache, logger *logrus.Logger) *Enricher {
	return &Enricher{
		client: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		cache:    cache,
		baseURL:  baseURL,
		apiKey:   apiKey,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// FetchDetails looks up property details for an address. Callers treat
// any error as "save without enrichment", never as a blocking failure.
func (e *Enricher) FetchDetails(address string) (*PropertyDetails, error) {
	key := "enrich:" + NormalizeAddress(address)

	if raw, ok := e.cache.Get(key); ok {
		var details PropertyDetails
		if err := json.Unmarshal(raw, &details); err == nil {
			return &details, nil
		}
		e.cache.Delete(key)
	}

	result, err, _ := e.group.Do(key, func() (interface{}, error) {
		details, err := e.fetch(address)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(details); err == nil {
			e.cache.Set(key, raw, e.cacheTTL)
		}
		return details, nil
	})
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"address": address,
			"error":   err.Error(),
		}).Warn("property enrichment failed")
		return nil, err
	}

	return result.(*PropertyDetails), nil
}

func (e *Enricher) fetch(address string) (*PropertyDetails, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/v1/properties?address=%s", e.baseURL, url.QueryEscape(address)))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if e.apiKey != "" {
		req.Header.Set("X-Api-Key", e.apiKey)
	}

	if err := e.client.DoTimeout(req, resp, 10*time.Second); err != nil {
		return nil, fmt.Errorf("enrichment request failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("enrichment provider returned status %d", resp.StatusCode())
	}

	var details PropertyDetails
	if err := json.Unmarshal(resp.Body(), &details); err != nil {
		return nil, fmt.Errorf("failed to decode enrichment response: %w", err)
	}
	return &details, nil
}
