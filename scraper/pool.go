package scraper

import (
	"context"
	"sync"
	"time"

	"dealflow/utils"

	"github.com/sirupsen/logrus"
)

// SearchParams describe one aggregation request across sources
type SearchParams struct {
	City           string
	Sources        []string
	Keywords       []string
	DaysOnMarket   *int
	DaysOnMarketOp string
	PriceMin       *int
	PriceMax       *int
	PropertyType   string
}

// SourceResult is the settled outcome of one source's fetch
type SourceResult struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Err    error  `json:"-"`
	Error  string `json:"error,omitempty"`
}

// Pool fans a search out across listing sources. Each source is fetched
// concurrently behind a bounded retry; a source that exhausts its
// retries is logged and contributes zero leads. The search as a whole
// only fails if the caller's context does.
type Pool struct {
	sources  map[string]Source
	attempts int
	delay    time.Duration
	logger   *logrus.Logger
}

func NewPool(sources []Source, attempts int, delay time.Duration, logger *logrus.Logger) *Pool {
	byName := make(map[string]Source, len(sources))
	for _, src := range sources {
		byName[src.Name()] = src
	}
	return &Pool{
		sources:  byName,
		attempts: attempts,
		delay:    delay,
		logger:   logger,
	}
}

// SourceNames returns the names of the registered sources.
func (p *Pool) SourceNames() []string {
	names := make([]string, 0, len(p.sources))
	for name := range p.sources {
		names = append(names, name)
	}
	return names
}

// Search runs the fan-out and returns the filtered, flattened listings
// plus the per-source outcomes. No ordering is guaranteed between
// sources; results are concatenated as fetches settle. The optional
// progress callback fires once per source as it settles.
func (p *Pool) Search(ctx context.Context, params SearchParams, progress func(SourceResult)) ([]Listing, []SourceResult) {
	requested := params.Sources
	if len(requested) == 0 {
		requested = p.SourceNames()
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		listings []Listing
		results  []SourceResult
	)

	settle := func(res SourceResult, found []Listing) {
		mu.Lock()
		listings = append(listings, found...)
		results = append(results, res)
		mu.Unlock()
		if progress != nil {
			progress(res)
		}
	}

	for _, name := range requested {
		source, ok := p.sources[name]
		if !ok {
			p.logger.WithField("source", name).Warn("unknown listing source requested")
			continue
		}

		wg.Add(1)
		go func(source Source) {
			defer wg.Done()

			var found []Listing
			err := utils.Retry(ctx, p.attempts, p.delay, func() error {
				var fetchErr error
				found, fetchErr = source.Fetch(ctx, params.City, params.Keywords)
				return fetchErr
			})
			if err != nil {
				p.logger.WithFields(logrus.Fields{
					"source":   source.Name(),
					"city":     params.City,
					"attempts": p.attempts,
					"error":    err.Error(),
				}).Warn("listing source failed after retries")
				settle(SourceResult{Source: source.Name(), Err: err, Error: err.Error()}, nil)
				return
			}

			settle(SourceResult{Source: source.Name(), Count: len(found)}, found)
		}(source)
	}

	wg.Wait()

	filtered := Filter(listings, Criteria{
		DaysOnMarket:   params.DaysOnMarket,
		DaysOnMarketOp: params.DaysOnMarketOp,
		PriceMin:       params.PriceMin,
		PriceMax:       params.PriceMax,
		Keywords:       params.Keywords,
		PropertyType:   params.PropertyType,
	})

	return filtered, results
}
