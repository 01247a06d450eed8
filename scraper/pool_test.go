package scraper

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	name     string
	listings []Listing
	err      error
	calls    atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, city string, keywords []string) ([]Listing, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestPoolSearch(t *testing.T) {
	t.Run("Aggregates listings across sources", func(t *testing.T) {
		mls := &fakeSource{name: SourceMLS, listings: []Listing{
			{SourceID: "m1", Source: SourceMLS},
			{SourceID: "m2", Source: SourceMLS},
		}}
		fsbo := &fakeSource{name: SourceFSBO, listings: []Listing{
			{SourceID: "f1", Source: SourceFSBO},
		}}
		pool := NewPool([]Source{mls, fsbo}, 3, time.Millisecond, testLogger())

		listings, results := pool.Search(context.Background(), SearchParams{City: "austin"}, nil)

		assert.Len(t, listings, 3)
		assert.Len(t, results, 2)
		for _, res := range results {
			assert.NoError(t, res.Err)
		}
	})

	t.Run("Failed source contributes zero leads without failing the search", func(t *testing.T) {
		ok := &fakeSource{name: SourceMLS, listings: []Listing{
			{SourceID: "m1"}, {SourceID: "m2"},
		}}
		broken := &fakeSource{name: SourceAuction, err: errors.New("upstream 503")}
		pool := NewPool([]Source{ok, broken}, 3, time.Millisecond, testLogger())

		listings, results := pool.Search(context.Background(), SearchParams{City: "austin"}, nil)

		assert.Len(t, listings, 2)
		assert.Len(t, results, 2)

		var failed *SourceResult
		for i := range results {
			if results[i].Source == SourceAuction {
				failed = &results[i]
			}
		}
		assert.NotNil(t, failed)
		assert.Error(t, failed.Err)
		assert.Equal(t, "upstream 503", failed.Error)
	})

	t.Run("Failing source is retried up to the attempt limit", func(t *testing.T) {
		broken := &fakeSource{name: SourceFSBO, err: errors.New("timeout")}
		pool := NewPool([]Source{broken}, 3, time.Millisecond, testLogger())

		pool.Search(context.Background(), SearchParams{City: "austin"}, nil)

		assert.Equal(t, int32(3), broken.calls.Load())
	})

	t.Run("Successful source is fetched once", func(t *testing.T) {
		src := &fakeSource{name: SourceMLS}
		pool := NewPool([]Source{src}, 3, time.Millisecond, testLogger())

		pool.Search(context.Background(), SearchParams{City: "austin"}, nil)

		assert.Equal(t, int32(1), src.calls.Load())
	})

	t.Run("Empty sources means all sources", func(t *testing.T) {
		a := &fakeSource{name: SourceMLS}
		b := &fakeSource{name: SourceWholesale}
		pool := NewPool([]Source{a, b}, 1, time.Millisecond, testLogger())

		_, results := pool.Search(context.Background(), SearchParams{City: "austin"}, nil)

		assert.Len(t, results, 2)
	})

	t.Run("Unknown source is skipped", func(t *testing.T) {
		src := &fakeSource{name: SourceMLS, listings: []Listing{{SourceID: "m1"}}}
		pool := NewPool([]Source{src}, 1, time.Millisecond, testLogger())

		listings, results := pool.Search(context.Background(), SearchParams{
			City:    "austin",
			Sources: []string{SourceMLS, "zillow"},
		}, nil)

		assert.Len(t, listings, 1)
		assert.Len(t, results, 1)
	})

	t.Run("Progress fires once per settled source", func(t *testing.T) {
		a := &fakeSource{name: SourceMLS, listings: []Listing{{SourceID: "m1"}}}
		b := &fakeSource{name: SourceFSBO, err: errors.New("down")}
		pool := NewPool([]Source{a, b}, 1, time.Millisecond, testLogger())

		var settled atomic.Int32
		pool.Search(context.Background(), SearchParams{City: "austin"}, func(SourceResult) {
			settled.Add(1)
		})

		assert.Equal(t, int32(2), settled.Load())
	})

	t.Run("Results are filtered by criteria", func(t *testing.T) {
		src := &fakeSource{name: SourceMLS, listings: []Listing{
			{SourceID: "cheap", Price: 90000},
			{SourceID: "pricey", Price: 900000},
		}}
		pool := NewPool([]Source{src}, 1, time.Millisecond, testLogger())

		maxPrice := 100000
		listings, _ := pool.Search(context.Background(), SearchParams{
			City:     "austin",
			PriceMax: &maxPrice,
		}, nil)

		assert.Len(t, listings, 1)
		assert.Equal(t, "cheap", listings[0].SourceID)
	})
}
