package scraper

import (
	"testing"

	"dealflow/utils"

	"github.com/stretchr/testify/assert"
)

func testListings() []Listing {
	return []Listing{
		{SourceID: "a", Address: "1 Oak St", Price: 150000, DaysOnMarket: 10, PropertyType: "single_family", Description: "Needs full rehab, motivated seller"},
		{SourceID: "b", Address: "2 Elm Ave", Price: 300000, DaysOnMarket: 95, PropertyType: "multi_family", Description: "Turnkey duplex"},
		{SourceID: "c", Address: "3 Pine Dr", Price: 80000, DaysOnMarket: 200, PropertyType: "single_family", Description: "Estate sale, as-is"},
	}
}

func TestFilter(t *testing.T) {
	t.Run("Empty criteria passes everything through", func(t *testing.T) {
		out := Filter(testListings(), Criteria{})
		assert.Len(t, out, 3)
	})

	t.Run("Days on market less", func(t *testing.T) {
		out := Filter(testListings(), Criteria{
			DaysOnMarket:   utils.Pointer(30),
			DaysOnMarketOp: DaysOnMarketLess,
		})
		assert.Len(t, out, 1)
		assert.Equal(t, "a", out[0].SourceID)
	})

	t.Run("Days on market more", func(t *testing.T) {
		out := Filter(testListings(), Criteria{
			DaysOnMarket:   utils.Pointer(90),
			DaysOnMarketOp: DaysOnMarketMore,
		})
		assert.Len(t, out, 2)
	})

	t.Run("Missing operator defaults to less", func(t *testing.T) {
		out := Filter(testListings(), Criteria{DaysOnMarket: utils.Pointer(30)})
		assert.Len(t, out, 1)
		assert.Equal(t, "a", out[0].SourceID)
	})

	t.Run("Price bounds are inclusive", func(t *testing.T) {
		out := Filter(testListings(), Criteria{
			PriceMin: utils.Pointer(80000),
			PriceMax: utils.Pointer(150000),
		})
		assert.Len(t, out, 2)
	})

	t.Run("Keywords are OR-combined and case-insensitive", func(t *testing.T) {
		out := Filter(testListings(), Criteria{Keywords: []string{"REHAB", "estate"}})
		assert.Len(t, out, 2)
	})

	t.Run("Keyword list of only empty strings is unconstrained", func(t *testing.T) {
		out := Filter(testListings(), Criteria{Keywords: []string{""}})
		assert.Len(t, out, 3)
	})

	t.Run("Empty keyword alongside a real one is ignored", func(t *testing.T) {
		out := Filter(testListings(), Criteria{Keywords: []string{"", "rehab"}})
		assert.Len(t, out, 1)
	})

	t.Run("Property type substring match", func(t *testing.T) {
		out := Filter(testListings(), Criteria{PropertyType: "multi"})
		assert.Len(t, out, 1)
		assert.Equal(t, "b", out[0].SourceID)
	})

	t.Run("Criteria are AND-combined", func(t *testing.T) {
		out := Filter(testListings(), Criteria{
			PriceMax:     utils.Pointer(200000),
			PropertyType: "single_family",
			Keywords:     []string{"rehab"},
		})
		assert.Len(t, out, 1)
		assert.Equal(t, "a", out[0].SourceID)
	})

	t.Run("No listings", func(t *testing.T) {
		out := Filter(nil, Criteria{PriceMin: utils.Pointer(1)})
		assert.Empty(t, out)
	})
}
