package scraper

import "strings"

// Days-on-market operators. The operator is explicit input, never
// inferred from the value.
const (
	DaysOnMarketLess = "less" // at most N days
	DaysOnMarketMore = "more" // at least N days
)

// Criteria are AND-combined lead predicates. Each predicate is
// independent, so application order never changes the result. A nil
// bound leaves that side unconstrained.
type Criteria struct {
	DaysOnMarket   *int
	DaysOnMarketOp string
	PriceMin       *int
	PriceMax       *int
	Keywords       []string // OR-combined
	PropertyType   string
}

// Filter returns the listings matching every supplied criterion.
func Filter(listings []Listing, c Criteria) []Listing {
	out := make([]Listing, 0, len(listings))
	for _, listing := range listings {
		if matches(listing, c) {
			out = append(out, listing)
		}
	}
	return out
}

func matches(l Listing, c Criteria) bool {
	if c.DaysOnMarket != nil {
		switch c.DaysOnMarketOp {
		case DaysOnMarketMore:
			if l.DaysOnMarket < *c.DaysOnMarket {
				return false
			}
		default: // "less" is the default mode
			if l.DaysOnMarket > *c.DaysOnMarket {
				return false
			}
		}
	}

	if c.PriceMin != nil && l.Price < *c.PriceMin {
		return false
	}
	if c.PriceMax != nil && l.Price > *c.PriceMax {
		return false
	}

	if hasAnyKeyword(c.Keywords) && !matchesAnyKeyword(l.Description, c.Keywords) {
		return false
	}

	if c.PropertyType != "" &&
		!strings.Contains(strings.ToLower(l.PropertyType), strings.ToLower(c.PropertyType)) {
		return false
	}

	return true
}

// hasAnyKeyword reports whether at least one keyword is non-empty. A
// list of only empty strings leaves the description unconstrained.
func hasAnyKeyword(keywords []string) bool {
	for _, keyword := range keywords {
		if keyword != "" {
			return true
		}
	}
	return false
}

func matchesAnyKeyword(description string, keywords []string) bool {
	desc := strings.ToLower(description)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(desc, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
