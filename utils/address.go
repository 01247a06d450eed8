package utils

import (
	"strings"
	"unicode"
)

// streetAbbreviations canonicalizes street-type and directional words to
// their short form so "North Main Street" and "N Main St" collide.
var streetAbbreviations = map[string]string{
	"street":    "st",
	"avenue":    "ave",
	"boulevard": "blvd",
	"drive":     "dr",
	"lane":      "ln",
	"road":      "rd",
	"court":     "ct",
	"place":     "pl",
	"circle":    "cir",
	"terrace":   "ter",
	"trail":     "trl",
	"parkway":   "pkwy",
	"highway":   "hwy",
	"square":    "sq",
	"north":     "n",
	"south":     "s",
	"east":      "e",
	"west":      "w",
	"northeast": "ne",
	"northwest": "nw",
	"southeast": "se",
	"southwest": "sw",
}

// unitDesignators and their following token are stripped entirely.
// Dedup is at the building/lot level, not the unit level: two units in
// the same building normalize to the same key. Product decision, keep
// in sync with the CRM dedup behavior before changing.
var unitDesignators = map[string]struct{}{
	"apt":       {},
	"apartment": {},
	"unit":      {},
	"ste":       {},
	"suite":     {},
}

// NormalizeAddress produces the canonical dedup key for a street address.
// Lower-cases, strips punctuation other than commas, collapses whitespace,
// abbreviates street types and directionals, and drops unit designators.
// Idempotent: NormalizeAddress(NormalizeAddress(x)) == NormalizeAddress(x).
func NormalizeAddress(address string) string {
	lower := strings.ToLower(address)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == ',':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	segments := strings.Split(b.String(), ",")
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		tokens := strings.Fields(segment)
		kept := make([]string, 0, len(tokens))
		skipNext := false
		for _, token := range tokens {
			if skipNext {
				skipNext = false
				continue
			}
			if _, ok := unitDesignators[token]; ok {
				skipNext = true
				continue
			}
			if abbr, ok := streetAbbreviations[token]; ok {
				token = abbr
			}
			kept = append(kept, token)
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, " "))
		}
	}

	return strings.Join(out, ", ")
}
