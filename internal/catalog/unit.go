// Package catalog suggests a unit of measure for a product label, so the
// add-item screen can pre-fill "kg" for Riz without the user touching the
// unit field.
package catalog

import "strings"

// DefaultUnit is used when nothing matches a label.
const DefaultUnit = "pcs"

// SuggestUnit returns the likely unit for the given product label.
// Matching is case-insensitive: exact match first, then substring.
func SuggestUnit(label string) string {
	name := strings.ToLower(strings.TrimSpace(label))
	if name == "" {
		return DefaultUnit
	}

	if unit, ok := exactMatch[name]; ok {
		return unit
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.unit
		}
	}

	return DefaultUnit
}

var exactMatch = map[string]string{
	// Sold by weight
	"riz":            "kg",
	"sucre":          "kg",
	"farine":         "kg",
	"sel":            "kg",
	"tomate":         "kg",
	"tomates":        "kg",
	"oignon":         "kg",
	"oignons":        "kg",
	"pomme de terre": "kg",
	"igname":         "kg",
	"manioc":         "kg",
	"banane plantain": "kg",
	"viande":         "kg",
	"poisson":        "kg",
	"poulet":         "kg",
	"haricot":        "kg",
	"haricots":       "kg",
	"arachide":       "kg",
	"mais":           "kg",
	"mil":            "kg",

	// Sold by volume
	"huile":   "L",
	"lait":    "L",
	"essence": "L",
	"petrole": "L",
	"jus":     "L",

	// Sold by piece
	"pain":    "pcs",
	"savon":   "pcs",
	"oeuf":    "pcs",
	"oeufs":   "pcs",
	"bougie":  "pcs",
	"allumettes": "pcs",
}

// substringMatches is ordered more-specific first.
var substringMatches = []struct {
	keyword string
	unit    string
}{
	{"eau minerale", "pcs"},
	{"huile", "L"},
	{"lait", "L"},
	{"jus", "L"},
	{"riz", "kg"},
	{"farine", "kg"},
	{"sucre", "kg"},
	{"viande", "kg"},
	{"poisson", "kg"},
	{"tomate", "kg"},
	{"savon", "pcs"},
	{"pain", "pcs"},
}
