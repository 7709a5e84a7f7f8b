package search

import "strings"

// colorAliases maps upstream abbreviations and spelling variants to one
// normalized key, so "BLK" and "Black" compare equal.
var colorAliases = map[string]string{
	"blk":    "black",
	"wht":    "white",
	"whi":    "white",
	"gry":    "gray",
	"grey":   "gray",
	"sil":    "silver",
	"slv":    "silver",
	"blu":    "blue",
	"grn":    "green",
	"yel":    "yellow",
	"ylw":    "yellow",
	"org":    "orange",
	"brn":    "brown",
	"bro":    "brown",
	"gld":    "gold",
	"mar":    "maroon",
	"bge":    "beige",
	"bei":    "beige",
	"pur":    "purple",
	"prp":    "purple",
	"burg":   "burgundy",
	"cha":    "charcoal",
	"cream":  "beige",
	"turq":   "teal",
}

// CanonicalColor lowercases a color name and resolves known abbreviations.
func CanonicalColor(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if canon, ok := colorAliases[c]; ok {
		return canon
	}
	return c
}
