package domain

import "strings"

// Slugify lowercases a make or model name and hyphenates spaces for use in
// outbound URL paths.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}
