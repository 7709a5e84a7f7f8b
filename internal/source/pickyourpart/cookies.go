package pickyourpart

import (
	"regexp"
	"strings"
)

// cookieBoundary matches a comma that starts a new cookie pair inside a
// combined Set-Cookie value. A comma inside an attribute value, such as
// "Expires=Wed, 21-Oct-25 07:28:00 GMT", is not followed by "name=" and is
// left alone.
var cookieBoundary = regexp.MustCompile(`,\s*([A-Za-z0-9!#$%&'*+\-.^_` + "`" + `|~]+=)`)

// splitSetCookies breaks a combined Set-Cookie header into individual cookie
// strings, splitting only on commas that introduce a new name=value pair.
func splitSetCookies(combined string) []string {
	if combined == "" {
		return nil
	}
	marked := cookieBoundary.ReplaceAllString(combined, "\x00$1")
	parts := strings.Split(marked, "\x00")
	cookies := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimSuffix(p, ","))
		if p != "" {
			cookies = append(cookies, p)
		}
	}
	return cookies
}

// joinCookieHeader rebuilds a request Cookie header from Set-Cookie response
// values. Only the leading name=value of each cookie survives; attributes
// like Path and Expires are response metadata, not request state.
func joinCookieHeader(setCookies []string) string {
	var pairs []string
	for _, raw := range setCookies {
		for _, c := range splitSetCookies(raw) {
			pair := c
			if i := strings.Index(c, ";"); i >= 0 {
				pair = c[:i]
			}
			pair = strings.TrimSpace(pair)
			if pair != "" && strings.Contains(pair, "=") {
				pairs = append(pairs, pair)
			}
		}
	}
	return strings.Join(pairs, "; ")
}
