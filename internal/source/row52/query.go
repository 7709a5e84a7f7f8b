package row52

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// resultCap bounds any single OData query.
const resultCap = 1000

// query builds an OData request URL piecewise so user input never reaches
// the filter expression unescaped.
type query struct {
	resource string
	selects  []string
	filter   string
	expand   []string
	orderBy  string
	top      int
}

func (q query) encode(base string) string {
	v := url.Values{}
	if len(q.selects) > 0 {
		v.Set("$select", strings.Join(q.selects, ","))
	}
	if q.filter != "" {
		v.Set("$filter", q.filter)
	}
	if len(q.expand) > 0 {
		v.Set("$expand", strings.Join(q.expand, ","))
	}
	if q.orderBy != "" {
		v.Set("$orderby", q.orderBy)
	}
	if q.top > 0 {
		v.Set("$top", strconv.Itoa(q.top))
	}
	return fmt.Sprintf("%s/v1/%s?%s", base, q.resource, v.Encode())
}

// escapeODataString doubles single quotes, the only literal escape OData
// string literals need. Everything else is inert inside quotes.
func escapeODataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// makeModelFilter matches the free-text query case-insensitively against
// make and model names.
func makeModelFilter(q string) string {
	q = escapeODataString(strings.ToLower(strings.TrimSpace(q)))
	if q == "" {
		return ""
	}
	return fmt.Sprintf(
		"(contains(tolower(MakeName),'%s') or contains(tolower(ModelName),'%s'))",
		q, q,
	)
}
