package row52

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryEncode(t *testing.T) {
	q := query{
		resource: "Vehicles",
		selects:  []string{"Id", "Vin", "Year"},
		filter:   "(contains(tolower(MakeName),'honda'))",
		expand:   []string{"Location", "Images"},
		orderBy:  "DateAdded desc",
		top:      resultCap,
	}

	raw := q.encode("https://api.row52.com")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/v1/Vehicles", parsed.Path)

	v := parsed.Query()
	assert.Equal(t, "Id,Vin,Year", v.Get("$select"))
	assert.Equal(t, "(contains(tolower(MakeName),'honda'))", v.Get("$filter"))
	assert.Equal(t, "Location,Images", v.Get("$expand"))
	assert.Equal(t, "DateAdded desc", v.Get("$orderby"))
	assert.Equal(t, "1000", v.Get("$top"))
}

func TestQueryEncode_OmitsEmptyParameters(t *testing.T) {
	q := query{resource: "Locations", top: 50}

	raw := q.encode("https://api.row52.com")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	v := parsed.Query()
	assert.Len(t, v, 1)
	assert.Equal(t, "50", v.Get("$top"))
}

func TestEscapeODataString(t *testing.T) {
	assert.Equal(t, "o''reilly", escapeODataString("o'reilly"))
	assert.Equal(t, "''''", escapeODataString("''"))
	assert.Equal(t, "honda", escapeODataString("honda"))
}

func TestMakeModelFilter(t *testing.T) {
	assert.Equal(t,
		"(contains(tolower(MakeName),'honda') or contains(tolower(ModelName),'honda'))",
		makeModelFilter("  Honda "))

	// User quotes must not break out of the literal.
	assert.Equal(t,
		"(contains(tolower(MakeName),'o''reilly') or contains(tolower(ModelName),'o''reilly'))",
		makeModelFilter("O'Reilly"))

	assert.Equal(t, "", makeModelFilter("   "))
}
