package pickyourpart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSetCookies_ExpiresCommaIsNotABoundary(t *testing.T) {
	combined := "session=abc123; Path=/; Expires=Wed, 21-Oct-25 07:28:00 GMT, token=xyz; HttpOnly"

	cookies := splitSetCookies(combined)

	assert.Equal(t, []string{
		"session=abc123; Path=/; Expires=Wed, 21-Oct-25 07:28:00 GMT",
		"token=xyz; HttpOnly",
	}, cookies)
}

func TestSplitSetCookies_SingleCookie(t *testing.T) {
	cookies := splitSetCookies("session=abc123; Path=/")
	assert.Equal(t, []string{"session=abc123; Path=/"}, cookies)
}

func TestSplitSetCookies_Empty(t *testing.T) {
	assert.Nil(t, splitSetCookies(""))
}

func TestJoinCookieHeader_KeepsOnlyNameValuePairs(t *testing.T) {
	header := joinCookieHeader([]string{
		"session=abc123; Path=/; Expires=Wed, 21-Oct-25 07:28:00 GMT, token=xyz; HttpOnly",
		"pref=dark; Secure",
	})

	assert.Equal(t, "session=abc123; token=xyz; pref=dark", header)
}

func TestJoinCookieHeader_SkipsMalformedEntries(t *testing.T) {
	header := joinCookieHeader([]string{"noequalsign", "good=1"})
	assert.Equal(t, "good=1", header)
}

func TestJoinCookieHeader_Empty(t *testing.T) {
	assert.Equal(t, "", joinCookieHeader(nil))
}
