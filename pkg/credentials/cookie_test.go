package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAuthenticated(t *testing.T) {
	tests := []struct {
		name string
		set  CookieSet
		want bool
	}{
		{"empty", CookieSet{}, false},
		{"nil", nil, false},
		{"secure session cookie", CookieSet{{Name: "steamLoginSecure", Value: "76561198000000000%7C%7Ctoken"}}, true},
		{"legacy cookie with empty value", CookieSet{{Name: "steamLogin", Value: ""}}, true},
		{"case insensitive", CookieSet{{Name: "STEAMLOGINSECURE"}}, true},
		{"only unrelated cookies", CookieSet{{Name: "sessionid", Value: "steamLoginSecure"}, {Name: "browserid"}}, false},
		{"mixed", CookieSet{{Name: "browserid"}, {Name: "steamLoginSecure"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthenticated(tt.set))
		})
	}
}

func TestIsAuthenticatedIgnoresValues(t *testing.T) {
	values := []string{"", "deleted", "0", "garbage", "steamLogin"}
	for _, v := range values {
		assert.True(t, IsAuthenticated(CookieSet{{Name: "steamLoginSecure", Value: v}}), v)
		assert.False(t, IsAuthenticated(CookieSet{{Name: "sessionid", Value: v}}), v)
	}
}

func TestExpiresFromFloat(t *testing.T) {
	assert.Nil(t, ExpiresFromFloat(-1, true))
	assert.Nil(t, ExpiresFromFloat(0, false))
	assert.Nil(t, ExpiresFromFloat(12.5, false))
	assert.Equal(t, int64(12), *ExpiresFromFloat(12.5, true))
	assert.Equal(t, int64(1767225600), *ExpiresFromFloat(1767225600, false))
}

func TestRootURL(t *testing.T) {
	assert.Equal(t, "", CookieSet{}.RootURL())
	assert.Equal(t, "https://steampowered.com/", CookieSet{{Domain: ".steampowered.com"}}.RootURL())
	assert.Equal(t, "https://store.steampowered.com/", CookieSet{{Domain: ""}, {Domain: "store.steampowered.com"}}.RootURL())
}
