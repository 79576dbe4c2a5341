package credentials

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// SessionCookiePattern matches the names of Steam's login session cookies.
var SessionCookiePattern = regexp.MustCompile(`(?i)steamLoginSecure|steamLogin`)

// Cookie is one persisted browser cookie. Expires is whole seconds since the
// epoch; nil means a session cookie.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Expires  *int64 `json:"expires,omitempty"`
	HTTPOnly bool   `json:"httpOnly"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"sameSite,omitempty"`
}

// CookieSet is an ordered cookie sequence as written to the cookie file.
type CookieSet []Cookie

// UnmarshalJSON accepts the loose shapes found in exported cookie files:
// fractional, negative or string expiry values and missing paths.
func (c *Cookie) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string          `json:"name"`
		Value    string          `json:"value"`
		Domain   string          `json:"domain"`
		Path     string          `json:"path"`
		Expires  json.RawMessage `json:"expires"`
		HTTPOnly bool            `json:"httpOnly"`
		Secure   bool            `json:"secure"`
		SameSite string          `json:"sameSite"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Cookie{
		Name:     raw.Name,
		Value:    raw.Value,
		Domain:   raw.Domain,
		Path:     raw.Path,
		Expires:  parseExpires(raw.Expires),
		HTTPOnly: raw.HTTPOnly,
		Secure:   raw.Secure,
		SameSite: raw.SameSite,
	}
	return nil
}

func parseExpires(raw json.RawMessage) *int64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return ExpiresFromFloat(f, false)
}

// ExpiresFromFloat converts an epoch-seconds value to the stored form.
// Non-positive values are session cookies. With floor false a fractional value
// is rejected as invalid; with floor true (live CDP timestamps) it is truncated.
func ExpiresFromFloat(f float64, floor bool) *int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return nil
	}
	if f != math.Trunc(f) {
		if !floor {
			return nil
		}
		f = math.Floor(f)
		if f <= 0 {
			return nil
		}
	}
	v := int64(f)
	return &v
}

// Normalize applies the stored-cookie invariants in place and returns the set.
func (s CookieSet) Normalize() CookieSet {
	for i := range s {
		if s[i].Path == "" {
			s[i].Path = "/"
		}
		if s[i].Expires != nil && *s[i].Expires <= 0 {
			s[i].Expires = nil
		}
		switch strings.ToLower(s[i].SameSite) {
		case "strict":
			s[i].SameSite = "Strict"
		case "lax":
			s[i].SameSite = "Lax"
		case "none", "no_restriction":
			s[i].SameSite = "None"
		default:
			s[i].SameSite = ""
		}
	}
	return s
}

// IsAuthenticated reports whether any cookie name looks like a login session
// cookie. Values are not inspected.
func IsAuthenticated(set CookieSet) bool {
	for _, c := range set {
		if SessionCookiePattern.MatchString(c.Name) {
			return true
		}
	}
	return false
}

// RootURL is the https root of the first cookie's domain, used to prime the
// browser before cookies are applied. Empty when the set has no domain.
func (s CookieSet) RootURL() string {
	for _, c := range s {
		if d := strings.TrimPrefix(c.Domain, "."); d != "" {
			return "https://" + d + "/"
		}
	}
	return ""
}
