package browser

import (
	"errors"
	"strings"
)

var (
	// ErrProfileInUse means another browser process holds the profile
	// directory. Callers retry with a disposable profile.
	ErrProfileInUse = errors.New("browser profile already in use")

	// ErrNavigationTimeout is returned when a page load or bounded wait runs out.
	ErrNavigationTimeout = errors.New("navigation or wait timed out")

	// ErrNotConnected is returned by Tab operations after the browser went away.
	ErrNotConnected = errors.New("browser not connected")

	// ErrElementNotFound means a ref or selector no longer resolves.
	ErrElementNotFound = errors.New("element not found")
)

// profileInUseMarkers are fragments Chrome prints when a profile is locked.
var profileInUseMarkers = []string{
	"ProcessSingleton",
	"SingletonLock",
	"Opening in existing browser session",
	"profile appears to be in use",
}

// IsProfileInUse reports whether a launch error came from profile contention.
func IsProfileInUse(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrProfileInUse) {
		return true
	}
	msg := err.Error()
	for _, m := range profileInUseMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
