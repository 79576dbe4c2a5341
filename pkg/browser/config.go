package browser

import "time"

// DefaultUserAgent is a desktop Chrome on Windows, which the store serves the
// full listing markup to.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// LaunchConfig controls how a browser is started and whether it is reused.
type LaunchConfig struct {
	Headless bool
	// Reuse keeps the launched browser for later Acquire calls while it stays
	// connected.
	Reuse bool
	// Stealth injects evasion scripts on every new document.
	Stealth bool
	// ProfileDir is a persistent user data dir. Empty means a throwaway one
	// managed by chromedp.
	ProfileDir string
	// ExecPath overrides executable detection.
	ExecPath  string
	UserAgent string

	LaunchTimeout time.Duration
	NavTimeout    time.Duration
	ActionTimeout time.Duration
	// KeyDelay is the pause between simulated key presses.
	KeyDelay time.Duration
}

func (c LaunchConfig) withDefaults() LaunchConfig {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.LaunchTimeout <= 0 {
		c.LaunchTimeout = 45 * time.Second
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.ActionTimeout <= 0 {
		c.ActionTimeout = 10 * time.Second
	}
	if c.KeyDelay <= 0 {
		c.KeyDelay = 50 * time.Millisecond
	}
	return c
}

// sameBrowser reports whether a running browser launched with c can serve o.
func (c LaunchConfig) sameBrowser(o LaunchConfig) bool {
	return c.Headless == o.Headless &&
		c.Stealth == o.Stealth &&
		c.ProfileDir == o.ProfileDir &&
		c.ExecPath == o.ExecPath
}
