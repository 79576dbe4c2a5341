package browser

import (
	"os"
	"runtime"

	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
)

// knownBrowsers holds install locations per GOOS, most preferred first.
var knownBrowsers = map[string][]string{
	"darwin": {
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
	},
	"linux": {
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/snap/bin/chromium",
	},
	"windows": {
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
	},
}

func execCandidates() []string {
	paths := knownBrowsers[runtime.GOOS]
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			paths = append([]string{local + `\Google\Chrome\Application\chrome.exe`}, paths...)
		}
	}
	return paths
}

// ResolveExecPath picks the browser executable: the override when it exists,
// then the OS well-known paths, then rod's PATH and cache lookup. An empty
// result lets chromedp fall back to its own search.
func ResolveExecPath(override string) string {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
	}
	for _, p := range execCandidates() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	if p, ok := launcher.LookPath(); ok {
		return p
	}
	return ""
}

// AllocatorOptions builds the exec allocator flags for cfg.
func AllocatorOptions(cfg LaunchConfig) []chromedp.ExecAllocatorOption {
	cfg = cfg.withDefaults()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("excludeSwitches", "enable-automation"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("use-mock-keychain", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1366, 900),
	}

	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.NoSandbox,
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}

	if cfg.Headless {
		opts = append(opts,
			chromedp.Headless,
			chromedp.DisableGPU,
			chromedp.Flag("disable-background-timer-throttling", true),
			chromedp.Flag("disable-renderer-backgrounding", true),
			chromedp.Flag("disable-backgrounding-occluded-windows", true),
		)
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	if cfg.ProfileDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.ProfileDir))
	}

	if path := ResolveExecPath(cfg.ExecPath); path != "" {
		opts = append(opts, chromedp.ExecPath(path))
	}

	return opts
}
