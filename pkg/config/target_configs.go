package config

import "time"

// DefaultTargetURL is the refurbished Steam Deck listing.
const DefaultTargetURL = "https://store.steampowered.com/sale/steamdeckrefurbished/"

// TargetConfig describes the listing page to watch
type TargetConfig struct {
	URL string `json:"url" yaml:"url"`
	// Strict fails a check with not-logged-in when no session is detected.
	Strict       bool `json:"strict" yaml:"strict"`
	ReadyTimeout int  `json:"ready_timeout" yaml:"ready_timeout"` // seconds
}

// BrowserConfig controls the shared browser
type BrowserConfig struct {
	Headless    bool   `json:"headless" yaml:"headless"`
	UserDataDir string `json:"user_data_dir" yaml:"user_data_dir"`
	Reuse       bool   `json:"reuse" yaml:"reuse"`
	ExecPath    string `json:"exec_path" yaml:"exec_path"`
	UserAgent   string `json:"user_agent" yaml:"user_agent"`
	NavTimeout  int    `json:"nav_timeout" yaml:"nav_timeout"` // seconds
}

// SessionConfig locates the persisted cookies
type SessionConfig struct {
	CookiesFile string `json:"cookies_file" yaml:"cookies_file"`
}

// LoginConfig drives automated re-login
type LoginConfig struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	URL      string `json:"url" yaml:"url"`
	// Timeouts are milliseconds, matching REFRESH_*_MS. Timeout bounds the
	// login page load and the wait for its form; DoneTimeout bounds the wait
	// for the account indicator; SignalTimeout bounds the wait for the
	// operator's completion signal.
	Timeout          int    `json:"timeout_ms" yaml:"timeout_ms"`
	DoneTimeout      int    `json:"done_timeout_ms" yaml:"done_timeout_ms"`
	SignalTimeout    int    `json:"signal_timeout_ms" yaml:"signal_timeout_ms"`
	Headless         bool   `json:"headless" yaml:"headless"`
	TryHeadlessLogin bool   `json:"try_headless_login" yaml:"try_headless_login"`
	Debug            bool   `json:"debug" yaml:"debug"`
	DebugDir         string `json:"debug_dir" yaml:"debug_dir"`
}

// MonitorConfig controls the watch loop
type MonitorConfig struct {
	IntervalMinutes      int  `json:"interval_minutes" yaml:"interval_minutes"`
	AlertThrottleMinutes int  `json:"alert_throttle_minutes" yaml:"alert_throttle_minutes"`
	ExitZeroAlways       bool `json:"exit_zero_always" yaml:"exit_zero_always"`
	StartupNotice        bool `json:"startup_notice" yaml:"startup_notice"`
}

// NewTargetConfig creates a target configuration with default values populated from environment variables
func NewTargetConfig() *TargetConfig {
	return &TargetConfig{
		URL:          getEnv("TARGET_URL", DefaultTargetURL),
		Strict:       getEnvBool("FAIL_IF_NOT_LOGGED", false),
		ReadyTimeout: getEnvInt("READY_TIMEOUT", 8),
	}
}

// NewBrowserConfig creates a browser configuration with default values populated from environment variables
func NewBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		Headless:    getEnvBool("HEADLESS", true),
		UserDataDir: getEnvAny("", "USER_DATA_DIR", "PUPPETEER_USER_DATA_DIR"),
		Reuse:       getEnvBool("BROWSER_REUSE", false),
		ExecPath:    getEnvAny("", "CHROME_PATH", "CHROME_EXECUTABLE", "CHROME_BIN"),
		UserAgent:   getEnv("USER_AGENT", ""),
		NavTimeout:  getEnvInt("NAV_TIMEOUT", 30),
	}
}

// NewSessionConfig creates a session configuration with default values populated from environment variables
func NewSessionConfig() *SessionConfig {
	return &SessionConfig{
		CookiesFile: getEnv("COOKIES_FILE", "cookies.json"),
	}
}

// NewLoginConfig creates a login configuration with default values populated from environment variables
func NewLoginConfig() *LoginConfig {
	return &LoginConfig{
		Username:         getEnv("STEAM_USERNAME", ""),
		Password:         getEnv("STEAM_PASSWORD", ""),
		URL:              getEnv("LOGIN_URL", ""),
		Timeout:          getEnvInt("REFRESH_TIMEOUT_MS", 30000),
		DoneTimeout:      getEnvInt("REFRESH_DONE_TIMEOUT_MS", 60000),
		SignalTimeout:    getEnvInt("REFRESH_SIGNAL_TIMEOUT_MS", 300000),
		Headless:         getEnvBool("REFRESH_HEADLESS", false),
		TryHeadlessLogin: getEnvBool("REFRESH_TRY_HEADLESS_LOGIN", false),
		Debug:            getEnvBool("DEBUG", false),
		DebugDir:         getEnv("DEBUG_DIR", "debug"),
	}
}

// NewMonitorConfig creates a monitor configuration with default values populated from environment variables
func NewMonitorConfig() *MonitorConfig {
	return &MonitorConfig{
		IntervalMinutes:      getEnvInt("INTERVAL_MINUTES", 15),
		AlertThrottleMinutes: getEnvInt("ALERT_THROTTLE_MIN", 30),
		ExitZeroAlways:       getEnvBool("EXIT_ZERO_ALWAYS", false),
		StartupNotice:        getEnvBool("STARTUP_NOTICE", true),
	}
}

// Interval returns the check interval.
func (m *MonitorConfig) Interval() time.Duration {
	return time.Duration(m.IntervalMinutes) * time.Minute
}

// AlertThrottle returns the notification throttle window.
func (m *MonitorConfig) AlertThrottle() time.Duration {
	return time.Duration(m.AlertThrottleMinutes) * time.Minute
}

// UITimeout returns the bound on the login page load and form detection.
func (l *LoginConfig) UITimeout() time.Duration {
	return time.Duration(l.Timeout) * time.Millisecond
}

// AccountTimeout returns the wait for the account indicator after submit.
func (l *LoginConfig) AccountTimeout() time.Duration {
	return time.Duration(l.DoneTimeout) * time.Millisecond
}

// ManualWait returns how long an attempt waits for the operator's
// completion signal before giving up.
func (l *LoginConfig) ManualWait() time.Duration {
	return time.Duration(l.SignalTimeout) * time.Millisecond
}

// HasCredentials reports whether both username and password are set.
func (l *LoginConfig) HasCredentials() bool {
	return l.Username != "" && l.Password != ""
}
