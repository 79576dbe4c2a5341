package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateConfig 验证完整的配置
func (c *Config) ValidateConfig() error {
	c.fillMissing()

	if err := c.validateTargetConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrTargetConfig, err)
	}
	if err := c.validateMonitorConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrMonitorConfig, err)
	}
	if err := c.validateLoginConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginConfig, err)
	}
	if err := c.Telegram.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrTelegramConfig, err)
	}
	if err := c.WeCom.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrWeComConfig, err)
	}
	if err := c.validateServerConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrServerConfig, err)
	}
	return nil
}

// Validate is ValidateConfig.
func (c *Config) Validate() error {
	return c.ValidateConfig()
}

func (c *Config) validateTargetConfig() error {
	if c.Target.URL == "" {
		return wrapMissing("url")
	}
	if !isHTTPURL(c.Target.URL) {
		return wrapInvalid("url must be an http(s) URL")
	}
	if c.Target.ReadyTimeout < 0 {
		return wrapInvalid("ready_timeout must not be negative")
	}
	if c.Session.CookiesFile == "" {
		return wrapMissing("session.cookies_file")
	}
	return nil
}

func (c *Config) validateMonitorConfig() error {
	if c.Monitor.IntervalMinutes <= 0 {
		return wrapInvalid("interval_minutes must be positive")
	}
	if c.Monitor.AlertThrottleMinutes < 0 {
		return wrapInvalid("alert_throttle_minutes must not be negative")
	}
	return nil
}

func (c *Config) validateLoginConfig() error {
	l := c.Login
	if (l.Username == "") != (l.Password == "") {
		return wrapMissing("username and password must be set together")
	}
	if l.Timeout < 0 || l.DoneTimeout < 0 || l.SignalTimeout < 0 {
		return wrapInvalid("timeouts must not be negative")
	}
	if l.URL != "" && !isHTTPURL(l.URL) {
		return wrapInvalid("url must be an http(s) URL")
	}
	return nil
}

func (c *Config) validateServerConfig() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return wrapInvalid("port must be within 1-65535")
	}
	return nil
}

func wrapMissing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingRequired, field)
}

func wrapInvalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, msg)
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return isValidValue(scheme, []string{"http", "https"})
}
