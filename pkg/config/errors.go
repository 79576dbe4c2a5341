package config

import "errors"

// Configuration-related error definitions using sentinel errors pattern
var (
	// Generic errors
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidFormat  = errors.New("invalid configuration file format")

	// Configuration validation errors
	ErrMissingRequired = errors.New("missing required configuration item")
	ErrInvalidValue    = errors.New("invalid configuration value")

	// Section errors
	ErrTargetConfig   = errors.New("target configuration error")
	ErrMonitorConfig  = errors.New("monitor configuration error")
	ErrLoginConfig    = errors.New("login configuration error")
	ErrTelegramConfig = errors.New("Telegram notification configuration error")
	ErrWeComConfig    = errors.New("WeCom notification configuration error")
	ErrServerConfig   = errors.New("server configuration error")
)
