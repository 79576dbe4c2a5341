package config

// ServerConfig represents the control API settings
type ServerConfig struct {
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	Port         int      `json:"port" yaml:"port"`
	Address      string   `json:"address" yaml:"address"`
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
}

// HistoryConfig represents the check history database settings
type HistoryConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Path      string `json:"path" yaml:"path"`
	Retention int    `json:"retention" yaml:"retention"` // runs kept, 0 keeps all
}

// AppConfig represents application configuration settings
type AppConfig struct {
	LogLevel    string `json:"log_level" yaml:"log_level"`
	LogFile     string `json:"log_file" yaml:"log_file"`
	Environment string `json:"environment" yaml:"environment"`
}

// NewServerConfig creates a server configuration with default values populated from environment variables
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Enabled:      getEnvBool("SERVER_ENABLED", false),
		Port:         getEnvInt("SERVER_PORT", 8080),
		Address:      getEnv("SERVER_ADDRESS", "127.0.0.1"),
		AllowOrigins: parseStringList(getEnv("SERVER_ALLOW_ORIGINS", "")),
	}
}

// NewHistoryConfig creates a history configuration with default values populated from environment variables
func NewHistoryConfig() *HistoryConfig {
	path := getEnv("HISTORY_PATH", "")
	return &HistoryConfig{
		Enabled:   getEnvBool("HISTORY_ENABLED", path != ""),
		Path:      getEnv("HISTORY_PATH", "data/history.db"),
		Retention: getEnvInt("HISTORY_RETENTION", 1000),
	}
}

// NewAppConfig creates an application configuration with default values populated from environment variables
func NewAppConfig() *AppConfig {
	return &AppConfig{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		Environment: getEnv("APP_ENV", "development"),
	}
}

// IsProduction reports whether the production logger should be used.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}
