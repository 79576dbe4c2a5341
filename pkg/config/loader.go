package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// LoadConfig 从指定路径加载配置文件
//
// Values are layered, later wins: defaults, the file, <name>.local.<ext>
// next to it, then environment variables. A missing file yields the
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}
	configPath, err := homedir.Expand(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	config := getDefaultConfig()

	if _, err := decodeFile(configPath, config); err != nil {
		return nil, err
	}
	config.fillMissing()

	localPath := localOverridePath(configPath)
	local := &Config{}
	localFound, err := decodeFile(localPath, local)
	if err != nil {
		return nil, err
	}
	if localFound {
		if err := mergo.Merge(config, local, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", localPath, err)
		}
	}

	if err := mergeEnvVars(config); err != nil {
		return nil, err
	}
	if err := expandPaths(config); err != nil {
		return nil, err
	}
	return config, nil
}

// decodeFile decodes path into out by extension. It reports false when the
// file does not exist.
func decodeFile(path string, out *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".json":
		if err := json.Unmarshal(data, out); err != nil {
			return false, fmt.Errorf("%w: JSON parsing failed: %v", ErrInvalidFormat, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return false, fmt.Errorf("%w: YAML parsing failed: %v", ErrInvalidFormat, err)
		}
	default:
		return false, fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}
	return true, nil
}

func localOverridePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 确保目录存在
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	ext := filepath.Ext(configPath)
	var data []byte
	var err error

	switch ext {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		return fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	if err != nil {
		return fmt.Errorf("config serialization failed: %w", err)
	}

	// Credentials may be inside.
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getDefaultConfigPath 获取默认配置文件路径
func getDefaultConfigPath() string {
	// 优先级：当前目录 > 用户配置目录 > 系统配置目录
	paths := []string{
		"./config.yaml",
		"./config.json",
	}

	if homeDir, err := homedir.Dir(); err == nil {
		paths = append(paths,
			filepath.Join(homeDir, ".deckwatch", "config.yaml"),
			filepath.Join(homeDir, ".deckwatch", "config.json"),
		)
	}

	paths = append(paths,
		"/etc/deckwatch/config.yaml",
		"/etc/deckwatch/config.json",
	)

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "./config.yaml"
}

// expandPaths resolves a leading ~ in every path setting.
func expandPaths(c *Config) error {
	for _, p := range []*string{
		&c.Session.CookiesFile,
		&c.Browser.UserDataDir,
		&c.Browser.ExecPath,
		&c.Login.DebugDir,
		&c.History.Path,
		&c.App.LogFile,
	} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, *p, err)
		}
		*p = expanded
	}
	return nil
}

// mergeEnvVars 将环境变量合并到配置中
//
// Each section gets an override holding only the variables that are set.
// mergo skips zero values, so booleans are applied explicitly.
func mergeEnvVars(config *Config) error {
	merges := []struct {
		name string
		dst  any
		src  any
	}{
		{"target", config.Target, &TargetConfig{
			URL:          os.Getenv("TARGET_URL"),
			ReadyTimeout: getEnvInt("READY_TIMEOUT", 0),
		}},
		{"browser", config.Browser, &BrowserConfig{
			UserDataDir: getEnvAny("", "USER_DATA_DIR", "PUPPETEER_USER_DATA_DIR"),
			ExecPath:    getEnvAny("", "CHROME_PATH", "CHROME_EXECUTABLE", "CHROME_BIN"),
			UserAgent:   os.Getenv("USER_AGENT"),
			NavTimeout:  getEnvInt("NAV_TIMEOUT", 0),
		}},
		{"session", config.Session, &SessionConfig{
			CookiesFile: os.Getenv("COOKIES_FILE"),
		}},
		{"login", config.Login, &LoginConfig{
			Username:      os.Getenv("STEAM_USERNAME"),
			Password:      os.Getenv("STEAM_PASSWORD"),
			URL:           os.Getenv("LOGIN_URL"),
			Timeout:       getEnvInt("REFRESH_TIMEOUT_MS", 0),
			DoneTimeout:   getEnvInt("REFRESH_DONE_TIMEOUT_MS", 0),
			SignalTimeout: getEnvInt("REFRESH_SIGNAL_TIMEOUT_MS", 0),
			DebugDir:      os.Getenv("DEBUG_DIR"),
		}},
		{"monitor", config.Monitor, &MonitorConfig{
			IntervalMinutes:      getEnvInt("INTERVAL_MINUTES", 0),
			AlertThrottleMinutes: getEnvInt("ALERT_THROTTLE_MIN", 0),
		}},
		{"telegram", config.Telegram, &TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:   getEnvAny("", "TELEGRAM_CHAT_ID", "TELEGRAM_ADMIN_ID"),
			Timeout:  getEnvInt("TELEGRAM_TIMEOUT", 0),
			APIBase:  os.Getenv("TELEGRAM_API_BASE"),
		}},
		{"wecom", config.WeCom, &WeComConfig{
			WebhookURL:   os.Getenv("WECOM_WEBHOOK_URL"),
			MentionUsers: parseStringList(os.Getenv("WECOM_MENTION_USERS")),
			Timeout:      getEnvInt("WECOM_TIMEOUT", 0),
		}},
		{"server", config.Server, &ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 0),
			Address:      os.Getenv("SERVER_ADDRESS"),
			AllowOrigins: parseStringList(os.Getenv("SERVER_ALLOW_ORIGINS")),
		}},
		{"history", config.History, &HistoryConfig{
			Path:      os.Getenv("HISTORY_PATH"),
			Retention: getEnvInt("HISTORY_RETENTION", 0),
		}},
		{"app", config.App, &AppConfig{
			LogLevel:    os.Getenv("LOG_LEVEL"),
			LogFile:     os.Getenv("LOG_FILE"),
			Environment: os.Getenv("APP_ENV"),
		}},
	}
	for _, m := range merges {
		if err := mergo.Merge(m.dst, m.src, mergo.WithOverride); err != nil {
			return fmt.Errorf("failed to apply %s environment overrides: %w", m.name, err)
		}
	}

	bools := map[string]*bool{
		"FAIL_IF_NOT_LOGGED":         &config.Target.Strict,
		"HEADLESS":                   &config.Browser.Headless,
		"BROWSER_REUSE":              &config.Browser.Reuse,
		"REFRESH_HEADLESS":           &config.Login.Headless,
		"REFRESH_TRY_HEADLESS_LOGIN": &config.Login.TryHeadlessLogin,
		"DEBUG":                      &config.Login.Debug,
		"EXIT_ZERO_ALWAYS":           &config.Monitor.ExitZeroAlways,
		"STARTUP_NOTICE":             &config.Monitor.StartupNotice,
		"TELEGRAM_ENABLED":           &config.Telegram.Enabled,
		"WECOM_ENABLED":              &config.WeCom.Enabled,
		"WECOM_MARKDOWN":             &config.WeCom.Markdown,
		"SERVER_ENABLED":             &config.Server.Enabled,
		"HISTORY_ENABLED":            &config.History.Enabled,
	}
	for key, field := range bools {
		if v, ok := lookupBool(key); ok {
			*field = v
		}
	}
	return nil
}
