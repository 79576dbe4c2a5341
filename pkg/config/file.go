package config

// Config 主配置结构体
type Config struct {
	Target   *TargetConfig   `json:"target" yaml:"target"`
	Browser  *BrowserConfig  `json:"browser" yaml:"browser"`
	Session  *SessionConfig  `json:"session" yaml:"session"`
	Login    *LoginConfig    `json:"login" yaml:"login"`
	Monitor  *MonitorConfig  `json:"monitor" yaml:"monitor"`
	Telegram *TelegramConfig `json:"telegram" yaml:"telegram"`
	WeCom    *WeComConfig    `json:"wecom" yaml:"wecom"`
	Server   *ServerConfig   `json:"server" yaml:"server"`
	History  *HistoryConfig  `json:"history" yaml:"history"`
	App      *AppConfig      `json:"app" yaml:"app"`
}

// getDefaultConfig 获取默认配置，所有配置项都使用各自的默认值
func getDefaultConfig() *Config {
	return &Config{
		Target:   NewTargetConfig(),
		Browser:  NewBrowserConfig(),
		Session:  NewSessionConfig(),
		Login:    NewLoginConfig(),
		Monitor:  NewMonitorConfig(),
		Telegram: NewTelegramConfig(),
		WeCom:    NewWeComConfig(),
		Server:   NewServerConfig(),
		History:  NewHistoryConfig(),
		App:      NewAppConfig(),
	}
}

// Default returns the configuration built from defaults and the environment.
func Default() *Config {
	cfg := getDefaultConfig()
	_ = expandPaths(cfg)
	return cfg
}

// fillMissing replaces sections a config file set to null.
func (c *Config) fillMissing() {
	d := getDefaultConfig()
	if c.Target == nil {
		c.Target = d.Target
	}
	if c.Browser == nil {
		c.Browser = d.Browser
	}
	if c.Session == nil {
		c.Session = d.Session
	}
	if c.Login == nil {
		c.Login = d.Login
	}
	if c.Monitor == nil {
		c.Monitor = d.Monitor
	}
	if c.Telegram == nil {
		c.Telegram = d.Telegram
	}
	if c.WeCom == nil {
		c.WeCom = d.WeCom
	}
	if c.Server == nil {
		c.Server = d.Server
	}
	if c.History == nil {
		c.History = d.History
	}
	if c.App == nil {
		c.App = d.App
	}
}
