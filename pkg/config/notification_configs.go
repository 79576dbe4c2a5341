package config

// TelegramConfig Telegram Bot API notification settings
type TelegramConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	BotToken string `json:"bot_token" yaml:"bot_token"`
	ChatID   string `json:"chat_id" yaml:"chat_id"`
	Timeout  int    `json:"timeout" yaml:"timeout"` // seconds
	APIBase  string `json:"api_base,omitempty" yaml:"api_base,omitempty"`
}

// WeComConfig WeCom group robot webhook settings
type WeComConfig struct {
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	WebhookURL   string   `json:"webhook_url" yaml:"webhook_url"`
	MentionUsers []string `json:"mention_users" yaml:"mention_users"`
	Markdown     bool     `json:"markdown" yaml:"markdown"`
	Timeout      int      `json:"timeout" yaml:"timeout"` // seconds
}

// NewTelegramConfig creates a Telegram configuration, enabled when both the
// token and the chat are present in the environment.
func NewTelegramConfig() *TelegramConfig {
	token := getEnv("TELEGRAM_BOT_TOKEN", "")
	chat := getEnvAny("", "TELEGRAM_CHAT_ID", "TELEGRAM_ADMIN_ID")
	return &TelegramConfig{
		Enabled:  getEnvBool("TELEGRAM_ENABLED", token != "" && chat != ""),
		BotToken: token,
		ChatID:   chat,
		Timeout:  getEnvInt("TELEGRAM_TIMEOUT", 10),
		APIBase:  getEnv("TELEGRAM_API_BASE", ""),
	}
}

// NewWeComConfig creates a WeCom configuration with default values populated from environment variables
func NewWeComConfig() *WeComConfig {
	url := getEnv("WECOM_WEBHOOK_URL", "")
	return &WeComConfig{
		Enabled:      getEnvBool("WECOM_ENABLED", url != ""),
		WebhookURL:   url,
		MentionUsers: parseStringList(getEnv("WECOM_MENTION_USERS", "")),
		Markdown:     getEnvBool("WECOM_MARKDOWN", false),
		Timeout:      getEnvInt("WECOM_TIMEOUT", 30),
	}
}

// Validate checks the Telegram configuration
func (tc *TelegramConfig) Validate() error {
	if !tc.Enabled {
		return nil
	}
	if tc.BotToken == "" {
		return wrapMissing("bot_token")
	}
	if tc.ChatID == "" {
		return wrapMissing("chat_id")
	}
	if tc.Timeout < 0 {
		return wrapInvalid("timeout must not be negative")
	}
	return nil
}

// Validate checks the WeCom configuration
func (wc *WeComConfig) Validate() error {
	if !wc.Enabled {
		return nil
	}
	if wc.WebhookURL == "" {
		return wrapMissing("webhook_url")
	}
	if !isHTTPURL(wc.WebhookURL) {
		return wrapInvalid("webhook_url must be an http(s) URL")
	}
	if wc.Timeout < 0 {
		return wrapInvalid("timeout must not be negative")
	}
	return nil
}
