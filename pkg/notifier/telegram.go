package notifier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultTelegramAPI = "https://api.telegram.org"

// ErrTelegramAPI is wrapped by every TelegramError.
var ErrTelegramAPI = errors.New("telegram api error")

// TelegramConfig represents Telegram notification configuration
type TelegramConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	BotToken string `json:"bot_token" yaml:"bot_token"`
	ChatID   string `json:"chat_id" yaml:"chat_id"`
	Timeout  int    `json:"timeout" yaml:"timeout"`
	// APIBase overrides the Bot API endpoint.
	APIBase string `json:"api_base,omitempty" yaml:"api_base,omitempty"`
}

// TelegramError is a Bot API response with ok=false.
type TelegramError struct {
	Method      string
	Code        int
	Description string
}

func (e *TelegramError) Error() string {
	return fmt.Sprintf("telegram %s: %s (code: %d)", e.Method, e.Description, e.Code)
}

func (e *TelegramError) Unwrap() error { return ErrTelegramAPI }

// TelegramResponse represents Telegram API response
type TelegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Result      struct {
		Username string `json:"username,omitempty"`
	} `json:"result"`
}

// TelegramNotifier handles Telegram notifications
type TelegramNotifier struct {
	config *TelegramConfig
	client *resty.Client
	logger *zap.Logger
}

func NewTelegramNotifier(config *TelegramConfig, l *zap.Logger) *TelegramNotifier {
	if l == nil {
		l = zap.NewNop()
	}
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := config.APIBase
	if base == "" {
		base = defaultTelegramAPI
	}
	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/bot%s", base, config.BotToken)).
		SetTimeout(timeout)

	return &TelegramNotifier{config: config, client: client, logger: l.Named("telegram")}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Notify sends the text and then each attachment as a document.
func (t *TelegramNotifier) Notify(ctx context.Context, msg Message) error {
	if err := t.SendMessage(ctx, msg.Text); err != nil {
		return err
	}
	var errs []error
	for _, path := range msg.Attachments {
		if err := t.SendDocument(ctx, path, ""); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendMessage sends a message via Telegram
func (t *TelegramNotifier) SendMessage(ctx context.Context, text string) error {
	if !t.config.Enabled {
		t.logger.Debug("Telegram notifications disabled")
		return nil
	}
	if err := t.ValidateConfig(); err != nil {
		return err
	}

	t.logger.Debug("Sending Telegram message",
		zap.String("chat_id", t.config.ChatID),
		zap.String("text", preview(text, 100)))

	req := t.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"chat_id":                  t.config.ChatID,
			"text":                     text,
			"disable_web_page_preview": true,
		})
	return t.call(req, "sendMessage")
}

// SendDocument uploads a local file to the chat.
func (t *TelegramNotifier) SendDocument(ctx context.Context, path, caption string) error {
	if !t.config.Enabled {
		return nil
	}
	if err := t.ValidateConfig(); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("attachment %s: %w", path, err)
	}

	req := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": t.config.ChatID,
			"caption": caption,
		}).
		SetFile("document", path)
	if err := t.call(req, "sendDocument"); err != nil {
		return err
	}
	t.logger.Debug("Telegram document sent", zap.String("file", filepath.Base(path)))
	return nil
}

// TestConnection checks the bot token with getMe.
func (t *TelegramNotifier) TestConnection(ctx context.Context) error {
	if !t.config.Enabled {
		return fmt.Errorf("telegram notifications are disabled")
	}
	if t.config.BotToken == "" {
		return fmt.Errorf("telegram bot token is required when enabled")
	}
	var out TelegramResponse
	res, err := t.client.R().SetContext(ctx).ForceContentType("application/json").
		SetResult(&out).SetError(&out).Get("/getMe")
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	if !out.OK {
		return &TelegramError{Method: "getMe", Code: res.StatusCode(), Description: out.Description}
	}
	t.logger.Info("Telegram bot reachable", zap.String("bot", out.Result.Username))
	return nil
}

func (t *TelegramNotifier) call(req *resty.Request, method string) error {
	var out TelegramResponse
	res, err := req.ForceContentType("application/json").
		SetResult(&out).SetError(&out).Post("/" + method)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	if !out.OK {
		code := out.ErrorCode
		if code == 0 {
			code = res.StatusCode()
		}
		return &TelegramError{Method: method, Code: code, Description: out.Description}
	}
	return nil
}

// preview returns at most n runes of s.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ValidateConfig validates Telegram configuration
func (t *TelegramNotifier) ValidateConfig() error {
	if !t.config.Enabled {
		return nil
	}
	if t.config.BotToken == "" {
		return fmt.Errorf("telegram bot token is required when enabled")
	}
	if t.config.ChatID == "" {
		return fmt.Errorf("telegram chat ID is required when enabled")
	}
	return nil
}
