package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client 企业微信群机器人客户端. Sends are single-shot; callers decide about
// retries.
type Client struct {
	webhookURL   string
	client       *resty.Client
	mentionUsers []string
	markdown     bool
	logger       *zap.Logger
}

// Config 客户端配置
type Config struct {
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	WebhookURL   string        `json:"webhook_url" yaml:"webhook_url"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	MentionUsers []string      `json:"mention_users" yaml:"mention_users"`
	// Markdown sends markdown_v2 instead of plain text.
	Markdown bool `json:"markdown" yaml:"markdown"`
}

// NewClient 创建企业微信客户端
func NewClient(config *Config, l *zap.Logger) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Client{
		webhookURL:   config.WebhookURL,
		client:       resty.New().SetTimeout(timeout).SetHeader("Content-Type", "application/json"),
		mentionUsers: config.MentionUsers,
		markdown:     config.Markdown,
		logger:       l.Named("wecom"),
	}
}

// Send posts content in the configured format. Content over the robot's
// limit is truncated.
func (c *Client) Send(ctx context.Context, content string) error {
	if c.markdown {
		return c.SendMarkdown(ctx, content)
	}
	return c.SendText(ctx, content)
}

// SendText 发送文本消息
func (c *Client) SendText(ctx context.Context, content string) error {
	return c.post(ctx, textMessage(content, c.mentionUsers))
}

// SendMarkdown 发送Markdown消息
func (c *Client) SendMarkdown(ctx context.Context, content string) error {
	return c.post(ctx, markdownMessage(content))
}

// TestConnection 测试连接
func (c *Client) TestConnection(ctx context.Context) error {
	return c.SendText(ctx, "deckwatch: prueba de notificación")
}

func (c *Client) post(ctx context.Context, msg *WebhookMessage) error {
	if c.webhookURL == "" {
		return ErrWebhookURLEmpty
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendRequest, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var reply webhookReply
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return fmt.Errorf("%w: %v", ErrUnmarshalResponse, err)
	}
	if reply.ErrCode != 0 {
		return &APIError{Code: reply.ErrCode, Message: reply.ErrMsg}
	}

	c.logger.Debug("WeCom message sent",
		zap.String("msgtype", string(msg.MsgType)),
		zap.Duration("latency", resp.Time()))
	return nil
}
