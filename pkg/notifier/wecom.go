package notifier

import (
	"context"
	"path/filepath"
	"strings"

	"deckwatch/pkg/wechat"
)

// WeComNotifier delivers messages to a WeCom group robot. The webhook cannot
// carry files, so attachments are listed by name.
type WeComNotifier struct {
	client *wechat.Client
}

func NewWeComNotifier(c *wechat.Client) *WeComNotifier {
	return &WeComNotifier{client: c}
}

func (w *WeComNotifier) Name() string { return "wecom" }

func (w *WeComNotifier) Notify(ctx context.Context, msg Message) error {
	text := msg.Text
	if len(msg.Attachments) > 0 {
		names := make([]string, len(msg.Attachments))
		for i, p := range msg.Attachments {
			names[i] = filepath.Base(p)
		}
		text += "\n\nAdjuntos: " + strings.Join(names, ", ")
	}
	return w.client.Send(ctx, text)
}
