package wechat

import "unicode/utf8"

// MessageType is the webhook msgtype.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeMarkdown MessageType = "markdown_v2"
)

// Content limits of the group robot, in bytes.
const (
	MaxTextBytes     = 2048
	MaxMarkdownBytes = 4096
)

// WebhookMessage is the body posted to a group robot webhook.
type WebhookMessage struct {
	MsgType    MessageType  `json:"msgtype"`
	Text       *TextMsg     `json:"text,omitempty"`
	MarkdownV2 *MarkdownMsg `json:"markdown_v2,omitempty"`
}

// TextMsg 文本消息
type TextMsg struct {
	Content       string   `json:"content"`
	MentionedList []string `json:"mentioned_list,omitempty"`
}

// MarkdownMsg Markdown消息
type MarkdownMsg struct {
	Content string `json:"content"`
}

// webhookReply is the robot's JSON reply.
type webhookReply struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func textMessage(content string, mention []string) *WebhookMessage {
	return &WebhookMessage{
		MsgType: MessageTypeText,
		Text:    &TextMsg{Content: truncate(content, MaxTextBytes), MentionedList: mention},
	}
}

func markdownMessage(content string) *WebhookMessage {
	return &WebhookMessage{
		MsgType:    MessageTypeMarkdown,
		MarkdownV2: &MarkdownMsg{Content: truncate(content, MaxMarkdownBytes)},
	}
}

// truncate cuts s to at most max bytes on a rune boundary, marking the cut
// with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	const ellipsis = "…"
	cut := max - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
