package notifier

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Message is one operator notification. Attachments are local file paths
// delivered after the text by channels that support files.
type Message struct {
	Text        string
	Attachments []string
}

// Notifier delivers operator messages to one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// Multi fans a message out to every channel. A failing channel does not stop
// the others; all failures are returned joined.
type Multi struct {
	channels []Notifier
	logger   *zap.Logger
}

func NewMulti(l *zap.Logger, channels ...Notifier) *Multi {
	if l == nil {
		l = zap.NewNop()
	}
	m := &Multi{logger: l.Named("notifier")}
	for _, c := range channels {
		if c != nil {
			m.channels = append(m.channels, c)
		}
	}
	return m
}

func (m *Multi) Name() string { return "multi" }

// Len returns the number of configured channels.
func (m *Multi) Len() int { return len(m.channels) }

func (m *Multi) Notify(ctx context.Context, msg Message) error {
	if len(m.channels) == 0 {
		m.logger.Debug("No notification channels configured, dropping message")
		return nil
	}
	var errs []error
	for _, c := range m.channels {
		if err := c.Notify(ctx, msg); err != nil {
			m.logger.Warn("Notification failed", zap.String("channel", c.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			continue
		}
		m.logger.Debug("Notification sent", zap.String("channel", c.Name()))
	}
	return errors.Join(errs...)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, msg Message) error

func (f Func) Name() string { return "func" }

func (f Func) Notify(ctx context.Context, msg Message) error { return f(ctx, msg) }
