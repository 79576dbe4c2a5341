package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactMasksSecretFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := zap.New(Redact(core)).With(zap.String("bot_token", "123:abc"))

	l.Info("login", zap.String("username", "gaben"), zap.String("Password", "hunter2"), zap.Int("token", 7))

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, Masked, fields["bot_token"])
	assert.Equal(t, Masked, fields["Password"])
	assert.Equal(t, "gaben", fields["username"])
	// only strings are masked
	assert.EqualValues(t, 7, fields["token"])
}

func TestShortCaller(t *testing.T) {
	got := shortCaller(zapcore.NewEntryCaller(0, "/src/deckwatch/pkg/monitor/loop.go", 116, true))
	assert.Equal(t, "monitor/loop.go:116", strings.TrimRight(got, " "))
	assert.Len(t, got, callerWidth)
}
