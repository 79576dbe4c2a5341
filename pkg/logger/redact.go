package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Masked replaces the value of secret fields.
const Masked = "[redacted]"

var secretKeys = map[string]struct{}{
	"password":    {},
	"bot_token":   {},
	"token":       {},
	"webhook_url": {},
	"cookie":      {},
}

// Redact wraps core so string fields named like credentials are masked
// before encoding.
func Redact(core zapcore.Core) zapcore.Core {
	return redactCore{core}
}

type redactCore struct {
	zapcore.Core
}

func (c redactCore) With(fields []zapcore.Field) zapcore.Core {
	return redactCore{c.Core.With(mask(fields))}
}

func (c redactCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c redactCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(ent, mask(fields))
}

func mask(fields []zapcore.Field) []zapcore.Field {
	var out []zapcore.Field
	for i, f := range fields {
		if f.Type != zapcore.StringType || !isSecret(f.Key) {
			continue
		}
		if out == nil {
			out = append([]zapcore.Field(nil), fields...)
		}
		out[i].String = Masked
	}
	if out == nil {
		return fields
	}
	return out
}

func isSecret(key string) bool {
	_, ok := secretKeys[strings.ToLower(key)]
	return ok
}
