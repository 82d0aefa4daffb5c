// Package logger is the structured logger shared by every ludoteca component.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	customError "github.com/segyhp/ludoteca/pkg/errors"
)

// LevelCritical marks failures that stop a process.
const LevelCritical = slog.Level(12)

type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Critical(message string, args ...any)

	// BusinessError records an operation the library rejected, at warn
	// level, tagged with the error code and kind.
	BusinessError(message string, err error, args ...any)
	// InternalError records a failure of the process itself at error level.
	InternalError(message string, err error, args ...any)

	With(args ...any) Logger
}

var levels = map[string]slog.Level{
	"debug":    slog.LevelDebug,
	"info":     slog.LevelInfo,
	"warn":     slog.LevelWarn,
	"warning":  slog.LevelWarn,
	"error":    slog.LevelError,
	"critical": LevelCritical,
	"fatal":    LevelCritical,
}

type logger struct {
	base *slog.Logger
}

// NewFromConfig builds a logger from the LOG_LEVEL, LOG_FORMAT and ENV values.
func NewFromConfig(output io.Writer, env, level, format string) Logger {
	return New(output, ParseLevel(level, env), format)
}

// New writes to output in text, or JSON when format is "json".
func New(output io.Writer, level slog.Level, format string) Logger {
	options := &slog.HandlerOptions{Level: level, ReplaceAttr: nameCritical}

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return &logger{base: slog.New(slog.NewJSONHandler(output, options))}
	}
	return &logger{base: slog.New(slog.NewTextHandler(output, options))}
}

func NewNop() Logger {
	return &logger{base: slog.New(slog.DiscardHandler)}
}

// ParseLevel maps a level name to its slog level. An empty or unknown name
// means debug in development and info anywhere else.
func ParseLevel(value, env string) slog.Level {
	if level, ok := levels[strings.ToLower(strings.TrimSpace(value))]; ok {
		return level
	}
	if strings.EqualFold(strings.TrimSpace(env), "development") {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func (l *logger) Debug(message string, args ...any) { l.base.Debug(message, args...) }
func (l *logger) Info(message string, args ...any)  { l.base.Info(message, args...) }
func (l *logger) Warn(message string, args ...any)  { l.base.Warn(message, args...) }

func (l *logger) Critical(message string, args ...any) {
	l.base.Log(context.Background(), LevelCritical, message, args...)
}

func (l *logger) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.base.Warn(message, append(errorAttrs(err), args...)...)
}

func (l *logger) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}
	l.base.Error(message, append(errorAttrs(err), args...)...)
}

func (l *logger) With(args ...any) Logger {
	return &logger{base: l.base.With(args...)}
}

func errorAttrs(err error) []any {
	attrs := []any{"err", err}

	var be *customError.BusinessError
	if errors.As(err, &be) {
		attrs = append(attrs, "code", be.Code, "kind", customError.KindOf(err))
	}
	return attrs
}

func nameCritical(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key == slog.LevelKey {
		if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelCritical {
			attr.Value = slog.StringValue("CRITICAL")
		}
	}
	return attr
}
