package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts zerolog to Logger. Key-value args become fields.
// A non-string key is rendered with fmt.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

func newZerologWithLevel(w io.Writer, lvl slog.Level) *ZerologLogger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	switch {
	case lvl <= slog.LevelDebug:
		zl = zl.Level(zerolog.DebugLevel)
	case lvl <= slog.LevelInfo:
		zl = zl.Level(zerolog.InfoLevel)
	case lvl <= slog.LevelWarn:
		zl = zl.Level(zerolog.WarnLevel)
	default:
		zl = zl.Level(zerolog.ErrorLevel)
	}
	return NewZerologLogger(zl)
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Debug(), msg, args)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Info(), msg, args)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Warn(), msg, args)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.emit(ctx, z.l.Error(), msg, args)
}

func (z *ZerologLogger) With(args ...any) Logger {
	return &ZerologLogger{l: z.l.With().Fields(pairs(args)).Logger()}
}

func (z *ZerologLogger) emit(ctx context.Context, e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	e.Ctx(ctx).Fields(pairs(withContextAttrs(ctx, args))).Msg(msg)
}

// pairs turns slog-style key-value args into a zerolog field map. A dangling
// key gets the value "!MISSING", as slog does with "!BADKEY".
func pairs(args []any) map[string]any {
	fields := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 >= len(args) {
			fields[key] = "!MISSING"
			break
		}
		val := args[i+1]
		if err, ok := val.(error); ok {
			val = err.Error()
		}
		fields[key] = val
	}
	return fields
}
