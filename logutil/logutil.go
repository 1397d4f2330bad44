package logutil

import (
	"io"
	"log/slog"
	"path/filepath"
)

// LevelTrace sits below Debug for per-buffer scheduling detail.
const LevelTrace slog.Level = -8

// NewLogger builds the text logger used by the strata tools: trimmed
// source paths and a named TRACE level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if attr.Value.Any().(slog.Level) == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}
