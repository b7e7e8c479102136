package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
)

// NewLogger returns a console logger at the named level. Debug adds source
// locations.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	replacer := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			if source, ok := a.Value.Any().(*slog.Source); ok {
				source.File = filepath.Base(source.File)
			}
		}
		if err, ok := a.Value.Any().(error); ok {
			aErr := tint.Err(err)
			aErr.Key = a.Key
			return aErr
		}
		return a
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:       logLevel,
		TimeFormat:  time.TimeOnly,
		ReplaceAttr: replacer,
		AddSource:   logLevel <= slog.LevelDebug,
		NoColor:     color.NoColor,
	})
	return slog.New(handler), nil
}
