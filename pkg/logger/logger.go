package logger

import (
	"io"
	"log/slog"
	"os"
)

var Log = slog.New(slog.NewTextHandler(io.Discard, nil))

// Init installs the process logger. Production writes JSON at info level,
// everything else writes text at debug level.
func Init(production bool) {
	Log = New(os.Stdout, production)
	slog.SetDefault(Log)
}

func New(w io.Writer, production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
