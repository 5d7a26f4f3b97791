package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Wrote 12 records (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports export and session events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnExportStart(_ context.Context, path string, nodes int) {
	h.logger.Debug("export start", "path", path, "nodes", nodes)
}

func (h logHooks) OnExportComplete(_ context.Context, path string, records int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("export failed", "path", path, "duration", d, "err", err)
		return
	}
	h.logger.Debug("export done", "path", path, "records", records, "duration", d)
}

func (h logHooks) OnSessionOp(_ context.Context, backend, op, id string, d time.Duration, err error) {
	h.logger.Debug("session "+op, "backend", backend, "id", id, "duration", d, "err", err)
}
