// Package telemetry provides a thin structured-logging wrapper around
// zerolog for workbook edit events. It is intentionally minimal; a
// metrics backend can be layered on later without touching call sites.
package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger scoped to one workbook.
type Logger struct {
	logger zerolog.Logger
}

// New returns a Logger writing human-readable output to w at the given
// level. Pass nil for w to use os.Stderr.
func New(w io.Writer, level zerolog.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return Logger{logger: logger}
}

// Discard returns a Logger that drops every event, used by tests and
// library callers that have not configured logging.
func Discard() Logger {
	return Logger{logger: zerolog.Nop()}
}

// CellEdited logs a single-cell contents change.
func (l Logger) CellEdited(sheetName, location, contents string) {
	l.logger.Debug().Str("sheet", sheetName).Str("cell", location).Str("contents", contents).Msg("cell edited")
}

// SheetOp logs a sheet-level structural operation (new/del/rename/move/copy).
func (l Logger) SheetOp(op, sheetName string, err error) {
	evt := l.logger.Info().Str("op", op).Str("sheet", sheetName)
	if err != nil {
		l.logger.Warn().Str("op", op).Str("sheet", sheetName).Err(err).Msg("sheet operation failed")
		return
	}
	evt.Msg("sheet operation")
}

// Recompute logs the size of one recomputation pass.
func (l Logger) Recompute(seedCount, changedCount int) {
	l.logger.Debug().Int("seed", seedCount).Int("changed", changedCount).Msg("recomputation pass")
}
