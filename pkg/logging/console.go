package logging

import (
	"io"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const consoleTimeFormat = "15:04:05.000"

// NewConsoleLogger creates a logger writing human-readable lines to w.
// Colour is enabled only when w is a terminal.
func NewConsoleLogger(w io.Writer, level Level) Logger {
	noColor := true
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      level.slogLevel(),
		TimeFormat: consoleTimeFormat,
		NoColor:    noColor,
	})

	return newHandlerLogger(handler, nil)
}
