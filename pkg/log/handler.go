package log

import (
	"log/slog"
	"os"
)

// NewHandler returns the text handler all binaries log through.
func NewHandler(opts *slog.HandlerOptions) slog.Handler {
	return slog.NewTextHandler(os.Stdout, opts)
}
