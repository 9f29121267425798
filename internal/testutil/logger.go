// Package testutil holds shared helpers for tests.
package testutil

import (
	"io"
	"log/slog"
)

// NewLogger returns a logger that discards all output.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
