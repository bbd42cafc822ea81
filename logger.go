// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggfx

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for ggfx and all its sub-packages.
// By default, ggfx produces no log output.
//
// Log levels used by ggfx:
//   - [slog.LevelDebug]: per-frame schedule, pool checkouts, pass timings
//   - [slog.LevelInfo]: lifecycle events (backend initialized, graph rebuilt)
//   - [slog.LevelWarn]: non-fatal issues (sink commit failed, targets evicted)
//
// Pass nil to restore the default silent behavior.
//
// Example:
//
//	ggfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by ggfx.
// Sub-packages call this to share one logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
