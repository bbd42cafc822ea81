// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/gogpu/ggfx"
)

var logger = slog.Default()

// setupLogging installs a text logger on the app error writer. Warnings
// are always shown; -v adds lifecycle events and -vv per-frame detail.
func setupLogging(ctx *cli.Context) {
	level := slog.LevelWarn
	if ctx.GlobalBool("v") {
		level = slog.LevelInfo
	}
	if ctx.GlobalBool("vv") {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(errWriter(ctx), &slog.HandlerOptions{Level: level}))
	ggfx.SetLogger(logger)
}

func errWriter(ctx *cli.Context) io.Writer {
	if ctx.App.ErrWriter != nil {
		return ctx.App.ErrWriter
	}
	return os.Stderr
}
