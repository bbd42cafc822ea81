// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli"

	"github.com/gogpu/ggfx/config"
)

// settle is how long a description must stay unchanged before it is
// rendered again. Editors often write a file in several steps.
const settle = 100 * time.Millisecond

// Watch renders a description and renders it again on every change.
func Watch(ctx *cli.Context) error {
	setupLogging(ctx)

	path, err := configArg(ctx)
	if err != nil {
		return err
	}
	sctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return watch(sctx, path, optionsFrom(ctx), ctx.App.Writer)
}

// watch renders path until ctx is done. The parent directory is watched
// rather than the file so that editors replacing the file by rename are
// still seen.
func watch(ctx context.Context, path string, opts runOptions, out io.Writer) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	rerun := func() {
		c, err := config.Load(abs)
		if err != nil {
			logger.Error("ggfx: description rejected", "path", abs, "error", err)
			return
		}
		stats, err := render(ctx, c, opts)
		if err != nil {
			logger.Error("ggfx: render failed", "path", abs, "error", err)
			return
		}
		fmt.Fprintf(out, "rendered %d frame(s)\n", stats.Frames)
	}
	rerun()

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				logger.Debug("ggfx: description changed", "path", abs, "op", ev.Op.String())
				fire = time.After(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("ggfx: watcher error", "error", err)
		case <-fire:
			fire = nil
			rerun()
		}
	}
}
