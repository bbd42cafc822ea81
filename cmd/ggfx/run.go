// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/urfave/cli"

	"github.com/gogpu/ggfx/config"
	"github.com/gogpu/ggfx/pipeline"
	"github.com/gogpu/ggfx/source"
)

// runOptions are the frame flags shared by run and watch.
type runOptions struct {
	frames  int
	loop    bool
	backend string
}

func optionsFrom(ctx *cli.Context) runOptions {
	return runOptions{
		frames:  ctx.Int("frames"),
		loop:    ctx.Bool("loop"),
		backend: ctx.String("backend"),
	}
}

// input feeds one source node.
type input struct {
	id  string
	seq *source.Sequence
}

// Run renders the description named by the first argument.
func Run(ctx *cli.Context) error {
	setupLogging(ctx)

	path, err := configArg(ctx)
	if err != nil {
		return err
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}

	sctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := render(sctx, c, optionsFrom(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "rendered %d frame(s) in %s (last)\n", stats.Frames, stats.LastDuration)
	return nil
}

// render builds c and drives frames until the shortest input runs out,
// opts.frames frames are done or ctx is cancelled.
func render(ctx context.Context, c *config.Config, opts runOptions) (stats pipeline.Stats, err error) {
	if opts.backend != "" {
		c.Backend = opts.backend
	}

	b, err := c.OpenBackend()
	if err != nil {
		return stats, err
	}
	defer b.Close()
	logger.Info("ggfx: backend ready", "backend", b.Name())

	pool := c.NewPool(b)
	defer func() {
		logger.Debug("ggfx: pool", "stats", pool.Stats().String())
		err = errors.Join(err, pool.Close())
	}()

	p, err := c.Build()
	if err != nil {
		return stats, err
	}
	defer func() {
		err = errors.Join(err, p.Close())
	}()

	inputs, err := openInputs(p, opts.loop)
	if err != nil {
		return stats, err
	}

	r := pipeline.NewRenderer(p.Graph, pool)
	for i := 0; opts.frames <= 0 || i < opts.frames; i++ {
		if ctx.Err() != nil {
			break
		}
		done, err := push(r, inputs)
		if err != nil {
			return r.Stats(), err
		}
		if done {
			break
		}
		if err := r.Drive(); err != nil {
			return r.Stats(), fmt.Errorf("frame %d: %w", i, err)
		}
		logger.Info("ggfx: frame rendered", "frame", i, "duration", r.Stats().LastDuration)
	}
	return r.Stats(), nil
}

// openInputs opens a sequence for every source node, in graph order.
func openInputs(p *config.Pipeline, loop bool) ([]input, error) {
	var inputs []input
	for _, n := range p.Graph.Nodes() {
		if _, ok := n.(*pipeline.Source); !ok {
			continue
		}
		path, ok := p.Inputs[n.ID()]
		if !ok {
			return nil, fmt.Errorf("source %q has no path", n.ID())
		}
		seq, err := source.Glob(path, loop)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", n.ID(), err)
		}
		logger.Debug("ggfx: input opened", "source", n.ID(), "files", seq.Len())
		inputs = append(inputs, input{id: n.ID(), seq: seq})
	}
	if len(inputs) == 0 {
		return nil, errors.New("graph has no sources")
	}
	return inputs, nil
}

// push schedules the next frame of every input. It reports done when any
// input is exhausted.
func push(r *pipeline.Renderer, inputs []input) (done bool, err error) {
	for _, in := range inputs {
		f, err := in.seq.Next()
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("source %q: %w", in.id, err)
		}
		if err := r.PushFrame(in.id, f); err != nil {
			return false, err
		}
	}
	return false, nil
}

func configArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one description file", ctx.Command.Name)
	}
	return ctx.Args().First(), nil
}
