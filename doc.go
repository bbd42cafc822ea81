// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ggfx is a GPU image and video filter pipeline for Go.
//
// # Overview
//
// Frames flow through a directed acyclic graph of filter nodes. Every node
// wraps one shader pass (or, for compound filters, a private graph of passes)
// and produces exactly one 2D image. Graphs start at source nodes, which are
// fed decoded frames, and end at sinks, which hand pixel buffers to a file
// writer, a recorder or a display surface.
//
// # Quick Start
//
//	be := software.New(software.Options{})
//	pool := texture.NewPool(be, texture.Options{})
//	g := pipeline.NewGraph()
//
//	src := pipeline.NewSource("camera")
//	blur := filter.GaussianBlur("blur", 2)
//	out := pipeline.NewSink("out", sink.NewFile("frame.png"))
//
//	_ = g.AddNode(src)
//	_ = g.AddNode(blur)
//	_ = g.AddNode(out)
//	_ = g.Connect(src, 0, blur, 0)
//	_ = g.Connect(blur, 0, out, 0)
//
//	r := pipeline.NewRenderer(g, pool)
//	_ = r.PushFrame("camera", frame)
//	err := r.Drive()
//
// # Architecture
//
// The module is organized into:
//   - ggfx: Frame, Format, error taxonomy, logging
//   - shader: pass sources (WGSL and reference kernels), uniforms, compilation
//   - backend: render target and program execution (software, wgpu)
//   - texture: the pooled render target arena
//   - pipeline: nodes, graph, renderer, compound composer
//   - filter, source, sink: ready-made nodes and collaborators
//   - config, cmd/ggfx: declarative pipelines and the command line tool
//
// # Errors
//
// Every failure wraps one of [ErrResourceExhausted], [ErrShaderCompile],
// [ErrCycleDetected], [ErrArityViolation] or [ErrInvalidState]; match them
// with errors.Is.
//
// # Logging
//
// ggfx is silent by default. Call [SetLogger] to route diagnostics to a
// *slog.Logger.
package ggfx
