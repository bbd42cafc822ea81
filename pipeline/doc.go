// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pipeline is the render-graph engine.
//
// A Graph holds filter nodes and the edges between them. Frames enter at
// Source nodes, flow as pooled render targets through Pass and Compound
// nodes, and leave at Sink nodes. Edges connect one output of a producer
// to one input slot of a consumer; Connect keeps the graph acyclic.
//
// A Renderer drives the graph one frame at a time:
//
//	g := pipeline.NewGraph()
//	src := pipeline.NewSource("camera")
//	blur, _ := filter.GaussianBlur("blur", 2.0)
//	out := pipeline.NewSink("screen", consumer, ggfx.ChannelOrderRGBA)
//	_ = g.AddNode(src)
//	_ = g.AddNode(blur)
//	_ = g.AddNode(out)
//	_ = g.Connect("camera", 0, "blur", 0)
//	_ = g.Connect("blur", 0, "screen", 0)
//
//	r := pipeline.NewRenderer(g, pool)
//	_ = r.PushFrame("camera", frame)
//	err := r.Drive()
//
// Drive visits nodes in topological order, binds each output to its
// consumers and returns every intermediate target to the pool as soon as
// its last consumer has rendered. A frame either reaches every sink or,
// on the first error, none of them.
//
// A Compound node wraps a private graph of passes and renders it as one
// atomic node sharing the outer pool.
//
// Graph and Renderer are meant to be driven from one goroutine, the one
// owning the graphics context. Only Renderer.PushFrame may be called
// concurrently with Drive.
package pipeline
