// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/texture"
)

// Consumer receives finished frames from a sink.
type Consumer interface {
	Consume(f *ggfx.Frame) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(f *ggfx.Frame) error

// Consume calls fn(f).
func (fn ConsumerFunc) Consume(f *ggfx.Frame) error {
	return fn(f)
}

// Sink hands its single input to a Consumer.
//
// Render only reads the input back into a staged copy; the consumer sees
// it when the renderer commits the frame, which happens only after every
// node of the frame rendered successfully.
type Sink struct {
	nodeBase

	consumer Consumer
	order    ggfx.ChannelOrder
	staged   *ggfx.Frame
}

// NewSink creates a sink delivering frames to c in the given channel order.
func NewSink(id string, c Consumer, order ggfx.ChannelOrder) *Sink {
	s := &Sink{consumer: c, order: order}
	s.init(id, 1, nil)
	return s
}

// OutputArity returns 0.
func (s *Sink) OutputArity() int { return 0 }

// ChannelOrder returns the byte order frames are delivered in.
func (s *Sink) ChannelOrder() ggfx.ChannelOrder { return s.order }

// Consumer returns the consumer frames are delivered to.
func (s *Sink) Consumer() Consumer { return s.consumer }

// Render stages a copy of the input in the sink's channel order.
func (s *Sink) Render(rc *RenderContext) (texture.Handle, error) {
	if !s.IsReady() {
		return texture.Handle{}, fmt.Errorf("%w: sink %q has no input", ggfx.ErrInvalidState, s.id)
	}
	t, err := rc.Pool.Target(s.inputs[0])
	if err != nil {
		return texture.Handle{}, err
	}
	f, err := rc.Backend().Download(t)
	if err != nil {
		return texture.Handle{}, err
	}
	if want := s.order.Format(); f.Format != want {
		f = f.Convert(want)
	}
	s.staged = f
	return texture.Handle{}, nil
}

// commit delivers the staged frame.
func (s *Sink) commit() error {
	f := s.staged
	s.staged = nil
	if f == nil {
		return nil
	}
	return s.consumer.Consume(f)
}

func (s *Sink) discard() {
	s.staged = nil
}

// Close drops any staged frame.
func (s *Sink) Close() error {
	s.discard()
	return nil
}
