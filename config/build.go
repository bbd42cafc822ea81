// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"

	"github.com/gogpu/ggfx/pipeline"
)

// Pipeline is a built description.
type Pipeline struct {
	Graph *pipeline.Graph

	// Inputs maps source IDs to their resolved file path or glob. Sources
	// without a path are fed by the application.
	Inputs map[string]string

	// Types maps every node ID to its description type.
	Types map[string]string
}

// Build creates the nodes in description order and connects the edges.
// On error every node created so far is closed.
func (c *Config) Build() (*Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		Graph:  pipeline.NewGraph(),
		Inputs: make(map[string]string),
		Types:  make(map[string]string, len(c.Nodes)),
	}
	for _, spec := range c.Nodes {
		if err := c.addNode(p, spec); err != nil {
			return nil, errors.Join(fmt.Errorf("node %q: %w", spec.ID, err), p.Close())
		}
	}
	for _, e := range c.Edges {
		if err := p.Graph.Connect(e.From, e.Output, e.To, e.Input); err != nil {
			return nil, errors.Join(fmt.Errorf("edge %s:%d -> %s:%d: %w", e.From, e.Output, e.To, e.Input, err), p.Close())
		}
	}
	return p, nil
}

func (c *Config) addNode(p *Pipeline, spec NodeSpec) error {
	factory, ok := lookup(spec.Type)
	if !ok {
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, spec.Type)
	}
	path, err := c.resolve(spec.Path)
	if err != nil {
		return err
	}
	spec.Path = path

	var opts []pipeline.NodeOption
	if len(spec.Size) == 2 {
		opts = append(opts, pipeline.WithSize(spec.Size[0], spec.Size[1]))
	}
	if spec.Format != "" {
		f, err := parseFormat(spec.Format)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithFormat(f))
	}

	n, err := factory(spec, opts)
	if err != nil {
		return err
	}
	if err := p.Graph.AddNode(n); err != nil {
		return errors.Join(err, n.Close())
	}
	p.Types[spec.ID] = spec.Type
	if _, ok := n.(*pipeline.Source); ok && path != "" {
		p.Inputs[spec.ID] = path
	}
	return nil
}

// Sinks returns the sink nodes in insertion order.
func (p *Pipeline) Sinks() []*pipeline.Sink {
	var sinks []*pipeline.Sink
	for _, n := range p.Graph.Nodes() {
		if s, ok := n.(*pipeline.Sink); ok {
			sinks = append(sinks, s)
		}
	}
	return sinks
}

// Consumer returns the consumer of sink id.
func (p *Pipeline) Consumer(id string) (pipeline.Consumer, bool) {
	n, ok := p.Graph.Node(id)
	if !ok {
		return nil, false
	}
	s, ok := n.(*pipeline.Sink)
	if !ok {
		return nil, false
	}
	return s.Consumer(), true
}

// Close closes every node of the graph.
func (p *Pipeline) Close() error {
	return p.Graph.Close()
}
