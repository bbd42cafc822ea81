// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/ggfx"
)

// Edge connects output Output of node From to input slot Input of node To.
type Edge struct {
	From   string
	Output int
	To     string
	Input  int
}

// String returns "from:out -> to:in".
func (e Edge) String() string {
	return fmt.Sprintf("%s:%d -> %s:%d", e.From, e.Output, e.To, e.Input)
}

// Graph is a directed acyclic graph of filter nodes.
//
// Nodes keep their insertion order, which breaks ties in
// TopologicalOrder. Mutations fail with ggfx.ErrInvalidState while a
// Renderer is driving the graph.
type Graph struct {
	mu      sync.Mutex
	nodes   map[string]Node
	order   []string
	edges   []Edge
	version uint64
	busy    bool
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]Node)}
}

// AddNode inserts n. Node IDs must be unique and non-empty.
func (g *Graph) AddNode(n Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.mutable(); err != nil {
		return err
	}
	if n == nil || n.ID() == "" {
		return fmt.Errorf("%w: node must have an ID", ggfx.ErrInvalidState)
	}
	if _, ok := g.nodes[n.ID()]; ok {
		return fmt.Errorf("%w: duplicate node %q", ggfx.ErrInvalidState, n.ID())
	}
	g.nodes[n.ID()] = n
	g.order = append(g.order, n.ID())
	g.version++
	return nil
}

// RemoveNode deletes the node and every edge touching it. The node is not
// closed; the caller owns it again.
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.mutable(); err != nil {
		return err
	}
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: unknown node %q", ggfx.ErrInvalidState, id)
	}
	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.From != id && e.To != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	g.version++
	return nil
}

// Connect adds an edge from output of producer to input slot of consumer.
//
// It fails with ggfx.ErrArityViolation when either index is out of range
// or the input slot is already fed, and with ggfx.ErrCycleDetected when
// producer is reachable from consumer. The graph is unchanged on error.
func (g *Graph) Connect(producer string, output int, consumer string, input int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.mutable(); err != nil {
		return err
	}
	p, ok := g.nodes[producer]
	if !ok {
		return fmt.Errorf("%w: unknown producer %q", ggfx.ErrInvalidState, producer)
	}
	c, ok := g.nodes[consumer]
	if !ok {
		return fmt.Errorf("%w: unknown consumer %q", ggfx.ErrInvalidState, consumer)
	}
	if output < 0 || output >= p.OutputArity() {
		return fmt.Errorf("%w: %q has %d outputs, got index %d",
			ggfx.ErrArityViolation, producer, p.OutputArity(), output)
	}
	if input < 0 || input >= c.InputArity() {
		return fmt.Errorf("%w: %q has %d inputs, got index %d",
			ggfx.ErrArityViolation, consumer, c.InputArity(), input)
	}
	for _, e := range g.edges {
		if e.To == consumer && e.Input == input {
			return fmt.Errorf("%w: %q input %d is already fed by %q",
				ggfx.ErrArityViolation, consumer, input, e.From)
		}
	}
	if producer == consumer || g.reachable(consumer, producer) {
		return fmt.Errorf("%w: %s:%d -> %s:%d",
			ggfx.ErrCycleDetected, producer, output, consumer, input)
	}

	g.edges = append(g.edges, Edge{From: producer, Output: output, To: consumer, Input: input})
	g.version++
	return nil
}

// Disconnect removes every edge from producer to consumer.
func (g *Graph) Disconnect(producer, consumer string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.mutable(); err != nil {
		return err
	}
	kept := g.edges[:0]
	removed := 0
	for _, e := range g.edges {
		if e.From == producer && e.To == consumer {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	if removed == 0 {
		return fmt.Errorf("%w: no edge %q -> %q", ggfx.ErrInvalidState, producer, consumer)
	}
	g.version++
	return nil
}

// TopologicalOrder returns the nodes so that every producer precedes its
// consumers. Among nodes that are ready at the same time, the one added
// first comes first.
func (g *Graph) TopologicalOrder() ([]Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.topoLocked()
}

func (g *Graph) topoLocked() ([]Node, error) {
	indeg := make(map[string]int, len(g.nodes))
	for _, e := range g.edges {
		indeg[e.To]++
	}
	emitted := make(map[string]bool, len(g.nodes))
	out := make([]Node, 0, len(g.nodes))

	for len(out) < len(g.order) {
		next := ""
		for _, id := range g.order {
			if !emitted[id] && indeg[id] == 0 {
				next = id
				break
			}
		}
		if next == "" {
			return nil, fmt.Errorf("%w: graph has a cycle", ggfx.ErrCycleDetected)
		}
		emitted[next] = true
		out = append(out, g.nodes[next])
		for _, e := range g.edges {
			if e.From == next {
				indeg[e.To]--
			}
		}
	}
	return out, nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// Edges returns a copy of all edges in the order they were connected.
func (g *Graph) Edges() []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Edge(nil), g.edges...)
}

// Consumers returns the outgoing edges of id.
func (g *Graph) Consumers(id string) []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.consumersLocked(id)
}

func (g *Graph) consumersLocked(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Producers returns the incoming edges of id ordered by input slot.
func (g *Graph) Producers(id string) []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.producersLocked(id)
}

func (g *Graph) producersLocked(id string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Input < out[j].Input })
	return out
}

// Version changes whenever a node or edge is added or removed.
func (g *Graph) Version() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.version
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}

// Close closes every node and empties the graph.
func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.mutable(); err != nil {
		return err
	}
	var errs []error
	for _, id := range g.order {
		if err := g.nodes[id].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", id, err))
		}
	}
	g.nodes = make(map[string]Node)
	g.order = nil
	g.edges = nil
	g.version++
	return errors.Join(errs...)
}

// reachable reports whether to can be reached from from.
func (g *Graph) reachable(from, to string) bool {
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		for _, e := range g.edges {
			if e.From == id && !seen[e.To] {
				seen[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}
	return false
}

func (g *Graph) mutable() error {
	if g.busy {
		return fmt.Errorf("%w: graph is being rendered", ggfx.ErrInvalidState)
	}
	return nil
}

// plan is the immutable view of the graph a renderer traverses.
type plan struct {
	version   uint64
	order     []Node
	producers map[string][]Edge
	consumers map[string]int
}

// begin marks the graph busy and returns its current plan, reusing cached
// when the version has not changed.
func (g *Graph) begin(cached *plan) (*plan, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.busy {
		return nil, fmt.Errorf("%w: graph is already being rendered", ggfx.ErrInvalidState)
	}
	if cached == nil || cached.version != g.version {
		order, err := g.topoLocked()
		if err != nil {
			return nil, err
		}
		p := &plan{
			version:   g.version,
			order:     order,
			producers: make(map[string][]Edge, len(order)),
			consumers: make(map[string]int, len(order)),
		}
		for _, n := range order {
			p.producers[n.ID()] = g.producersLocked(n.ID())
			p.consumers[n.ID()] = len(g.consumersLocked(n.ID()))
		}
		cached = p
	}
	g.busy = true
	return cached, nil
}

func (g *Graph) end() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}
