// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import "fmt"

// NodeError reports the node a frame failed at.
type NodeError struct {
	Node string
	Err  error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("pipeline: node %q: %v", e.Node, e.Err)
}

// Unwrap returns the underlying error.
func (e *NodeError) Unwrap() error {
	return e.Err
}
