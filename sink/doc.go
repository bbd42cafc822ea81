// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package sink provides consumers for pipeline sink nodes.
//
// A consumer receives a private copy of every committed frame, already in
// the channel order declared on its sink node. All consumers here are safe
// for concurrent use.
package sink
