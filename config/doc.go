// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config describes filter pipelines declaratively.
//
// A description lists nodes by type and the edges between them. It is
// written in YAML or TOML, chosen by file extension:
//
//	backend: software
//	nodes:
//	  - {id: in, type: source, path: ~/frames/*.png}
//	  - {id: blur, type: gaussian, params: {sigma: 2}}
//	  - {id: out, type: file, path: out.png, params: {increment: true}}
//	edges:
//	  - {from: in, to: blur}
//	  - {from: blur, to: out}
//
// Build turns a description into a pipeline.Graph. Node types are looked
// up in a registry that holds every built-in filter, source and sink;
// applications add their own with Register.
package config
