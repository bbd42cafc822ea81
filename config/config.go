// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/backend/software"
	"github.com/gogpu/ggfx/texture"
)

// Errors returned while loading and checking descriptions.
var (
	// ErrSyntax is returned for unsupported file types and malformed
	// documents.
	ErrSyntax = errors.New("config: syntax error")

	// ErrInvalid is returned for descriptions that parse but cannot be
	// built: missing or duplicate IDs, unknown types, dangling edges and
	// bad parameters.
	ErrInvalid = errors.New("config: invalid pipeline")
)

// Syntax names a description language.
type Syntax string

// Supported description languages.
const (
	YAML Syntax = "yaml"
	TOML Syntax = "toml"
)

// SyntaxFor picks the language from a file extension.
func SyntaxFor(path string) (Syntax, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%w: %q is neither .yaml, .yml nor .toml", ErrSyntax, path)
}

// Config is a pipeline description.
type Config struct {
	// Backend names a registered backend; empty picks the default.
	Backend string `yaml:"backend,omitempty" toml:"backend,omitempty"`

	// Workers sets the software backend worker count. Zero uses
	// GOMAXPROCS.
	Workers int `yaml:"workers,omitempty" toml:"workers,omitempty"`

	// BudgetBytes caps the texture pool. Zero is unlimited.
	BudgetBytes int64 `yaml:"budget_bytes,omitempty" toml:"budget_bytes,omitempty"`

	Nodes []NodeSpec `yaml:"nodes" toml:"nodes"`
	Edges []EdgeSpec `yaml:"edges" toml:"edges"`

	// dir resolves relative paths; set by Load.
	dir string
}

// NodeSpec describes one node.
type NodeSpec struct {
	ID   string `yaml:"id" toml:"id"`
	Type string `yaml:"type" toml:"type"`

	// Size fixes the output size as [width, height]. Empty inherits the
	// size of the first input.
	Size []int `yaml:"size,omitempty" toml:"size,omitempty"`

	// Format is the output pixel format: rgba8, bgra8 or r8.
	Format string `yaml:"format,omitempty" toml:"format,omitempty"`

	// Path is the input file or glob of a source, or the output file of a
	// file sink. A leading ~ is expanded.
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`

	// Params holds type-specific settings.
	Params Params `yaml:"params,omitempty" toml:"params,omitempty"`
}

// EdgeSpec connects output From:Output to input To:Input.
type EdgeSpec struct {
	From   string `yaml:"from" toml:"from"`
	Output int    `yaml:"output,omitempty" toml:"output,omitempty"`
	To     string `yaml:"to" toml:"to"`
	Input  int    `yaml:"input,omitempty" toml:"input,omitempty"`
}

// Load reads and checks the description at path. A leading ~ in path is
// expanded, and relative node paths are resolved against the directory
// of the file.
func Load(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	syntax, err := SyntaxFor(expanded)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data, syntax)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", expanded, err)
	}
	c.dir = filepath.Dir(expanded)
	return c, nil
}

// Parse decodes and checks a description. Unknown keys are rejected.
func Parse(data []byte, syntax Syntax) (*Config, error) {
	var c Config
	switch syntax {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
	case TOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown syntax %q", ErrSyntax, syntax)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks node IDs, types and edge endpoints. Arity and cycles
// are checked when the graph is built.
func (c *Config) Validate() error {
	if len(c.Nodes) == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Nodes))
	for i, n := range c.Nodes {
		switch {
		case n.ID == "":
			return fmt.Errorf("%w: node %d has no id", ErrInvalid, i)
		case seen[n.ID]:
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalid, n.ID)
		case !IsRegistered(n.Type):
			return fmt.Errorf("%w: node %q has unknown type %q", ErrInvalid, n.ID, n.Type)
		case len(n.Size) != 0 && (len(n.Size) != 2 || n.Size[0] <= 0 || n.Size[1] <= 0):
			return fmt.Errorf("%w: node %q size %v is not [width, height]", ErrInvalid, n.ID, n.Size)
		}
		seen[n.ID] = true
	}
	for _, e := range c.Edges {
		if !seen[e.From] || !seen[e.To] {
			return fmt.Errorf("%w: edge %s -> %s names an unknown node", ErrInvalid, e.From, e.To)
		}
	}
	if c.Workers < 0 || c.BudgetBytes < 0 {
		return fmt.Errorf("%w: negative workers or budget", ErrInvalid)
	}
	return nil
}

// Marshal encodes the description in the given language.
func (c *Config) Marshal(syntax Syntax) ([]byte, error) {
	switch syntax {
	case YAML:
		return yaml.Marshal(c)
	case TOML:
		return toml.Marshal(c)
	}
	return nil, fmt.Errorf("%w: unknown syntax %q", ErrSyntax, syntax)
}

// OpenBackend creates and initializes the configured backend. The
// software backend gets the configured worker count.
func (c *Config) OpenBackend() (backend.Backend, error) {
	if c.Backend == backend.BackendSoftware {
		b := software.New(software.WithWorkers(c.Workers))
		if err := b.Init(); err != nil {
			return nil, err
		}
		return b, nil
	}
	b, err := backend.InitNamed(c.Backend)
	if err != nil {
		return nil, fmt.Errorf("backend %q: %w", c.Backend, err)
	}
	return b, nil
}

// NewPool creates a texture pool on b with the configured budget.
func (c *Config) NewPool(b backend.Backend) *texture.Pool {
	return texture.New(b, texture.Options{BudgetBytes: c.BudgetBytes})
}

// resolve expands ~ and makes a relative path relative to the directory
// of the description file.
func (c *Config) resolve(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) && c.dir != "" {
		p = filepath.Join(c.dir, p)
	}
	return p, nil
}

// parseFormat parses a node format name, case-insensitively.
func parseFormat(name string) (ggfx.Format, error) {
	return ggfx.ParseFormat(strings.ToUpper(name))
}
