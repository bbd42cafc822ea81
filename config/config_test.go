// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
)

const yamlDoc = `
backend: software
workers: 1
budget_bytes: 1048576
nodes:
  - {id: in, type: source, path: frames/*.png}
  - id: blur
    type: gaussian
    size: [8, 4]
    params: {sigma: 1.5}
  - {id: tone, type: brightness, params: {factor: 2}}
  - {id: out, type: file, path: out.png, params: {increment: true, order: bgra}}
edges:
  - {from: in, to: blur}
  - {from: blur, to: tone}
  - {from: tone, to: out}
`

const tomlDoc = `
backend = "software"
workers = 1
budget_bytes = 1048576

[[nodes]]
id = "in"
type = "source"
path = "frames/*.png"

[[nodes]]
id = "blur"
type = "gaussian"
size = [8, 4]
params = { sigma = 1.5 }

[[nodes]]
id = "tone"
type = "brightness"
params = { factor = 2 }

[[nodes]]
id = "out"
type = "file"
path = "out.png"
params = { increment = true, order = "bgra" }

[[edges]]
from = "in"
to = "blur"

[[edges]]
from = "blur"
to = "tone"

[[edges]]
from = "tone"
to = "out"
`

func TestParseSyntaxesAgree(t *testing.T) {
	for _, tt := range []struct {
		syntax Syntax
		doc    string
	}{{YAML, yamlDoc}, {TOML, tomlDoc}} {
		t.Run(string(tt.syntax), func(t *testing.T) {
			c, err := Parse([]byte(tt.doc), tt.syntax)
			if err != nil {
				t.Fatal(err)
			}
			if c.Backend != "software" || c.Workers != 1 || c.BudgetBytes != 1<<20 {
				t.Errorf("globals = %q %d %d", c.Backend, c.Workers, c.BudgetBytes)
			}
			if len(c.Nodes) != 4 || len(c.Edges) != 3 {
				t.Fatalf("%d nodes, %d edges", len(c.Nodes), len(c.Edges))
			}
			blur := c.Nodes[1]
			if len(blur.Size) != 2 || blur.Size[0] != 8 || blur.Size[1] != 4 {
				t.Errorf("blur size = %v", blur.Size)
			}
			if sigma, err := blur.Params.Float("sigma", 0); err != nil || sigma != 1.5 {
				t.Errorf("sigma = %v, %v", sigma, err)
			}
			if f, err := c.Nodes[2].Params.Float("factor", 0); err != nil || f != 2 {
				t.Errorf("factor = %v, %v", f, err)
			}
			if inc, err := c.Nodes[3].Params.Bool("increment", false); err != nil || !inc {
				t.Errorf("increment = %v, %v", inc, err)
			}
			if e := c.Edges[1]; e.From != "blur" || e.To != "tone" || e.Output != 0 || e.Input != 0 {
				t.Errorf("edge = %+v", e)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		syntax Syntax
		doc    string
		want   error
	}{
		{"empty", YAML, "", ErrInvalid},
		{"malformed yaml", YAML, "nodes: [", ErrSyntax},
		{"malformed toml", TOML, "nodes = ", ErrSyntax},
		{"unknown key", YAML, "colour: red\nnodes: [{id: a, type: source}]", ErrSyntax},
		{"unknown toml key", TOML, "colour = 'red'\n[[nodes]]\nid = 'a'\ntype = 'source'", ErrSyntax},
		{"unknown syntax", Syntax("ini"), "a=1", ErrSyntax},
		{"missing id", YAML, "nodes: [{type: source}]", ErrInvalid},
		{"duplicate id", YAML, "nodes: [{id: a, type: source}, {id: a, type: invert}]", ErrInvalid},
		{"unknown type", YAML, "nodes: [{id: a, type: sharpen}]", ErrInvalid},
		{"bad size", YAML, "nodes: [{id: a, type: source, size: [4]}]", ErrInvalid},
		{"dangling edge", YAML, "nodes: [{id: a, type: source}]\nedges: [{from: a, to: b}]", ErrInvalid},
		{"negative workers", YAML, "workers: -1\nnodes: [{id: a, type: source}]", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc), tt.syntax); !errors.Is(err, tt.want) {
				t.Errorf("Parse = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSyntaxFor(t *testing.T) {
	tests := map[string]Syntax{"a.yaml": YAML, "b.YML": YAML, "c.toml": TOML}
	for path, want := range tests {
		if got, err := SyntaxFor(path); err != nil || got != want {
			t.Errorf("SyntaxFor(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := SyntaxFor("pipeline.json"); !errors.Is(err, ErrSyntax) {
		t.Errorf("SyntaxFor(json) = %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	c, err := Parse([]byte(yamlDoc), YAML)
	if err != nil {
		t.Fatal(err)
	}
	for _, syntax := range []Syntax{YAML, TOML} {
		data, err := c.Marshal(syntax)
		if err != nil {
			t.Fatalf("Marshal(%s) = %v", syntax, err)
		}
		back, err := Parse(data, syntax)
		if err != nil {
			t.Fatalf("Parse(Marshal(%s)) = %v\n%s", syntax, err, data)
		}
		if len(back.Nodes) != len(c.Nodes) || back.Nodes[3].Path != "out.png" {
			t.Errorf("%s round trip lost nodes: %+v", syntax, back.Nodes)
		}
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	dir := filepath.Join(home, "pipelines")
	if err := os.Mkdir(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "p.yaml"), []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load("~/pipelines/p.yaml")
	if err != nil {
		t.Fatal(err)
	}
	p, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if got, want := p.Inputs["in"], filepath.Join(dir, "frames", "*.png"); got != want {
		t.Errorf("source path = %q, want %q", got, want)
	}

	if _, err := Load("~/pipelines/missing.yaml"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) = %v", err)
	}
}

func TestParams(t *testing.T) {
	p := Params{
		"i":    int64(3),
		"f":    2.5,
		"b":    true,
		"s":    "x",
		"list": []any{1, 2.5, int64(3)},
		"bad":  []any{"x"},
	}
	if v, err := p.Int("i", 0); err != nil || v != 3 {
		t.Errorf("Int(i) = %v, %v", v, err)
	}
	if _, err := p.Int("f", 0); !errors.Is(err, ErrInvalid) {
		t.Errorf("Int(f) = %v", err)
	}
	if v, err := p.Float("i", 0); err != nil || v != 3 {
		t.Errorf("Float(i) = %v, %v", v, err)
	}
	if v, err := p.Float("missing", 7); err != nil || v != 7 {
		t.Errorf("Float(missing) = %v, %v", v, err)
	}
	if _, err := p.Float("s", 0); !errors.Is(err, ErrInvalid) {
		t.Errorf("Float(s) = %v", err)
	}
	if v, err := p.Bool("b", false); err != nil || !v {
		t.Errorf("Bool(b) = %v, %v", v, err)
	}
	if v, err := p.Text("s", ""); err != nil || v != "x" {
		t.Errorf("Text(s) = %v, %v", v, err)
	}
	if v, err := p.Floats("list"); err != nil || len(v) != 3 || v[1] != 2.5 {
		t.Errorf("Floats(list) = %v, %v", v, err)
	}
	if _, err := p.Floats("bad"); !errors.Is(err, ErrInvalid) {
		t.Errorf("Floats(bad) = %v", err)
	}
}
