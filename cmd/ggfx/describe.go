// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/backend"
	"github.com/gogpu/ggfx/config"
	"github.com/gogpu/ggfx/pipeline"
)

// Describe prints the nodes of a description in render order.
func Describe(ctx *cli.Context) error {
	setupLogging(ctx)

	path, err := configArg(ctx)
	if err != nil {
		return err
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	p, err := c.Build()
	if err != nil {
		return err
	}
	defer p.Close()
	return describe(ctx.App.Writer, p)
}

func describe(w io.Writer, p *config.Pipeline) error {
	order, err := p.Graph.TopologicalOrder()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Node", "Type", "Inputs", "Size", "Format", "File"})
	for _, n := range order {
		size, format := "-", "-"
		if a, ok := n.(interface {
			Policy() pipeline.SizePolicy
			Format() ggfx.Format
		}); ok {
			size = a.Policy().String()
			format = a.Format().String()
		}
		table.Append([]string{
			n.ID(),
			p.Types[n.ID()],
			producers(p.Graph, n.ID()),
			size,
			format,
			p.Inputs[n.ID()],
		})
	}
	table.SetFooter([]string{"", "", "", "", "NODES", fmt.Sprintf("%d", len(order))})
	table.Render()
	return nil
}

// producers lists the producers of id as slot=from:output.
func producers(g *pipeline.Graph, id string) string {
	edges := g.Producers(id)
	if len(edges) == 0 {
		return "-"
	}
	names := make([]string, len(edges))
	for i, e := range edges {
		names[i] = fmt.Sprintf("%d=%s:%d", e.Input, e.From, e.Output)
	}
	return strings.Join(names, " ")
}

// Backends lists the registered backends and marks the default one.
// With --probe every backend is initialized to report whether it works.
func Backends(ctx *cli.Context) error {
	setupLogging(ctx)

	def := ""
	if b := backend.Default(); b != nil {
		def = b.Name()
	}

	probe := ctx.Bool("probe")
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	header := []string{"Backend", "Default"}
	if probe {
		header = append(header, "Status")
	}
	table.SetHeader(header)
	for _, name := range backend.Available() {
		row := []string{name, ""}
		if name == def {
			row[1] = "*"
		}
		if probe {
			row = append(row, probeBackend(name))
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

func probeBackend(name string) string {
	b, err := backend.InitNamed(name)
	if err != nil {
		return err.Error()
	}
	b.Close()
	return "ok"
}
