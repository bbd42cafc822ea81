// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command ggfx renders filter graphs described in YAML or TOML files.
//
//	ggfx run graph.yaml
//	ggfx -v watch graph.yaml
//	ggfx describe graph.toml
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	_ "github.com/gogpu/ggfx/backend/software"
	_ "github.com/gogpu/ggfx/backend/wgpu"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ggfx:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	// -v selects verbosity, so the version flag moves to -V.
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version, V",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "ggfx"
	app.Usage = "render image filter graphs"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	frameFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "frames, n",
			Usage: "number of frames to render (0 renders until an input runs out)",
		},
		cli.BoolFlag{
			Name:  "loop",
			Usage: "restart input sequences after their last file",
		},
		cli.StringFlag{
			Name:  "backend, b",
			Usage: "override the backend named in the description",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "render a graph description",
			Description: `
Build the graph, decode every source file (or each file matched by a glob,
in name order) and drive one frame per input file until the shortest input
runs out. File sinks write their output as frames complete.`,
			ArgsUsage: "graph.yaml",
			Flags:     frameFlags,
			Action:    Run,
		},
		{
			Name:  "watch",
			Usage: "render a graph description again every time it changes",
			Description: `
Render the description once, then watch it and render again after every
save. Errors in an edited description are logged and the previous outputs
are kept. Stop with an interrupt.`,
			ArgsUsage: "graph.yaml",
			Flags:     frameFlags,
			Action:    Watch,
		},
		{
			Name:      "describe",
			Usage:     "print the nodes of a graph description in render order",
			ArgsUsage: "graph.yaml",
			Action:    Describe,
		},
		{
			Name:  "backends",
			Usage: "list registered backends",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "probe",
					Usage: "initialize each backend and report its status",
				},
			},
			Action: Backends,
		},
	}
	return app
}
