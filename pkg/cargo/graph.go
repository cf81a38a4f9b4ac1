package cargo

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// GraphOptions configures dependency graph rendering.
type GraphOptions struct {
	// Focus restricts the graph to the named crate and every path that
	// reaches it from a workspace member. Empty renders the full graph.
	Focus string
	// Detailed includes version and source information in node labels.
	Detailed bool
}

// ToDOT converts the locked dependency graph to Graphviz DOT format.
// Workspace members are rendered with a highlighted fill so the roots of
// the graph are easy to spot. When opts.Focus names a crate, only that
// crate and its reverse dependency closure up to the members are included.
func ToDOT(ws *Workspace, lock *Lockfile, opts GraphOptions) (string, error) {
	include, err := focusSet(ws, lock, opts.Focus)
	if err != nil {
		return "", err
	}

	members := make(map[string]bool, len(ws.Members))
	for _, m := range ws.Members {
		members[m.Name] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for i := range lock.Packages {
		p := &lock.Packages[i]
		if include != nil && !include[p.ID()] {
			continue
		}
		attrs := fmt.Sprintf("label=%q", nodeLabel(p, opts.Detailed))
		if members[p.Name] && p.Source == "" {
			attrs += `, fillcolor=lightblue`
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", p.ID(), attrs)
	}

	buf.WriteString("\n")
	for i := range lock.Packages {
		p := &lock.Packages[i]
		if include != nil && !include[p.ID()] {
			continue
		}
		for _, dep := range lock.DirectDeps(p) {
			if include != nil && !include[dep.ID()] {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", p.ID(), dep.ID())
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeLabel(p *Package, detailed bool) string {
	if !detailed {
		return p.Name
	}
	label := fmt.Sprintf("%s\n%s", p.Name, p.Version)
	if p.IsGit() {
		label += "\n" + p.GitURL()
	}
	return label
}

// focusSet computes the package IDs to include for a focused graph: the
// focus crate plus every package on a path from a workspace member to it.
// A nil return means no restriction.
func focusSet(ws *Workspace, lock *Lockfile, focus string) (map[string]bool, error) {
	if focus == "" {
		return nil, nil
	}

	var targets []*Package
	for i := range lock.Packages {
		if lock.Packages[i].Name == focus {
			targets = append(targets, &lock.Packages[i])
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("crate %s not found in lockfile", focus)
	}

	// Reverse adjacency: for each package, who depends on it.
	parents := make(map[string][]*Package)
	for i := range lock.Packages {
		p := &lock.Packages[i]
		for _, dep := range lock.DirectDeps(p) {
			parents[dep.ID()] = append(parents[dep.ID()], p)
		}
	}

	include := make(map[string]bool)
	queue := targets
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if include[p.ID()] {
			continue
		}
		include[p.ID()] = true
		queue = append(queue, parents[p.ID()]...)
	}
	return include, nil
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
