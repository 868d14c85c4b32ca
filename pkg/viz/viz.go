// Package viz renders embeddings as node-link pictures of the target graph.
//
// Each chain is drawn in its own color with the source label printed on its
// member nodes; target nodes shared by several chains are flagged in red,
// and unused target nodes are left out unless Options.ShowUnused is set, in
// which case they are drawn hollow. The DOT output can be rendered
// to SVG or PNG with Graphviz.
package viz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/aidanproy/minorminer/pkg/embed"
)

// Options configures embedding rendering.
type Options struct {
	// ShowUnused draws target nodes that belong to no chain. Disable for
	// large hardware graphs where unused nodes drown the picture.
	ShowUnused bool

	// Engine selects the Graphviz layout engine ("neato" by default, which
	// suits the near-regular structure of hardware target graphs).
	Engine string
}

// palette cycles across chains. Colors are picked for adjacent-chain
// contrast on a white background.
var palette = []string{
	"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3", "#a6d854", "#ffd92f",
	"#e5c494", "#b3b3b3", "#1b9e77", "#d95f02", "#7570b3", "#e7298a",
}

const overlapColor = "#d53e4f"

// ToDOT converts a target graph plus a mapping into Graphviz DOT. Chains
// are colored by source label in sorted order, so output is deterministic.
func ToDOT(tgt []embed.Edge[string], mapping map[string][]string, opts Options) string {
	sources := make([]string, 0, len(mapping))
	for l := range mapping {
		sources = append(sources, l)
	}
	sort.Strings(sources)

	owner := make(map[string][]string) // target -> source labels (sorted order)
	color := make(map[string]string)   // source -> fill color
	for i, l := range sources {
		color[l] = palette[i%len(palette)]
		for _, t := range mapping[l] {
			owner[t] = append(owner[t], l)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("graph T {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=10, fixedsize=true, width=0.45];\n")
	buf.WriteString("\n")

	seen := make(map[string]bool)
	writeNode := func(t string) {
		if seen[t] {
			return
		}
		seen[t] = true
		owners := owner[t]
		switch {
		case len(owners) == 0:
			if opts.ShowUnused {
				fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=white, color=grey];\n", t, t)
			}
		case len(owners) == 1:
			fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q];\n", t, owners[0], color[owners[0]])
		default:
			label := strings.Join(owners, ",")
			fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q, fontcolor=white];\n", t, label, overlapColor)
		}
	}
	for _, e := range tgt {
		writeNode(e.U)
		writeNode(e.V)
	}

	buf.WriteString("\n")
	for _, e := range tgt {
		if !opts.ShowUnused && (len(owner[e.U]) == 0 || len(owner[e.V]) == 0) {
			continue
		}
		attrs := ""
		if shareChain(owner[e.U], owner[e.V]) {
			attrs = " [penwidth=2.5]"
		}
		fmt.Fprintf(&buf, "  %q -- %q%s;\n", e.U, e.V, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// shareChain reports whether two sorted owner lists have a common source.
func shareChain(a, b []string) bool {
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string, opts Options) ([]byte, error) {
	return render(dot, graphviz.SVG, opts)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string, opts Options) ([]byte, error) {
	return render(dot, graphviz.PNG, opts)
}

func render(dot string, format graphviz.Format, opts Options) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	engine := opts.Engine
	if engine == "" {
		engine = "neato"
	}
	gv.SetLayout(graphviz.Layout(engine))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the picture scales to
// its container instead of carrying Graphviz's absolute point sizes.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
