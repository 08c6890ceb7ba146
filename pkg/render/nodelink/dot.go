package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/rose/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// ShowRelations labels edges with their relation.
	ShowRelations bool
	// Detailed adds the (shortened) explanation under each word.
	Detailed bool
}

// maxExplanation is the number of runes of explanation shown in detailed
// labels.
const maxExplanation = 60

// ToDOT converts a positioned graph to an undirected DOT graph with pinned
// node positions.
func ToDOT(g graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#9ca3af\", fontname=\"Helvetica\", fontsize=10, fontcolor=\"#6b7280\"];\n")
	buf.WriteString("\n")

	root, _ := g.Root()
	for _, n := range g.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), n.ID == root.ID)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if opts.ShowRelations && e.Label() != "" {
			fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", e.Source, e.Target, e.Label())
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	word := n.Data.Word
	if word == "" {
		word = n.ID
	}
	if !detailed || n.Data.Explanation == nil || *n.Data.Explanation == "" {
		return word
	}
	expl := []rune(*n.Data.Explanation)
	if len(expl) > maxExplanation {
		expl = append(expl[:maxExplanation-1], '…')
	}
	return word + "\n" + string(expl)
}

func fmtAttrs(n graph.Node, label string, isRoot bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Position.IsFinite() {
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(n.Position.X), fmtCoord(-n.Position.Y)))
	}
	switch {
	case isRoot:
		attrs = append(attrs, "fillcolor=\"#ffe4e6\"", "color=\"#e11d48\"")
	case n.Data.IsLoading:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fontcolor=\"#6b7280\"")
	}
	if n.Data.IsNew {
		attrs = append(attrs, "penwidth=2.5")
	}
	return attrs
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RenderSVG renders DOT source to SVG using the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders DOT source to PNG using the neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-unit <svg> tag with one that
// scales to its container.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
