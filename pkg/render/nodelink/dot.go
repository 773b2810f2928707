package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/biotree/pkg/flow"
	"github.com/matzehuels/biotree/pkg/taxonomy"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds memo, photo count and branch-point traits to labels.
	Detailed bool

	// Editable draws connection ports on taxon boxes.
	Editable bool
}

// ToDOT converts a snapshot to Graphviz DOT format.
// Edges whose endpoints are missing from the snapshot are skipped.
func ToDOT(s flow.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, color=\"#111111\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	kinds := make(map[string]flow.Kind, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.Data != nil {
			kinds[n.ID] = n.Data.Kind()
		} else {
			kinds[n.ID] = ""
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		src, okSrc := kinds[e.Source]
		dst, okDst := kinds[e.Target]
		if !okSrc || !okDst {
			continue
		}
		from, to := strconv.Quote(e.Source), strconv.Quote(e.Target)
		if opts.Editable && src == flow.KindTaxon {
			from += ":out"
		}
		if opts.Editable && dst == flow.KindTaxon {
			to += ":in"
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", from, to, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n flow.Node, opts Options) []string {
	switch d := n.Data.(type) {
	case *flow.TaxonData:
		label := fmtTaxonLabel(d, opts.Detailed)
		attrs := []string{fmt.Sprintf("penwidth=%d", PenWidth(d.Rank))}
		if opts.Editable {
			return append(attrs, "shape=Mrecord", "label="+quote("{<in> |<body> "+escapeRecord(label)+"|<out> }"))
		}
		return append(attrs, "label="+quote(label))
	case *flow.BranchPointData:
		return []string{
			"shape=circle", "style=filled", "fillcolor=\"#111111\"",
			"width=0.18", "fixedsize=true", `label=""`,
			"xlabel=" + quote(fmtBranchPointLabel(d.BP, opts.Detailed)),
		}
	default:
		return []string{"shape=note", "style=dashed", "label=" + quote(n.ID)}
	}
}

func fmtTaxonLabel(d *flow.TaxonData, detailed bool) string {
	tag := d.RankTag
	if tag == "" {
		tag = d.Rank.Tag()
	}
	label := "[" + tag + "] " + d.LabelText
	if !detailed {
		return label
	}

	var parts []string
	if memo, _, _ := strings.Cut(d.Memo, "\n"); memo != "" {
		parts = append(parts, memo)
	}
	if len(d.Photos) > 0 {
		parts = append(parts, fmt.Sprintf("photos: %d", len(d.Photos)))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtBranchPointLabel(bp taxonomy.BranchPoint, detailed bool) string {
	if !detailed {
		return bp.Label
	}
	return bp.Label + "\n" + bp.Structure + "\n" + bp.Function
}

func edgeAttrs(e flow.Edge) []string {
	stroke, width := flow.DefaultEdgeStroke, float64(flow.DefaultStrokeWidth)
	if e.Style != nil {
		if e.Style.Stroke != "" {
			stroke = e.Style.Stroke
		}
		if e.Style.StrokeWidth > 0 {
			width = e.Style.StrokeWidth
		}
	}
	return []string{
		fmt.Sprintf("id=%q", e.ID),
		fmt.Sprintf("color=%q", stroke),
		"penwidth=" + strconv.FormatFloat(width, 'f', -1, 64),
	}
}

// PenWidth returns the outline width for a taxon of the given rank.
func PenWidth(r taxonomy.Rank) int {
	switch r {
	case taxonomy.RankKingdom:
		return 3
	case taxonomy.RankPhylum, taxonomy.RankClass, taxonomy.RankOrder:
		return 2
	default:
		return 1
	}
}

var labelQuoter = strings.NewReplacer(`"`, `\"`, "\n", `\n`)

// quote writes s as a DOT label string. DOT only unescapes \" inside quoted
// strings, so other backslashes reach the label parser unchanged.
func quote(s string) string { return `"` + labelQuoter.Replace(s) + `"` }

var recordSpecial = strings.NewReplacer(
	`{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`,
)

// escapeRecord escapes the characters that structure record labels.
func escapeRecord(s string) string { return recordSpecial.Replace(s) }

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// render.ToPDF or render.ToPNG.
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
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag to a zero-origin viewBox with
// matching pixel dimensions.
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
