// Package render converts rendered diagrams between output formats.
//
// The [nodelink] subpackage draws a diagram snapshot as Graphviz DOT and
// SVG. The [ToPDF] and [ToPNG] functions convert that SVG to other formats
// using the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(snapshot, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/biotree/pkg/render/nodelink
package render
