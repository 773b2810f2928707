// Package nodelink renders diagram snapshots as Graphviz node-link diagrams.
//
// # Overview
//
// Taxa are drawn as rounded boxes tagged with their rank, branch points as
// small filled dots on the lineage they annotate. The diagram flows left to
// right like the interactive editor, and box outlines get heavier for
// broader ranks (kingdom boxes are the heaviest).
//
// # Usage
//
// Convert a snapshot to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(snapshot, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: taxon labels include the memo and photo count; branch
//     points show their structure and function
//   - Editable: taxa are drawn with connection ports on both sides, the
//     way the editor shows handles in edit mode
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion lives in the parent render package.
package nodelink
