// Package layout derives the initial diagram from a taxonomy dataset.
//
// Taxa are placed on a grid: the column is the taxon's depth below the root
// and the row is its position among the taxa at that depth, in dataset
// order. Branch points sit a third of the way along the line from their
// parent taxon to their child taxon and are spliced into the lineage edge:
// parent → branch point → child instead of parent → child.
//
//	l := layout.Build(taxonomy.Animalia(), layout.Options{})
//	for _, n := range l.Nodes {
//	    fmt.Println(n.ID, n.Position)
//	}
//
// Build is pure and deterministic for a fixed dataset.
package layout

import (
	"github.com/matzehuels/biotree/pkg/flow"
	"github.com/matzehuels/biotree/pkg/taxonomy"
)

// Default layout constants.
const (
	DefaultHorizontalGap = 360
	DefaultVerticalGap   = 140
	DefaultBranchT       = 0.33
)

// Options tunes the grid. Zero values select the defaults.
type Options struct {
	HorizontalGap float64 // distance between depth columns
	VerticalGap   float64 // distance between rows within a column
	BranchT       float64 // interpolation parameter for branch points, in (0,1)
}

// WithDefaults fills zero fields with the package defaults.
func (o Options) WithDefaults() Options {
	if o.HorizontalGap == 0 {
		o.HorizontalGap = DefaultHorizontalGap
	}
	if o.VerticalGap == 0 {
		o.VerticalGap = DefaultVerticalGap
	}
	if o.BranchT == 0 {
		o.BranchT = DefaultBranchT
	}
	return o
}

// Build maps d to positioned nodes (taxa first, then branch points, each in
// dataset order) and the lineage edges connecting them. Derived node fields
// (rank tag, editable) are left for normalization.
func Build(d taxonomy.Dataset, opts Options) flow.Snapshot {
	opts = opts.WithDefaults()

	depth := Depths(d)
	row := rows(d, depth)

	nodes := make([]flow.Node, 0, len(d.Taxa)+len(d.BranchPoints))
	pos := make(map[string]flow.Position, len(d.Taxa))
	for _, t := range d.Taxa {
		p := flow.Position{
			X: float64(depth[t.ID]) * opts.HorizontalGap,
			Y: float64(row[t.ID]) * opts.VerticalGap,
		}
		pos[t.ID] = p
		nodes = append(nodes, flow.Node{
			ID:       t.ID,
			Position: p,
			Data: &flow.TaxonData{
				Rank:      t.Rank,
				LabelText: t.Label,
				Photos:    []string{},
			},
		})
	}

	for _, bp := range d.BranchPoints {
		nodes = append(nodes, flow.Node{
			ID:       bp.ID,
			Position: branchPosition(bp, pos, opts),
			Data:     &flow.BranchPointData{BP: bp},
		})
	}

	return flow.Snapshot{Nodes: nodes, Edges: Edges(d)}
}

// branchPosition interpolates between the from and to taxa. A missing from
// taxon is treated as the origin; a missing to taxon as one column right of
// from.
func branchPosition(bp taxonomy.BranchPoint, pos map[string]flow.Position, opts Options) flow.Position {
	from := pos[bp.From]
	to, ok := pos[bp.To]
	if !ok {
		to = flow.Position{X: from.X + opts.HorizontalGap, Y: from.Y}
	}
	return from.Lerp(to, opts.BranchT)
}

// Edges generates the lineage edges of d. When a branch point annotates
// parent → child, the edge is split in two through it; only the first such
// branch point per pair is used.
func Edges(d taxonomy.Dataset) []flow.Edge {
	edges := make([]flow.Edge, 0, len(d.Taxa))
	for _, t := range d.Taxa {
		if t.IsRoot() {
			continue
		}
		if bp, ok := d.BranchPointFor(t.Parent, t.ID); ok {
			edges = append(edges,
				flow.NewEdge(t.Parent+"-"+bp.ID, t.Parent, bp.ID),
				flow.NewEdge(bp.ID+"-"+t.ID, bp.ID, t.ID),
			)
			continue
		}
		edges = append(edges, flow.NewEdge(t.Parent+"-"+t.ID, t.Parent, t.ID))
	}
	return edges
}

// Depths assigns each taxon its distance from the root by depth-first
// traversal, visiting children in dataset order. Taxa unreachable from the
// root are absent from the map and are placed at depth 0 by Build.
func Depths(d taxonomy.Dataset) map[string]int {
	depth := make(map[string]int, len(d.Taxa))
	root, ok := d.Root()
	if !ok {
		return depth
	}

	children := d.Children()
	var visit func(id string, level int)
	visit = func(id string, level int) {
		if _, seen := depth[id]; seen {
			return
		}
		depth[id] = level
		for _, c := range children[id] {
			visit(c, level+1)
		}
	}
	visit(root.ID, 0)
	return depth
}

// rows numbers taxa within each depth in dataset order.
func rows(d taxonomy.Dataset, depth map[string]int) map[string]int {
	perDepth := map[int]int{}
	row := make(map[string]int, len(d.Taxa))
	for _, t := range d.Taxa {
		level := depth[t.ID]
		row[t.ID] = perDepth[level]
		perDepth[level]++
	}
	return row
}
