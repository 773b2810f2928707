package editor

import (
	"slices"

	"github.com/matzehuels/biotree/pkg/flow"
	"github.com/matzehuels/biotree/pkg/taxonomy"
)

// Selection holds the selected node and edge ids, sorted and de-duplicated.
type Selection struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

func emptySelection() Selection {
	return Selection{Nodes: []string{}, Edges: []string{}}
}

func newSelection(nodes, edges []string) Selection {
	return Selection{Nodes: sortedSet(nodes), Edges: sortedSet(edges)}
}

func sortedSet(ids []string) []string {
	out := slices.Clone(ids)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (s Selection) clone() Selection {
	return Selection{Nodes: slices.Clone(s.Nodes), Edges: slices.Clone(s.Edges)}
}

// Equal reports whether s and o select the same ids.
func (s Selection) Equal(o Selection) bool {
	return slices.Equal(s.Nodes, o.Nodes) && slices.Equal(s.Edges, o.Edges)
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return len(s.Nodes) == 0 && len(s.Edges) == 0 }

func (s Selection) hasNode(id string) bool { return slices.Contains(s.Nodes, id) }
func (s Selection) hasEdge(id string) bool { return slices.Contains(s.Edges, id) }

// Selection returns the current selection.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.clone()
}

// SetSelection replaces the selection with the given ids, as reported by a
// rendering client. It reports whether the selection changed; an equal
// selection (after sorting) leaves the state untouched.
func (c *Controller) SetSelection(nodes, edges []string) bool {
	next := newSelection(nodes, edges)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sel.Equal(next) {
		return false
	}
	c.sel = next
	return true
}

// SelectNode narrows the selection to a single node, as a click does.
func (c *Controller) SelectNode(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = Selection{Nodes: []string{id}, Edges: []string{}}
}

// ClearSelection deselects everything, as a click on empty canvas does.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = emptySelection()
}

// Detail is the side-panel view of the first selected node. Kind is empty
// when nothing (or a node of an unknown kind) is selected.
type Detail struct {
	Kind        flow.Kind          `json:"kind"`
	Editable    bool               `json:"editable"`
	Taxon       *TaxonDetail       `json:"taxon,omitempty"`
	BranchPoint *BranchPointDetail `json:"branchPoint,omitempty"`
}

// Empty reports whether the panel shows the no-selection placeholder.
func (d Detail) Empty() bool { return d.Kind == "" }

// TaxonDetail holds the editable fields of a taxon.
type TaxonDetail struct {
	ID        string        `json:"id"`
	LabelText string        `json:"labelText"`
	Rank      taxonomy.Rank `json:"rank"`
	RankTag   string        `json:"rankTag"`
	Memo      string        `json:"memo"`
	Photos    []string      `json:"photos"`
}

// BranchPointDetail holds the editable fields of a branch point.
type BranchPointDetail struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Structure string `json:"structure"`
	Function  string `json:"function"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// Detail derives the panel contents from the first selected node id and the
// current node list. It is recomputed on every call so it always reflects
// the latest edits and mode.
func (c *Controller) Detail() Detail {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.sel.Nodes) == 0 {
		return Detail{}
	}
	id := c.sel.Nodes[0]
	i := flow.IndexOf(c.nodes, id)
	if i < 0 {
		return Detail{}
	}

	editable := c.mode == ModeEdit
	switch d := c.nodes[i].Data.(type) {
	case *flow.TaxonData:
		label := d.LabelText
		if label == "" {
			label = PlaceholderLabel
		}
		rank := rankOrClade(d.Rank)
		photos := slices.Clone(d.Photos)
		if photos == nil {
			photos = []string{}
		}
		return Detail{
			Kind:     flow.KindTaxon,
			Editable: editable,
			Taxon: &TaxonDetail{
				ID:        id,
				LabelText: label,
				Rank:      rank,
				RankTag:   rank.Tag(),
				Memo:      d.Memo,
				Photos:    photos,
			},
		}
	case *flow.BranchPointData:
		return Detail{
			Kind:     flow.KindBranchPoint,
			Editable: editable,
			BranchPoint: &BranchPointDetail{
				ID:        id,
				Label:     d.BP.Label,
				Structure: d.BP.Structure,
				Function:  d.BP.Function,
				From:      d.BP.From,
				To:        d.BP.To,
			},
		}
	default:
		return Detail{}
	}
}
