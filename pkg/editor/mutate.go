package editor

import (
	"context"
	"slices"

	"github.com/matzehuels/biotree/pkg/errors"
	"github.com/matzehuels/biotree/pkg/flow"
	"github.com/matzehuels/biotree/pkg/photo"
	"github.com/matzehuels/biotree/pkg/taxonomy"
)

// Defaults for nodes added by hand.
const (
	NewTaxonLabel       = "新しいノード"
	NewBranchPointLabel = "分岐点"
	NewStructureText    = "（構造）"
	NewFunctionText     = "（機能）"
)

// Initial positions of nodes added by hand.
var (
	NewTaxonPosition       = flow.Position{X: 100, Y: 100}
	NewBranchPointPosition = flow.Position{X: 200, Y: 200}
)

// AddTaxon appends a clade with a placeholder label and returns its id.
// In view mode nothing is added and the id is empty.
func (c *Controller) AddTaxon(ctx context.Context) (string, error) {
	var id string
	err := c.mutate(ctx, "add_taxon", true, func() error {
		id = c.newID("taxon")
		n := flow.Node{
			ID:       id,
			Position: NewTaxonPosition,
			Data: &flow.TaxonData{
				Rank:      taxonomy.RankClade,
				LabelText: NewTaxonLabel,
				Photos:    []string{},
			},
		}
		c.nodes = Normalize(append(c.nodes, n), c.mode)
		return nil
	})
	return id, err
}

// AddBranchPoint appends an unattached branch point with placeholder text
// and returns its id. In view mode nothing is added and the id is empty.
func (c *Controller) AddBranchPoint(ctx context.Context) (string, error) {
	var id string
	err := c.mutate(ctx, "add_branchpoint", true, func() error {
		id = c.newID("bp")
		n := flow.Node{
			ID:       id,
			Position: NewBranchPointPosition,
			Data: &flow.BranchPointData{BP: taxonomy.BranchPoint{
				ID:        id,
				Label:     NewBranchPointLabel,
				Structure: NewStructureText,
				Function:  NewFunctionText,
			}},
		}
		c.nodes = Normalize(append(c.nodes, n), c.mode)
		return nil
	})
	return id, err
}

// DeleteSelected removes the selected nodes, the selected edges and every
// edge touching a removed node, then clears the selection.
func (c *Controller) DeleteSelected(ctx context.Context) error {
	return c.mutate(ctx, "delete_selected", true, func() error {
		c.deleteSelected()
		return nil
	})
}

// DeleteNode selects a single node and deletes it, as the panel's delete
// button does.
func (c *Controller) DeleteNode(ctx context.Context, id string) error {
	return c.mutate(ctx, "delete_node", true, func() error {
		if flow.IndexOf(c.nodes, id) < 0 {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
		}
		c.sel = Selection{Nodes: []string{id}, Edges: []string{}}
		c.deleteSelected()
		return nil
	})
}

func (c *Controller) deleteSelected() {
	sel := c.sel
	c.nodes = slices.DeleteFunc(c.nodes, func(n flow.Node) bool {
		return sel.hasNode(n.ID)
	})
	c.edges = slices.DeleteFunc(c.edges, func(e flow.Edge) bool {
		return sel.hasEdge(e.ID) || sel.hasNode(e.Source) || sel.hasNode(e.Target)
	})
	c.sel = emptySelection()
}

// Connection is a user-drawn link between two node handles.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Connect appends an edge for conn with the default style and returns its
// id. Connecting an already connected source/target pair returns the
// existing edge id and changes nothing.
func (c *Controller) Connect(ctx context.Context, conn Connection) (string, error) {
	var id string
	err := c.mutate(ctx, "connect", true, func() error {
		for _, end := range []string{conn.Source, conn.Target} {
			if flow.IndexOf(c.nodes, end) < 0 {
				return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", end)
			}
		}
		for _, e := range c.edges {
			if e.Source == conn.Source && e.Target == conn.Target {
				id = e.ID
				return nil
			}
		}

		e := flow.NewEdge("edge-"+conn.Source+"-"+conn.Target, conn.Source, conn.Target)
		e.SourceHandle = conn.SourceHandle
		e.TargetHandle = conn.TargetHandle
		c.edges = append(c.edges, e)
		id = e.ID
		return nil
	})
	return id, err
}

// NodeChange is a change notification from a rendering client.
type NodeChange struct {
	ID       string         `json:"id"`
	Position *flow.Position `json:"position,omitempty"` // move
	Remove   bool           `json:"remove,omitempty"`
}

// ApplyNodeChanges applies moves and removals reported by a client.
// Removing a node also removes its edges. Unknown ids are skipped.
func (c *Controller) ApplyNodeChanges(ctx context.Context, changes []NodeChange) error {
	return c.mutate(ctx, "node_changes", true, func() error {
		removed := map[string]bool{}
		for _, ch := range changes {
			i := flow.IndexOf(c.nodes, ch.ID)
			if i < 0 {
				continue
			}
			if ch.Remove {
				removed[ch.ID] = true
				continue
			}
			if ch.Position != nil {
				c.nodes[i].Position = *ch.Position
			}
		}
		if len(removed) > 0 {
			c.nodes = slices.DeleteFunc(c.nodes, func(n flow.Node) bool { return removed[n.ID] })
			c.edges = slices.DeleteFunc(c.edges, func(e flow.Edge) bool {
				return removed[e.Source] || removed[e.Target]
			})
		}
		return nil
	})
}

// MoveNode sets a node's position.
func (c *Controller) MoveNode(ctx context.Context, id string, pos flow.Position) error {
	return c.mutate(ctx, "move_node", true, func() error {
		i := flow.IndexOf(c.nodes, id)
		if i < 0 {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
		}
		c.nodes[i].Position = pos
		return nil
	})
}

// RemoveEdges removes edges by id. Unknown ids are ignored.
func (c *Controller) RemoveEdges(ctx context.Context, ids ...string) error {
	return c.mutate(ctx, "remove_edges", true, func() error {
		c.edges = slices.DeleteFunc(c.edges, func(e flow.Edge) bool {
			return slices.Contains(ids, e.ID)
		})
		return nil
	})
}

// TaxonPatch lists panel edits to a taxon. Nil fields are left unchanged;
// a non-nil empty Photos clears the photo list.
type TaxonPatch struct {
	LabelText *string        `json:"labelText,omitempty"`
	Rank      *taxonomy.Rank `json:"rank,omitempty"`
	Memo      *string        `json:"memo,omitempty"`
	Photos    []string       `json:"photos,omitempty"`
}

// UpdateTaxon writes a panel edit into the taxon node id and re-normalizes.
func (c *Controller) UpdateTaxon(ctx context.Context, id string, p TaxonPatch) error {
	if p.Rank != nil {
		if _, err := taxonomy.ParseRank(string(*p.Rank)); err != nil {
			return err
		}
	}
	return c.mutate(ctx, "update_taxon", true, func() error {
		d, err := c.taxon(id)
		if err != nil {
			return err
		}
		if p.LabelText != nil {
			d.LabelText = *p.LabelText
		}
		if p.Rank != nil {
			d.Rank = *p.Rank
		}
		if p.Memo != nil {
			d.Memo = *p.Memo
		}
		if p.Photos != nil {
			d.Photos = slices.Clone(p.Photos)
		}
		c.nodes = Normalize(c.nodes, c.mode)
		return nil
	})
}

// BranchPointPatch lists panel edits to a branch point. Nil fields are left
// unchanged.
type BranchPointPatch struct {
	Label     *string `json:"label,omitempty"`
	Structure *string `json:"structure,omitempty"`
	Function  *string `json:"function,omitempty"`
	From      *string `json:"from,omitempty"`
	To        *string `json:"to,omitempty"`
}

// UpdateBranchPoint writes a panel edit into the branch-point node id and
// re-normalizes.
func (c *Controller) UpdateBranchPoint(ctx context.Context, id string, p BranchPointPatch) error {
	return c.mutate(ctx, "update_branchpoint", true, func() error {
		i := flow.IndexOf(c.nodes, id)
		if i < 0 {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
		}
		d, ok := c.nodes[i].BranchPoint()
		if !ok {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q is not a branch point", id)
		}
		d.BP.ID = id
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		set(&d.BP.Label, p.Label)
		set(&d.BP.Structure, p.Structure)
		set(&d.BP.Function, p.Function)
		set(&d.BP.From, p.From)
		set(&d.BP.To, p.To)
		c.nodes = Normalize(c.nodes, c.mode)
		return nil
	})
}

// AttachPhotos reads sources concurrently and appends them to the taxon's
// photos in source order. If any source fails to read nothing is appended.
func (c *Controller) AttachPhotos(ctx context.Context, id string, sources ...photo.Source) error {
	c.mu.Lock()
	mode := c.mode
	_, err := c.taxon(id)
	c.mu.Unlock()
	if mode != ModeEdit {
		return nil
	}
	if err != nil {
		return err
	}

	// reads happen outside the lock; the node is looked up again afterwards
	urls, err := photo.ReadAll(ctx, sources)
	if err != nil {
		return err
	}
	return c.mutate(ctx, "attach_photos", true, func() error {
		d, err := c.taxon(id)
		if err != nil {
			return err
		}
		d.Photos = append(slices.Clone(d.Photos), urls...)
		c.nodes = Normalize(c.nodes, c.mode)
		return nil
	})
}

// RemovePhoto removes the photo at index from the taxon's photos.
func (c *Controller) RemovePhoto(ctx context.Context, id string, index int) error {
	return c.mutate(ctx, "remove_photo", true, func() error {
		d, err := c.taxon(id)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(d.Photos) {
			return errors.New(errors.ErrCodeInvalidInput, "photo index %d out of range (%d photos)", index, len(d.Photos))
		}
		d.Photos = slices.Delete(slices.Clone(d.Photos), index, index+1)
		return nil
	})
}

// taxon returns the live taxon payload of node id. Callers must hold c.mu.
func (c *Controller) taxon(id string) (*flow.TaxonData, error) {
	i := flow.IndexOf(c.nodes, id)
	if i < 0 {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	d, ok := c.nodes[i].Taxon()
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q is not a taxon", id)
	}
	return d, nil
}
