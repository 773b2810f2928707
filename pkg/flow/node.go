package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/biotree/pkg/taxonomy"
)

// Kind discriminates node data variants on the wire.
type Kind string

// Node kinds.
const (
	KindTaxon       Kind = "taxon"
	KindBranchPoint Kind = "branchpoint"
)

// Position is a node's top-left corner in diagram coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lerp returns the point t of the way from p to q.
func (p Position) Lerp(q Position, t float64) Position {
	return Position{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Node is a positioned diagram node.
type Node struct {
	ID       string
	Position Position
	Data     Data

	// Extra keeps node members such as style, width or sourcePosition.
	Extra Extra
}

// Data is the per-kind payload of a node.
type Data interface {
	// Kind returns the wire discriminator; empty for unknown data.
	Kind() Kind
	clone() Data
}

// TaxonData is the payload of a taxon node.
// RankTag and Editable are derived by normalization.
type TaxonData struct {
	Rank      taxonomy.Rank `json:"rank"`
	LabelText string        `json:"labelText"`
	Memo      string        `json:"memo"`
	Photos    []string      `json:"photos"`
	RankTag   string        `json:"rankTag,omitempty"`
	Editable  bool          `json:"editable"`
	Label     string        `json:"label,omitempty"`
	Extra     Extra         `json:"-"`
}

func (*TaxonData) Kind() Kind { return KindTaxon }

func (d *TaxonData) clone() Data {
	c := *d
	if d.Photos != nil {
		c.Photos = slices.Clone(d.Photos)
	}
	c.Extra = maps.Clone(d.Extra)
	return &c
}

// MarshalJSON adds the kind discriminator and the extra members.
func (d *TaxonData) MarshalJSON() ([]byte, error) {
	type alias TaxonData
	b, err := json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindTaxon, (*alias)(d)})
	if err != nil {
		return nil, err
	}
	return appendExtra(b, d.Extra)
}

// UnmarshalJSON decodes the modeled members and keeps the rest in Extra.
func (d *TaxonData) UnmarshalJSON(b []byte) error {
	type alias TaxonData
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	extra, err := splitExtra(b, taxonMembers)
	if err != nil {
		return err
	}
	a.Extra = extra
	*d = TaxonData(a)
	return nil
}

// BranchPointData is the payload of a branch-point node.
type BranchPointData struct {
	BP       taxonomy.BranchPoint `json:"bp"`
	Editable bool                 `json:"editable"`
	Label    string               `json:"label,omitempty"`
	Extra    Extra                `json:"-"`
}

func (*BranchPointData) Kind() Kind { return KindBranchPoint }

func (d *BranchPointData) clone() Data {
	c := *d
	c.Extra = maps.Clone(d.Extra)
	return &c
}

// MarshalJSON adds the kind discriminator and the extra members.
func (d *BranchPointData) MarshalJSON() ([]byte, error) {
	type alias BranchPointData
	b, err := json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindBranchPoint, (*alias)(d)})
	if err != nil {
		return nil, err
	}
	return appendExtra(b, d.Extra)
}

// UnmarshalJSON decodes the modeled members and keeps the rest in Extra.
func (d *BranchPointData) UnmarshalJSON(b []byte) error {
	type alias BranchPointData
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	extra, err := splitExtra(b, branchPointMembers)
	if err != nil {
		return err
	}
	a.Extra = extra
	*d = BranchPointData(a)
	return nil
}

// OtherData preserves the payload of a node kind this package does not model.
type OtherData struct {
	KindName string
	Type     string
	Raw      json.RawMessage
}

func (*OtherData) Kind() Kind { return "" }

func (d *OtherData) clone() Data {
	c := *d
	c.Raw = slices.Clone(d.Raw)
	return &c
}

// MarshalJSON writes the preserved payload unchanged.
func (d *OtherData) MarshalJSON() ([]byte, error) {
	if len(d.Raw) == 0 {
		return []byte("null"), nil
	}
	return d.Raw, nil
}

// Taxon returns the taxon payload, if n is a taxon node.
func (n *Node) Taxon() (*TaxonData, bool) {
	d, ok := n.Data.(*TaxonData)
	return d, ok
}

// BranchPoint returns the branch-point payload, if n is a branch-point node.
func (n *Node) BranchPoint() (*BranchPointData, bool) {
	d, ok := n.Data.(*BranchPointData)
	return d, ok
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	if n.Data != nil {
		n.Data = n.Data.clone()
	}
	n.Extra = maps.Clone(n.Extra)
	return n
}

// Type returns the renderer type name for n.
func (n *Node) Type() string {
	switch d := n.Data.(type) {
	case *TaxonData:
		return string(KindTaxon)
	case *BranchPointData:
		return string(KindBranchPoint)
	case *OtherData:
		return d.Type
	default:
		return ""
	}
}

type wireNode struct {
	ID       string          `json:"id"`
	Type     string          `json:"type,omitempty"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes n in the wire format described in the package docs.
func (n Node) MarshalJSON() ([]byte, error) {
	w := wireNode{ID: n.ID, Type: n.Type(), Position: n.Position}
	if n.Data != nil {
		data, err := json.Marshal(n.Data)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		w.Data = data
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return appendExtra(b, n.Extra)
}

// UnmarshalJSON decodes the wire format, dispatching on data.kind.
func (n *Node) UnmarshalJSON(b []byte) error {
	var w wireNode
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	data, err := decodeData(w.Type, w.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", w.ID, err)
	}
	extra, err := splitExtra(b, nodeMembers)
	if err != nil {
		return err
	}
	*n = Node{ID: w.ID, Position: w.Position, Data: data, Extra: extra}
	return nil
}

func decodeData(typ string, raw json.RawMessage) (Data, error) {
	var head struct {
		Kind Kind `json:"kind"`
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &head); err != nil {
			return nil, err
		}
	}

	switch head.Kind {
	case KindTaxon:
		var d TaxonData
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return nil, err
		}
		return &d, nil
	case KindBranchPoint:
		var d BranchPointData
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return nil, err
		}
		return &d, nil
	default:
		return &OtherData{KindName: string(head.Kind), Type: typ, Raw: slices.Clone(trimmed)}, nil
	}
}

// IndexOf returns the index of the node with the given id, or -1.
func IndexOf(nodes []Node, id string) int {
	return slices.IndexFunc(nodes, func(n Node) bool { return n.ID == id })
}

// CloneNodes deep-copies a node list.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
