package flow

import (
	"encoding/json"
	"maps"
	"slices"
)

// Edge defaults applied to generated and user-drawn edges.
const (
	DefaultEdgeType    = "smoothstep"
	DefaultEdgeStroke  = "#111"
	DefaultStrokeWidth = 2
)

// Edge is a directed connection between two nodes. Edges whose endpoints
// do not exist are kept but cannot be drawn.
type Edge struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	Target       string     `json:"target"`
	SourceHandle string     `json:"sourceHandle,omitempty"`
	TargetHandle string     `json:"targetHandle,omitempty"`
	Type         string     `json:"type,omitempty"`
	Style        *EdgeStyle `json:"style,omitempty"`

	// Extra keeps edge members such as animated or markerEnd.
	Extra Extra `json:"-"`
}

// MarshalJSON encodes e followed by its extra members.
func (e Edge) MarshalJSON() ([]byte, error) {
	type alias Edge
	b, err := json.Marshal(alias(e))
	if err != nil {
		return nil, err
	}
	return appendExtra(b, e.Extra)
}

// UnmarshalJSON decodes the modeled members and keeps the rest in Extra.
func (e *Edge) UnmarshalJSON(b []byte) error {
	type alias Edge
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	extra, err := splitExtra(b, edgeMembers)
	if err != nil {
		return err
	}
	a.Extra = extra
	*e = Edge(a)
	return nil
}

// EdgeStyle is the stroke used to draw an edge.
type EdgeStyle struct {
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Extra       Extra   `json:"-"`
}

// MarshalJSON encodes s followed by its extra members.
func (s EdgeStyle) MarshalJSON() ([]byte, error) {
	type alias EdgeStyle
	b, err := json.Marshal(alias(s))
	if err != nil {
		return nil, err
	}
	return appendExtra(b, s.Extra)
}

// UnmarshalJSON decodes the modeled members and keeps the rest in Extra.
func (s *EdgeStyle) UnmarshalJSON(b []byte) error {
	type alias EdgeStyle
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	extra, err := splitExtra(b, edgeStyleMembers)
	if err != nil {
		return err
	}
	a.Extra = extra
	*s = EdgeStyle(a)
	return nil
}

// NewEdge returns an edge with the default type and style.
func NewEdge(id, source, target string) Edge {
	return Edge{
		ID:     id,
		Source: source,
		Target: target,
		Type:   DefaultEdgeType,
		Style:  &EdgeStyle{Stroke: DefaultEdgeStroke, StrokeWidth: DefaultStrokeWidth},
	}
}

// Touches reports whether e starts or ends at id.
func (e Edge) Touches(id string) bool { return e.Source == id || e.Target == id }

// CloneEdges deep-copies an edge list.
func CloneEdges(edges []Edge) []Edge {
	if edges == nil {
		return nil
	}
	out := slices.Clone(edges)
	for i := range out {
		if out[i].Style != nil {
			s := *out[i].Style
			s.Extra = maps.Clone(s.Extra)
			out[i].Style = &s
		}
		out[i].Extra = maps.Clone(out[i].Extra)
	}
	return out
}

// Dangling returns the edges with at least one endpoint missing from nodes.
func Dangling(nodes []Node, edges []Edge) []Edge {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	var out []Edge
	for _, e := range edges {
		if !ids[e.Source] || !ids[e.Target] {
			out = append(out, e)
		}
	}
	return out
}
