package flow

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Extra holds the members of a JSON object that the enclosing type does not
// model, such as a client's node style or an edge marker. They are written
// back unchanged, after the modeled members, so documents from other
// editors survive a load/save cycle.
type Extra map[string]json.RawMessage

// Members modeled by each type; everything else lands in Extra.
var (
	nodeMembers        = []string{"id", "type", "position", "data"}
	taxonMembers       = []string{"kind", "rank", "labelText", "memo", "photos", "rankTag", "editable", "label"}
	branchPointMembers = []string{"kind", "bp", "editable", "label"}
	edgeMembers        = []string{"id", "source", "target", "sourceHandle", "targetHandle", "type", "style"}
	edgeStyleMembers   = []string{"stroke", "strokeWidth"}
)

// splitExtra returns the members of the object b not listed in known, or
// nil when there are none.
func splitExtra(b []byte, known []string) (Extra, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(obj, k)
	}
	if len(obj) == 0 {
		return nil, nil
	}
	return Extra(obj), nil
}

// appendExtra adds the extra members, in key order, to the end of the
// encoded object b.
func appendExtra(b []byte, extra Extra) ([]byte, error) {
	if len(extra) == 0 {
		return b, nil
	}
	if len(b) < 2 || b[0] != '{' || b[len(b)-1] != '}' {
		return nil, fmt.Errorf("extra members on a non-object: %s", b)
	}

	out := slices.Clone(b[:len(b)-1])
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		if len(out) > 1 {
			out = append(out, ',')
		}
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, extra[k]...)
	}
	return append(out, '}'), nil
}
