package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Snapshot is the full diagram state: the unit of persistence, export and import.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Nodes: CloneNodes(s.Nodes), Edges: CloneEdges(s.Edges)}
}

// Savable returns a copy of s with transient display labels removed.
func (s Snapshot) Savable() Snapshot {
	out := s.Clone()
	for i := range out.Nodes {
		switch d := out.Nodes[i].Data.(type) {
		case *TaxonData:
			d.Label = ""
		case *BranchPointData:
			d.Label = ""
		case *OtherData:
			d.Raw = stripLabel(d.Raw)
		}
	}
	return out
}

// stripLabel drops the "label" key from a JSON object, leaving anything
// else untouched.
func stripLabel(raw json.RawMessage) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return raw
	}
	if _, ok := obj["label"]; !ok {
		return raw
	}
	delete(obj, "label")
	out, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return out
}

// Marshal encodes s as compact JSON.
func Marshal(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// MarshalIndent encodes s as two-space indented JSON.
func MarshalIndent(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes s as indented JSON to w.
// The output can be read back with [ReadJSON].
func WriteJSON(s Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a snapshot from r. Missing arrays decode as nil; callers
// that need to distinguish a missing key from an empty array use [DecodeParts].
func ReadJSON(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	return s, nil
}

// WriteFile writes s as indented JSON to path.
func WriteFile(s Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(s, f)
}

// ReadFile reads a snapshot from a JSON file.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Parts is a snapshot decoded field by field. A nil slice means the key was
// absent, null, or not an array.
type Parts struct {
	Nodes []Node
	Edges []Edge
}

// DecodeParts decodes a snapshot object while recording which arrays were
// present. It fails only when data is not a JSON object or an array that is
// present fails to decode.
func DecodeParts(data []byte) (Parts, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return Parts{}, err
	}
	if obj == nil {
		return Parts{}, fmt.Errorf("snapshot is not an object")
	}

	var p Parts
	if raw, ok := obj["nodes"]; ok && isArray(raw) {
		p.Nodes = []Node{}
		if err := json.Unmarshal(raw, &p.Nodes); err != nil {
			return Parts{}, fmt.Errorf("nodes: %w", err)
		}
	}
	if raw, ok := obj["edges"]; ok && isArray(raw) {
		p.Edges = []Edge{}
		if err := json.Unmarshal(raw, &p.Edges); err != nil {
			return Parts{}, fmt.Errorf("edges: %w", err)
		}
	}
	return p, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
