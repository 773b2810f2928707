package flow

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/biotree/pkg/taxonomy"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		Nodes: []Node{
			{
				ID:       "a",
				Position: Position{X: 0, Y: 0},
				Data: &TaxonData{
					Rank:      taxonomy.RankKingdom,
					LabelText: "A",
					Memo:      "memo",
					Photos:    []string{"data:image/png;base64,AAAA"},
					RankTag:   "界",
					Label:     "transient",
				},
			},
			{
				ID:       "bp",
				Position: Position{X: 118.8, Y: 0},
				Data: &BranchPointData{
					BP:    taxonomy.BranchPoint{ID: "bp", From: "a", To: "b", Structure: "s", Function: "f"},
					Label: "transient",
				},
			},
		},
		Edges: []Edge{NewEdge("a-bp", "a", "bp")},
	}
}

func TestNodeWireFormat(t *testing.T) {
	n := Node{ID: "a", Position: Position{X: 1, Y: 2}, Data: &TaxonData{Rank: taxonomy.RankPhylum, LabelText: "A"}}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["type"] != "taxon" {
		t.Errorf("type = %v, want taxon", got["type"])
	}
	d := got["data"].(map[string]any)
	if d["kind"] != "taxon" || d["rank"] != "phylum" || d["labelText"] != "A" {
		t.Errorf("data = %v", d)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	want := sampleSnapshot()
	data, err := MarshalIndent(want)
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}
	got, err := ReadJSON(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownKindPassesThrough(t *testing.T) {
	src := `{"id":"x","type":"note","position":{"x":5,"y":6},"data":{"kind":"note","text":"hello"}}`
	var n Node
	if err := json.Unmarshal([]byte(src), &n); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	other, ok := n.Data.(*OtherData)
	if !ok {
		t.Fatalf("Data = %T, want *OtherData", n.Data)
	}
	if other.KindName != "note" || n.Type() != "note" {
		t.Errorf("KindName = %q, Type() = %q", other.KindName, n.Type())
	}

	out, err := json.Marshal(n)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"data":{"kind":"note","text":"hello"}`) {
		t.Errorf("Marshal() = %s, want data preserved", out)
	}
}

func TestSavableStripsLabel(t *testing.T) {
	s := sampleSnapshot()
	s.Nodes = append(s.Nodes, Node{ID: "x", Data: &OtherData{Raw: json.RawMessage(`{"kind":"note","label":"l","text":"t"}`)}})

	saved := s.Savable()
	for _, n := range saved.Nodes {
		switch d := n.Data.(type) {
		case *TaxonData:
			if d.Label != "" {
				t.Errorf("taxon label = %q, want empty", d.Label)
			}
		case *BranchPointData:
			if d.Label != "" {
				t.Errorf("branch point label = %q, want empty", d.Label)
			}
		case *OtherData:
			if strings.Contains(string(d.Raw), `"label"`) {
				t.Errorf("other raw = %s, want label removed", d.Raw)
			}
		}
	}

	// the source snapshot is untouched
	if td, _ := s.Nodes[0].Taxon(); td.Label != "transient" {
		t.Errorf("Savable() mutated its receiver")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := sampleSnapshot()
	c := s.Clone()

	td, _ := c.Nodes[0].Taxon()
	td.Photos[0] = "changed"
	c.Edges[0].Style.Stroke = "red"

	orig, _ := s.Nodes[0].Taxon()
	if orig.Photos[0] == "changed" {
		t.Error("Clone() shares photo slice")
	}
	if s.Edges[0].Style.Stroke == "red" {
		t.Error("Clone() shares edge style")
	}
}

func TestDecodeParts(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   bool
		wantNodes bool
		wantEdges bool
	}{
		{"both", `{"nodes":[],"edges":[]}`, false, true, true},
		{"nodes only", `{"nodes":[]}`, false, true, false},
		{"edges null", `{"nodes":[],"edges":null}`, false, true, false},
		{"edges object", `{"nodes":[],"edges":{}}`, false, true, false},
		{"not object", `[1,2]`, true, false, false},
		{"null", `null`, true, false, false},
		{"malformed", `{"nodes":[`, true, false, false},
		{"bad node", `{"nodes":[{"id":1}]}`, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeParts([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeParts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if (p.Nodes != nil) != tt.wantNodes {
				t.Errorf("Nodes present = %v, want %v", p.Nodes != nil, tt.wantNodes)
			}
			if (p.Edges != nil) != tt.wantEdges {
				t.Errorf("Edges present = %v, want %v", p.Edges != nil, tt.wantEdges)
			}
		})
	}
}

func TestDangling(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	edges := []Edge{NewEdge("a-b", "a", "b"), NewEdge("a-c", "a", "c")}
	got := Dangling(nodes, edges)
	if len(got) != 1 || got[0].ID != "a-c" {
		t.Errorf("Dangling() = %v, want [a-c]", got)
	}
}

func TestLerp(t *testing.T) {
	got := Position{X: 0, Y: 0}.Lerp(Position{X: 100, Y: 200}, 0.5)
	if got != (Position{X: 50, Y: 100}) {
		t.Errorf("Lerp() = %v", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.json")
	want := sampleSnapshot()
	if err := WriteFile(want, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("file round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestForeignMembersSurviveRoundTrip(t *testing.T) {
	const doc = `{
  "nodes": [
    {
      "id": "animalia",
      "type": "taxon",
      "position": {"x": 0, "y": 0},
      "data": {"kind": "taxon", "rank": "kingdom", "labelText": "動物界", "memo": "", "photos": [], "editable": false, "label": "shown", "custom": {"pinned": true}},
      "style": {"borderWidth": 2, "background": "#fff"},
      "sourcePosition": "right",
      "targetPosition": "left",
      "width": 160,
      "height": 40
    },
    {
      "id": "bp-1",
      "type": "branchpoint",
      "position": {"x": 90, "y": 10},
      "data": {"kind": "branchpoint", "bp": {"id": "bp-1", "from": "animalia", "to": "porifera", "structure": "s", "function": "f"}, "editable": false, "color": "red"}
    }
  ],
  "edges": [
    {"id": "animalia-porifera", "source": "animalia", "target": "porifera", "style": {"stroke": "#999", "strokeWidth": 1.5, "strokeDasharray": "4"}, "animated": true, "markerEnd": {"type": "arrowclosed"}}
  ]
}`

	var s Snapshot
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if td, ok := s.Nodes[0].Taxon(); !ok || td.LabelText != "動物界" {
		t.Fatalf("node 0 = %#v, want taxon 動物界", s.Nodes[0].Data)
	}
	if got := string(s.Nodes[0].Extra["sourcePosition"]); got != `"right"` {
		t.Errorf("Extra[sourcePosition] = %s, want \"right\"", got)
	}

	out, err := json.Marshal(s.Savable())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	got := string(out)
	for _, want := range []string{
		`"style":{"borderWidth":2,"background":"#fff"}`,
		`"sourcePosition":"right"`,
		`"targetPosition":"left"`,
		`"width":160`,
		`"height":40`,
		`"custom":{"pinned":true}`,
		`"color":"red"`,
		`"strokeDasharray":"4"`,
		`"animated":true`,
		`"markerEnd":{"type":"arrowclosed"}`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Marshal() missing %s in %s", want, got)
		}
	}
	if strings.Contains(got, `"label":"shown"`) {
		t.Errorf("Marshal() kept transient label: %s", got)
	}

	// a second pass is stable
	var again Snapshot
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("Unmarshal() second pass error: %v", err)
	}
	out2, err := json.Marshal(again)
	if err != nil {
		t.Fatalf("Marshal() second pass error: %v", err)
	}
	if !bytes.Equal(out, out2) {
		t.Errorf("second pass differs:\n%s\n%s", out, out2)
	}
}

func TestCloneCopiesExtra(t *testing.T) {
	n := Node{ID: "a", Data: &TaxonData{Extra: Extra{"k": json.RawMessage(`1`)}}, Extra: Extra{"width": json.RawMessage(`10`)}}
	c := n.Clone()
	c.Extra["width"] = json.RawMessage(`20`)
	ct, _ := c.Taxon()
	ct.Extra["k"] = json.RawMessage(`2`)

	if string(n.Extra["width"]) != "10" {
		t.Errorf("node Extra shared with clone")
	}
	if nt, _ := n.Taxon(); string(nt.Extra["k"]) != "1" {
		t.Errorf("data Extra shared with clone")
	}
}
