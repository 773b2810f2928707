// Package flow defines the editable diagram model: positioned nodes, edges
// and the snapshot that is persisted, exported and imported.
//
// # Nodes
//
// A [Node] carries an id, a position and a [Data] value. Data is a closed sum
// type:
//
//   - [*TaxonData]: a classification unit (rank, label text, memo, photos)
//   - [*BranchPointData]: an annotated trait-acquisition event
//   - [*OtherData]: any node kind this program does not understand; it is
//     kept verbatim so foreign documents survive a load/save cycle
//
// Use a type switch to handle the variants:
//
//	switch d := n.Data.(type) {
//	case *flow.TaxonData:
//	    fmt.Println(d.LabelText)
//	case *flow.BranchPointData:
//	    fmt.Println(d.BP.Structure)
//	}
//
// # Wire Format
//
// Snapshots serialize to the node/edge shape used by browser diagram editors:
//
//	{
//	  "nodes": [
//	    {
//	      "id": "animalia",
//	      "type": "taxon",
//	      "position": {"x": 0, "y": 0},
//	      "data": {"kind": "taxon", "rank": "kingdom", "labelText": "動物界", ...}
//	    }
//	  ],
//	  "edges": [{"id": "animalia-porifera", "source": "animalia", "target": "porifera"}]
//	}
//
// The "label" key inside data is transient display state added by some
// clients. [Snapshot.Savable] strips it before persisting or exporting.
//
// Members a type does not model (a node's style, width or sourcePosition, an
// edge's animated or markerEnd flag, extra keys inside data) are kept in an
// [Extra] map and written back after the modeled members.
package flow
