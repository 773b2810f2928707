package flow_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/biotree/pkg/flow"
	"github.com/matzehuels/biotree/pkg/taxonomy"
)

func ExampleWriteJSON() {
	s := flow.Snapshot{
		Nodes: []flow.Node{
			{
				ID:       "animalia",
				Position: flow.Position{X: 0, Y: 0},
				Data:     &flow.TaxonData{Rank: taxonomy.RankKingdom, LabelText: "動物界", Photos: []string{}, RankTag: "界"},
			},
		},
		Edges: []flow.Edge{},
	}

	if err := flow.WriteJSON(s, os.Stdout); err != nil {
		fmt.Println("Error:", err)
	}
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "animalia",
	//       "type": "taxon",
	//       "position": {
	//         "x": 0,
	//         "y": 0
	//       },
	//       "data": {
	//         "kind": "taxon",
	//         "rank": "kingdom",
	//         "labelText": "動物界",
	//         "memo": "",
	//         "photos": [],
	//         "rankTag": "界",
	//         "editable": false
	//       }
	//     }
	//   ],
	//   "edges": []
	// }
}
