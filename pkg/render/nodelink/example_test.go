package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/biotree/pkg/layout"
	"github.com/matzehuels/biotree/pkg/render/nodelink"
	"github.com/matzehuels/biotree/pkg/taxonomy"
)

func ExampleToDOT() {
	s := layout.Build(taxonomy.Animalia(), layout.Options{})

	dot := nodelink.ToDOT(s, nodelink.Options{})

	// The DOT output can be rendered with Graphviz
	fmt.Println(strings.HasPrefix(dot, "digraph G {"))
	fmt.Println(strings.Contains(dot, `"bp_chord" -> "chordata"`))
	// Output:
	// true
	// true
}
