package editor_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/biotree/pkg/editor"
	"github.com/matzehuels/biotree/pkg/layout"
	"github.com/matzehuels/biotree/pkg/storage"
	"github.com/matzehuels/biotree/pkg/taxonomy"
)

func ExampleController() {
	ctx := context.Background()
	c := editor.New(editor.Options{
		Store:   storage.NewMemoryStore(),
		Initial: layout.Build(taxonomy.Animalia(), layout.Options{}),
		NewID:   func(prefix string) string { return prefix + "_new" },
	})
	c.Load(ctx)

	// structural edits are ignored until edit mode is on
	id, _ := c.AddTaxon(ctx)
	fmt.Printf("view mode: %q\n", id)

	c.SetMode(ctx, editor.ModeEdit)
	id, _ = c.AddTaxon(ctx)
	c.SelectNode(id)
	d := c.Detail()
	fmt.Println(d.Taxon.ID, d.Taxon.LabelText, d.Taxon.RankTag, d.Editable)
	// Output:
	// view mode: ""
	// taxon_new 新しいノード 系統 true
}
