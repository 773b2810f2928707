// Package pkg provides the core libraries for the biotree diagram editor.
//
// # Overview
//
// Biotree draws a taxonomy as a left-to-right tree and marks the lineages on
// which a structure was acquired with small branch-point nodes. A user edits
// the diagram (adds taxa, rewires lineages, attaches photos) and the edited
// state survives restarts in a snapshot store. The pkg directory is organized
// into these areas:
//
//  1. [taxonomy] - Ranks, taxa, branch points and the bundled dataset
//  2. [flow] - Node-link snapshot types and their JSON wire format
//  3. [layout] - Initial positions and lineage edges from a dataset
//  4. [editor] - The single owner of diagram state (modes, selection, edits)
//  5. [storage] - Snapshot persistence backends
//  6. [render] - DOT, SVG, PDF and PNG output
//  7. [server] - HTTP API and metrics
//
// # Architecture
//
// The typical data flow:
//
//	taxonomy.Dataset
//	         ↓
//	    [layout] package (positions + lineage edges)
//	         ↓
//	    [editor] package (normalize, edit, persist)
//	         ↓  ↘
//	         ↓   [storage] (file, sqlite, postgres, redis, mongo, s3)
//	         ↓
//	    [render/nodelink] package (DOT → SVG/PDF/PNG)
//
// # Quick Start
//
// Build the initial layout, restore the stored snapshot and add a taxon:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/biotree/pkg/editor"
//	    "github.com/matzehuels/biotree/pkg/layout"
//	    "github.com/matzehuels/biotree/pkg/storage"
//	    "github.com/matzehuels/biotree/pkg/taxonomy"
//	)
//
//	ctx := context.Background()
//	store, _ := storage.Open(ctx, storage.DefaultConfig())
//	defer store.Close()
//
//	c := editor.New(editor.Options{
//	    Store:   store,
//	    Initial: layout.Build(taxonomy.Animalia(), layout.Options{}),
//	})
//	c.Load(ctx)
//	c.SetMode(ctx, editor.ModeEdit)
//	id, _ := c.AddTaxon(ctx)
//
// Render the live diagram:
//
//	dot := nodelink.ToDOT(c.Snapshot(), nodelink.Options{Detailed: true})
//	svg, _ := nodelink.RenderSVG(ctx, dot)
//
// # Main Packages
//
// [errors] - Structured error codes shared by the CLI, the HTTP API and the
// editor. [errors.HTTPStatus] maps a code to a response status.
//
// [photo] - Reads image sources concurrently and encodes them as data URLs.
//
// [observability] - Hook interfaces the editor, the stores and the HTTP layer
// report through; the server installs Prometheus-backed implementations.
//
// [buildinfo] - Version information stamped at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/editor/...    # Specific package
//	go test -run Example        # Examples only
//
// Backends that need a running service (postgres, redis, mongo, s3) read
// their address from BIOTREE_TEST_* environment variables and skip when it is
// unset.
//
// [taxonomy]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/taxonomy
// [flow]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/flow
// [layout]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/layout
// [editor]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/editor
// [storage]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/storage
// [render]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/render/nodelink
// [server]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/errors
// [errors.HTTPStatus]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/errors#HTTPStatus
// [photo]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/photo
// [observability]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/biotree/pkg/buildinfo
package pkg
