// Package editor owns the live diagram state and every operation on it.
//
// A [Controller] holds the current nodes, edges, mode and selection. Each
// operation runs under a single lock so concurrent callers (HTTP handlers,
// the terminal panel) observe the same most-recent-event-wins ordering as a
// single UI thread. After every change the controller persists the snapshot
// to its [storage.Store]; persistence failures are logged and reported to the
// observability hooks but never fail the operation.
//
// Structural edits (adding, deleting, moving and connecting nodes, panel
// edits) only apply in edit mode and are silent no-ops in view mode.
// Selection, mode switching, reset, export and import work in either mode.
//
//	c := editor.New(editor.Options{
//	    Store:   storage.NewMemoryStore(),
//	    Initial: layout.Build(taxonomy.Animalia(), layout.Options{}),
//	})
//	c.Load(ctx)
//	c.SetMode(ctx, editor.ModeEdit)
//	id, _ := c.AddTaxon(ctx)
package editor

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/biotree/pkg/errors"
	"github.com/matzehuels/biotree/pkg/flow"
	"github.com/matzehuels/biotree/pkg/observability"
	"github.com/matzehuels/biotree/pkg/storage"
)

// StorageKey is the key the snapshot is persisted under.
const StorageKey = "bio-tree:flow:v1"

// Restore sources reported to the observability hooks.
const (
	RestoreStored      = "stored"
	RestorePartial     = "partial"
	RestoreInitial     = "initial"
	RestoreUnavailable = "unavailable"
)

// Options configures a Controller.
type Options struct {
	// Store persists snapshots. Defaults to an in-memory store.
	Store storage.Store

	// Key overrides StorageKey.
	Key string

	// Sink receives exported files. Export fails without one.
	Sink FileSink

	// Initial is the layout used on first load, on reset, and as the edge
	// fallback whenever the live edge list is empty.
	Initial flow.Snapshot

	// NewID generates node ids for the given prefix ("taxon", "bp").
	// Defaults to prefix + "_" + a random UUID.
	NewID func(prefix string) string

	Logger *log.Logger
}

// Controller is the single owner of the diagram state.
type Controller struct {
	mu      sync.Mutex
	store   storage.Store
	key     string
	sink    FileSink
	initial flow.Snapshot
	newID   func(string) string
	logger  *log.Logger

	mode  Mode
	nodes []flow.Node
	edges []flow.Edge
	sel   Selection
}

// New creates a controller in view mode holding the normalized initial
// layout. Call Load to restore a persisted snapshot.
func New(opts Options) *Controller {
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Key == "" {
		opts.Key = StorageKey
	}
	if opts.NewID == nil {
		opts.NewID = func(prefix string) string { return prefix + "_" + uuid.NewString() }
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	initial := opts.Initial.Clone()
	c := &Controller{
		store:   opts.Store,
		key:     opts.Key,
		sink:    opts.Sink,
		initial: initial,
		newID:   opts.NewID,
		logger:  opts.Logger,
		mode:    ModeView,
		sel:     emptySelection(),
	}
	c.nodes = Normalize(initial.Nodes, c.mode)
	c.edges = flow.CloneEdges(initial.Edges)
	return c
}

// Load restores the persisted snapshot. A missing or malformed snapshot
// falls back to the initial layout; a snapshot without a usable node array
// keeps the initial nodes; one with a missing or empty edge list gets the
// initial edges. The restored state is persisted again so the store always
// holds a repaired snapshot. When the store cannot be read the initial
// layout is used in memory only and the stored snapshot is left alone.
// Load never fails on bad data.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	source := c.restore(ctx)
	c.logger.Debug("restored snapshot", "source", source, "nodes", len(c.nodes), "edges", len(c.edges))
	observability.Editor().OnRestore(ctx, source)
	if source == RestoreUnavailable {
		return
	}
	c.persist(ctx)
}

func (c *Controller) restore(ctx context.Context) string {
	c.nodes = Normalize(c.initial.Nodes, c.mode)
	c.edges = flow.CloneEdges(c.initial.Edges)

	data, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn("read snapshot failed, using initial layout without saving", "err", err)
		return RestoreUnavailable
	}
	if !found {
		return RestoreInitial
	}

	parts, err := flow.DecodeParts(data)
	if err != nil {
		c.logger.Warn("stored snapshot is malformed, using initial layout", "err", err)
		return RestoreInitial
	}

	source := RestoreStored
	if parts.Nodes != nil {
		c.nodes = Normalize(parts.Nodes, c.mode)
	} else {
		source = RestorePartial
	}
	if len(parts.Edges) > 0 {
		c.edges = parts.Edges
	} else {
		source = RestorePartial
	}
	return source
}

// persist writes the savable snapshot. An empty live edge list is replaced
// by the initial edges both in the snapshot and in the live state.
// Callers must hold c.mu.
func (c *Controller) persist(ctx context.Context) {
	if len(c.edges) == 0 {
		c.edges = flow.CloneEdges(c.initial.Edges)
	}

	snap := flow.Snapshot{Nodes: c.nodes, Edges: c.edges}.Savable()
	data, err := flow.Marshal(snap)
	if err == nil {
		err = c.store.Set(ctx, c.key, data)
	}
	observability.Editor().OnPersist(ctx, len(data), err)
	if err != nil {
		c.logger.Warn("persist snapshot failed", "key", c.key, "err", err)
		return
	}
	c.logger.Debug("persisted snapshot", "bytes", len(data))
}

// ensureEdges returns edges, or the initial edges when edges is empty.
func (c *Controller) ensureEdges(edges []flow.Edge) []flow.Edge {
	if len(edges) == 0 {
		return flow.CloneEdges(c.initial.Edges)
	}
	return edges
}

// mutate runs fn under the lock, persists on success and reports the
// operation. fn is skipped, without error, outside edit mode when
// editOnly is set.
func (c *Controller) mutate(ctx context.Context, op string, editOnly bool, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if editOnly && c.mode != ModeEdit {
		c.logger.Debug("ignored in view mode", "op", op)
		return nil
	}

	start := time.Now()
	err := fn()
	if err == nil {
		c.persist(ctx)
	}
	observability.Editor().OnMutation(ctx, op, time.Since(start), err)
	return err
}

// State is a point-in-time copy of the controller state.
type State struct {
	Mode      Mode        `json:"mode"`
	Nodes     []flow.Node `json:"nodes"`
	Edges     []flow.Edge `json:"edges"`
	Selection Selection   `json:"selection"`
}

// State returns a deep copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Mode:      c.mode,
		Nodes:     flow.CloneNodes(c.nodes),
		Edges:     flow.CloneEdges(c.edges),
		Selection: c.sel.clone(),
	}
}

// Snapshot returns a deep copy of the live nodes and edges.
func (c *Controller) Snapshot() flow.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return flow.Snapshot{Nodes: c.nodes, Edges: c.edges}.Clone()
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches modes and re-normalizes every node so editable flags
// follow the new mode.
func (c *Controller) SetMode(ctx context.Context, mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	return c.mutate(ctx, "set_mode", false, func() error {
		c.mode = mode
		c.nodes = Normalize(c.nodes, mode)
		return nil
	})
}

// Reset discards the persisted snapshot and returns to the initial layout.
func (c *Controller) Reset(ctx context.Context) error {
	return c.mutate(ctx, "reset", false, func() error {
		if err := c.store.Delete(ctx, c.key); err != nil {
			c.logger.Warn("discard snapshot failed", "key", c.key, "err", err)
		}
		c.nodes = Normalize(c.initial.Nodes, c.mode)
		c.edges = flow.CloneEdges(c.initial.Edges)
		c.sel = emptySelection()
		return nil
	})
}

// ExportJSON returns the savable snapshot as indented JSON, with the
// initial edges substituted for an empty edge list.
func (c *Controller) ExportJSON() ([]byte, error) {
	c.mu.Lock()
	snap := flow.Snapshot{Nodes: c.nodes, Edges: c.ensureEdges(c.edges)}.Savable()
	c.mu.Unlock()
	return flow.MarshalIndent(snap)
}

// Export writes the snapshot to the configured file sink as ExportFilename.
func (c *Controller) Export(ctx context.Context) error {
	return c.ExportTo(ctx, c.sink)
}

// ExportTo writes the snapshot to sink as ExportFilename.
func (c *Controller) ExportTo(ctx context.Context, sink FileSink) error {
	if sink == nil {
		return errors.New(errors.ErrCodeUnsupported, "no export destination configured")
	}
	data, err := c.ExportJSON()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode export")
	}
	if err := sink.WriteFile(ctx, ExportFilename, data); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", ExportFilename)
	}
	c.logger.Debug("exported snapshot", "file", ExportFilename, "bytes", len(data))
	return nil
}

// Import replaces the live state with a pasted snapshot. The text must be a
// JSON object with both a "nodes" and an "edges" array; an empty edge list
// is replaced by the initial edges. On any error the state is unchanged.
func (c *Controller) Import(ctx context.Context, text string) error {
	if !json.Valid([]byte(text)) {
		return errors.New(errors.ErrCodeInvalidJSON, "import is not valid JSON")
	}
	parts, err := flow.DecodeParts([]byte(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidShape, err, `import must look like {"nodes":[...],"edges":[...]}`)
	}
	if parts.Nodes == nil || parts.Edges == nil {
		return errors.New(errors.ErrCodeInvalidShape, `import must look like {"nodes":[...],"edges":[...]}`)
	}

	return c.mutate(ctx, "import", false, func() error {
		c.nodes = Normalize(parts.Nodes, c.mode)
		c.edges = c.ensureEdges(parts.Edges)
		c.sel = emptySelection()
		return nil
	})
}
