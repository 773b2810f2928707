package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Editor hooks
	e := NoopEditorHooks{}
	e.OnMutation(ctx, "add_taxon", time.Millisecond, nil)
	e.OnPersist(ctx, 2048, errors.New("disk full"))
	e.OnRestore(ctx, "stored")

	// Store hooks
	s := NoopStoreHooks{}
	s.OnStoreHit(ctx, "file")
	s.OnStoreMiss(ctx, "redis")
	s.OnStoreSet(ctx, "sqlite", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/api/flow")
	h.OnResponse(ctx, "GET", "/api/flow", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Error("Editor() should return NoopEditorHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customEditor := &testEditorHooks{}
	SetEditorHooks(customEditor)
	if Editor() != customEditor {
		t.Error("SetEditorHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Error("Reset() should restore NoopEditorHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testEditorHooks{}
	SetEditorHooks(custom)

	// Setting nil should be ignored
	SetEditorHooks(nil)

	if Editor() != custom {
		t.Error("SetEditorHooks(nil) should be ignored")
	}

	Reset()
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testEditorHooks{}
	SetEditorHooks(custom)
	Editor().OnMutation(context.Background(), "reset", 0, nil)
	Editor().OnMutation(context.Background(), "import", 0, errors.New("bad"))

	if custom.mutations != 2 {
		t.Errorf("mutations = %d, want 2", custom.mutations)
	}
}

// Test implementations
type testEditorHooks struct {
	NoopEditorHooks
	mutations int
}

func (h *testEditorHooks) OnMutation(context.Context, string, time.Duration, error) {
	h.mutations++
}

type testStoreHooks struct{ NoopStoreHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
