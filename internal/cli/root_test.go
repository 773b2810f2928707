package cli

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()

	for _, name := range []string{
		"layout", "render", "show", "browse", "export", "import", "reset",
		"add", "connect", "delete", "photo", "serve", "storage", "dataset", "completion",
	} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	for _, path := range [][]string{
		{"add", "taxon"}, {"add", "branchpoint"}, {"add", "bp"},
		{"storage", "path"}, {"storage", "clear"},
		{"dataset", "validate"}, {"dataset", "init"},
		{"photo", "add"}, {"photo", "rm"},
	} {
		if _, _, err := root.Find(path); err != nil {
			t.Errorf("subcommand %v not registered: %v", path, err)
		}
	}
}

func TestRootCommandGlobalFlags(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()

	for _, name := range []string{"config", "storage", "dataset", "verbose"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing global flag --%s", name)
		}
	}
}
