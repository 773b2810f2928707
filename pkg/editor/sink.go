package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/biotree/pkg/errors"
)

// ExportFilename is the name exported snapshots are offered under.
const ExportFilename = "bio-tree-flow.json"

// FileSink receives exported files.
type FileSink interface {
	WriteFile(ctx context.Context, name string, data []byte) error
}

// SinkFunc adapts a function to FileSink.
type SinkFunc func(ctx context.Context, name string, data []byte) error

func (f SinkFunc) WriteFile(ctx context.Context, name string, data []byte) error {
	return f(ctx, name, data)
}

// DirSink writes exported files into a directory.
type DirSink struct {
	Dir string
}

// WriteFile writes data to Dir/name. name must be a plain file name.
func (s DirSink) WriteFile(_ context.Context, name string, data []byte) error {
	if err := errors.ValidateFilename(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0o644)
}
