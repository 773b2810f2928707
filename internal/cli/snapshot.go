package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/biotree/pkg/editor"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the diagram as " + editor.ExportFilename,
		Long: `Export the diagram as a snapshot JSON file.

The file is written as ` + editor.ExportFilename + ` into --dir (default: the
current directory). Use --dir - to print it to stdout instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, editor.ModeView, func(s *session) error {
				if dir == "-" {
					return s.ExportTo(ctx, writerSink(cmd.OutOrStdout()))
				}
				prog := newProgress(loggerFromContext(ctx))
				err := exportSpinner(ctx, c.status, string(s.store.Driver())).run(func() error {
					return s.ExportTo(ctx, editor.DirSink{Dir: dir})
				})
				if err != nil {
					prog.failed("Export failed", err)
					return err
				}
				prog.done("Exported", "nodes", len(s.State().Nodes), "dir", dir)
				printSuccess("Exported diagram")
				printFile(filepath.Join(dir, editor.ExportFilename))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory, or - for stdout")

	return cmd
}

// writerSink writes exported files to w, ignoring the file name.
func writerSink(w io.Writer) editor.SinkFunc {
	return func(_ context.Context, _ string, data []byte) error {
		_, err := w.Write(data)
		return err
	}
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the diagram with a snapshot JSON file",
		Long: `Replace the diagram with a snapshot JSON file.

The file must be a JSON object with "nodes" and "edges" arrays, as written by
'export' or 'layout'. A snapshot with an empty edge list gets the initial
layout's edges. Malformed input leaves the stored diagram unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			ctx := cmd.Context()
			return c.withSession(ctx, editor.ModeView, func(s *session) error {
				if err := s.Import(ctx, string(data)); err != nil {
					return err
				}
				st := s.State()
				printSuccess("Imported diagram")
				printStats(len(st.Nodes), len(st.Edges), "")
				return nil
			})
		},
	}
}

// resetCommand creates the reset command.
func (c *CLI) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard edits and return to the initial layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, editor.ModeView, func(s *session) error {
				if err := s.Reset(ctx); err != nil {
					return err
				}
				printSuccess("Diagram reset to the initial layout")
				return nil
			})
		},
	}
}
