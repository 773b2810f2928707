package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/biotree/pkg/editor"
	"github.com/matzehuels/biotree/pkg/photo"
	"github.com/matzehuels/biotree/pkg/taxonomy"
)

// addCommand creates the add command with its taxon and branchpoint subcommands.
func (c *CLI) addCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a taxon or branch point to the diagram",
	}

	cmd.AddCommand(c.addTaxonCommand())
	cmd.AddCommand(c.addBranchPointCommand())

	return cmd
}

// addTaxonCommand creates the "add taxon" subcommand.
func (c *CLI) addTaxonCommand() *cobra.Command {
	var (
		label, rank, memo string
		photos            []string
	)

	cmd := &cobra.Command{
		Use:   "taxon",
		Short: "Add a taxon node",
		Long: `Add a taxon node at the default position.

Fields left unset keep the new-node defaults. Connect the node with
'connect' afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var patch editor.TaxonPatch
			if cmd.Flags().Changed("rank") {
				r, err := taxonomy.ParseRank(rank)
				if err != nil {
					return err
				}
				patch.Rank = &r
			}
			if cmd.Flags().Changed("label") {
				patch.LabelText = &label
			}
			if cmd.Flags().Changed("memo") {
				patch.Memo = &memo
			}
			// Photos are read before anything is stored so a bad file
			// leaves the diagram untouched.
			if len(photos) > 0 {
				urls, err := c.readPhotos(ctx, photos)
				if err != nil {
					return err
				}
				patch.Photos = urls
			}

			return c.withSession(ctx, editor.ModeEdit, func(s *session) error {
				id, err := s.AddTaxon(ctx)
				if err != nil {
					return err
				}
				if err := s.UpdateTaxon(ctx, id, patch); err != nil {
					return err
				}
				printSuccess("Added taxon %s", StyleHighlight.Render(id))
				printNextStep("Connect it", fmt.Sprintf("%s connect <parent> %s", appName, id))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "display label")
	cmd.Flags().StringVar(&rank, "rank", "", "rank: domain, kingdom, phylum, class, order, family, genus, species, clade")
	cmd.Flags().StringVar(&memo, "memo", "", "free-form memo")
	cmd.Flags().StringSliceVar(&photos, "photo", nil, "image files to attach (repeatable)")

	return cmd
}

// addBranchPointCommand creates the "add branchpoint" subcommand.
func (c *CLI) addBranchPointCommand() *cobra.Command {
	var label, structure, function, from, to string

	cmd := &cobra.Command{
		Use:     "branchpoint",
		Aliases: []string{"bp"},
		Short:   "Add a branch point node",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var patch editor.BranchPointPatch
			set := func(name string, v *string, dst **string) {
				if cmd.Flags().Changed(name) {
					*dst = v
				}
			}
			set("label", &label, &patch.Label)
			set("structure", &structure, &patch.Structure)
			set("function", &function, &patch.Function)
			set("from", &from, &patch.From)
			set("to", &to, &patch.To)

			return c.withSession(ctx, editor.ModeEdit, func(s *session) error {
				id, err := s.AddBranchPoint(ctx)
				if err != nil {
					return err
				}
				if err := s.UpdateBranchPoint(ctx, id, patch); err != nil {
					return err
				}
				printSuccess("Added branch point %s", StyleHighlight.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "display label")
	cmd.Flags().StringVar(&structure, "structure", "", "acquired structure")
	cmd.Flags().StringVar(&function, "function", "", "function of the structure")
	cmd.Flags().StringVar(&from, "from", "", "parent taxon id")
	cmd.Flags().StringVar(&to, "to", "", "child taxon id")

	return cmd
}

// connectCommand creates the connect command.
func (c *CLI) connectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <source> <target>",
		Short: "Draw an edge between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, editor.ModeEdit, func(s *session) error {
				id, err := s.Connect(ctx, editor.Connection{Source: args[0], Target: args[1]})
				if err != nil {
					return err
				}
				printSuccess("Connected %s %s %s", args[0], iconArrow, args[1])
				printDetail("Edge: %s", id)
				return nil
			})
		},
	}
}

// deleteCommand creates the delete command.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete nodes or edges and everything attached to them",
		Long: `Delete nodes or edges.

The ids are selected together and deleted at once; deleting a node also
removes every edge that touches it. Unknown ids are ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, editor.ModeEdit, func(s *session) error {
				before := s.State()
				s.SetSelection(args, args)
				if err := s.DeleteSelected(ctx); err != nil {
					return err
				}
				after := s.State()

				removed := len(before.Nodes) - len(after.Nodes)
				if removed == 0 && len(before.Edges) == len(after.Edges) {
					printWarning("Nothing matched %v", args)
					return nil
				}
				printSuccess("Deleted %d nodes and %d edges", removed, len(before.Edges)-len(after.Edges))
				return nil
			})
		},
	}
}

// photoCommand creates the photo command for managing taxon photos.
func (c *CLI) photoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Attach or remove taxon photos",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <taxon> <file>...",
		Short: "Attach image files to a taxon",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, editor.ModeEdit, func(s *session) error {
				err := photoSpinner(ctx, c.status, len(args)-1).run(func() error {
					return s.AttachPhotos(ctx, args[0], fileSources(args[1:])...)
				})
				if err != nil {
					return err
				}
				printSuccess("Attached %d photos to %s", len(args)-1, args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <taxon> <index>",
		Short: "Remove a photo by its zero-based index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("photo index %q: %w", args[1], err)
			}
			ctx := cmd.Context()
			return c.withSession(ctx, editor.ModeEdit, func(s *session) error {
				if err := s.RemovePhoto(ctx, args[0], index); err != nil {
					return err
				}
				printSuccess("Removed photo %d from %s", index, args[0])
				return nil
			})
		},
	})

	return cmd
}

// readPhotos encodes the image files at paths as data URLs.
func (c *CLI) readPhotos(ctx context.Context, paths []string) ([]string, error) {
	var urls []string
	err := photoSpinner(ctx, c.status, len(paths)).run(func() error {
		var err error
		urls, err = photo.ReadAll(ctx, fileSources(paths))
		return err
	})
	return urls, err
}

func fileSources(paths []string) []photo.Source {
	sources := make([]photo.Source, len(paths))
	for i, p := range paths {
		sources[i] = photo.File(p)
	}
	return sources
}
