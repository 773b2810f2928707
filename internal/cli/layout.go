package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/biotree/internal/config"
	"github.com/matzehuels/biotree/pkg/flow"
	"github.com/matzehuels/biotree/pkg/layout"
)

// layoutCommand creates the layout command for printing the initial layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		opts   config.LayoutConfig
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the initial layout generated from the dataset",
		Long: `Print the initial layout generated from the dataset.

Taxa are placed left to right by depth in the tree and top to bottom in
dataset order within each depth. Each branch point sits on its lineage a
fraction of the way from the parent to the child. The output is a snapshot
JSON document that can be loaded with 'import'.

Gaps left at zero take their values from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Float64Var(&opts.HorizontalGap, "horizontal-gap", 0, fmt.Sprintf("distance between depths (default %v)", layout.DefaultHorizontalGap))
	cmd.Flags().Float64Var(&opts.VerticalGap, "vertical-gap", 0, fmt.Sprintf("distance between rows (default %v)", layout.DefaultVerticalGap))
	cmd.Flags().Float64Var(&opts.BranchT, "branch-t", 0, fmt.Sprintf("branch point position along its lineage (default %v)", layout.DefaultBranchT))

	return cmd
}

// runLayout builds the layout and writes it to output or stdout.
func (c *CLI) runLayout(cmd *cobra.Command, flags config.LayoutConfig, output string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	mergeLayout(&cfg.Layout, flags)

	prog := newProgress(loggerFromContext(cmd.Context()))
	s, err := initialLayout(cfg)
	if err != nil {
		prog.failed("Layout failed", err)
		return fmt.Errorf("build layout: %w", err)
	}
	prog.done("Laid out", "nodes", len(s.Nodes), "edges", len(s.Edges))

	if output == "" {
		return flow.WriteJSON(s, cmd.OutOrStdout())
	}
	if err := flow.WriteFile(s, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(s.Nodes), len(s.Edges), "")
	printNewline()
	printNextStep("Load it", appName+" import "+output)
	return nil
}

// mergeLayout overrides cfg with the non-zero flag values.
func mergeLayout(cfg *config.LayoutConfig, flags config.LayoutConfig) {
	if flags.HorizontalGap != 0 {
		cfg.HorizontalGap = flags.HorizontalGap
	}
	if flags.VerticalGap != 0 {
		cfg.VerticalGap = flags.VerticalGap
	}
	if flags.BranchT != 0 {
		cfg.BranchT = flags.BranchT
	}
}
