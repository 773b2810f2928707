package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/biotree/pkg/taxonomy"
)

// datasetCommand creates the dataset command.
func (c *CLI) datasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Validate and scaffold taxonomy datasets",
	}

	cmd.AddCommand(c.datasetValidateCommand())
	cmd.AddCommand(c.datasetInitCommand())

	return cmd
}

// datasetValidateCommand creates the "dataset validate" subcommand.
func (c *CLI) datasetValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check that a dataset forms a single-rooted tree",
		Long: `Check that a dataset forms a single-rooted tree.

Every taxon needs a unique id and a known rank, exactly one taxon may lack a
parent, and parent chains may not loop. Branch points whose lineage names a
missing taxon are reported but allowed. Without a file argument the
configured dataset is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Dataset.Path = args[0]
			}

			d, err := loadDataset(cfg)
			if err != nil {
				printError("Invalid dataset")
				return err
			}

			name := cfg.Dataset.Path
			if name == "" {
				name = "bundled animal kingdom"
			}
			printSuccess("Dataset OK: %s", name)
			if root, ok := d.Root(); ok {
				printKeyValue("root", root.Label)
			}
			printKeyValue("taxa", fmt.Sprintf("%d", len(d.Taxa)))
			printKeyValue("branches", fmt.Sprintf("%d", len(d.BranchPoints)))
			for _, bp := range d.DanglingBranchPoints() {
				printWarning("branch point %s: lineage %s %s %s names a missing taxon", bp.ID, bp.From, iconArrow, bp.To)
			}
			return nil
		},
	}
}

// datasetInitCommand creates the "dataset init" subcommand.
func (c *CLI) datasetInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <file.toml>",
		Short: "Write the bundled animal kingdom as a TOML dataset to start from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := taxonomy.WriteTOML(taxonomy.Animalia(), path); err != nil {
				return err
			}
			printSuccess("Wrote dataset")
			printFile(path)
			printNextStep("Use it", fmt.Sprintf("%s --dataset %s layout", appName, path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
