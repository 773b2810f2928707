package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/biotree/pkg/editor"
)

// showCommand creates the show command for inspecting the diagram.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "List nodes, or show the details of one node",
		Long: `List nodes, or show the details of one node.

Without an id, every node is listed with its rank tag and label. With an id,
the node is selected and the side-panel fields are printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), editor.ModeView, func(s *session) error {
				if len(args) == 0 {
					printNodeList(s.State())
					return nil
				}
				s.SelectNode(args[0])
				d := s.Detail()
				if d.Empty() {
					return notFound(args[0])
				}
				printDetailPanel(d)
				return nil
			})
		},
	}
}

func printNodeList(st editor.State) {
	printInfo("Diagram")
	printStats(len(st.Nodes), len(st.Edges), st.Mode)
	printNewline()
	for _, n := range st.Nodes {
		fmt.Printf("  %-24s %s\n", StyleDim.Render(n.ID), nodeLine(n))
	}
}

// printDetailPanel prints the side-panel fields of d.
func printDetailPanel(d editor.Detail) {
	title, rows := detailRows(d)
	fmt.Println(StyleTitle.Render(title))
	for _, kv := range rows {
		printKeyValue(kv[0], kv[1])
	}
}

// detailRows returns the panel title and its key/value rows.
func detailRows(d editor.Detail) (string, [][2]string) {
	switch {
	case d.Taxon != nil:
		t := d.Taxon
		return t.LabelText, [][2]string{
			{"id", t.ID},
			{"rank", fmt.Sprintf("%s (%s)", t.RankTag, rankName(string(t.Rank)))},
			{"memo", oneLine(t.Memo)},
			{"photos", fmt.Sprintf("%d", len(t.Photos))},
		}
	case d.BranchPoint != nil:
		bp := d.BranchPoint
		return iconBranch + " " + bp.Label, [][2]string{
			{"id", bp.ID},
			{"structure", bp.Structure},
			{"function", bp.Function},
			{"lineage", bp.From + " " + iconArrow + " " + bp.To},
		}
	default:
		return "No selection", nil
	}
}

func rankName(r string) string {
	if r == "" {
		return "clade"
	}
	return r
}

// oneLine folds a multi-line memo for key/value display.
func oneLine(s string) string {
	if s == "" {
		return StyleDim.Render("-")
	}
	return strings.ReplaceAll(s, "\n", " / ")
}
