package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/biotree/pkg/editor"
	"github.com/matzehuels/biotree/pkg/flow"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1).
			Width(44)
)

// browseCommand creates the browse command for the interactive node panel.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse nodes and their details in an interactive panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), editor.ModeView, func(s *session) error {
				p := tea.NewProgram(NewBrowseModel(s.Controller), tea.WithContext(cmd.Context()))
				_, err := p.Run()
				return err
			})
		},
	}
}

// =============================================================================
// BrowseModel - Interactive node list with detail panel
// =============================================================================

// nodeSelector is the part of the editor the browse panel drives.
type nodeSelector interface {
	State() editor.State
	SelectNode(id string)
	ClearSelection()
	Detail() editor.Detail
}

// BrowseModel is the bubbletea model for the node browser. Moving the
// cursor selects the node under it, and the panel shows its detail.
type BrowseModel struct {
	editor nodeSelector
	Nodes  []flow.Node
	Cursor int
	Height int
	Offset int
	Detail editor.Detail
}

// NewBrowseModel creates a browse model over the editor's current nodes
// with the first node selected.
func NewBrowseModel(e nodeSelector) BrowseModel {
	m := BrowseModel{
		editor: e,
		Nodes:  e.State().Nodes,
		Height: 15,
	}
	m.selectCursor()
	return m
}

func (m *BrowseModel) selectCursor() {
	if len(m.Nodes) == 0 {
		m.editor.ClearSelection()
	} else {
		m.editor.SelectNode(m.Nodes[m.Cursor].ID)
	}
	m.Detail = m.editor.Detail()
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
				m.selectCursor()
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
				m.selectCursor()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Nodes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))
	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		if i == m.Cursor {
			list.WriteString(listSelectedStyle.Render("▸ " + n.ID))
		} else {
			list.WriteString(listNormalStyle.Render("  " + n.ID))
		}
		list.WriteString("\n")
	}
	list.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Nodes)), len(m.Nodes))))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(28).Render(list.String()),
		panelStyle.Render(renderPanel(m.Detail)),
	))
	b.WriteString("\n")
	return b.String()
}

// renderPanel formats a detail as panel text.
func renderPanel(d editor.Detail) string {
	title, rows := detailRows(d)
	if d.Empty() {
		return listDimStyle.Render(title)
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(title))
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(10)
	for _, kv := range rows {
		b.WriteString("\n")
		b.WriteString(keyStyle.Render(kv[0]) + " " + StyleValue.Render(kv[1]))
	}
	return b.String()
}
