package editor

import (
	"github.com/matzehuels/biotree/pkg/errors"
	"github.com/matzehuels/biotree/pkg/flow"
	"github.com/matzehuels/biotree/pkg/taxonomy"
)

// Mode controls whether the diagram accepts structural edits.
type Mode string

// Modes.
const (
	ModeView Mode = "view"
	ModeEdit Mode = "edit"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeView, ModeEdit:
		return m, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidMode, "unknown mode %q (want view or edit)", s)
	}
}

// PlaceholderLabel replaces a taxon label that is missing, null or empty.
const PlaceholderLabel = "（名称）"

// Normalize re-derives the computed fields of every node for mode: taxon
// defaults (label placeholder, empty memo, empty photo list), the rank tag
// and the editable flag. Branch points only get their editable flag
// refreshed; other nodes pass through unchanged.
//
// Normalize returns fresh nodes and never mutates its input. Applying it
// twice with the same mode gives the same result as applying it once.
func Normalize(nodes []flow.Node, mode Mode) []flow.Node {
	out := flow.CloneNodes(nodes)
	editable := mode == ModeEdit
	for i := range out {
		switch d := out[i].Data.(type) {
		case *flow.TaxonData:
			if d.LabelText == "" {
				d.LabelText = PlaceholderLabel
			}
			if d.Photos == nil {
				d.Photos = []string{}
			}
			d.RankTag = rankOrClade(d.Rank).Tag()
			d.Editable = editable
		case *flow.BranchPointData:
			d.Editable = editable
		}
	}
	return out
}

func rankOrClade(r taxonomy.Rank) taxonomy.Rank {
	if r == "" {
		return taxonomy.RankClade
	}
	return r
}
