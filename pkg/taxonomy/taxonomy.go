// Package taxonomy holds the static taxonomic dataset a diagram is derived from.
//
// A [Dataset] is a list of taxon records forming a single-rooted tree plus a
// list of branch-point records. A branch point annotates the lineage between
// two taxa with the trait (structure and function) acquired there.
//
// Datasets are pure data: the [layout] package turns them into positioned
// graph nodes and edges.
//
// [layout]: github.com/matzehuels/biotree/pkg/layout
package taxonomy

import (
	"slices"

	"github.com/matzehuels/biotree/pkg/errors"
)

// Rank is the classification level of a taxon.
type Rank string

// Known ranks.
const (
	RankDomain  Rank = "domain"
	RankKingdom Rank = "kingdom"
	RankPhylum  Rank = "phylum"
	RankClass   Rank = "class"
	RankOrder   Rank = "order"
	RankFamily  Rank = "family"
	RankGenus   Rank = "genus"
	RankSpecies Rank = "species"
	RankClade   Rank = "clade"
)

// Ranks lists every known rank from the broadest to the narrowest,
// with clade last since it is not a Linnaean level.
var Ranks = []Rank{
	RankDomain, RankKingdom, RankPhylum, RankClass, RankOrder,
	RankFamily, RankGenus, RankSpecies, RankClade,
}

// Valid reports whether r is one of the known ranks.
func (r Rank) Valid() bool { return slices.Contains(Ranks, r) }

// Tag returns the short display tag for a rank. Unknown and empty ranks
// are tagged as clades.
func (r Rank) Tag() string {
	switch r {
	case RankDomain:
		return "ドメイン"
	case RankKingdom:
		return "界"
	case RankPhylum:
		return "門"
	case RankClass:
		return "綱"
	case RankOrder:
		return "目"
	case RankFamily:
		return "科"
	case RankGenus:
		return "属"
	case RankSpecies:
		return "種"
	default:
		return "系統"
	}
}

// ParseRank validates s as a rank name.
func ParseRank(s string) (Rank, error) {
	r := Rank(s)
	if !r.Valid() {
		return "", errors.New(errors.ErrCodeInvalidRank, "unknown rank: %q", s)
	}
	return r, nil
}

// Taxon is a classification unit. Parent is empty for the root.
type Taxon struct {
	ID     string `json:"id" toml:"id"`
	Parent string `json:"parent" toml:"parent"`
	Label  string `json:"label" toml:"label"`
	Rank   Rank   `json:"rank" toml:"rank"`
}

// IsRoot reports whether t has no parent.
func (t Taxon) IsRoot() bool { return t.Parent == "" }

// BranchPoint is a trait-acquisition event on the lineage From → To.
type BranchPoint struct {
	ID        string `json:"id" toml:"id"`
	From      string `json:"from" toml:"from"`
	To        string `json:"to" toml:"to"`
	Structure string `json:"structure" toml:"structure"`
	Function  string `json:"function" toml:"function"`
	Label     string `json:"label,omitempty" toml:"label"`
}

// Dataset is a taxonomy tree plus its branch points, both in dataset order.
type Dataset struct {
	Taxa         []Taxon       `json:"taxa" toml:"taxa"`
	BranchPoints []BranchPoint `json:"branch_points" toml:"branch_points"`
}

// Root returns the first taxon without a parent.
func (d *Dataset) Root() (Taxon, bool) {
	for _, t := range d.Taxa {
		if t.IsRoot() {
			return t, true
		}
	}
	return Taxon{}, false
}

// Taxon looks up a taxon by id.
func (d *Dataset) Taxon(id string) (Taxon, bool) {
	for _, t := range d.Taxa {
		if t.ID == id {
			return t, true
		}
	}
	return Taxon{}, false
}

// Children returns the parent → child ids mapping, children in dataset order.
func (d *Dataset) Children() map[string][]string {
	children := make(map[string][]string, len(d.Taxa))
	for _, t := range d.Taxa {
		children[t.Parent] = append(children[t.Parent], t.ID)
	}
	return children
}

// BranchPointFor returns the first branch point annotating parent → child.
// Later records for the same pair are never spliced into the lineage.
func (d *Dataset) BranchPointFor(parent, child string) (BranchPoint, bool) {
	for _, bp := range d.BranchPoints {
		if bp.From == parent && bp.To == child {
			return bp, true
		}
	}
	return BranchPoint{}, false
}

// DanglingBranchPoints returns branch points whose From or To does not name a taxon.
// They are allowed; layout places them relative to whatever endpoint exists.
func (d *Dataset) DanglingBranchPoints() []BranchPoint {
	var out []BranchPoint
	for _, bp := range d.BranchPoints {
		_, okFrom := d.Taxon(bp.From)
		_, okTo := d.Taxon(bp.To)
		if !okFrom || !okTo {
			out = append(out, bp)
		}
	}
	return out
}

// Validate checks that the taxa form a single-rooted acyclic tree with
// known ranks and that every id is unique across taxa and branch points.
func (d *Dataset) Validate() error {
	if len(d.Taxa) == 0 {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset has no taxa")
	}

	ids := make(map[string]bool, len(d.Taxa)+len(d.BranchPoints))
	roots := 0
	for _, t := range d.Taxa {
		if err := errors.ValidateNodeID(t.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "taxon %q", t.ID)
		}
		if ids[t.ID] {
			return errors.New(errors.ErrCodeInvalidDataset, "duplicate id %q", t.ID)
		}
		ids[t.ID] = true
		if !t.Rank.Valid() {
			return errors.New(errors.ErrCodeInvalidRank, "taxon %q has unknown rank %q", t.ID, t.Rank)
		}
		if t.IsRoot() {
			roots++
		}
	}
	if roots != 1 {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset must have exactly one root, found %d", roots)
	}

	for _, t := range d.Taxa {
		if !t.IsRoot() && !ids[t.Parent] {
			return errors.New(errors.ErrCodeInvalidDataset, "taxon %q references unknown parent %q", t.ID, t.Parent)
		}
	}
	if id, ok := d.findCycle(); ok {
		return errors.New(errors.ErrCodeInvalidDataset, "parent chain of %q forms a cycle", id)
	}

	for _, bp := range d.BranchPoints {
		if err := errors.ValidateNodeID(bp.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "branch point %q", bp.ID)
		}
		if ids[bp.ID] {
			return errors.New(errors.ErrCodeInvalidDataset, "duplicate id %q", bp.ID)
		}
		ids[bp.ID] = true
	}
	return nil
}

// findCycle walks every parent chain and reports the first taxon whose chain
// revisits a node.
func (d *Dataset) findCycle() (string, bool) {
	parent := make(map[string]string, len(d.Taxa))
	for _, t := range d.Taxa {
		parent[t.ID] = t.Parent
	}
	for _, t := range d.Taxa {
		seen := map[string]bool{}
		for id := t.ID; id != ""; id = parent[id] {
			if seen[id] {
				return t.ID, true
			}
			seen[id] = true
		}
	}
	return "", false
}
