package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/biotree/pkg/errors"
)

// LoadFile reads a dataset from a .toml or .json file and validates it.
//
// TOML has no null, so roots are written without a parent key:
//
//	[[taxa]]
//	id = "animalia"
//	label = "動物界"
//	rank = "kingdom"
//
//	[[taxa]]
//	id = "porifera"
//	parent = "animalia"
//	label = "海綿動物門"
//	rank = "phylum"
func LoadFile(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return ParseTOML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return Dataset{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q (want .toml or .json)", ext)
	}
}

// ParseTOML decodes and validates a TOML dataset.
func ParseTOML(data []byte) (Dataset, error) {
	var d Dataset
	if _, err := toml.Decode(string(data), &d); err != nil {
		return Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode TOML dataset")
	}
	if err := d.Validate(); err != nil {
		return Dataset{}, err
	}
	return d, nil
}

// ParseJSON decodes and validates a JSON dataset. A null parent marks the root.
func ParseJSON(data []byte) (Dataset, error) {
	var raw struct {
		Taxa []struct {
			ID     string  `json:"id"`
			Parent *string `json:"parent"`
			Label  string  `json:"label"`
			Rank   Rank    `json:"rank"`
		} `json:"taxa"`
		BranchPoints []BranchPoint `json:"branch_points"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode JSON dataset")
	}

	d := Dataset{BranchPoints: raw.BranchPoints}
	for _, t := range raw.Taxa {
		taxon := Taxon{ID: t.ID, Label: t.Label, Rank: t.Rank}
		if t.Parent != nil {
			taxon.Parent = *t.Parent
		}
		d.Taxa = append(d.Taxa, taxon)
	}
	if err := d.Validate(); err != nil {
		return Dataset{}, err
	}
	return d, nil
}

// WriteTOML encodes d as TOML, the format [LoadFile] reads back.
func WriteTOML(d Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(d); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
