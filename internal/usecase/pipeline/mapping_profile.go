package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/columns"
)

const mappingProfileVersion = 1

// MappingProfile overrides the header aliases and positional fallback of the
// anomaly export, for sources whose columns drift from the reference layout.
//
//	version = 1
//
//	[aliases]
//	num_equipement = ["Equipement", "Tag"]
//
//	[positions]
//	date_detection = 2
//
// Files ending in .yaml or .yml are read as YAML with the same keys.
type MappingProfile struct {
	Version   int                 `toml:"version" yaml:"version"`
	Aliases   map[string][]string `toml:"aliases" yaml:"aliases"`
	Positions map[string]int      `toml:"positions" yaml:"positions"`
	// ReplacePositions drops the default indices instead of merging into them.
	ReplacePositions bool `toml:"replace_positions" yaml:"replace_positions"`
}

func LoadMappingProfile(path string) (MappingProfile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return MappingProfile{}, errors.New("mapping profile path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return MappingProfile{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseMappingProfileYAML(raw)
	default:
		return ParseMappingProfile(raw)
	}
}

func ParseMappingProfile(raw []byte) (MappingProfile, error) {
	var profile MappingProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return MappingProfile{}, err
	}
	if err := validateMappingProfile(profile); err != nil {
		return MappingProfile{}, err
	}
	return profile, nil
}

func ParseMappingProfileYAML(raw []byte) (MappingProfile, error) {
	var profile MappingProfile
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return MappingProfile{}, err
	}
	if err := validateMappingProfile(profile); err != nil {
		return MappingProfile{}, err
	}
	return profile, nil
}

func validateMappingProfile(profile MappingProfile) error {
	if profile.Version != mappingProfileVersion {
		return fmt.Errorf("unsupported mapping profile version: expected version = %d", mappingProfileVersion)
	}
	for name, aliases := range profile.Aliases {
		if !knownField(name) {
			return errors.New("aliases." + name + ": unknown field")
		}
		for _, alias := range aliases {
			if strings.TrimSpace(alias) == "" {
				return errors.New("aliases." + name + ": empty header alias")
			}
		}
	}
	for name, idx := range profile.Positions {
		if !knownField(name) {
			return errors.New("positions." + name + ": unknown field")
		}
		if idx < 0 {
			return fmt.Errorf("positions.%s: index %d must be >= 0", name, idx)
		}
	}
	return nil
}

func knownField(name string) bool {
	for _, column := range columns.DefaultColumns() {
		if string(column.Field) == name {
			return true
		}
	}
	return false
}

// Apply returns opts with the profile merged in. Profile aliases are tried
// before the built-in header spellings.
func (p MappingProfile) Apply(opts Options) Options {
	base := opts.Columns
	if len(base) == 0 {
		base = columns.DefaultColumns()
	}
	merged := make([]columns.Column, 0, len(base))
	for _, column := range base {
		headers := append([]string{}, p.Aliases[string(column.Field)]...)
		headers = append(headers, column.Headers...)
		merged = append(merged, columns.Column{Field: column.Field, Headers: headers})
	}
	opts.Columns = merged

	positions := columns.Positions{}
	if !p.ReplacePositions {
		base := opts.Positions
		if base == nil {
			base = columns.DefaultPositions()
		}
		for field, idx := range base {
			positions[field] = idx
		}
	}
	for name, idx := range p.Positions {
		positions[columns.Field(name)] = idx
	}
	opts.Positions = positions
	return opts
}
