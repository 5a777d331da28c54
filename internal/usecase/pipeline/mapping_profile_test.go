package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/columns"
)

const sampleProfile = `
version = 1

[aliases]
num_equipement = ["Tag"]

[positions]
date_detection = 2
`

func TestLoadMappingProfileAppliesAliasesAndPositions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.toml")
	if err := os.WriteFile(path, []byte(sampleProfile), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err := LoadMappingProfile(path)
	if err != nil {
		t.Fatalf("LoadMappingProfile() error = %v", err)
	}
	opts := profile.Apply(DefaultOptions())

	mapping := columns.MapHeaders([]string{"Tag", "Commentaire"}, opts.Columns)
	if idx, ok := mapping[columns.FieldEquipmentCode]; !ok || idx != 0 {
		t.Fatalf("mapping = %v", mapping)
	}
	if opts.Positions[columns.FieldDetectedAt] != 2 || opts.Positions[columns.FieldSection] != 5 {
		t.Fatalf("positions = %v", opts.Positions)
	}
	if columns.DefaultPositions()[columns.FieldDetectedAt] != 3 {
		t.Fatal("defaults were mutated")
	}
}

func TestMappingProfileReplacePositions(t *testing.T) {
	profile, err := ParseMappingProfile([]byte("version = 1\nreplace_positions = true\n[positions]\nnum_equipement = 1\n"))
	if err != nil {
		t.Fatalf("ParseMappingProfile() error = %v", err)
	}
	opts := profile.Apply(DefaultOptions())
	if len(opts.Positions) != 1 || opts.Positions[columns.FieldEquipmentCode] != 1 {
		t.Fatalf("positions = %v", opts.Positions)
	}
}

func TestParseMappingProfileRejectsInvalid(t *testing.T) {
	testCases := map[string]string{
		"version":        "version = 2\n",
		"unknown alias":  "version = 1\n[aliases]\nfoo = [\"x\"]\n",
		"empty alias":    "version = 1\n[aliases]\ndescription = [\" \"]\n",
		"negative index": "version = 1\n[positions]\ncriticite = -1\n",
		"syntax":         "version = \n",
	}
	for name, raw := range testCases {
		if _, err := ParseMappingProfile([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadMappingProfile(" "); err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("LoadMappingProfile(empty) error = %v", err)
	}
}

func TestLoadMappingProfileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	raw := "version: 1\naliases:\n  section_proprietaire: [\"Atelier\"]\npositions:\n  criticite: 8\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err := LoadMappingProfile(path)
	if err != nil {
		t.Fatalf("LoadMappingProfile() error = %v", err)
	}
	if got := profile.Aliases["section_proprietaire"]; len(got) != 1 || got[0] != "Atelier" {
		t.Fatalf("aliases = %v", profile.Aliases)
	}
	if profile.Positions["criticite"] != 8 {
		t.Fatalf("positions = %v", profile.Positions)
	}

	if _, err := ParseMappingProfileYAML([]byte("version: 3\n")); err == nil {
		t.Fatal("expected version error")
	}
}
