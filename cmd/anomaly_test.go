package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

func TestAnomalyCreateFlags(t *testing.T) {
	t.Parallel()

	cmd := newAnomalyCreateCmd()
	if err := cmd.ParseFlags([]string{
		"--equipment", "eq-010",
		"--description", "Fuite vapeur",
		"--section", "34mc",
		"--detected-at", "2025-02-10 14:30",
		"--reliability", "3",
		"--process-safety", "1",
		"--reporter", "ops@example.com",
	}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	input, err := parseCreateAnomalyFlags(cmd)
	if err != nil {
		t.Fatalf("parseCreateAnomalyFlags() error = %v", err)
	}
	if input.EquipmentCode != "eq-010" || input.Section != "34mc" || input.ReporterEmail != "ops@example.com" {
		t.Fatalf("input = %+v", input)
	}
	want := time.Date(2025, time.February, 10, 14, 30, 0, 0, time.UTC)
	if !input.DetectedAt.Equal(want) {
		t.Fatalf("DetectedAt = %v, want %v", input.DetectedAt, want)
	}
	if input.Reliability == nil || *input.Reliability != 3 {
		t.Fatalf("Reliability = %v, want 3", input.Reliability)
	}
	if input.Availability != nil {
		t.Fatalf("Availability = %d, want unset", *input.Availability)
	}
	if input.ProcessSafety == nil || *input.ProcessSafety != 1 {
		t.Fatalf("ProcessSafety = %v, want 1", input.ProcessSafety)
	}
}

func TestAnomalyCreateAcceptsDateOnly(t *testing.T) {
	t.Parallel()

	cmd := newAnomalyCreateCmd()
	if err := cmd.ParseFlags([]string{"--detected-at", "2025-02-10"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	input, err := parseCreateAnomalyFlags(cmd)
	if err != nil {
		t.Fatalf("parseCreateAnomalyFlags() error = %v", err)
	}
	if input.DetectedAt.Format(time.DateOnly) != "2025-02-10" {
		t.Fatalf("DetectedAt = %v", input.DetectedAt)
	}
}

func TestAnomalyCreateRejectsBadDate(t *testing.T) {
	t.Parallel()

	cmd := newAnomalyCreateCmd()
	if err := cmd.ParseFlags([]string{"--detected-at", "10/02/2025"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if _, err := parseCreateAnomalyFlags(cmd); err == nil {
		t.Fatalf("parseCreateAnomalyFlags() expected error")
	}
}

func TestWriteAnomaly(t *testing.T) {
	t.Parallel()

	system := "Turbine"
	var out bytes.Buffer
	err := writeAnomaly(&out, ports.Anomaly{
		Code:                "ABO-2025-004",
		Title:               "Fuite vapeur",
		EquipmentIdentifier: "EQ-010",
		System:              &system,
		Reliability:         3,
		Availability:        2,
		ProcessSafety:       1,
		Criticality:         "Moyenne",
		AIConfidence:        0.6,
		AIFactors:           []string{"fiabilite=3 (record)"},
	})
	if err != nil {
		t.Fatalf("writeAnomaly() error = %v", err)
	}
	for _, part := range []string{"ABO-2025-004", "F=3 D=2 S=1", "Moyenne", "0.60", "fiabilite=3 (record)", "Turbine"} {
		if !strings.Contains(out.String(), part) {
			t.Fatalf("output missing %q:\n%s", part, out.String())
		}
	}
}
