package anomaly

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func strPtr(v string) *string { return &v }

func completeRaw() RawFields {
	return RawFields{
		EquipmentCode:        strPtr(" eq-001 "),
		System:               strPtr("Turbine  HP"),
		Description:          strPtr("Fuite  d'huile sur palier"),
		DetectedAt:           strPtr("15/01/2024"),
		EquipmentDescription: strPtr("POMPE ALIMENTAIRE"),
		Section:              strPtr("34mc"),
		Reliability:          strPtr("2"),
		Availability:         strPtr("3"),
		ProcessSafety:        strPtr("1"),
		Criticality:          strPtr("high"),
	}
}

func TestParseDetectionDateFormats(t *testing.T) {
	want := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{"2024-01-15 10:30:00", "2024-01-15", "15/01/2024", "15-01-2024", "2024-01-15T08:00:00Z"} {
		got, err := ParseDetectionDate(input)
		if err != nil {
			t.Fatalf("ParseDetectionDate(%q) error = %v", input, err)
		}
		if got.Year() != want.Year() || got.Month() != want.Month() || got.Day() != want.Day() {
			t.Fatalf("ParseDetectionDate(%q) = %v, want date %v", input, got, want.Format("2006-01-02"))
		}
	}
}

func TestParseDetectionDateRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "tomorrow", "31/02/2024", "2024-13-01", "15/01/24x"} {
		if _, err := ParseDetectionDate(input); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDetectionDate(%q) error = %v, want ErrInvalidDate", input, err)
		}
	}
}

func TestParseDetectionDateExcelSerial(t *testing.T) {
	got, err := ParseDetectionDate("45306")
	if err != nil {
		t.Fatalf("ParseDetectionDate(serial) error = %v", err)
	}
	if got.Format("2006-01-02") != "2024-01-15" {
		t.Fatalf("ParseDetectionDate(serial) = %v", got)
	}
}

func TestParseFactor(t *testing.T) {
	testCases := []struct {
		in      string
		want    *int
		clamped bool
		wantErr bool
	}{
		{in: "2", want: intPtr(2)},
		{in: " 3 ", want: intPtr(3)},
		{in: "2,7", want: intPtr(2)},
		{in: "150", want: intPtr(100), clamped: true},
		{in: "-4", want: intPtr(0), clamped: true},
		{in: "1e300", want: intPtr(100), clamped: true},
		{in: "9.9e18", want: intPtr(100), clamped: true},
		{in: "-1e300", want: intPtr(0), clamped: true},
		{in: "100,9", want: intPtr(100)},
		{in: "-0,5", want: intPtr(0)},
		{in: "", want: nil},
		{in: "NULL", want: nil},
		{in: "abc", want: nil, wantErr: true},
	}

	for _, tc := range testCases {
		got, clamped, err := ParseFactor(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseFactor(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if clamped != tc.clamped {
			t.Fatalf("ParseFactor(%q) clamped = %v", tc.in, clamped)
		}
		if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
			t.Fatalf("ParseFactor(%q) = %v, want %v", tc.in, deref(got), deref(tc.want))
		}
	}
}

func TestNormalizeCriticality(t *testing.T) {
	testCases := map[string]string{
		"HIGH":     "Critique",
		"Élevée":   "Critique",
		"critique": "Critique",
		"Medium":   "Moyenne",
		"modérée":  "Moyenne",
		"faible":   "Basse",
		"LOW":      "Basse",
	}
	for in, want := range testCases {
		got, known := NormalizeCriticality(in)
		if !known || got != want {
			t.Fatalf("NormalizeCriticality(%q) = %q,%v want %q", in, got, known, want)
		}
	}

	got, known := NormalizeCriticality(" Sévère ")
	if known || got != "Sévère" {
		t.Fatalf("NormalizeCriticality(unknown) = %q,%v", got, known)
	}
}

func TestCleanseCompleteRow(t *testing.T) {
	got, err := Cleanse(completeRaw())
	if err != nil {
		t.Fatalf("Cleanse() error = %v", err)
	}

	if got.EquipmentCode != "EQ-001" || got.Section != "34MC" || got.Description != "Fuite d'huile sur palier" {
		t.Fatalf("Cleanse() normalized = %+v", got)
	}
	if got.Criticality == nil || *got.Criticality != CriticalityCritical {
		t.Fatalf("Cleanse() criticality = %v", got.Criticality)
	}
	if got.QualityScore != 100 {
		t.Fatalf("Cleanse() quality = %d, want 100", got.QualityScore)
	}
	if got.DetectedAt.Format("2006-01-02") != "2024-01-15" {
		t.Fatalf("Cleanse() detected = %v", got.DetectedAt)
	}
	for _, field := range []string{"num_equipement", "section_proprietaire", "description", "criticite", "date_detection", "systeme"} {
		if !strings.Contains(strings.Join(got.NormalizedFields, ","), field) {
			t.Fatalf("NormalizedFields = %v, missing %s", got.NormalizedFields, field)
		}
	}
	if len(got.ValidationErrors) != 0 {
		t.Fatalf("ValidationErrors = %v", got.ValidationErrors)
	}
}

func TestCleanseRequiredOnlyScoresSixty(t *testing.T) {
	raw := completeRaw()
	raw.System = nil
	raw.Reliability = nil
	raw.Availability = strPtr("")
	raw.ProcessSafety = strPtr("null")
	raw.Criticality = nil

	got, err := Cleanse(raw)
	if err != nil {
		t.Fatalf("Cleanse() error = %v", err)
	}
	if got.QualityScore != 60 {
		t.Fatalf("Cleanse() quality = %d, want 60", got.QualityScore)
	}
	if got.Reliability != nil || got.Availability != nil || got.ProcessSafety != nil {
		t.Fatalf("Cleanse() factors should be nil: %+v", got)
	}
}

func TestCleanseRejectsMissingEquipmentDescription(t *testing.T) {
	raw := completeRaw()
	raw.EquipmentDescription = strPtr("  NULL ")

	_, err := Cleanse(raw)
	if !errors.Is(err, ErrMissingRequiredField) {
		t.Fatalf("Cleanse() error = %v, want ErrMissingRequiredField", err)
	}
	if !strings.Contains(err.Error(), "description_equipement") {
		t.Fatalf("Cleanse() error = %v, want field name", err)
	}
}

func TestCleanseRejectsBadDate(t *testing.T) {
	raw := completeRaw()
	raw.DetectedAt = strPtr("not a date")
	if _, err := Cleanse(raw); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("Cleanse() error = %v, want ErrInvalidDate", err)
	}
}

func TestCleanseRecordsFactorIssues(t *testing.T) {
	raw := completeRaw()
	raw.Reliability = strPtr("abc")
	raw.Availability = strPtr("250")
	raw.Criticality = strPtr("bizarre")

	got, err := Cleanse(raw)
	if err != nil {
		t.Fatalf("Cleanse() error = %v", err)
	}
	if got.Reliability != nil {
		t.Fatalf("Reliability = %d, want nil", *got.Reliability)
	}
	if got.Availability == nil || *got.Availability != 100 {
		t.Fatalf("Availability = %v, want 100", deref(got.Availability))
	}
	if len(got.ValidationErrors) != 3 {
		t.Fatalf("ValidationErrors = %v", got.ValidationErrors)
	}
	// system + availability + process safety + criticality
	if got.QualityScore != 92 {
		t.Fatalf("QualityScore = %d, want 92", got.QualityScore)
	}
}

func intPtr(v int) *int { return &v }

func deref(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
