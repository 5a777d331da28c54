package anomaly

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Quality score weights: required fields share 60 points, optional fields 40.
const (
	requiredFieldPoints = 12
	optionalFieldPoints = 8
	RequiredFieldCount  = 5
	optionalFieldCount  = 5
)

// RawFields are the effective Bronze values of one row after header mapping
// and positional fallback. Nil means absent.
type RawFields struct {
	EquipmentCode        *string
	System               *string
	Description          *string
	DetectedAt           *string
	EquipmentDescription *string
	Section              *string
	Reliability          *string
	Availability         *string
	ProcessSafety        *string
	Criticality          *string
}

// Cleaned is a validated, normalized Silver candidate.
type Cleaned struct {
	EquipmentCode        string
	System               *string
	Description          string
	DetectedAt           time.Time
	EquipmentDescription string
	Section              string
	Reliability          *int
	Availability         *int
	ProcessSafety        *int
	Criticality          *string
	QualityScore         int
	ValidationErrors     []string
	NormalizedFields     []string
}

// Key is the natural deduplication key of Silver records.
type Key struct {
	EquipmentCode        string
	Description          string
	DetectedAt           time.Time
	EquipmentDescription string
	Section              string
}

func (c Cleaned) Key() Key {
	return Key{
		EquipmentCode:        c.EquipmentCode,
		Description:          c.Description,
		DetectedAt:           c.DetectedAt,
		EquipmentDescription: c.EquipmentDescription,
		Section:              c.Section,
	}
}

// Cleanse validates required fields, parses the detection date and the
// factors, normalizes categorical values and scores completeness. A missing
// required field or an unparseable date rejects the row.
func Cleanse(raw RawFields) (Cleaned, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"num_equipement", raw.EquipmentCode},
		{"description", raw.Description},
		{"date_detection", raw.DetectedAt},
		{"description_equipement", raw.EquipmentDescription},
		{"section_proprietaire", raw.Section},
	}
	var missing []string
	for _, field := range required {
		if isBlank(field.value) {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return Cleaned{}, fmt.Errorf("%w: %s", ErrMissingRequiredField, strings.Join(missing, ", "))
	}

	detectedAt, err := ParseDetectionDate(*raw.DetectedAt)
	if err != nil {
		return Cleaned{}, err
	}

	var out Cleaned
	out.DetectedAt = detectedAt

	out.EquipmentCode = NormalizeCode(*raw.EquipmentCode)
	out.noteNormalized("num_equipement", *raw.EquipmentCode, out.EquipmentCode)
	out.Description = NormalizeText(*raw.Description)
	out.noteNormalized("description", *raw.Description, out.Description)
	out.EquipmentDescription = NormalizeText(*raw.EquipmentDescription)
	out.noteNormalized("description_equipement", *raw.EquipmentDescription, out.EquipmentDescription)
	out.Section = NormalizeCode(*raw.Section)
	out.noteNormalized("section_proprietaire", *raw.Section, out.Section)
	if rawDate := strings.TrimSpace(*raw.DetectedAt); rawDate != detectedAt.Format("2006-01-02") {
		out.noteNormalized("date_detection", rawDate, detectedAt.Format("2006-01-02 15:04:05"))
	}

	if !isBlank(raw.System) {
		system := NormalizeText(*raw.System)
		out.System = &system
		out.noteNormalized("systeme", *raw.System, system)
	}

	out.Reliability = out.parseFactor("fiabilite", raw.Reliability)
	out.Availability = out.parseFactor("disponibilite", raw.Availability)
	out.ProcessSafety = out.parseFactor("process_safety", raw.ProcessSafety)

	if !isBlank(raw.Criticality) {
		label, known := NormalizeCriticality(*raw.Criticality)
		out.Criticality = &label
		if !known {
			out.ValidationErrors = append(out.ValidationErrors, fmt.Sprintf("criticite: unrecognized value %q", label))
		}
		out.noteNormalized("criticite", *raw.Criticality, label)
	}

	optionalPresent := 0
	if out.System != nil {
		optionalPresent++
	}
	for _, factor := range []*int{out.Reliability, out.Availability, out.ProcessSafety} {
		if factor != nil {
			optionalPresent++
		}
	}
	if out.Criticality != nil {
		optionalPresent++
	}
	out.QualityScore = QualityScore(RequiredFieldCount, optionalPresent)

	return out, nil
}

// QualityScore weights present required and optional fields and returns a
// 0-100 percentage of the maximum possible points.
func QualityScore(requiredPresent int, optionalPresent int) int {
	maxPossible := RequiredFieldCount*requiredFieldPoints + optionalFieldCount*optionalFieldPoints
	earned := requiredPresent*requiredFieldPoints + optionalPresent*optionalFieldPoints
	return int(math.Round(float64(earned) / float64(maxPossible) * 100))
}

func (c *Cleaned) parseFactor(name string, value *string) *int {
	if value == nil {
		return nil
	}
	factor, clamped, err := ParseFactor(*value)
	if err != nil {
		c.ValidationErrors = append(c.ValidationErrors, fmt.Sprintf("%s: non-numeric value %q", name, strings.TrimSpace(*value)))
		return nil
	}
	if clamped && factor != nil {
		c.ValidationErrors = append(c.ValidationErrors, fmt.Sprintf("%s: %q clamped to %d", name, strings.TrimSpace(*value), *factor))
		c.NormalizedFields = append(c.NormalizedFields, name)
	}
	return factor
}

func (c *Cleaned) noteNormalized(name string, before string, after string) {
	if before != after {
		c.NormalizedFields = append(c.NormalizedFields, name)
	}
}

func isBlank(value *string) bool {
	if value == nil {
		return true
	}
	trimmed := strings.TrimSpace(*value)
	return trimmed == "" || strings.EqualFold(trimmed, "null")
}
