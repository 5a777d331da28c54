package anomaly

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/columns"
)

const (
	titleMaxLen      = 100
	titleMinCut      = 50
	titleEllipsis    = "..."
	anomalyCodeShape = "ABO-%d-%03d"
)

var anomalyCodePattern = regexp.MustCompile(`^ABO-(\d{4})-(\d+)$`)

// Title shortens a description to at most 100 characters. When cut, the text
// ends at the last space found past position 50 and carries an ellipsis.
func Title(description string) string {
	text := NormalizeText(description)
	chars := []rune(text)
	if len(chars) <= titleMaxLen {
		return text
	}

	limit := titleMaxLen - len(titleEllipsis)
	cut := chars[:limit]
	for i := len(cut) - 1; i > titleMinCut; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRight(string(cut), " ") + titleEllipsis
}

// AnomalyCodePrefix is the per-year prefix of generated codes.
func AnomalyCodePrefix(year int) string {
	return fmt.Sprintf("ABO-%d-", year)
}

func FormatAnomalyCode(year int, seq int) string {
	return fmt.Sprintf(anomalyCodeShape, year, seq)
}

// ParseAnomalyCode extracts year and sequence from an ABO-<year>-<n> code.
func ParseAnomalyCode(code string) (year int, seq int, err error) {
	m := anomalyCodePattern.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidAnomalyCode, code)
	}
	year, _ = strconv.Atoi(m[1])
	seq, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidAnomalyCode, code)
	}
	return year, seq, nil
}

// NextAnomalyCode returns the code following the highest sequence found
// among existing codes of the same year. Codes of other years or with an
// unexpected shape are ignored.
func NextAnomalyCode(year int, existing []string) string {
	highest := 0
	for _, code := range existing {
		codeYear, seq, err := ParseAnomalyCode(code)
		if err != nil || codeYear != year {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return FormatAnomalyCode(year, highest+1)
}

type EquipmentType string

const (
	EquipmentMechanical      EquipmentType = "mechanical"
	EquipmentElectrical      EquipmentType = "electrical"
	EquipmentHydraulic       EquipmentType = "hydraulic"
	EquipmentInstrumentation EquipmentType = "instrumentation"
	EquipmentControl         EquipmentType = "control"
)

var equipmentKeywords = []struct {
	kind     EquipmentType
	keywords []string
}{
	{EquipmentMechanical, []string{"turbine", "rotor"}},
	{EquipmentElectrical, []string{"electrique", "motor", "moteur"}},
	{EquipmentHydraulic, []string{"hydraulique", "pompe", "valve"}},
	{EquipmentInstrumentation, []string{"capteur", "sensor"}},
	{EquipmentControl, []string{"controle", "regulation"}},
}

// InferEquipmentType guesses a coarse equipment type from free text,
// defaulting to mechanical.
func InferEquipmentType(texts ...string) EquipmentType {
	folded := columns.Fold(strings.Join(texts, " "))
	for _, entry := range equipmentKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(folded, keyword) {
				return entry.kind
			}
		}
	}
	return EquipmentMechanical
}
