package anomaly

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/columns"
)

const (
	FactorMin = 0
	FactorMax = 100
)

var criticalitySynonyms = map[string]string{
	"critique": CriticalityCritical,
	"critical": CriticalityCritical,
	"haute":    CriticalityCritical,
	"haut":     CriticalityCritical,
	"high":     CriticalityCritical,
	"elevee":   CriticalityCritical,
	"eleve":    CriticalityCritical,
	"urgent":   CriticalityCritical,
	"moyenne":  CriticalityMedium,
	"moyen":    CriticalityMedium,
	"medium":   CriticalityMedium,
	"moderee":  CriticalityMedium,
	"modere":   CriticalityMedium,
	"moderate": CriticalityMedium,
	"basse":    CriticalityLow,
	"bas":      CriticalityLow,
	"faible":   CriticalityLow,
	"low":      CriticalityLow,
	"mineure":  CriticalityLow,
	"minor":    CriticalityLow,
}

// NormalizeCriticality maps French/English synonyms onto the canonical
// labels. Unrecognized values are returned trimmed, with known=false.
func NormalizeCriticality(value string) (label string, known bool) {
	trimmed := strings.TrimSpace(value)
	if canonical, ok := criticalitySynonyms[columns.Fold(trimmed)]; ok {
		return canonical, true
	}
	return trimmed, false
}

// ParseFactor reads a severity factor. Empty or non-numeric input yields nil;
// decimals are truncated and the result is clamped to [FactorMin, FactorMax].
// clamped reports whether the value was pulled back into range.
func ParseFactor(value string) (factor *int, clamped bool, err error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil, false, nil
	}

	n, convErr := strconv.Atoi(trimmed)
	if convErr != nil {
		f, floatErr := strconv.ParseFloat(trimmed, 64)
		if floatErr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false, fmt.Errorf("%w: %q", ErrInvalidFactor, value)
		}
		// Clamp before converting; int() of an out-of-range float is undefined.
		switch {
		case f <= FactorMin-1:
			return intPtrOf(FactorMin), true, nil
		case f >= FactorMax+1:
			return intPtrOf(FactorMax), true, nil
		}
		n = int(math.Trunc(f))
	}

	switch {
	case n < FactorMin:
		n, clamped = FactorMin, true
	case n > FactorMax:
		n, clamped = FactorMax, true
	}
	return &n, clamped, nil
}

func intPtrOf(v int) *int { return &v }

// NormalizeText trims and collapses internal whitespace.
func NormalizeText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// NormalizeCode trims, collapses whitespace and upper-cases an identifier.
func NormalizeCode(value string) string {
	return strings.ToUpper(NormalizeText(value))
}
