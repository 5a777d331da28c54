package anomaly

import (
	"fmt"
	"strings"
	"time"
)

// Criticality labels as stored on Silver and Gold records.
const (
	CriticalityCritical = "Critique"
	CriticalityMedium   = "Moyenne"
	CriticalityLow      = "Basse"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityCritical Severity = "critical"
)

type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Band is the business classification derived from the factor sum.
type Band struct {
	Criticality string
	Severity    Severity
	Priority    Priority
	SLAHours    int
}

var (
	bandCritical = Band{Criticality: CriticalityCritical, Severity: SeverityCritical, Priority: PriorityP1, SLAHours: 4}
	bandMedium   = Band{Criticality: CriticalityMedium, Severity: SeverityMedium, Priority: PriorityP2, SLAHours: 72}
	bandLow      = Band{Criticality: CriticalityLow, Severity: SeverityLow, Priority: PriorityP3, SLAHours: 168}
)

// BandRule selects how a factor sum is cut into bands. Batch promotion and
// manual creation historically used different boundaries for "critical".
type BandRule string

const (
	// RuleInclusive: sum >= 9 critical, 7-8 medium, otherwise low.
	RuleInclusive BandRule = "inclusive"
	// RuleStrict: sum > 9 critical, 7-8 medium, otherwise low (a sum of 9 is low).
	RuleStrict BandRule = "strict"
)

// ParseBandRule accepts "inclusive" or "strict"; empty means inclusive.
func ParseBandRule(value string) (BandRule, error) {
	switch BandRule(strings.ToLower(strings.TrimSpace(value))) {
	case "", RuleInclusive:
		return RuleInclusive, nil
	case RuleStrict:
		return RuleStrict, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBandRule, value)
	}
}

// Classify applies the canonical (inclusive) rule.
func Classify(sum int) Band {
	return ClassifyWith(RuleInclusive, sum)
}

func ClassifyWith(rule BandRule, sum int) Band {
	switch {
	case rule == RuleStrict && sum > 9:
		return bandCritical
	case rule != RuleStrict && sum >= 9:
		return bandCritical
	case sum >= 7 && sum <= 8:
		return bandMedium
	default:
		return bandLow
	}
}

// BandForCriticality returns the band carrying the given canonical label.
func BandForCriticality(label string) (Band, bool) {
	switch label {
	case CriticalityCritical:
		return bandCritical, true
	case CriticalityMedium:
		return bandMedium, true
	case CriticalityLow:
		return bandLow, true
	}
	return Band{}, false
}

// DueDate is the detection time plus the band SLA.
func DueDate(detectedAt time.Time, band Band) time.Time {
	return detectedAt.Add(time.Duration(band.SLAHours) * time.Hour)
}

type Impacts struct {
	Safety        bool
	Environmental bool
	Production    bool
}

func DeriveImpacts(processSafety int, availability int, severity Severity) Impacts {
	return Impacts{
		Safety:        processSafety <= 2 || severity == SeverityCritical,
		Environmental: processSafety <= 2 && severity == SeverityCritical,
		Production:    availability <= 2 || severity != SeverityLow,
	}
}
