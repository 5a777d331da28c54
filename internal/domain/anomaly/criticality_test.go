package anomaly

import (
	"errors"
	"testing"
	"time"
)

func TestClassifyTable(t *testing.T) {
	testCases := []struct {
		name    string
		factors [3]int
		want    Band
	}{
		{name: "all max", factors: [3]int{3, 3, 3}, want: Band{Criticality: "Critique", Severity: SeverityCritical, Priority: PriorityP1, SLAHours: 4}},
		{name: "all min", factors: [3]int{1, 1, 1}, want: Band{Criticality: "Basse", Severity: SeverityLow, Priority: PriorityP3, SLAHours: 168}},
		{name: "seven", factors: [3]int{2, 2, 3}, want: Band{Criticality: "Moyenne", Severity: SeverityMedium, Priority: PriorityP2, SLAHours: 72}},
		{name: "eight", factors: [3]int{3, 3, 2}, want: Band{Criticality: "Moyenne", Severity: SeverityMedium, Priority: PriorityP2, SLAHours: 72}},
		{name: "six", factors: [3]int{2, 2, 2}, want: Band{Criticality: "Basse", Severity: SeverityLow, Priority: PriorityP3, SLAHours: 168}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.factors[0] + tc.factors[1] + tc.factors[2])
			if got != tc.want {
				t.Fatalf("Classify() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestClassifyIsPureOverFactorCube(t *testing.T) {
	for r := 1; r <= 3; r++ {
		for a := 1; a <= 3; a++ {
			for p := 1; p <= 3; p++ {
				sum := r + a + p
				first := Classify(sum)
				if again := Classify(sum); again != first {
					t.Fatalf("Classify(%d) not stable: %+v vs %+v", sum, first, again)
				}

				var want Severity
				switch {
				case sum >= 9:
					want = SeverityCritical
				case sum >= 7:
					want = SeverityMedium
				default:
					want = SeverityLow
				}
				if first.Severity != want {
					t.Fatalf("Classify(%d,%d,%d) severity = %s, want %s", r, a, p, first.Severity, want)
				}
			}
		}
	}
}

func TestClassifyStrictRule(t *testing.T) {
	if got := ClassifyWith(RuleStrict, 9); got.Severity != SeverityLow {
		t.Fatalf("strict sum 9 severity = %s, want low", got.Severity)
	}
	if got := ClassifyWith(RuleStrict, 10); got.Severity != SeverityCritical {
		t.Fatalf("strict sum 10 severity = %s, want critical", got.Severity)
	}
	if got := ClassifyWith(RuleStrict, 8); got.Severity != SeverityMedium {
		t.Fatalf("strict sum 8 severity = %s, want medium", got.Severity)
	}
	if got := ClassifyWith(RuleInclusive, 9); got.Severity != SeverityCritical {
		t.Fatalf("inclusive sum 9 severity = %s, want critical", got.Severity)
	}
}

func TestParseBandRule(t *testing.T) {
	rule, err := ParseBandRule(" Strict ")
	if err != nil || rule != RuleStrict {
		t.Fatalf("ParseBandRule(strict) = %q, %v", rule, err)
	}
	rule, err = ParseBandRule("")
	if err != nil || rule != RuleInclusive {
		t.Fatalf("ParseBandRule(empty) = %q, %v", rule, err)
	}
	if _, err := ParseBandRule("wide"); !errors.Is(err, ErrInvalidBandRule) {
		t.Fatalf("ParseBandRule(wide) error = %v, want ErrInvalidBandRule", err)
	}
}

func TestDueDateAddsSLA(t *testing.T) {
	detected := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	got := DueDate(detected, Classify(9))
	want := time.Date(2024, time.January, 15, 14, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DueDate() = %v, want %v", got, want)
	}
}

func TestDeriveImpacts(t *testing.T) {
	got := DeriveImpacts(2, 3, SeverityCritical)
	if !got.Safety || !got.Environmental || !got.Production {
		t.Fatalf("DeriveImpacts(2,3,critical) = %+v", got)
	}

	got = DeriveImpacts(3, 3, SeverityLow)
	if got.Safety || got.Environmental || got.Production {
		t.Fatalf("DeriveImpacts(3,3,low) = %+v", got)
	}

	got = DeriveImpacts(1, 3, SeverityMedium)
	if !got.Safety || got.Environmental || !got.Production {
		t.Fatalf("DeriveImpacts(1,3,medium) = %+v", got)
	}
}
