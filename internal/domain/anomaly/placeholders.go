package anomaly

import "math"

// Random is the source of placeholder values used when upstream data carries
// no real estimate. Implementations must be seedable for tests.
type Random interface {
	IntRange(min, max int) int
	Float64Range(min, max float64) float64
}

const (
	FallbackFactorMin = 1
	FallbackFactorMax = 3

	resolutionHoursMin = 1
	resolutionHoursMax = 1000
)

// FallbackFactor draws a severity factor in [1,3] for a missing value.
func FallbackFactor(rnd Random) int {
	return rnd.IntRange(FallbackFactorMin, FallbackFactorMax)
}

// ResolutionHours is a presentation-only duration-to-resolve placeholder.
func ResolutionHours(rnd Random) int {
	return rnd.IntRange(resolutionHoursMin, resolutionHoursMax)
}

type estimateBounds struct {
	costMin, costMax         float64
	downtimeMin, downtimeMax float64
}

var severityEstimateBounds = map[Severity]estimateBounds{
	SeverityLow:      {costMin: 500, costMax: 5000, downtimeMin: 1, downtimeMax: 8},
	SeverityMedium:   {costMin: 5000, costMax: 25000, downtimeMin: 8, downtimeMax: 48},
	SeverityCritical: {costMin: 25000, costMax: 100000, downtimeMin: 24, downtimeMax: 168},
}

type Estimates struct {
	Cost          float64
	DowntimeHours float64
}

// EstimateImpact draws cost and downtime placeholders within bounds scaled
// by severity. Cost is rounded to the unit, downtime to one decimal.
func EstimateImpact(rnd Random, severity Severity) Estimates {
	bounds, ok := severityEstimateBounds[severity]
	if !ok {
		bounds = severityEstimateBounds[SeverityLow]
	}
	return Estimates{
		Cost:          math.Round(rnd.Float64Range(bounds.costMin, bounds.costMax)),
		DowntimeHours: math.Round(rnd.Float64Range(bounds.downtimeMin, bounds.downtimeMax)*10) / 10,
	}
}

// EstimateRange exposes the placeholder bounds of a severity.
func EstimateRange(severity Severity) (costMin, costMax, downtimeMin, downtimeMax float64) {
	b := severityEstimateBounds[severity]
	return b.costMin, b.costMax, b.downtimeMin, b.downtimeMax
}
