package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/anomaly"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

// ErrAnomalyExists reports an equipment identifier that already has a Gold record.
var ErrAnomalyExists = errors.New("anomaly already exists for equipment")

const (
	factorFromRecord      = "record"
	factorFromPrediction  = "prediction"
	factorFromPlaceholder = "placeholder"

	placeholderConfidencePenalty = 0.25
)

// goldDraft is what both the batch and the manual path know about a new
// Gold record before factors are resolved.
type goldDraft struct {
	EquipmentCode        string
	EquipmentDescription string
	Description          string
	System               *string
	Section              string
	DetectedAt           time.Time
	Reliability          *int
	Availability         *int
	ProcessSafety        *int
	QualityScore         int
	CleanAnomalyID       *uint64
	Origin               string
	Rule                 anomaly.BandRule
	Prediction           *PredictedFields
}

// buildAnomaly resolves missing factors (record, then prediction, then a
// random placeholder) and derives every classification field from their sum.
func (s *Service) buildAnomaly(draft goldDraft) ports.Anomaly {
	placeholders := 0
	factors := make([]string, 0, 6)
	resolve := func(name string, value *int, predicted func(PredictedFields) int) int {
		var (
			resolved int
			source   string
		)
		switch {
		case value != nil:
			resolved, source = *value, factorFromRecord
		case draft.Prediction != nil:
			resolved, source = predicted(*draft.Prediction), factorFromPrediction
		default:
			resolved, source = anomaly.FallbackFactor(s.random), factorFromPlaceholder
			placeholders++
		}
		factors = append(factors, fmt.Sprintf("%s=%d (%s)", name, resolved, source))
		return resolved
	}

	reliability := resolve("fiabilite", draft.Reliability, func(p PredictedFields) int { return p.Reliability })
	availability := resolve("disponibilite", draft.Availability, func(p PredictedFields) int { return p.Availability })
	processSafety := resolve("process_safety", draft.ProcessSafety, func(p PredictedFields) int { return p.ProcessSafety })
	if draft.Prediction != nil {
		factors = append(factors, predictionFactors(*draft.Prediction)...)
	}

	band := anomaly.ClassifyWith(draft.Rule, reliability+availability+processSafety)
	impacts := anomaly.DeriveImpacts(processSafety, availability, band.Severity)
	estimates := anomaly.EstimateImpact(s.random, band.Severity)

	return ports.Anomaly{
		Title:               anomaly.Title(draft.Description),
		Description:         anomaly.NormalizeText(draft.Description),
		EquipmentIdentifier: draft.EquipmentCode,
		System:              draft.System,
		Section:             draft.Section,
		DetectedAt:          draft.DetectedAt,
		Reliability:         reliability,
		Availability:        availability,
		ProcessSafety:       processSafety,
		Criticality:         band.Criticality,
		Severity:            string(band.Severity),
		Priority:            string(band.Priority),
		SLAHours:            band.SLAHours,
		DueDate:             anomaly.DueDate(draft.DetectedAt, band),
		EstimatedCost:       estimates.Cost,
		DowntimeHours:       estimates.DowntimeHours,
		SafetyImpact:        impacts.Safety,
		EnvironmentalImpact: impacts.Environmental,
		ProductionImpact:    impacts.Production,
		AIConfidence:        confidence(draft.QualityScore, placeholders > 0),
		AIFactors:           factors,
		Origin:              draft.Origin,
		Status:              anomalyStatusNew,
		CleanAnomalyID:      draft.CleanAnomalyID,
	}
}

func confidence(qualityScore int, usedPlaceholder bool) float64 {
	value := float64(qualityScore) / 100
	if usedPlaceholder {
		value -= placeholderConfidencePenalty
	}
	value = math.Max(0, math.Min(1, value))
	return math.Round(value*100) / 100
}

// persistGold resolves the equipment, allocates the next yearly code and
// inserts the record, all in one transaction.
func (s *Service) persistGold(ctx context.Context, draft ports.Anomaly, equipmentName string, siteID uint64, reporterID uint64) (ports.Anomaly, error) {
	var created ports.Anomaly
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		_, found, err := s.repo.FindAnomalyByEquipmentIdentifier(txCtx, draft.EquipmentIdentifier)
		if err != nil {
			return err
		}
		if found {
			return ErrAnomalyExists
		}

		system := ""
		if draft.System != nil {
			system = *draft.System
		}
		equipment, err := s.repo.EnsureEquipment(txCtx, ports.Equipment{
			Code:   draft.EquipmentIdentifier,
			Name:   equipmentName,
			Type:   string(anomaly.InferEquipmentType(system, equipmentName, draft.Description)),
			SiteID: siteID,
			Status: equipmentStatusNew,
		})
		if err != nil {
			return errs.Wrap(err, "resolve equipment")
		}

		year := s.now().Year()
		codes, err := s.repo.ListAnomalyCodes(txCtx, anomaly.AnomalyCodePrefix(year))
		if err != nil {
			return errs.Wrap(err, "list anomaly codes")
		}

		draft.Code = anomaly.NextAnomalyCode(year, codes)
		draft.EquipmentID = equipment.ID
		draft.ReportedByID = reporterID
		created, err = s.repo.CreateAnomaly(txCtx, draft)
		return err
	})
	if err != nil {
		return ports.Anomaly{}, err
	}
	return created, nil
}

// ensureDefaults returns the default site and the system reporter.
func (s *Service) ensureDefaults(ctx context.Context) (ports.Site, ports.User, error) {
	site, err := s.repo.EnsureSite(ctx, ports.Site{Code: s.opts.DefaultSiteCode, Name: s.opts.DefaultSiteName})
	if err != nil {
		return ports.Site{}, ports.User{}, errs.Wrap(err, "ensure default site")
	}
	user, err := s.repo.EnsureUser(ctx, ports.User{Email: s.opts.SystemUserEmail, Name: "ETL pipeline", Role: "system"})
	if err != nil {
		return ports.Site{}, ports.User{}, errs.Wrap(err, "ensure system user")
	}
	return site, user, nil
}

// predictionFactors lists what the prediction service said beyond the three
// scores. The predicted band and resolution estimate are informative only;
// the Gold band is always classified from the resolved factors.
func predictionFactors(p PredictedFields) []string {
	out := []string{
		"predicted_criticality=" + p.Band.Criticality,
		fmt.Sprintf("predicted_resolution_hours=%d", p.DurationToResolveHours),
	}
	if p.RiskLevel != "" {
		out = append(out, "risk_level="+p.RiskLevel)
	}
	if p.WeakestAspect != "" {
		out = append(out, "weakest_aspect="+p.WeakestAspect)
	}
	if action := strings.TrimSpace(p.RecommendedAction); action != "" {
		out = append(out, "recommended_action="+action)
	}
	for _, factor := range p.CriticalFactors {
		if factor = strings.TrimSpace(factor); factor != "" {
			out = append(out, "critical_factor="+factor)
		}
	}
	for _, recommendation := range p.Recommendations {
		if recommendation = strings.TrimSpace(recommendation); recommendation != "" {
			out = append(out, "recommendation="+recommendation)
		}
	}
	return out
}
