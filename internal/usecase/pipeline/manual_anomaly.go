package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/anomaly"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

const reporterRoleOperator = "operator"

// CreateAnomalyInput is an operator-reported Gold anomaly.
type CreateAnomalyInput struct {
	EquipmentCode        string
	EquipmentDescription string
	Description          string
	System               string
	Section              string
	DetectedAt           time.Time
	Reliability          *int
	Availability         *int
	ProcessSafety        *int
	ReporterEmail        string
}

// CreateAnomaly inserts a Gold anomaly directly, bypassing Bronze and
// Silver. It classifies with the manual band rule.
func (s *Service) CreateAnomaly(ctx context.Context, input CreateAnomalyInput) (ports.Anomaly, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.Anomaly{}, err
	}

	equipmentCode := anomaly.NormalizeCode(input.EquipmentCode)
	description := anomaly.NormalizeText(input.Description)
	section := anomaly.NormalizeCode(input.Section)
	switch {
	case equipmentCode == "":
		return ports.Anomaly{}, fmt.Errorf("%w: num_equipement", anomaly.ErrMissingRequiredField)
	case description == "":
		return ports.Anomaly{}, fmt.Errorf("%w: description", anomaly.ErrMissingRequiredField)
	case section == "":
		return ports.Anomaly{}, fmt.Errorf("%w: section_proprietaire", anomaly.ErrMissingRequiredField)
	}
	for name, value := range map[string]*int{
		"fiabilite":      input.Reliability,
		"disponibilite":  input.Availability,
		"process_safety": input.ProcessSafety,
	} {
		if value != nil && (*value < anomaly.FallbackFactorMin || *value > anomaly.FallbackFactorMax) {
			return ports.Anomaly{}, fmt.Errorf("%w: %s=%d outside [%d,%d]",
				anomaly.ErrInvalidFactor, name, *value, anomaly.FallbackFactorMin, anomaly.FallbackFactorMax)
		}
	}

	equipmentName := anomaly.NormalizeText(input.EquipmentDescription)
	if equipmentName == "" {
		equipmentName = equipmentCode
	}
	detectedAt := input.DetectedAt.UTC()
	if input.DetectedAt.IsZero() {
		detectedAt = s.now()
	}
	var system *string
	optional := 0
	if value := anomaly.NormalizeText(input.System); value != "" {
		system = &value
		optional++
	}
	for _, value := range []*int{input.Reliability, input.Availability, input.ProcessSafety} {
		if value != nil {
			optional++
		}
	}

	site, reporter, err := s.ensureDefaults(ctx)
	if err != nil {
		return ports.Anomaly{}, err
	}
	if email := strings.TrimSpace(input.ReporterEmail); email != "" {
		reporter, err = s.repo.EnsureUser(ctx, ports.User{Email: email, Name: email, Role: reporterRoleOperator})
		if err != nil {
			return ports.Anomaly{}, errs.Wrap(err, "ensure reporter")
		}
	}

	draft := s.buildAnomaly(goldDraft{
		EquipmentCode:        equipmentCode,
		EquipmentDescription: equipmentName,
		Description:          description,
		System:               system,
		Section:              section,
		DetectedAt:           detectedAt,
		Reliability:          input.Reliability,
		Availability:         input.Availability,
		ProcessSafety:        input.ProcessSafety,
		QualityScore:         anomaly.QualityScore(anomaly.RequiredFieldCount, optional),
		Origin:               OriginManual,
		Rule:                 s.opts.ManualRule,
	})

	created, err := s.persistGold(ctx, draft, equipmentName, site.ID, reporter.ID)
	if err != nil {
		return ports.Anomaly{}, errs.Wrapf(err, "create anomaly for %s", equipmentCode)
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "pipeline.manual")), "anomaly created",
		slog.String("code", created.Code),
		slog.String("equipment", equipmentCode),
		slog.String("criticality", created.Criticality),
	)
	return created, nil
}
