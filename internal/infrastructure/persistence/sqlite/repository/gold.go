package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/model"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

func (r *MedallionRepository) FindAnomalyByEquipmentIdentifier(ctx context.Context, identifier string) (ports.Anomaly, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Anomaly{}, false, err
	}

	var row model.Anomaly
	if err := db.Where("equipment_identifier = ?", identifier).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Anomaly{}, false, nil
		}
		return ports.Anomaly{}, false, errs.Wrap(err, "query anomaly by equipment identifier")
	}
	return mapAnomaly(row), true, nil
}

func (r *MedallionRepository) ListAnomalyCodes(ctx context.Context, prefix string) ([]string, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var codes []string
	if err := db.Model(&model.Anomaly{}).
		Where("code LIKE ?", stripLikeWildcards(prefix)+"%").
		Order("code desc").
		Pluck("code", &codes).Error; err != nil {
		return nil, errs.Wrap(err, "query anomaly codes")
	}
	return codes, nil
}

func (r *MedallionRepository) CreateAnomaly(ctx context.Context, anomaly ports.Anomaly) (ports.Anomaly, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Anomaly{}, err
	}

	factors, err := encodeStrings(anomaly.AIFactors)
	if err != nil {
		return ports.Anomaly{}, err
	}

	row := model.Anomaly{
		Code:                anomaly.Code,
		Title:               anomaly.Title,
		Description:         anomaly.Description,
		EquipmentID:         anomaly.EquipmentID,
		EquipmentIdentifier: anomaly.EquipmentIdentifier,
		System:              anomaly.System,
		Section:             anomaly.Section,
		DetectedAt:          anomaly.DetectedAt.UTC(),
		Reliability:         anomaly.Reliability,
		Availability:        anomaly.Availability,
		ProcessSafety:       anomaly.ProcessSafety,
		Criticality:         anomaly.Criticality,
		Severity:            anomaly.Severity,
		Priority:            anomaly.Priority,
		SLAHours:            anomaly.SLAHours,
		DueDate:             anomaly.DueDate.UTC(),
		EstimatedCost:       anomaly.EstimatedCost,
		DowntimeHours:       anomaly.DowntimeHours,
		SafetyImpact:        anomaly.SafetyImpact,
		EnvironmentalImpact: anomaly.EnvironmentalImpact,
		ProductionImpact:    anomaly.ProductionImpact,
		AIConfidence:        anomaly.AIConfidence,
		AIFactors:           factors,
		Origin:              anomaly.Origin,
		Status:              anomaly.Status,
		ReportedByID:        anomaly.ReportedByID,
		CleanAnomalyID:      anomaly.CleanAnomalyID,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Anomaly{}, errs.Wrap(err, "insert anomaly")
	}
	return mapAnomaly(row), nil
}

func (r *MedallionRepository) GetAnomalyByCode(ctx context.Context, code string) (ports.Anomaly, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Anomaly{}, err
	}

	var row model.Anomaly
	if err := db.Where("code = ?", strings.TrimSpace(code)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Anomaly{}, ports.ErrRecordNotFound
		}
		return ports.Anomaly{}, errs.Wrap(err, "query anomaly by code")
	}
	return mapAnomaly(row), nil
}

func stripLikeWildcards(value string) string {
	replacer := strings.NewReplacer("%", "", "_", "")
	return replacer.Replace(value)
}

func mapAnomaly(row model.Anomaly) ports.Anomaly {
	return ports.Anomaly{
		ID:                  row.ID,
		Code:                row.Code,
		Title:               row.Title,
		Description:         row.Description,
		EquipmentID:         row.EquipmentID,
		EquipmentIdentifier: row.EquipmentIdentifier,
		System:              row.System,
		Section:             row.Section,
		DetectedAt:          row.DetectedAt.UTC(),
		Reliability:         row.Reliability,
		Availability:        row.Availability,
		ProcessSafety:       row.ProcessSafety,
		Criticality:         row.Criticality,
		Severity:            row.Severity,
		Priority:            row.Priority,
		SLAHours:            row.SLAHours,
		DueDate:             row.DueDate.UTC(),
		EstimatedCost:       row.EstimatedCost,
		DowntimeHours:       row.DowntimeHours,
		SafetyImpact:        row.SafetyImpact,
		EnvironmentalImpact: row.EnvironmentalImpact,
		ProductionImpact:    row.ProductionImpact,
		AIConfidence:        row.AIConfidence,
		AIFactors:           decodeStrings(row.AIFactors),
		Origin:              row.Origin,
		Status:              row.Status,
		ReportedByID:        row.ReportedByID,
		CleanAnomalyID:      row.CleanAnomalyID,
		CreatedAt:           row.CreatedAt,
	}
}
