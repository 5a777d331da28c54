package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/model"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

func (r *MedallionRepository) FindCleanAnomalyByKey(ctx context.Context, key ports.CleanAnomalyKey) (ports.CleanAnomaly, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CleanAnomaly{}, false, err
	}

	var row model.SilverAnomaly
	if err := db.
		Where("num_equipement = ?", key.EquipmentCode).
		Where("description = ?", key.Description).
		Where("detected_at = ?", key.DetectedAt.UTC()).
		Where("description_equipement = ?", key.EquipmentDescription).
		Where("section_proprietaire = ?", key.Section).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CleanAnomaly{}, false, nil
		}
		return ports.CleanAnomaly{}, false, errs.Wrap(err, "query silver anomaly by key")
	}
	return mapCleanAnomaly(row), true, nil
}

func (r *MedallionRepository) CreateCleanAnomaly(ctx context.Context, clean ports.CleanAnomaly) (ports.CleanAnomaly, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CleanAnomaly{}, err
	}

	validationErrors, err := encodeStrings(clean.ValidationErrors)
	if err != nil {
		return ports.CleanAnomaly{}, err
	}
	normalizedFields, err := encodeStrings(clean.NormalizedFields)
	if err != nil {
		return ports.CleanAnomaly{}, err
	}

	row := model.SilverAnomaly{
		EquipmentCode:        clean.EquipmentCode,
		System:               clean.System,
		Description:          clean.Description,
		DetectedAt:           clean.DetectedAt.UTC(),
		EquipmentDescription: clean.EquipmentDescription,
		Section:              clean.Section,
		Reliability:          clean.Reliability,
		Availability:         clean.Availability,
		ProcessSafety:        clean.ProcessSafety,
		Criticality:          clean.Criticality,
		QualityScore:         clean.QualityScore,
		ValidationErrors:     validationErrors,
		NormalizedFields:     normalizedFields,
		RawAnomalyID:         clean.RawAnomalyID,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.CleanAnomaly{}, errs.Wrap(err, "insert silver anomaly")
	}
	return mapCleanAnomaly(row), nil
}

func (r *MedallionRepository) ListCleanAnomalies(ctx context.Context, afterID uint64, limit int) ([]ports.CleanAnomaly, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.SilverAnomaly{}).Where("id > ?", afterID).Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.SilverAnomaly
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query silver anomalies")
	}

	items := make([]ports.CleanAnomaly, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCleanAnomaly(row))
	}
	return items, nil
}

func mapCleanAnomaly(row model.SilverAnomaly) ports.CleanAnomaly {
	return ports.CleanAnomaly{
		ID:                   row.ID,
		EquipmentCode:        row.EquipmentCode,
		System:               row.System,
		Description:          row.Description,
		DetectedAt:           row.DetectedAt.UTC(),
		EquipmentDescription: row.EquipmentDescription,
		Section:              row.Section,
		Reliability:          row.Reliability,
		Availability:         row.Availability,
		ProcessSafety:        row.ProcessSafety,
		Criticality:          row.Criticality,
		QualityScore:         row.QualityScore,
		ValidationErrors:     decodeStrings(row.ValidationErrors),
		NormalizedFields:     decodeStrings(row.NormalizedFields),
		RawAnomalyID:         row.RawAnomalyID,
		CreatedAt:            row.CreatedAt,
	}
}
