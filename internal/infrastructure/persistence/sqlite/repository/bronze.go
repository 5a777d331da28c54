package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/model"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

func (r *MedallionRepository) CreateRawAnomaly(ctx context.Context, raw ports.RawAnomaly) (ports.RawAnomaly, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.RawAnomaly{}, err
	}

	original, err := encodeJSON(raw.OriginalRow)
	if err != nil {
		return ports.RawAnomaly{}, err
	}
	if raw.IngestedAt.IsZero() {
		raw.IngestedAt = time.Now().UTC()
	}

	row := model.BronzeAnomaly{
		EquipmentCode:        raw.EquipmentCode,
		System:               raw.System,
		Description:          raw.Description,
		DetectedAt:           raw.DetectedAt,
		EquipmentDescription: raw.EquipmentDescription,
		Section:              raw.Section,
		Reliability:          raw.Reliability,
		Availability:         raw.Availability,
		ProcessSafety:        raw.ProcessSafety,
		Criticality:          raw.Criticality,
		OriginalRow:          original,
		SourceFile:           raw.SourceFile,
		IngestedAt:           raw.IngestedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.RawAnomaly{}, errs.Wrap(err, "insert bronze anomaly")
	}
	return mapRawAnomaly(row), nil
}

func (r *MedallionRepository) ListUnprocessedRawAnomalies(ctx context.Context, afterID uint64, limit int) ([]ports.RawAnomaly, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.BronzeAnomaly{}).
		Where("processed = ?", false).
		Where("id > ?", afterID).
		Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.BronzeAnomaly
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query unprocessed bronze anomalies")
	}

	items := make([]ports.RawAnomaly, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapRawAnomaly(row))
	}
	return items, nil
}

func (r *MedallionRepository) MarkRawAnomalyProcessed(ctx context.Context, id uint64, processedAt time.Time) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.BronzeAnomaly{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"processed":    true,
			"processed_at": processedAt.UTC(),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "mark bronze anomaly processed")
	}
	if result.RowsAffected == 0 {
		return errs.Wrapf(ports.ErrRecordNotFound, "bronze anomaly %d", id)
	}
	return nil
}

func mapRawAnomaly(row model.BronzeAnomaly) ports.RawAnomaly {
	var original ports.OriginalRow
	if len(row.OriginalRow) > 0 {
		// A row that cannot be decoded keeps an empty payload; the named
		// columns still carry the mapped values.
		_ = json.Unmarshal(row.OriginalRow, &original)
	}

	return ports.RawAnomaly{
		ID:                   row.ID,
		EquipmentCode:        row.EquipmentCode,
		System:               row.System,
		Description:          row.Description,
		DetectedAt:           row.DetectedAt,
		EquipmentDescription: row.EquipmentDescription,
		Section:              row.Section,
		Reliability:          row.Reliability,
		Availability:         row.Availability,
		ProcessSafety:        row.ProcessSafety,
		Criticality:          row.Criticality,
		OriginalRow:          original,
		SourceFile:           row.SourceFile,
		IngestedAt:           row.IngestedAt,
		Processed:            row.Processed,
		ProcessedAt:          row.ProcessedAt,
	}
}
