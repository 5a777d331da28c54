package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/persistence/sqlite/model"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

func (r *MedallionRepository) CreateRun(ctx context.Context, run ports.PipelineRun) (ports.PipelineRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.PipelineRun{}, err
	}
	if strings.TrimSpace(run.RunID) == "" {
		return ports.PipelineRun{}, errors.New("run id is required")
	}

	metadata, err := encodeMetadata(run.Metadata)
	if err != nil {
		return ports.PipelineRun{}, err
	}

	row := model.PipelineRun{
		RunID:            run.RunID,
		JobName:          run.JobName,
		SourceLayer:      run.SourceLayer,
		TargetLayer:      run.TargetLayer,
		RecordsProcessed: run.RecordsProcessed,
		RecordsSucceeded: run.RecordsSucceeded,
		RecordsFailed:    run.RecordsFailed,
		StartTime:        run.StartTime.UTC(),
		EndTime:          run.EndTime,
		Status:           run.Status,
		Metadata:         metadata,
		ErrorMessage:     run.ErrorMessage,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.PipelineRun{}, errs.Wrap(err, "insert pipeline run")
	}
	return mapPipelineRun(row), nil
}

// FinishRun writes the final counters, status and timing of a run. Runs
// that already carry an end time are left untouched.
func (r *MedallionRepository) FinishRun(ctx context.Context, run ports.PipelineRun) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	metadata, err := encodeMetadata(run.Metadata)
	if err != nil {
		return err
	}

	result := db.Model(&model.PipelineRun{}).
		Where("run_id = ?", run.RunID).
		Where("end_time IS NULL").
		Updates(map[string]any{
			"records_processed": run.RecordsProcessed,
			"records_succeeded": run.RecordsSucceeded,
			"records_failed":    run.RecordsFailed,
			"end_time":          run.EndTime,
			"status":            run.Status,
			"metadata":          metadata,
			"error_message":     run.ErrorMessage,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update pipeline run")
	}
	if result.RowsAffected == 0 {
		return errs.Wrapf(ports.ErrRecordNotFound, "open pipeline run %s", run.RunID)
	}
	return nil
}

func (r *MedallionRepository) GetRun(ctx context.Context, runID string) (ports.PipelineRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.PipelineRun{}, err
	}

	var row model.PipelineRun
	if err := db.Where("run_id = ?", strings.TrimSpace(runID)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PipelineRun{}, ports.ErrRecordNotFound
		}
		return ports.PipelineRun{}, errs.Wrap(err, "query pipeline run")
	}
	return mapPipelineRun(row), nil
}

func (r *MedallionRepository) ListRuns(ctx context.Context, limit int) ([]ports.PipelineRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.PipelineRun{}).Order("start_time desc").Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.PipelineRun
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query pipeline runs")
	}

	items := make([]ports.PipelineRun, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapPipelineRun(row))
	}
	return items, nil
}

func encodeMetadata(metadata map[string]any) (datatypes.JSON, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	return encodeJSON(metadata)
}

func mapPipelineRun(row model.PipelineRun) ports.PipelineRun {
	var metadata map[string]any
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &metadata)
	}

	return ports.PipelineRun{
		ID:               row.ID,
		RunID:            row.RunID,
		JobName:          row.JobName,
		SourceLayer:      row.SourceLayer,
		TargetLayer:      row.TargetLayer,
		RecordsProcessed: row.RecordsProcessed,
		RecordsSucceeded: row.RecordsSucceeded,
		RecordsFailed:    row.RecordsFailed,
		StartTime:        row.StartTime.UTC(),
		EndTime:          row.EndTime,
		Status:           row.Status,
		Metadata:         metadata,
		ErrorMessage:     row.ErrorMessage,
	}
}
