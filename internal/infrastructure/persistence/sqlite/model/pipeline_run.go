package model

import (
	"time"

	"gorm.io/datatypes"
)

type PipelineRun struct {
	ID               uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	RunID            string         `gorm:"column:run_id;type:varchar(36);not null;uniqueIndex"`
	JobName          string         `gorm:"column:job_name;type:text;not null;index"`
	SourceLayer      string         `gorm:"column:source_layer;type:text;not null"`
	TargetLayer      string         `gorm:"column:target_layer;type:text;not null"`
	RecordsProcessed int            `gorm:"column:records_processed;not null;default:0"`
	RecordsSucceeded int            `gorm:"column:records_succeeded;not null;default:0"`
	RecordsFailed    int            `gorm:"column:records_failed;not null;default:0"`
	StartTime        time.Time      `gorm:"column:start_time;not null;index"`
	EndTime          *time.Time     `gorm:"column:end_time"`
	Status           string         `gorm:"column:status;type:text;not null"`
	Metadata         datatypes.JSON `gorm:"column:metadata"`
	ErrorMessage     *string        `gorm:"column:error_message;type:text"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
