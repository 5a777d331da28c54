package model

import (
	"time"

	"gorm.io/datatypes"
)

type SilverAnomaly struct {
	ID                   uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	EquipmentCode        string         `gorm:"column:num_equipement;type:varchar(255);not null;uniqueIndex:idx_silver_dedup,priority:1"`
	System               *string        `gorm:"column:systeme;type:text"`
	Description          string         `gorm:"column:description;type:text;not null;uniqueIndex:idx_silver_dedup,priority:2"`
	DetectedAt           time.Time      `gorm:"column:detected_at;not null;uniqueIndex:idx_silver_dedup,priority:3"`
	EquipmentDescription string         `gorm:"column:description_equipement;type:text;not null;uniqueIndex:idx_silver_dedup,priority:4"`
	Section              string         `gorm:"column:section_proprietaire;type:varchar(255);not null;uniqueIndex:idx_silver_dedup,priority:5"`
	Reliability          *int           `gorm:"column:fiabilite"`
	Availability         *int           `gorm:"column:disponibilite"`
	ProcessSafety        *int           `gorm:"column:process_safety"`
	Criticality          *string        `gorm:"column:criticite;type:text"`
	QualityScore         int            `gorm:"column:quality_score;not null"`
	ValidationErrors     datatypes.JSON `gorm:"column:validation_errors"`
	NormalizedFields     datatypes.JSON `gorm:"column:normalized_fields"`
	RawAnomalyID         uint64         `gorm:"column:raw_anomaly_id;not null;uniqueIndex"`
	CreatedAt            time.Time      `gorm:"column:created_at;not null;autoCreateTime"`
}

func (SilverAnomaly) TableName() string {
	return "silver_anomalies"
}
