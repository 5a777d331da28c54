package model

import (
	"time"

	"gorm.io/datatypes"
)

type BronzeAnomaly struct {
	ID                   uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	EquipmentCode        *string        `gorm:"column:num_equipement;type:text"`
	System               *string        `gorm:"column:systeme;type:text"`
	Description          *string        `gorm:"column:description;type:text"`
	DetectedAt           *string        `gorm:"column:date_detection;type:text"`
	EquipmentDescription *string        `gorm:"column:description_equipement;type:text"`
	Section              *string        `gorm:"column:section_proprietaire;type:text"`
	Reliability          *string        `gorm:"column:fiabilite;type:text"`
	Availability         *string        `gorm:"column:disponibilite;type:text"`
	ProcessSafety        *string        `gorm:"column:process_safety;type:text"`
	Criticality          *string        `gorm:"column:criticite;type:text"`
	OriginalRow          datatypes.JSON `gorm:"column:original_row"`
	SourceFile           string         `gorm:"column:source_file;type:text;not null"`
	IngestedAt           time.Time      `gorm:"column:ingested_at;not null"`
	Processed            bool           `gorm:"column:processed;not null;default:false;index"`
	ProcessedAt          *time.Time     `gorm:"column:processed_at"`
}

func (BronzeAnomaly) TableName() string {
	return "bronze_anomalies"
}
