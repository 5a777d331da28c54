package model

import (
	"time"

	"gorm.io/datatypes"
)

type Anomaly struct {
	ID                  uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Code                string         `gorm:"column:code;type:varchar(64);not null;uniqueIndex"`
	Title               string         `gorm:"column:title;type:text;not null"`
	Description         string         `gorm:"column:description;type:text;not null"`
	EquipmentID         uint64         `gorm:"column:equipment_id;not null;index"`
	EquipmentIdentifier string         `gorm:"column:equipment_identifier;type:varchar(255);not null;uniqueIndex"`
	System              *string        `gorm:"column:system;type:text"`
	Section             string         `gorm:"column:section;type:text;not null"`
	DetectedAt          time.Time      `gorm:"column:detected_at;not null"`
	Reliability         int            `gorm:"column:reliability;not null"`
	Availability        int            `gorm:"column:availability;not null"`
	ProcessSafety       int            `gorm:"column:process_safety;not null"`
	Criticality         string         `gorm:"column:criticality;type:text;not null"`
	Severity            string         `gorm:"column:severity;type:text;not null"`
	Priority            string         `gorm:"column:priority;type:text;not null"`
	SLAHours            int            `gorm:"column:sla_hours;not null"`
	DueDate             time.Time      `gorm:"column:due_date;not null"`
	EstimatedCost       float64        `gorm:"column:estimated_cost;not null"`
	DowntimeHours       float64        `gorm:"column:downtime_hours;not null"`
	SafetyImpact        bool           `gorm:"column:safety_impact;not null;default:false"`
	EnvironmentalImpact bool           `gorm:"column:environmental_impact;not null;default:false"`
	ProductionImpact    bool           `gorm:"column:production_impact;not null;default:false"`
	AIConfidence        float64        `gorm:"column:ai_confidence;not null"`
	AIFactors           datatypes.JSON `gorm:"column:ai_factors"`
	Origin              string         `gorm:"column:origin;type:text;not null"`
	Status              string         `gorm:"column:status;type:text;not null"`
	ReportedByID        uint64         `gorm:"column:reported_by_id;not null;index"`
	CleanAnomalyID      *uint64        `gorm:"column:clean_anomaly_id;index"`
	CreatedAt           time.Time      `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Anomaly) TableName() string {
	return "anomalies"
}
