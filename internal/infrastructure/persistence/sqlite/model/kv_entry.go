package model

import "time"

type KVEntry struct {
	Key       string     `gorm:"column:key;type:varchar(255);primaryKey"`
	Value     string     `gorm:"column:value;type:text;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

// All lists every table managed by the application, in migration order.
func All() []any {
	return []any{
		&BronzeAnomaly{},
		&SilverAnomaly{},
		&Site{},
		&Equipment{},
		&User{},
		&Anomaly{},
		&PipelineRun{},
		&KVEntry{},
	}
}
