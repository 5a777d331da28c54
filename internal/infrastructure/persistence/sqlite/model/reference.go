package model

import "time"

type Site struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Code      string    `gorm:"column:code;type:varchar(64);not null;uniqueIndex"`
	Name      string    `gorm:"column:name;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Site) TableName() string {
	return "sites"
}

type Equipment struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Code      string    `gorm:"column:code;type:varchar(255);not null;uniqueIndex"`
	Name      string    `gorm:"column:name;type:text;not null"`
	Type      string    `gorm:"column:type;type:text;not null"`
	SiteID    uint64    `gorm:"column:site_id;not null;index"`
	Status    string    `gorm:"column:status;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Equipment) TableName() string {
	return "equipment"
}

type User struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Email     string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	Name      string    `gorm:"column:name;type:text;not null"`
	Role      string    `gorm:"column:role;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
