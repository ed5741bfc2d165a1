package software

import "time"

type Software struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;uniqueIndex;not null"`
	Description  string    `gorm:"column:description;type:text;not null"`
	AccessLevels []string  `gorm:"column:access_levels;type:text;serializer:json;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Software) TableName() string {
	return "software"
}
