package models

import (
	"time"

	"gorm.io/datatypes"
)

type Image struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	URL       string         `gorm:"size:500;not null" json:"url"`
	Meta      datatypes.JSON `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"-"`
}
