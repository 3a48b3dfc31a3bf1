package models

import "time"

// Alert is a broadcast message shown to every user while active
type Alert struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedBy string    `gorm:"size:128" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Alert) TableName() string {
	return "alerts"
}
