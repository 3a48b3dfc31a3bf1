package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB for PostgreSQL JSON support
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source %T", value)
	}
	return json.Unmarshal(raw, j)
}

// Admin actions recorded in the audit log
const (
	ActionCreateTournament = "CREATE_TOURNAMENT"
	ActionUpdateTournament = "UPDATE_TOURNAMENT"
	ActionTournamentStatus = "UPDATE_TOURNAMENT_STATUS"
	ActionDeleteTournament = "DELETE_TOURNAMENT"
	ActionAdjustBalance    = "ADJUST_BALANCE"
	ActionAwardPrize       = "AWARD_PRIZE"
	ActionSetRole          = "SET_ROLE"
	ActionCreateAlert      = "CREATE_ALERT"
	ActionUpdateAlert      = "UPDATE_ALERT"
	ActionDeleteAlert      = "DELETE_ALERT"
)

// AdminLog records admin actions for audit trail
type AdminLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AdminUID     string    `gorm:"size:128;not null;index" json:"admin_uid"`
	Action       string    `gorm:"size:100;not null" json:"action"`
	ResourceType string    `gorm:"size:50" json:"resource_type"`
	ResourceID   string    `gorm:"size:128" json:"resource_id"`
	Details      JSONB     `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}
