package models

import (
	"time"

	"gorm.io/gorm"
)

// Transition is one successful change of the miner run state
type Transition struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"not null;index" json:"session_id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	FromState string         `gorm:"not null" json:"from_state"`
	ToState   string         `gorm:"not null;index" json:"to_state"`
	Command   string         `gorm:"not null" json:"command"` // "pause" or "resume"
	IdleMs    int64          `gorm:"not null;default:0" json:"idle_ms"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type StateSummary struct {
	State        string  `json:"state"`
	TotalSeconds int64   `json:"total_seconds"`
	TotalMinutes float64 `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	Percentage   float64 `json:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period       ReportPeriod   `json:"period"`
	States       []StateSummary `json:"states"`
	Transitions  int            `json:"transitions"`
	Errors       int64          `json:"errors"`
	TotalSeconds int64          `json:"total_seconds"`
	GeneratedAt  time.Time      `json:"generated_at"`
}
