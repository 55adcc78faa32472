package models

import "time"

type KeySummary struct {
	SessionKey   string  `json:"session_key"`
	Label        Label   `json:"label"`
	TotalSeconds int64   `json:"total_seconds"`
	TotalMinutes float64 `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	SessionCount int     `json:"session_count"`
	Percentage   float64 `json:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period       ReportPeriod    `json:"period"`
	Keys         []KeySummary    `json:"keys"`
	ByLabel      map[Label]int64 `json:"by_label"`
	TotalSeconds int64           `json:"total_seconds"`
	TotalMinutes float64         `json:"total_minutes"`
	TotalHours   float64         `json:"total_hours"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
