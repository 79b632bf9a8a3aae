// Package types holds the records passed between the evaluation service and
// its storage backends.
package types

import "time"

// EvaluationRecord summarizes one completed grid evaluation for archival.
type EvaluationRecord struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	Site           string    `json:"site"`
	Target         string    `json:"target"`
	Kind           string    `json:"kind"` // "grid", "events", "observable"
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	SampleCount    int       `json:"sample_count"`
	SatisfiedCount int       `json:"satisfied_count"`
	UnknownCount   int       `json:"unknown_count"`
	Strict         bool      `json:"strict"`
	EvaluatedAt    time.Time `gorm:"index" json:"evaluated_at"`
}

// TableName customizes the table name used by GORM.
func (EvaluationRecord) TableName() string {
	return "evaluations"
}
