package models

import "time"

// ChecklistItem is one evaluated criterion in a readiness checklist.
type ChecklistItem struct {
	Criterion  string `json:"criterion"`
	Matched    bool   `json:"matched"`
	Importance int    `json:"importance"`
}

// ReadinessScore is the persisted result of a suitability check,
// keyed by (tender_id, team_id) and overwritten on recompute.
type ReadinessScore struct {
	ID               string          `json:"id"`
	TenderID         string          `json:"tender_id"`
	TeamID           string          `json:"team_id"`
	SuitabilityScore int             `json:"suitability_score"`
	Checklist        []ChecklistItem `json:"checklist"`
	Recommendation   string          `json:"recommendation"`
	CreatedAt        time.Time       `json:"created_at"`
}
