package models

import "time"

// WorkspaceNote is a free-text annotation on a tracked tender.
type WorkspaceNote struct {
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkspaceTask is an action item attached to a tracked tender. Status is
// one of pending, in_progress or completed.
type WorkspaceTask struct {
	Description string     `json:"description"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Status      string     `json:"status"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

// WorkspaceItem tracks one tender for one team through the bid pipeline.
// The (tender_id, team_id) pair is the uniqueness key; one item per pair.
type WorkspaceItem struct {
	ID        string          `json:"id"`
	TenderID  string          `json:"tender_id"`
	TeamID    string          `json:"team_id"`
	Status    string          `json:"status"`
	Notes     []WorkspaceNote `json:"notes"`
	Tasks     []WorkspaceTask `json:"tasks"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy string          `json:"updated_by,omitempty"`
}

// WorkspaceItemView is a workspace item enriched with tender context and
// the team's stored match score. It is never persisted.
type WorkspaceItemView struct {
	WorkspaceItem
	TenderTitle    string     `json:"tender_title,omitempty"`
	TenderDeadline *time.Time `json:"tender_deadline,omitempty"`
	TenderSummary  string     `json:"tender_summary,omitempty"`
	MatchScore     *int       `json:"match_score,omitempty"`
}
