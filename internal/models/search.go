package models

import "time"

// SearchResult is the ephemeral, ranked projection returned by search.
// It is never persisted.
type SearchResult struct {
	TenderID       string     `json:"tender_id"`
	Title          string     `json:"title"`
	Buyer          string     `json:"buyer,omitempty"`
	Province       string     `json:"province,omitempty"`
	BudgetMin      *float64   `json:"budget_min,omitempty"`
	BudgetMax      *float64   `json:"budget_max,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Excerpt        string     `json:"excerpt,omitempty"`
	RelevanceScore float64    `json:"relevance_score"`
}
