package models

import "time"

// Tender is the canonical tender record held by the document store.
// The metadata row is a lossy projection of this document, never the reverse.
type Tender struct {
	TenderID    string   `json:"tender_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Buyer       string   `json:"buyer,omitempty"`
	Province    string   `json:"province,omitempty"`
	BudgetMin   *float64 `json:"budget_min,omitempty"`
	BudgetMax   *float64 `json:"budget_max,omitempty"`
	// Deadline is nil when the feed omitted the end date or it failed to parse.
	Deadline *time.Time `json:"deadline,omitempty"`

	// Requirement fields evaluated by the readiness scorer. Zero values
	// mean the tender does not declare the requirement.
	IndustrySector     string `json:"industry_sector,omitempty"`
	CIDBRequired       bool   `json:"cidb_required,omitempty"`
	CIDBGrade          string `json:"cidb_grade,omitempty"`
	BBBEELevelRequired *int   `json:"bbbee_level_required,omitempty"`
	MinYearsExperience *int   `json:"min_years_experience,omitempty"`

	// Raw is the original feed payload, retained for audit and re-derivation.
	Raw map[string]interface{} `json:"raw,omitempty"`
}

// TenderMetadata is the relational projection stored in PostgreSQL.
type TenderMetadata struct {
	TenderID  string     `json:"tender_id"`
	Title     string     `json:"title"`
	Buyer     string     `json:"buyer,omitempty"`
	Province  string     `json:"province,omitempty"`
	BudgetMin *float64   `json:"budget_min,omitempty"`
	BudgetMax *float64   `json:"budget_max,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Metadata derives the relational projection from the document record.
func (t *Tender) Metadata() TenderMetadata {
	return TenderMetadata{
		TenderID:  t.TenderID,
		Title:     t.Title,
		Buyer:     t.Buyer,
		Province:  t.Province,
		BudgetMin: t.BudgetMin,
		BudgetMax: t.BudgetMax,
		Deadline:  t.Deadline,
	}
}
