package models

import "time"

// Certification is a named accreditation carried by a company profile.
type Certification struct {
	Name       string `json:"name"`
	Level      string `json:"level,omitempty"`
	ExpiryDate string `json:"expiry_date,omitempty"`
}

// CompanyProfile holds a team's standing data used by the readiness scorer.
// One profile exists per team; the team_id is the uniqueness key.
type CompanyProfile struct {
	ID                        string          `json:"id"`
	TeamID                    string          `json:"team_id"`
	IndustrySector            string          `json:"industry_sector"`
	ServicesProvided          []string        `json:"services_provided,omitempty"`
	Certifications            []Certification `json:"certifications,omitempty"`
	GeographicCoverage        []string        `json:"geographic_coverage"`
	YearsExperience           int             `json:"years_experience"`
	ContactEmail              string          `json:"contact_email"`
	ContactPhone              string          `json:"contact_phone,omitempty"`
	Website                   string          `json:"website,omitempty"`
	BBBEELevel                *int            `json:"bbbee_level,omitempty"`
	CIDBGrade                 string          `json:"cidb_grade,omitempty"`
	CompanySize               string          `json:"company_size,omitempty"`
	CompanyRegistrationNumber string          `json:"company_registration_number,omitempty"`
	CreatedAt                 time.Time       `json:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at"`
}
