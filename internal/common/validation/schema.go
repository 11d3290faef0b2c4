// Package validation checks inbound payloads against JSON schemas before
// they reach the stores.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var companyProfileSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"team_id":         map[string]interface{}{"type": "string", "minLength": 1},
		"industry_sector": map[string]interface{}{"type": "string", "minLength": 1},
		"services_provided": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"geographic_coverage": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"years_experience": map[string]interface{}{"type": "integer", "minimum": 0},
		"contact_email":    map[string]interface{}{"type": "string", "minLength": 3},
		"contact_phone":    map[string]interface{}{"type": "string"},
		"website":          map[string]interface{}{"type": "string"},
		"bbbee_level":      map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 8},
		"cidb_grade":       map[string]interface{}{"type": "string"},
		"company_size":     map[string]interface{}{"type": "string"},
		"company_registration_number": map[string]interface{}{"type": "string"},
		"certifications": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":        map[string]interface{}{"type": "string", "minLength": 1},
					"level":       map[string]interface{}{"type": "string"},
					"expiry_date": map[string]interface{}{"type": "string"},
				},
				"required": []string{"name"},
			},
		},
	},
	"required": []string{"industry_sector", "geographic_coverage", "years_experience", "contact_email"},
}

// ValidateCompanyProfile validates a raw company profile payload.
// Returns a joined description of every violation, or nil when valid.
func ValidateCompanyProfile(payload map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(companyProfileSchema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("profile validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
