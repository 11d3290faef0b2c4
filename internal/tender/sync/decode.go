package sync

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"tender-insight-hub/internal/models"
)

// provinces lists the nine South African provinces used to backfill a
// missing province from the buyer name.
var provinces = []string{
	"Western Cape",
	"Eastern Cape",
	"Northern Cape",
	"Free State",
	"KwaZulu-Natal",
	"North West",
	"Gauteng",
	"Mpumalanga",
	"Limpopo",
}

// deadlineLayouts covers the timestamp shapes seen in the feed: full
// RFC3339, zone-less timestamps and bare dates.
var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Decode normalizes an arbitrarily shaped feed payload into a tender
// record. All missing-or-malformed handling lives here: absent fields
// become zero values, a broken deadline becomes nil, and nothing here
// ever returns an error. The raw payload is retained verbatim.
func Decode(payload map[string]interface{}) *models.Tender {
	t := &models.Tender{Raw: payload}

	t.TenderID = stringField(payload, "id")
	if t.TenderID == "" {
		t.TenderID = uuid.NewString()
	}

	t.Title = stringField(payload, "title")
	t.Description = stringField(payload, "description")
	t.Buyer = buyerField(payload)
	t.Province = stringField(payload, "province")

	// Budget comes from a nested value object; both bounds carry the
	// single source amount. A non-object value means no budget.
	if value, ok := payload["value"].(map[string]interface{}); ok {
		if amount, ok := numberField(value, "amount"); ok {
			min, max := amount, amount
			t.BudgetMin, t.BudgetMax = &min, &max
		}
	}

	if period, ok := payload["tenderPeriod"].(map[string]interface{}); ok {
		if raw := stringField(period, "endDate"); raw != "" {
			if parsed, ok := parseDeadline(raw); ok {
				t.Deadline = &parsed
			}
		}
	}

	if t.Province == "" {
		t.Province = ProvinceFromBuyer(t.Buyer)
	}

	t.IndustrySector = stringField(payload, "industry_sector")
	if required, ok := payload["cidb_required"].(bool); ok {
		t.CIDBRequired = required
	}
	t.CIDBGrade = stringField(payload, "cidb_grade")
	if level, ok := intField(payload, "bbbee_level_required"); ok {
		t.BBBEELevelRequired = &level
	}
	if years, ok := intField(payload, "min_years_experience"); ok {
		t.MinYearsExperience = &years
	}

	return t
}

// ProvinceFromBuyer extracts a province from a buyer name such as
// "Gauteng Department of Education". Returns "" when no province is
// recognizable.
func ProvinceFromBuyer(buyer string) string {
	if buyer == "" {
		return ""
	}
	lower := strings.ToLower(buyer)
	for _, p := range provinces {
		if strings.HasPrefix(buyer, p) || strings.Contains(lower, strings.ToLower(p)) {
			return p
		}
	}
	return ""
}

func parseDeadline(raw string) (time.Time, bool) {
	for _, layout := range deadlineLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// buyerField accepts both a plain buyer string and the OCDS buyer
// object carrying a name.
func buyerField(m map[string]interface{}) string {
	switch v := m["buyer"].(type) {
	case string:
		return v
	case map[string]interface{}:
		return stringField(v, "name")
	}
	return ""
}

func numberField(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func intField(m map[string]interface{}, key string) (int, bool) {
	if f, ok := numberField(m, key); ok {
		return int(f), true
	}
	return 0, false
}
