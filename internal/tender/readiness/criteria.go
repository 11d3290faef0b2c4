// Package readiness scores a company profile against a tender's stated
// requirements as a weighted checklist folded into a 0-100 suitability
// score. Scoring is deterministic: same tender and profile, same result.
package readiness

import (
	"fmt"
	"strconv"
	"strings"

	"tender-insight-hub/internal/models"
)

// An evaluator inspects one requirement dimension. It returns nil when
// either side does not declare the dimension (empty string, empty slice
// or nil pointer); skipped criteria contribute nothing to the score.
type evaluator func(t *models.Tender, p *models.CompanyProfile) *models.ChecklistItem

// evaluators run in a fixed order so the checklist is stable across
// recomputations of the same pair.
var evaluators = []evaluator{
	sectorCriterion,
	provinceCriterion,
	cidbCriterion,
	bbbeeCriterion,
	experienceCriterion,
}

func sectorCriterion(t *models.Tender, p *models.CompanyProfile) *models.ChecklistItem {
	if t.IndustrySector == "" || p.IndustrySector == "" {
		return nil
	}
	return &models.ChecklistItem{
		Criterion:  fmt.Sprintf("Industry sector match: %s", t.IndustrySector),
		Matched:    strings.EqualFold(t.IndustrySector, p.IndustrySector),
		Importance: 5,
	}
}

func provinceCriterion(t *models.Tender, p *models.CompanyProfile) *models.ChecklistItem {
	if t.Province == "" || len(p.GeographicCoverage) == 0 {
		return nil
	}
	matched := false
	for _, province := range p.GeographicCoverage {
		if province == t.Province {
			matched = true
			break
		}
	}
	return &models.ChecklistItem{
		Criterion:  fmt.Sprintf("Operates in province: %s", t.Province),
		Matched:    matched,
		Importance: 4,
	}
}

func cidbCriterion(t *models.Tender, p *models.CompanyProfile) *models.ChecklistItem {
	if !t.CIDBRequired || p.CIDBGrade == "" {
		return nil
	}
	matched := false
	required, okRequired := gradeNumber(t.CIDBGrade)
	company, okCompany := gradeNumber(p.CIDBGrade)
	if okRequired && okCompany {
		matched = company >= required
	}
	return &models.ChecklistItem{
		Criterion:  fmt.Sprintf("Has required CIDB grade: %s", t.CIDBGrade),
		Matched:    matched,
		Importance: 5,
	}
}

func bbbeeCriterion(t *models.Tender, p *models.CompanyProfile) *models.ChecklistItem {
	if t.BBBEELevelRequired == nil || p.BBBEELevel == nil {
		return nil
	}
	// Lower B-BBEE levels indicate stronger compliance.
	return &models.ChecklistItem{
		Criterion:  fmt.Sprintf("Meets BBBEE level requirement: %d", *t.BBBEELevelRequired),
		Matched:    *p.BBBEELevel <= *t.BBBEELevelRequired,
		Importance: 4,
	}
}

func experienceCriterion(t *models.Tender, p *models.CompanyProfile) *models.ChecklistItem {
	if t.MinYearsExperience == nil {
		return nil
	}
	return &models.ChecklistItem{
		Criterion:  fmt.Sprintf("Has required experience: %d years", *t.MinYearsExperience),
		Matched:    p.YearsExperience >= *t.MinYearsExperience,
		Importance: 3,
	}
}

// gradeNumber extracts the numeric part of a CIDB grade such as
// "Grade 7". A grade with no trailing number cannot match.
func gradeNumber(grade string) (int, bool) {
	fields := strings.Fields(grade)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}
