package readiness

import (
	"math"

	"tender-insight-hub/internal/models"
)

// Recommendation tiers keyed to the suitability score.
const (
	RecommendationHighlySuitable     = "Highly suitable - strong match for requirements"
	RecommendationSuitable           = "Suitable - good match with some gaps"
	RecommendationModeratelySuitable = "Moderately suitable - significant gaps exist"
	RecommendationNotSuitable        = "Not suitable - major requirements not met"
)

// Score folds every applicable criterion into a 0-100 suitability score.
// The score is the achieved importance over the possible importance,
// rounded to the nearest integer. When no criterion applies the pair is
// scored a neutral 50 with an empty checklist.
func Score(t *models.Tender, p *models.CompanyProfile) (int, []models.ChecklistItem, string) {
	checklist := make([]models.ChecklistItem, 0, len(evaluators))
	achieved, possible := 0, 0

	for _, evaluate := range evaluators {
		item := evaluate(t, p)
		if item == nil {
			continue
		}
		possible += item.Importance
		if item.Matched {
			achieved += item.Importance
		}
		checklist = append(checklist, *item)
	}

	score := 50
	if possible > 0 {
		score = int(math.Round(float64(achieved) / float64(possible) * 100))
	}
	return score, checklist, RecommendationFor(score)
}

// RecommendationFor maps a suitability score to its recommendation tier.
func RecommendationFor(score int) string {
	switch {
	case score >= 80:
		return RecommendationHighlySuitable
	case score >= 60:
		return RecommendationSuitable
	case score >= 40:
		return RecommendationModeratelySuitable
	default:
		return RecommendationNotSuitable
	}
}

// recommendationLabel is the low-cardinality metric label for a tier.
func recommendationLabel(score int) string {
	switch {
	case score >= 80:
		return "highly_suitable"
	case score >= 60:
		return "suitable"
	case score >= 40:
		return "moderately_suitable"
	default:
		return "not_suitable"
	}
}
