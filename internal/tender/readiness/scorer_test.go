package readiness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-insight-hub/internal/models"
)

func intPtr(v int) *int { return &v }

func constructionTender() *models.Tender {
	return &models.Tender{
		TenderID:           "ocds-100",
		Province:           "Gauteng",
		IndustrySector:     "Construction",
		CIDBRequired:       true,
		CIDBGrade:          "Grade 7",
		BBBEELevelRequired: intPtr(4),
		MinYearsExperience: intPtr(5),
	}
}

func constructionProfile() *models.CompanyProfile {
	return &models.CompanyProfile{
		TeamID:             "team-1",
		IndustrySector:     "Construction",
		GeographicCoverage: []string{"Gauteng", "Limpopo"},
		CIDBGrade:          "Grade 8",
		BBBEELevel:         intPtr(2),
		YearsExperience:    10,
	}
}

func TestScore_FullMatchScoresHundred(t *testing.T) {
	score, checklist, recommendation := Score(constructionTender(), constructionProfile())

	assert.Equal(t, 100, score)
	assert.Equal(t, RecommendationHighlySuitable, recommendation)
	require.Len(t, checklist, 5)
	for _, item := range checklist {
		assert.True(t, item.Matched, item.Criterion)
	}
}

func TestScore_ChecklistOrderIsStable(t *testing.T) {
	_, checklist, _ := Score(constructionTender(), constructionProfile())

	require.Len(t, checklist, 5)
	assert.Equal(t, "Industry sector match: Construction", checklist[0].Criterion)
	assert.Equal(t, "Operates in province: Gauteng", checklist[1].Criterion)
	assert.Equal(t, "Has required CIDB grade: Grade 7", checklist[2].Criterion)
	assert.Equal(t, "Meets BBBEE level requirement: 4", checklist[3].Criterion)
	assert.Equal(t, "Has required experience: 5 years", checklist[4].Criterion)
}

func TestScore_NoApplicableCriteriaIsNeutral(t *testing.T) {
	score, checklist, recommendation := Score(&models.Tender{}, &models.CompanyProfile{})

	assert.Equal(t, 50, score)
	assert.Empty(t, checklist)
	assert.Equal(t, RecommendationModeratelySuitable, recommendation)
}

func TestScore_SectorMatchIsCaseInsensitive(t *testing.T) {
	tender := &models.Tender{IndustrySector: "CONSTRUCTION"}
	profile := &models.CompanyProfile{IndustrySector: "construction"}

	score, checklist, _ := Score(tender, profile)
	require.Len(t, checklist, 1)
	assert.True(t, checklist[0].Matched)
	assert.Equal(t, 100, score)
}

func TestScore_ProvinceOutsideCoverageFails(t *testing.T) {
	tender := &models.Tender{Province: "Northern Cape"}
	profile := &models.CompanyProfile{GeographicCoverage: []string{"Gauteng"}}

	score, checklist, _ := Score(tender, profile)
	require.Len(t, checklist, 1)
	assert.False(t, checklist[0].Matched)
	assert.Equal(t, 0, score)
}

func TestScore_CIDBNotRequiredIsSkipped(t *testing.T) {
	tender := &models.Tender{CIDBRequired: false, CIDBGrade: "Grade 7"}
	profile := &models.CompanyProfile{CIDBGrade: "Grade 2"}

	_, checklist, _ := Score(tender, profile)
	assert.Empty(t, checklist)
}

func TestScore_CIDBGradeComparison(t *testing.T) {
	cases := []struct {
		name         string
		companyGrade string
		matched      bool
	}{
		{"higher grade matches", "Grade 8", true},
		{"equal grade matches", "Grade 7", true},
		{"lower grade fails", "Grade 5", false},
		{"unparseable grade fails", "Grade Seven", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tender := &models.Tender{CIDBRequired: true, CIDBGrade: "Grade 7"}
			profile := &models.CompanyProfile{CIDBGrade: tc.companyGrade}

			_, checklist, _ := Score(tender, profile)
			require.Len(t, checklist, 1)
			assert.Equal(t, tc.matched, checklist[0].Matched)
		})
	}
}

func TestScore_BBBEELowerLevelIsBetter(t *testing.T) {
	tender := &models.Tender{BBBEELevelRequired: intPtr(4)}

	_, checklist, _ := Score(tender, &models.CompanyProfile{BBBEELevel: intPtr(2)})
	require.Len(t, checklist, 1)
	assert.True(t, checklist[0].Matched)

	_, checklist, _ = Score(tender, &models.CompanyProfile{BBBEELevel: intPtr(6)})
	require.Len(t, checklist, 1)
	assert.False(t, checklist[0].Matched)
}

func TestScore_PartialMatchRoundsToNearest(t *testing.T) {
	// Sector (5) matched, province (4) not: 5/9 rounds to 56.
	tender := &models.Tender{IndustrySector: "ICT", Province: "Free State"}
	profile := &models.CompanyProfile{
		IndustrySector:     "ICT",
		GeographicCoverage: []string{"Gauteng"},
	}

	score, checklist, recommendation := Score(tender, profile)
	require.Len(t, checklist, 2)
	assert.Equal(t, 56, score)
	assert.Equal(t, RecommendationModeratelySuitable, recommendation)
}

func TestScore_StaysWithinBounds(t *testing.T) {
	score, _, _ := Score(constructionTender(), &models.CompanyProfile{
		IndustrySector:     "Catering",
		GeographicCoverage: []string{"Western Cape"},
		CIDBGrade:          "Grade 1",
		BBBEELevel:         intPtr(8),
		YearsExperience:    0,
	})
	assert.Equal(t, 0, score)
}

func TestScore_IsDeterministic(t *testing.T) {
	tender, profile := constructionTender(), constructionProfile()

	firstScore, firstChecklist, firstRec := Score(tender, profile)
	secondScore, secondChecklist, secondRec := Score(tender, profile)

	assert.Equal(t, firstScore, secondScore)
	assert.Equal(t, firstChecklist, secondChecklist)
	assert.Equal(t, firstRec, secondRec)
}

func TestRecommendationFor_Tiers(t *testing.T) {
	assert.Equal(t, RecommendationHighlySuitable, RecommendationFor(80))
	assert.Equal(t, RecommendationSuitable, RecommendationFor(60))
	assert.Equal(t, RecommendationSuitable, RecommendationFor(79))
	assert.Equal(t, RecommendationModeratelySuitable, RecommendationFor(40))
	assert.Equal(t, RecommendationNotSuitable, RecommendationFor(39))
	assert.Equal(t, RecommendationNotSuitable, RecommendationFor(0))
}
