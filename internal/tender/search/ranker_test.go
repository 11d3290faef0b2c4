package search

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTerms_SplitsLowercasesAndDedupes(t *testing.T) {
	assert.Equal(t, []string{"solar", "panels"}, Terms("Solar  PANELS"))
	assert.Equal(t, []string{"solar"}, Terms("solar solar Solar"))
	assert.Nil(t, Terms("   "))
	assert.Nil(t, Terms(""))
}

func TestRelevance_FractionOfTermsPresent(t *testing.T) {
	description := "Supply and installation of solar water heaters"

	assert.Equal(t, 0.5, Relevance(description, Terms("solar panels")))
	assert.Equal(t, 1.0, Relevance(description, Terms("solar supply")))
	assert.Equal(t, 0.0, Relevance(description, Terms("bridge paving")))
}

func TestRelevance_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Relevance("SOLAR farm development", Terms("solar")))
}

func TestRelevance_PresenceNotFrequency(t *testing.T) {
	repeated := "solar solar solar solar"
	single := "a solar installation"
	terms := Terms("solar")

	assert.Equal(t, Relevance(single, terms), Relevance(repeated, terms))
}

func TestRelevance_NoTermsScoresZero(t *testing.T) {
	assert.Equal(t, 0.0, Relevance("anything at all", nil))
	assert.Equal(t, 0.0, Relevance("anything at all", Terms("")))
}

func TestRelevance_MonotonicInMatchedTerms(t *testing.T) {
	terms := Terms("roads bridges dams")

	none := Relevance("school furniture", terms)
	one := Relevance("rural roads", terms)
	two := Relevance("roads and bridges", terms)
	all := Relevance("roads bridges dams programme", terms)

	assert.Less(t, none, one)
	assert.Less(t, one, two)
	assert.Less(t, two, all)
	assert.Equal(t, 1.0, all)
}

func TestExcerpt_TruncatesLongDescriptions(t *testing.T) {
	long := strings.Repeat("x", 300)

	got := Excerpt(long, 200)
	assert.Len(t, got, 203)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestExcerpt_CutsOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("ü", 300)

	got := Excerpt(long, 200)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ü", 200)+"...", got)
	assert.NotContains(t, got, "�")
}

func TestExcerpt_CountsCharactersNotBytes(t *testing.T) {
	// 150 two-byte runes are 300 bytes but only 150 characters.
	short := strings.Repeat("é", 150)
	assert.Equal(t, short, Excerpt(short, 200))
}

func TestExcerpt_ShortDescriptionsPassThrough(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 200))
	exact := strings.Repeat("y", 200)
	assert.Equal(t, exact, Excerpt(exact, 200))
}
