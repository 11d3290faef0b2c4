package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-insight-hub/internal/common/config"
	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/models"
	"tender-insight-hub/internal/store/metastore"
)

type fakeFinder struct {
	rows       []models.TenderMetadata
	lastFilter metastore.Filter
	provinces  []string
	buyers     []string
	findErr    error
}

func (f *fakeFinder) Find(_ context.Context, filter metastore.Filter) ([]models.TenderMetadata, error) {
	f.lastFilter = filter
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.rows, nil
}

func (f *fakeFinder) DistinctProvinces(_ context.Context) ([]string, error) {
	return f.provinces, nil
}

func (f *fakeFinder) DistinctBuyers(_ context.Context) ([]string, error) {
	return f.buyers, nil
}

func (f *fakeFinder) BudgetBounds(_ context.Context) (*float64, *float64, error) {
	return nil, nil, nil
}

func (f *fakeFinder) DeadlineBounds(_ context.Context) (*time.Time, *time.Time, error) {
	return nil, nil, nil
}

type fakeGetter struct {
	docs map[string]*models.Tender
	err  error
}

func (f *fakeGetter) MGetTenders(_ context.Context, ids []string) (map[string]*models.Tender, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*models.Tender)
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			out[id] = doc
		}
	}
	return out, nil
}

func searchConfig() config.SearchConfig {
	return config.SearchConfig{DefaultLimit: 50, MaxLimit: 100, ExcerptLength: 200}
}

func metaRow(id string) models.TenderMetadata {
	return models.TenderMetadata{TenderID: id}
}

func TestSearch_RanksByRelevanceDescending(t *testing.T) {
	finder := &fakeFinder{rows: []models.TenderMetadata{metaRow("a"), metaRow("b"), metaRow("c")}}
	getter := &fakeGetter{docs: map[string]*models.Tender{
		"a": {TenderID: "a", Description: "school furniture"},
		"b": {TenderID: "b", Description: "solar panels for clinics"},
		"c": {TenderID: "c", Description: "solar water heaters"},
	}}
	svc := NewService(finder, getter, searchConfig(), logger.NewTestLogger(t))

	results, err := svc.Search(context.Background(), Request{Keywords: "solar panels"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "b", results[0].TenderID)
	assert.Equal(t, 1.0, results[0].RelevanceScore)
	assert.Equal(t, "c", results[1].TenderID)
	assert.Equal(t, 0.5, results[1].RelevanceScore)
	assert.Equal(t, "a", results[2].TenderID)
	assert.Equal(t, 0.0, results[2].RelevanceScore)
}

func TestSearch_TieBreaksOnDeadlineThenID(t *testing.T) {
	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	finder := &fakeFinder{rows: []models.TenderMetadata{metaRow("undated"), metaRow("late"), metaRow("early")}}
	getter := &fakeGetter{docs: map[string]*models.Tender{
		"undated": {TenderID: "undated", Description: "solar"},
		"late":    {TenderID: "late", Description: "solar", Deadline: &late},
		"early":   {TenderID: "early", Description: "solar", Deadline: &early},
	}}
	svc := NewService(finder, getter, searchConfig(), logger.NewTestLogger(t))

	results, err := svc.Search(context.Background(), Request{Keywords: "solar"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "early", results[0].TenderID)
	assert.Equal(t, "late", results[1].TenderID)
	assert.Equal(t, "undated", results[2].TenderID)
}

func TestSearch_PassesFiltersToMetadataStore(t *testing.T) {
	finder := &fakeFinder{}
	getter := &fakeGetter{docs: map[string]*models.Tender{}}
	svc := NewService(finder, getter, searchConfig(), logger.NewTestLogger(t))

	min, max := 100000.0, 500000.0
	_, err := svc.Search(context.Background(), Request{
		Province:  "Gauteng",
		Buyer:     "Dept of Health",
		MinBudget: &min,
		MaxBudget: &max,
	})
	require.NoError(t, err)

	assert.Equal(t, "Gauteng", finder.lastFilter.Province)
	assert.Equal(t, "Dept of Health", finder.lastFilter.Buyer)
	require.NotNil(t, finder.lastFilter.MinBudget)
	assert.Equal(t, 100000.0, *finder.lastFilter.MinBudget)
}

func TestSearch_SkipsCandidatesMissingFromDocStore(t *testing.T) {
	finder := &fakeFinder{rows: []models.TenderMetadata{metaRow("present"), metaRow("drifted")}}
	getter := &fakeGetter{docs: map[string]*models.Tender{
		"present": {TenderID: "present", Description: "water"},
	}}
	svc := NewService(finder, getter, searchConfig(), logger.NewTestLogger(t))

	results, err := svc.Search(context.Background(), Request{Keywords: "water"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "present", results[0].TenderID)
}

func TestSearch_AppliesLimitAfterRanking(t *testing.T) {
	finder := &fakeFinder{rows: []models.TenderMetadata{metaRow("a"), metaRow("b"), metaRow("c")}}
	getter := &fakeGetter{docs: map[string]*models.Tender{
		"a": {TenderID: "a", Description: "roads"},
		"b": {TenderID: "b", Description: "roads and bridges"},
		"c": {TenderID: "c", Description: "nothing relevant"},
	}}
	svc := NewService(finder, getter, searchConfig(), logger.NewTestLogger(t))

	results, err := svc.Search(context.Background(), Request{Keywords: "roads bridges", Limit: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].TenderID)
}

func TestSearch_NoKeywordsReturnsUnranked(t *testing.T) {
	finder := &fakeFinder{rows: []models.TenderMetadata{metaRow("a")}}
	getter := &fakeGetter{docs: map[string]*models.Tender{
		"a": {TenderID: "a", Description: "anything"},
	}}
	svc := NewService(finder, getter, searchConfig(), logger.NewTestLogger(t))

	results, err := svc.Search(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].RelevanceScore)
}

func TestSearch_FinderFailureReportsSearchError(t *testing.T) {
	finder := &fakeFinder{findErr: fmt.Errorf("connection refused")}
	svc := NewService(finder, &fakeGetter{}, searchConfig(), logger.NewTestLogger(t))

	_, err := svc.Search(context.Background(), Request{Keywords: "solar"})
	require.Error(t, err)

	se, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSearchQueryFailed, se.Code)
	assert.True(t, se.Retryable)
	assert.Contains(t, se.Details, "connection refused")
}

func TestSearch_HydrationFailureReportsSearchError(t *testing.T) {
	finder := &fakeFinder{rows: []models.TenderMetadata{metaRow("a")}}
	getter := &fakeGetter{err: fmt.Errorf("mget timed out")}
	svc := NewService(finder, getter, searchConfig(), logger.NewTestLogger(t))

	_, err := svc.Search(context.Background(), Request{Keywords: "solar"})
	require.Error(t, err)

	se, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSearchQueryFailed, se.Code)
}

func TestOptions_ReturnsEmptySlicesNotNil(t *testing.T) {
	finder := &fakeFinder{}
	svc := NewService(finder, &fakeGetter{}, searchConfig(), logger.NewTestLogger(t))

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, opts.Provinces)
	assert.NotNil(t, opts.Buyers)
	assert.Empty(t, opts.Provinces)
}

func TestOptions_ListsDistinctValues(t *testing.T) {
	finder := &fakeFinder{
		provinces: []string{"Gauteng", "Limpopo"},
		buyers:    []string{"Dept of Health"},
	}
	svc := NewService(finder, &fakeGetter{}, searchConfig(), logger.NewTestLogger(t))

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Gauteng", "Limpopo"}, opts.Provinces)
	assert.Equal(t, []string{"Dept of Health"}, opts.Buyers)
}
