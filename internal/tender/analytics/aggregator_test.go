package analytics

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-insight-hub/internal/common/config"
	"tender-insight-hub/internal/common/logger"
)

func newAggregatorWithMock(t *testing.T) (*Aggregator, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.AnalyticsConfig{DefaultLimit: 10, MaxLimit: 1000}
	return New(db, cfg, logger.NewTestLogger(t)), mock
}

func spendColumns() []string {
	return []string{"dimension", "total_spend", "tender_count", "avg_budget"}
}

func TestSpendByBuyer_OrdersByTotalSpendDescending(t *testing.T) {
	agg, mock := newAggregatorWithMock(t)

	mock.ExpectQuery(`SELECT buyer, .* FROM tender_metadata WHERE buyer IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows(spendColumns()).
			AddRow("Dept of Health", 5000000.0, 12, 416666.67).
			AddRow("Dept of Transport", 3000000.0, 4, 750000.0))

	results, err := agg.SpendByBuyer(context.Background(), RangeOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Dept of Health", results[0].Buyer)
	assert.Equal(t, 5000000.0, results[0].TotalSpend)
	assert.Equal(t, 12, results[0].TenderCount)
	require.NotNil(t, results[0].AvgBudget)
	assert.InDelta(t, 416666.67, *results[0].AvgBudget, 0.01)
}

func TestSpendByBuyer_AppliesDateRange(t *testing.T) {
	agg, mock := newAggregatorWithMock(t)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`created_at >= $1 AND created_at <= $2`)).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows(spendColumns()))

	results, err := agg.SpendByBuyer(context.Background(), RangeOptions{
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendByBuyer_DefaultLimitApplied(t *testing.T) {
	agg, mock := newAggregatorWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT 10`)).
		WillReturnRows(sqlmock.NewRows(spendColumns()))

	_, err := agg.SpendByBuyer(context.Background(), RangeOptions{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendByBuyer_LimitClampedToMax(t *testing.T) {
	agg, mock := newAggregatorWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT 1000`)).
		WillReturnRows(sqlmock.NewRows(spendColumns()))

	_, err := agg.SpendByBuyer(context.Background(), RangeOptions{Limit: 50000})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendByProvince_NullAvgBudget(t *testing.T) {
	agg, mock := newAggregatorWithMock(t)

	mock.ExpectQuery(`SELECT province, .* FROM tender_metadata WHERE province IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows(spendColumns()).
			AddRow("Gauteng", 0.0, 3, nil))

	results, err := agg.SpendByProvince(context.Background(), RangeOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Gauteng", results[0].Province)
	assert.Equal(t, 0.0, results[0].TotalSpend)
	assert.Nil(t, results[0].AvgBudget)
}

func TestTrends_BucketsByInterval(t *testing.T) {
	agg, mock := newAggregatorWithMock(t)

	january := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	february := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`date_trunc('month', created_at)`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"period", "tender_count", "avg_budget"}).
			AddRow(january, 5, 200000.0).
			AddRow(february, 8, 350000.0))

	points, err := agg.Trends(context.Background(), "month", 12)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, january, points[0].Period)
	assert.Equal(t, 5, points[0].TenderCount)
	assert.Equal(t, february, points[1].Period)
}

func TestTrends_UnknownIntervalFallsBackToMonth(t *testing.T) {
	agg, mock := newAggregatorWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`date_trunc('month', created_at)`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"period", "tender_count", "avg_budget"}))

	_, err := agg.Trends(context.Background(), "fortnight", 6)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrends_QuarterInterval(t *testing.T) {
	agg, mock := newAggregatorWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`date_trunc('quarter', created_at)`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"period", "tender_count", "avg_budget"}))

	_, err := agg.Trends(context.Background(), "quarter", 24)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
