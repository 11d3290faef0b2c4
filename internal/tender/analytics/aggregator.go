// Package analytics aggregates stored tender metadata into spend and
// trend views. A tender's spend contribution is the midpoint of its
// budget bounds; tenders without budget data contribute zero to totals
// and are ignored by averages.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tender-insight-hub/internal/common/config"
	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/common/logger"
)

// validIntervals are the time buckets date_trunc accepts here.
var validIntervals = map[string]bool{
	"day":     true,
	"week":    true,
	"month":   true,
	"quarter": true,
	"year":    true,
}

// RangeOptions bounds an aggregation by ingestion date and row count.
type RangeOptions struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// BuyerSpend is one row of the spend-by-buyer view.
type BuyerSpend struct {
	Buyer       string   `json:"buyer"`
	TotalSpend  float64  `json:"total_spend"`
	TenderCount int      `json:"tender_count"`
	AvgBudget   *float64 `json:"avg_budget,omitempty"`
}

// ProvinceSpend is one row of the spend-by-province view.
type ProvinceSpend struct {
	Province    string   `json:"province"`
	TotalSpend  float64  `json:"total_spend"`
	TenderCount int      `json:"tender_count"`
	AvgBudget   *float64 `json:"avg_budget,omitempty"`
}

// TrendPoint is one bucket of the tender-trends view.
type TrendPoint struct {
	Period      time.Time `json:"period"`
	TenderCount int       `json:"tender_count"`
	AvgBudget   *float64  `json:"avg_budget,omitempty"`
}

// Aggregator runs analytics queries against the metadata store.
type Aggregator struct {
	db     *sql.DB
	cfg    config.AnalyticsConfig
	logger logger.Logger
}

// New creates an aggregator over the metadata database.
func New(db *sql.DB, cfg config.AnalyticsConfig, log logger.Logger) *Aggregator {
	return &Aggregator{db: db, cfg: cfg, logger: log}
}

// SpendByBuyer groups spend by buyer, descending by total spend.
// Tenders without a buyer are excluded.
func (a *Aggregator) SpendByBuyer(ctx context.Context, opts RangeOptions) ([]BuyerSpend, error) {
	rows, err := a.spendQuery(ctx, "buyer", opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BuyerSpend{}
	for rows.Next() {
		var (
			r   BuyerSpend
			avg sql.NullFloat64
		)
		if err := rows.Scan(&r.Buyer, &r.TotalSpend, &r.TenderCount, &avg); err != nil {
			return nil, errors.NewQueryExecutionFailedError("spend-by-buyer-scan", err)
		}
		if avg.Valid {
			v := avg.Float64
			r.AvgBudget = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("spend-by-buyer-rows", err)
	}
	return out, nil
}

// SpendByProvince groups spend by province, descending by total spend.
// Tenders without a province are excluded.
func (a *Aggregator) SpendByProvince(ctx context.Context, opts RangeOptions) ([]ProvinceSpend, error) {
	rows, err := a.spendQuery(ctx, "province", opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ProvinceSpend{}
	for rows.Next() {
		var (
			r   ProvinceSpend
			avg sql.NullFloat64
		)
		if err := rows.Scan(&r.Province, &r.TotalSpend, &r.TenderCount, &avg); err != nil {
			return nil, errors.NewQueryExecutionFailedError("spend-by-province-scan", err)
		}
		if avg.Valid {
			v := avg.Float64
			r.AvgBudget = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("spend-by-province-rows", err)
	}
	return out, nil
}

func (a *Aggregator) spendQuery(ctx context.Context, dimension string, opts RangeOptions) (*sql.Rows, error) {
	query := sq.Select(
		dimension,
		"COALESCE(SUM((budget_min + budget_max) / 2.0), 0) AS total_spend",
		"COUNT(*) AS tender_count",
		"AVG((budget_min + budget_max) / 2.0) AS avg_budget",
	).
		From("tender_metadata").
		Where(fmt.Sprintf("%s IS NOT NULL AND %s <> ''", dimension, dimension)).
		GroupBy(dimension).
		OrderBy("total_spend DESC").
		Limit(uint64(a.clampLimit(opts.Limit))).
		PlaceholderFormat(sq.Dollar)

	if opts.StartDate != nil {
		query = query.Where(sq.GtOrEq{"created_at": *opts.StartDate})
	}
	if opts.EndDate != nil {
		query = query.Where(sq.LtOrEq{"created_at": *opts.EndDate})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("spend-build", err)
	}

	rows, err := a.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("spend", err)
	}
	return rows, nil
}

// Trends buckets tender counts and average budgets by ingestion period,
// ascending by period. Unknown intervals fall back to monthly buckets.
func (a *Aggregator) Trends(ctx context.Context, interval string, monthsBack int) ([]TrendPoint, error) {
	if !validIntervals[interval] {
		interval = "month"
	}
	if monthsBack <= 0 {
		monthsBack = 12
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30*monthsBack)

	// interval is whitelisted above; date_trunc cannot take a placeholder
	// for its field argument.
	query := fmt.Sprintf(`
		SELECT date_trunc('%s', created_at) AS period,
		       COUNT(*) AS tender_count,
		       AVG((budget_min + budget_max) / 2.0) AS avg_budget
		FROM tender_metadata
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY period
		ORDER BY period ASC`, interval)

	rows, err := a.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("trends", err)
	}
	defer rows.Close()

	out := []TrendPoint{}
	for rows.Next() {
		var (
			p   TrendPoint
			avg sql.NullFloat64
		)
		if err := rows.Scan(&p.Period, &p.TenderCount, &avg); err != nil {
			return nil, errors.NewQueryExecutionFailedError("trends-scan", err)
		}
		if avg.Valid {
			v := avg.Float64
			p.AvgBudget = &v
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("trends-rows", err)
	}
	return out, nil
}

func (a *Aggregator) clampLimit(limit int) int {
	if limit <= 0 {
		limit = a.cfg.DefaultLimit
	}
	if a.cfg.MaxLimit > 0 && limit > a.cfg.MaxLimit {
		limit = a.cfg.MaxLimit
	}
	if limit <= 0 {
		limit = 10
	}
	return limit
}
