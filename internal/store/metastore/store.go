// Package metastore persists the relational tender projection in PostgreSQL.
// Rows here are lossy copies of document store records; the document store
// stays authoritative and rows are re-derivable from it at any time.
package metastore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/models"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS tender_metadata (
	tender_id   TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	buyer       TEXT,
	province    TEXT,
	budget_min  DOUBLE PRECISION,
	budget_max  DOUBLE PRECISION,
	deadline    TIMESTAMPTZ,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Filter narrows candidate selection for search. Zero values mean the
// dimension is unconstrained. Budget bounds select tenders whose budget
// interval overlaps the requested interval.
type Filter struct {
	Province     string
	Buyer        string
	MinBudget    *float64
	MaxBudget    *float64
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	Limit        int
}

// Store provides access to the tender_metadata table.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

// New creates a metadata store backed by the given database handle.
func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// Migrate creates the tender_metadata table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return errors.NewQueryExecutionFailedError("migrate", err)
	}
	return nil
}

// Upsert writes the projection for a tender inside a single transaction.
// An existing row for the same tender_id is updated in place; any failure
// rolls the transaction back and leaves prior metadata untouched.
func (s *Store) Upsert(ctx context.Context, m models.TenderMetadata) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tender_metadata WHERE tender_id = $1)`,
		m.TenderID,
	).Scan(&exists)
	if err != nil {
		tx.Rollback()
		return errors.NewQueryExecutionFailedError("upsert-check", err)
	}

	if exists {
		_, err = tx.ExecContext(ctx,
			`UPDATE tender_metadata
			 SET title = $2, buyer = $3, province = $4,
			     budget_min = $5, budget_max = $6, deadline = $7
			 WHERE tender_id = $1`,
			m.TenderID, m.Title, nullString(m.Buyer), nullString(m.Province),
			m.BudgetMin, m.BudgetMax, m.Deadline,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tender_metadata
			 (tender_id, title, buyer, province, budget_min, budget_max, deadline)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.TenderID, m.Title, nullString(m.Buyer), nullString(m.Province),
			m.BudgetMin, m.BudgetMax, m.Deadline,
		)
	}
	if err != nil {
		tx.Rollback()
		return errors.NewQueryExecutionFailedError("upsert-write", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewQueryExecutionFailedError("upsert-commit", err)
	}
	return nil
}

// Get returns the projection row for a tender, or a not-found error.
func (s *Store) Get(ctx context.Context, tenderID string) (*models.TenderMetadata, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT tender_id, title, buyer, province, budget_min, budget_max, deadline, created_at
		 FROM tender_metadata WHERE tender_id = $1`,
		tenderID,
	)
	m, err := scanMetadata(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewTenderNotFoundError(tenderID)
		}
		return nil, errors.NewQueryExecutionFailedError("get", err)
	}
	return m, nil
}

// Find returns projection rows matching the filter, most recent deadline
// constraints applied in SQL so search only hydrates plausible candidates.
func (s *Store) Find(ctx context.Context, f Filter) ([]models.TenderMetadata, error) {
	query := sq.Select("tender_id", "title", "buyer", "province",
		"budget_min", "budget_max", "deadline", "created_at").
		From("tender_metadata").
		PlaceholderFormat(sq.Dollar)

	if f.Province != "" {
		query = query.Where(sq.Eq{"province": f.Province})
	}
	if f.Buyer != "" {
		query = query.Where(sq.Eq{"buyer": f.Buyer})
	}
	if f.MinBudget != nil {
		query = query.Where(sq.GtOrEq{"budget_max": *f.MinBudget})
	}
	if f.MaxBudget != nil {
		query = query.Where(sq.LtOrEq{"budget_min": *f.MaxBudget})
	}
	if f.DeadlineFrom != nil {
		query = query.Where(sq.GtOrEq{"deadline": *f.DeadlineFrom})
	}
	if f.DeadlineTo != nil {
		query = query.Where(sq.LtOrEq{"deadline": *f.DeadlineTo})
	}
	if f.Limit > 0 {
		query = query.Limit(uint64(f.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("find-build", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("find", err)
	}
	defer rows.Close()

	var out []models.TenderMetadata
	for rows.Next() {
		m, err := scanMetadata(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("find-scan", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("find-rows", err)
	}
	return out, nil
}

// DistinctProvinces returns every non-null province present, sorted.
func (s *Store) DistinctProvinces(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx,
		`SELECT DISTINCT province FROM tender_metadata WHERE province IS NOT NULL AND province <> '' ORDER BY province`)
}

// DistinctBuyers returns every non-null buyer present, sorted.
func (s *Store) DistinctBuyers(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx,
		`SELECT DISTINCT buyer FROM tender_metadata WHERE buyer IS NOT NULL AND buyer <> '' ORDER BY buyer`)
}

func (s *Store) distinctColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("distinct", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.NewQueryExecutionFailedError("distinct-scan", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("distinct-rows", err)
	}
	return out, nil
}

// BudgetBounds returns the lowest budget_min and highest budget_max on
// record. Both are nil when no tender carries budget data.
func (s *Store) BudgetBounds(ctx context.Context) (*float64, *float64, error) {
	var min, max sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(budget_min), MAX(budget_max) FROM tender_metadata`,
	).Scan(&min, &max)
	if err != nil {
		return nil, nil, errors.NewQueryExecutionFailedError("budget-bounds", err)
	}
	return nullableFloat(min), nullableFloat(max), nil
}

// DeadlineBounds returns the earliest and latest deadlines on record.
func (s *Store) DeadlineBounds(ctx context.Context) (*time.Time, *time.Time, error) {
	var earliest, latest sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(deadline), MAX(deadline) FROM tender_metadata`,
	).Scan(&earliest, &latest)
	if err != nil {
		return nil, nil, errors.NewQueryExecutionFailedError("deadline-bounds", err)
	}
	return nullableTime(earliest), nullableTime(latest), nil
}

// Delete removes the projection row for a tender. Missing rows are not an
// error; reconciliation calls this for documents that lost their metadata.
func (s *Store) Delete(ctx context.Context, tenderID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM tender_metadata WHERE tender_id = $1`, tenderID); err != nil {
		return errors.NewQueryExecutionFailedError("delete", err)
	}
	return nil
}

// AllIDs lists every tender_id currently projected. Used by reconciliation
// to diff against the document store.
func (s *Store) AllIDs(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, `SELECT tender_id FROM tender_metadata ORDER BY tender_id`)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMetadata(row rowScanner) (*models.TenderMetadata, error) {
	var (
		m        models.TenderMetadata
		buyer    sql.NullString
		province sql.NullString
		bmin     sql.NullFloat64
		bmax     sql.NullFloat64
		deadline sql.NullTime
	)
	err := row.Scan(&m.TenderID, &m.Title, &buyer, &province, &bmin, &bmax, &deadline, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Buyer = buyer.String
	m.Province = province.String
	m.BudgetMin = nullableFloat(bmin)
	m.BudgetMax = nullableFloat(bmax)
	m.Deadline = nullableTime(deadline)
	return &m, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
