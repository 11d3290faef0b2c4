package search

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tender-insight-hub/internal/common/config"
	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/common/metrics"
	"tender-insight-hub/internal/models"
	"tender-insight-hub/internal/store/metastore"
)

// MetadataFinder selects candidates and filter facets from the
// relational projection.
type MetadataFinder interface {
	Find(ctx context.Context, f metastore.Filter) ([]models.TenderMetadata, error)
	DistinctProvinces(ctx context.Context) ([]string, error)
	DistinctBuyers(ctx context.Context) ([]string, error)
	BudgetBounds(ctx context.Context) (*float64, *float64, error)
	DeadlineBounds(ctx context.Context) (*time.Time, *time.Time, error)
}

// DocumentGetter hydrates candidate tenders from the document store.
type DocumentGetter interface {
	MGetTenders(ctx context.Context, ids []string) (map[string]*models.Tender, error)
}

// Request carries keywords plus the structured filters.
type Request struct {
	Keywords     string
	Province     string
	Buyer        string
	MinBudget    *float64
	MaxBudget    *float64
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	Limit        int
}

// FilterOptions summarizes the filterable value space of the current
// corpus, for populating search filter controls.
type FilterOptions struct {
	Provinces        []string   `json:"provinces"`
	Buyers           []string   `json:"buyers"`
	BudgetMin        *float64   `json:"budget_min,omitempty"`
	BudgetMax        *float64   `json:"budget_max,omitempty"`
	EarliestDeadline *time.Time `json:"earliest_deadline,omitempty"`
	LatestDeadline   *time.Time `json:"latest_deadline,omitempty"`
}

// Service runs candidate selection against the metadata store, hydrates
// documents and ranks them by keyword relevance.
type Service struct {
	meta   MetadataFinder
	docs   DocumentGetter
	cfg    config.SearchConfig
	logger logger.Logger
}

// NewService creates a search service.
func NewService(meta MetadataFinder, docs DocumentGetter, cfg config.SearchConfig, log logger.Logger) *Service {
	return &Service{meta: meta, docs: docs, cfg: cfg, logger: log}
}

// Search filters, hydrates and ranks tenders. Results are ordered by
// relevance descending; ties break on ascending deadline with undated
// tenders last, then on tender id for determinism.
func (s *Service) Search(ctx context.Context, req Request) ([]models.SearchResult, error) {
	timer := prometheus.NewTimer(metrics.SearchDuration)
	defer timer.ObserveDuration()

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	candidates, err := s.meta.Find(ctx, metastore.Filter{
		Province:     req.Province,
		Buyer:        req.Buyer,
		MinBudget:    req.MinBudget,
		MaxBudget:    req.MaxBudget,
		DeadlineFrom: req.DeadlineFrom,
		DeadlineTo:   req.DeadlineTo,
	})
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}
	if len(candidates) == 0 {
		return []models.SearchResult{}, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.TenderID)
	}
	docs, err := s.docs.MGetTenders(ctx, ids)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}

	terms := Terms(req.Keywords)
	results := make([]models.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		doc, ok := docs[c.TenderID]
		if !ok {
			// Projection ahead of the document store; skip rather than
			// surface a half-known tender.
			s.logger.Debug("candidate missing from document store", map[string]interface{}{
				"tenderId": c.TenderID,
			})
			continue
		}
		results = append(results, models.SearchResult{
			TenderID:       c.TenderID,
			Title:          doc.Title,
			Buyer:          doc.Buyer,
			Province:       doc.Province,
			BudgetMin:      doc.BudgetMin,
			BudgetMax:      doc.BudgetMax,
			Deadline:       doc.Deadline,
			Excerpt:        Excerpt(doc.Description, s.cfg.ExcerptLength),
			RelevanceScore: Relevance(doc.Description, terms),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		di, dj := results[i].Deadline, results[j].Deadline
		switch {
		case di != nil && dj != nil && !di.Equal(*dj):
			return di.Before(*dj)
		case di != nil && dj == nil:
			return true
		case di == nil && dj != nil:
			return false
		}
		return results[i].TenderID < results[j].TenderID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Options reports distinct provinces and buyers plus overall budget and
// deadline bounds.
func (s *Service) Options(ctx context.Context) (*FilterOptions, error) {
	provinces, err := s.meta.DistinctProvinces(ctx)
	if err != nil {
		return nil, err
	}
	buyers, err := s.meta.DistinctBuyers(ctx)
	if err != nil {
		return nil, err
	}
	budgetMin, budgetMax, err := s.meta.BudgetBounds(ctx)
	if err != nil {
		return nil, err
	}
	earliest, latest, err := s.meta.DeadlineBounds(ctx)
	if err != nil {
		return nil, err
	}

	if provinces == nil {
		provinces = []string{}
	}
	if buyers == nil {
		buyers = []string{}
	}
	return &FilterOptions{
		Provinces:        provinces,
		Buyers:           buyers,
		BudgetMin:        budgetMin,
		BudgetMax:        budgetMax,
		EarliestDeadline: earliest,
		LatestDeadline:   latest,
	}, nil
}
