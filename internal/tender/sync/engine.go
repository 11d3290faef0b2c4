// Package sync implements the dual-store tender upsert protocol. The
// document store is written first and is authoritative; the relational
// projection follows and may lag behind on write contention.
package sync

import (
	"context"

	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/common/metrics"
	"tender-insight-hub/internal/models"
)

// DocumentStore is the slice of the document store the engine needs.
type DocumentStore interface {
	PutTender(ctx context.Context, t *models.Tender) error
	GetTender(ctx context.Context, tenderID string) (*models.Tender, error)
	AllTenderIDs(ctx context.Context) ([]string, error)
}

// MetadataStore is the slice of the relational store the engine needs.
type MetadataStore interface {
	Upsert(ctx context.Context, m models.TenderMetadata) error
	Delete(ctx context.Context, tenderID string) error
	AllIDs(ctx context.Context) ([]string, error)
}

// Engine coordinates writes across both stores. It holds no state of its
// own and is safe for concurrent use; ordering between concurrent upserts
// of the same tender is left to the stores (last write wins).
type Engine struct {
	docs   DocumentStore
	meta   MetadataStore
	logger logger.Logger
}

// NewEngine creates a sync engine over the two stores.
func NewEngine(docs DocumentStore, meta MetadataStore, log logger.Logger) *Engine {
	return &Engine{docs: docs, meta: meta, logger: log}
}

// Upsert decodes the payload and writes it to both stores. The document
// write must succeed; a failed relational write is absorbed, because the
// projection self-heals on the next upsert or reconcile. The tender id is
// returned whenever the document store accepted the write.
func (e *Engine) Upsert(ctx context.Context, payload map[string]interface{}) (string, error) {
	t := Decode(payload)

	if err := e.docs.PutTender(ctx, t); err != nil {
		metrics.TendersSynced.WithLabelValues("error").Inc()
		return "", err
	}

	if err := e.meta.Upsert(ctx, t.Metadata()); err != nil {
		conflict := errors.NewMetadataWriteConflictError(t.TenderID, err)
		metrics.MetadataWriteConflicts.Inc()
		metrics.TendersSynced.WithLabelValues("partial").Inc()
		e.logger.Warn("metadata projection write failed, document store remains authoritative", map[string]interface{}{
			"tenderId": t.TenderID,
			"error":    conflict.Error(),
			"details":  conflict.Details,
		})
		return t.TenderID, nil
	}

	metrics.TendersSynced.WithLabelValues("ok").Inc()
	return t.TenderID, nil
}

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Projected int `json:"projected"`
	Removed   int `json:"removed"`
	Failed    int `json:"failed"`
}

// Reconcile re-derives every relational row from the document store and
// removes rows whose document no longer exists. Individual failures are
// counted and logged but do not abort the pass.
func (e *Engine) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	docIDs, err := e.docs.AllTenderIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{}
	known := make(map[string]struct{}, len(docIDs))

	for _, id := range docIDs {
		known[id] = struct{}{}

		t, err := e.docs.GetTender(ctx, id)
		if err != nil {
			result.Failed++
			e.logger.Warn("reconcile: document fetch failed", map[string]interface{}{
				"tenderId": id,
				"error":    err.Error(),
			})
			continue
		}
		if err := e.meta.Upsert(ctx, t.Metadata()); err != nil {
			result.Failed++
			e.logger.Warn("reconcile: projection write failed", map[string]interface{}{
				"tenderId": id,
				"error":    err.Error(),
			})
			continue
		}
		result.Projected++
	}

	metaIDs, err := e.meta.AllIDs(ctx)
	if err != nil {
		return result, err
	}
	for _, id := range metaIDs {
		if _, ok := known[id]; ok {
			continue
		}
		if err := e.meta.Delete(ctx, id); err != nil {
			result.Failed++
			continue
		}
		result.Removed++
	}

	e.logger.Info("reconcile pass completed", map[string]interface{}{
		"projected": result.Projected,
		"removed":   result.Removed,
		"failed":    result.Failed,
	})
	return result, nil
}
