// Package workspace tracks tenders a team is pursuing: one item per
// (tender, team) pair, carrying a pipeline status plus notes and tasks.
package workspace

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/models"
)

// TenderSource fetches tender documents for enrichment.
type TenderSource interface {
	GetTender(ctx context.Context, tenderID string) (*models.Tender, error)
}

// ScoreSource fetches stored readiness scores for enrichment.
type ScoreSource interface {
	GetReadiness(ctx context.Context, tenderID, teamID string) (*models.ReadinessScore, error)
}

// ItemStore persists workspace items.
type ItemStore interface {
	PutWorkspaceItem(ctx context.Context, item *models.WorkspaceItem) error
	GetWorkspaceItem(ctx context.Context, tenderID, teamID string) (*models.WorkspaceItem, error)
	FindWorkspaceByTeam(ctx context.Context, teamID, status string) ([]*models.WorkspaceItem, error)
}

var itemStatuses = map[string]bool{
	"pending":      true,
	"interested":   true,
	"not_eligible": true,
	"submitted":    true,
	"won":          true,
	"lost":         true,
}

var taskStatuses = map[string]bool{
	"pending":     true,
	"in_progress": true,
	"completed":   true,
}

// Service manages workspace items. Reads come back enriched with tender
// context and the team's stored readiness score.
type Service struct {
	tenders TenderSource
	scores  ScoreSource
	items   ItemStore
	logger  logger.Logger
}

// NewService creates a workspace service.
func NewService(tenders TenderSource, scores ScoreSource, items ItemStore, log logger.Logger) *Service {
	return &Service{tenders: tenders, scores: scores, items: items, logger: log}
}

// Add starts tracking a tender for a team. The tender must exist and the
// pair must not already be tracked. An empty status defaults to pending.
func (s *Service) Add(ctx context.Context, tenderID, teamID, status, createdBy string) (*models.WorkspaceItemView, error) {
	if status == "" {
		status = "pending"
	}
	if !itemStatuses[status] {
		return nil, errors.NewInvalidWorkspaceStatusError(status)
	}

	tender, err := s.tenders.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	_, err = s.items.GetWorkspaceItem(ctx, tenderID, teamID)
	if err == nil {
		return nil, errors.NewWorkspaceItemExistsError(tenderID, teamID)
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	item := &models.WorkspaceItem{
		ID:        uuid.NewString(),
		TenderID:  tenderID,
		TeamID:    teamID,
		Status:    status,
		Notes:     []models.WorkspaceNote{},
		Tasks:     []models.WorkspaceTask{},
		CreatedAt: now,
		UpdatedAt: now,
		UpdatedBy: createdBy,
	}
	if err := s.items.PutWorkspaceItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("workspace item added", map[string]interface{}{
		"tenderId": tenderID,
		"teamId":   teamID,
		"status":   status,
	})
	return s.enrichWith(ctx, item, tender), nil
}

// ListByTeam returns a team's tracked items ordered by match score, best
// first. An empty status returns every item.
func (s *Service) ListByTeam(ctx context.Context, teamID, status string) ([]*models.WorkspaceItemView, error) {
	if status != "" && !itemStatuses[status] {
		return nil, errors.NewInvalidWorkspaceStatusError(status)
	}

	items, err := s.items.FindWorkspaceByTeam(ctx, teamID, status)
	if err != nil {
		return nil, err
	}

	views := make([]*models.WorkspaceItemView, 0, len(items))
	for _, item := range items {
		views = append(views, s.enrich(ctx, item))
	}
	sort.SliceStable(views, func(i, j int) bool {
		return matchScore(views[i]) > matchScore(views[j])
	})
	return views, nil
}

// UpdateStatus moves a tracked item along the pipeline.
func (s *Service) UpdateStatus(ctx context.Context, tenderID, teamID, status, updatedBy string) (*models.WorkspaceItemView, error) {
	if !itemStatuses[status] {
		return nil, errors.NewInvalidWorkspaceStatusError(status)
	}

	item, err := s.items.GetWorkspaceItem(ctx, tenderID, teamID)
	if err != nil {
		return nil, err
	}

	item.Status = status
	item.UpdatedBy = updatedBy
	item.UpdatedAt = time.Now().UTC()
	if err := s.items.PutWorkspaceItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("workspace item status updated", map[string]interface{}{
		"tenderId": tenderID,
		"teamId":   teamID,
		"status":   status,
	})
	return s.enrich(ctx, item), nil
}

// AddNote appends a note to a tracked item.
func (s *Service) AddNote(ctx context.Context, tenderID, teamID, content, createdBy string) (*models.WorkspaceItemView, error) {
	item, err := s.items.GetWorkspaceItem(ctx, tenderID, teamID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item.Notes = append(item.Notes, models.WorkspaceNote{
		Content:   content,
		CreatedBy: createdBy,
		CreatedAt: now,
	})
	item.UpdatedAt = now
	if err := s.items.PutWorkspaceItem(ctx, item); err != nil {
		return nil, err
	}
	return s.enrich(ctx, item), nil
}

// AddTask appends a task to a tracked item. An empty task status defaults
// to pending.
func (s *Service) AddTask(ctx context.Context, tenderID, teamID string, task models.WorkspaceTask) (*models.WorkspaceItemView, error) {
	if task.Status == "" {
		task.Status = "pending"
	}
	if !taskStatuses[task.Status] {
		return nil, errors.NewInvalidWorkspaceStatusError(task.Status)
	}

	item, err := s.items.GetWorkspaceItem(ctx, tenderID, teamID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task.CreatedAt = now
	item.Tasks = append(item.Tasks, task)
	item.UpdatedAt = now
	if err := s.items.PutWorkspaceItem(ctx, item); err != nil {
		return nil, err
	}
	return s.enrich(ctx, item), nil
}

// enrich decorates an item with tender context and the stored match score.
// A tender or score that has gone missing leaves those fields empty rather
// than failing the read.
func (s *Service) enrich(ctx context.Context, item *models.WorkspaceItem) *models.WorkspaceItemView {
	tender, err := s.tenders.GetTender(ctx, item.TenderID)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Warn("workspace enrichment tender fetch failed", map[string]interface{}{
				"tenderId": item.TenderID,
				"error":    err.Error(),
			})
		}
		tender = nil
	}
	return s.enrichWith(ctx, item, tender)
}

func (s *Service) enrichWith(ctx context.Context, item *models.WorkspaceItem, tender *models.Tender) *models.WorkspaceItemView {
	view := &models.WorkspaceItemView{WorkspaceItem: *item}
	if tender != nil {
		view.TenderTitle = tender.Title
		view.TenderDeadline = tender.Deadline
		view.TenderSummary = tender.Description
	}
	if score, err := s.scores.GetReadiness(ctx, item.TenderID, item.TeamID); err == nil {
		view.MatchScore = &score.SuitabilityScore
	}
	return view
}

func matchScore(v *models.WorkspaceItemView) int {
	if v.MatchScore == nil {
		return -1
	}
	return *v.MatchScore
}
