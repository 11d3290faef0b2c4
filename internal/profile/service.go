// Package profile manages company profiles: one per team, validated
// against a JSON schema before it reaches the document store.
package profile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/common/validation"
	"tender-insight-hub/internal/models"
)

// Store is the slice of the document store the profile service needs.
type Store interface {
	PutProfile(ctx context.Context, p *models.CompanyProfile) error
	GetProfileByTeam(ctx context.Context, teamID string) (*models.CompanyProfile, error)
	DeleteProfile(ctx context.Context, teamID string) error
}

// Service provides profile CRUD with validation and cache invalidation.
type Service struct {
	store  Store
	cache  *redis.Client
	logger logger.Logger
}

// NewService creates a profile service. The cache client may be nil.
func NewService(store Store, cache *redis.Client, log logger.Logger) *Service {
	return &Service{store: store, cache: cache, logger: log}
}

// Create validates and stores a new profile. A team may hold only one
// profile; creating over an existing one is a conflict, not an upsert.
func (s *Service) Create(ctx context.Context, teamID string, payload map[string]interface{}) (*models.CompanyProfile, error) {
	if err := validation.ValidateCompanyProfile(payload); err != nil {
		return nil, errors.NewProfileValidationFailedError(err.Error())
	}

	_, err := s.store.GetProfileByTeam(ctx, teamID)
	if err == nil {
		return nil, errors.NewProfileExistsError(teamID)
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	profile, err := decodeProfile(payload)
	if err != nil {
		return nil, errors.NewProfileValidationFailedError(err.Error())
	}

	now := time.Now().UTC()
	profile.ID = uuid.NewString()
	profile.TeamID = teamID
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if err := s.store.PutProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("company profile created", map[string]interface{}{"teamId": teamID})
	return profile, nil
}

// Get returns the profile for a team.
func (s *Service) Get(ctx context.Context, teamID string) (*models.CompanyProfile, error) {
	return s.store.GetProfileByTeam(ctx, teamID)
}

// Update validates and replaces the profile for a team, preserving its
// identity and creation time. The cached copy is invalidated so the next
// readiness check sees the new data.
func (s *Service) Update(ctx context.Context, teamID string, payload map[string]interface{}) (*models.CompanyProfile, error) {
	if err := validation.ValidateCompanyProfile(payload); err != nil {
		return nil, errors.NewProfileValidationFailedError(err.Error())
	}

	existing, err := s.store.GetProfileByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	profile, err := decodeProfile(payload)
	if err != nil {
		return nil, errors.NewProfileValidationFailedError(err.Error())
	}

	profile.ID = existing.ID
	profile.TeamID = teamID
	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = time.Now().UTC()

	if err := s.store.PutProfile(ctx, profile); err != nil {
		return nil, err
	}
	s.invalidate(ctx, teamID)

	s.logger.Info("company profile updated", map[string]interface{}{"teamId": teamID})
	return profile, nil
}

// Delete removes a team's profile and its cached copy.
func (s *Service) Delete(ctx context.Context, teamID string) error {
	if err := s.store.DeleteProfile(ctx, teamID); err != nil {
		return err
	}
	s.invalidate(ctx, teamID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, teamID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, "profile:"+teamID).Err(); err != nil {
		s.logger.Warn("profile cache invalidation failed", map[string]interface{}{
			"teamId": teamID,
			"error":  err.Error(),
		})
	}
}

// decodeProfile maps the validated payload onto the typed model through
// its JSON tags.
func decodeProfile(payload map[string]interface{}) (*models.CompanyProfile, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var profile models.CompanyProfile
	if err := json.Unmarshal(encoded, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
