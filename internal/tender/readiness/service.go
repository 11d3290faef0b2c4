package readiness

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/common/metrics"
	"tender-insight-hub/internal/models"
)

// TenderSource fetches tender documents for scoring.
type TenderSource interface {
	GetTender(ctx context.Context, tenderID string) (*models.Tender, error)
}

// ProfileSource fetches company profiles for scoring.
type ProfileSource interface {
	GetProfileByTeam(ctx context.Context, teamID string) (*models.CompanyProfile, error)
}

// ScoreStore persists computed readiness scores.
type ScoreStore interface {
	PutReadiness(ctx context.Context, r *models.ReadinessScore) error
	GetReadiness(ctx context.Context, tenderID, teamID string) (*models.ReadinessScore, error)
}

// Service computes and persists readiness scores. Profiles are cached in
// Redis because one team typically checks many tenders in a session.
type Service struct {
	tenders  TenderSource
	profiles ProfileSource
	scores   ScoreStore
	cache    *redis.Client
	ttl      time.Duration
	logger   logger.Logger
}

// NewService creates a readiness service. The cache client may be nil,
// in which case every profile read goes to the document store.
func NewService(tenders TenderSource, profiles ProfileSource, scores ScoreStore,
	cache *redis.Client, ttl time.Duration, log logger.Logger) *Service {
	return &Service{
		tenders:  tenders,
		profiles: profiles,
		scores:   scores,
		cache:    cache,
		ttl:      ttl,
		logger:   log,
	}
}

// Check scores a tender against a team's profile and persists the result,
// overwriting any previous score for the same pair.
func (s *Service) Check(ctx context.Context, tenderID, teamID string) (*models.ReadinessScore, error) {
	profile, err := s.cachedProfile(ctx, teamID)
	if err != nil {
		return nil, err
	}
	tender, err := s.tenders.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	score, checklist, recommendation := Score(tender, profile)

	result := &models.ReadinessScore{
		ID:               uuid.NewString(),
		TenderID:         tenderID,
		TeamID:           teamID,
		SuitabilityScore: score,
		Checklist:        checklist,
		Recommendation:   recommendation,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.scores.PutReadiness(ctx, result); err != nil {
		return nil, err
	}

	metrics.ReadinessChecks.WithLabelValues(recommendationLabel(score)).Inc()
	s.logger.Info("readiness check computed", map[string]interface{}{
		"tenderId": tenderID,
		"teamId":   teamID,
		"score":    score,
	})
	return result, nil
}

// Get returns the stored score for a tender and team pair.
func (s *Service) Get(ctx context.Context, tenderID, teamID string) (*models.ReadinessScore, error) {
	return s.scores.GetReadiness(ctx, tenderID, teamID)
}

func profileCacheKey(teamID string) string {
	return "profile:" + teamID
}

func (s *Service) cachedProfile(ctx context.Context, teamID string) (*models.CompanyProfile, error) {
	key := profileCacheKey(teamID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var profile models.CompanyProfile
			if unmarshalErr := json.Unmarshal([]byte(cached), &profile); unmarshalErr == nil {
				return &profile, nil
			}
			// A corrupt cache entry falls through to the store.
			s.cache.Del(ctx, key)
		} else if err != redis.Nil {
			s.logger.Warn("profile cache read failed", map[string]interface{}{
				"teamId": teamID,
				"error":  err.Error(),
			})
		}
	}

	profile, err := s.profiles.GetProfileByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(profile); err == nil {
			s.cache.Set(ctx, key, encoded, s.ttl)
		}
	}
	return profile, nil
}
