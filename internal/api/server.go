// Package api exposes the tender services over HTTP. Handlers are thin:
// they parse, delegate and translate errors; all behavior lives in the
// services underneath.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tender-insight-hub/internal/common/logger"
	"tender-insight-hub/internal/common/observability"
	"tender-insight-hub/internal/models"
	"tender-insight-hub/internal/tender/analytics"
	"tender-insight-hub/internal/tender/search"
	"tender-insight-hub/internal/tender/sync"
)

// WorkspaceService tracks tenders a team is pursuing.
type WorkspaceService interface {
	Add(ctx context.Context, tenderID, teamID, status, createdBy string) (*models.WorkspaceItemView, error)
	ListByTeam(ctx context.Context, teamID, status string) ([]*models.WorkspaceItemView, error)
	UpdateStatus(ctx context.Context, tenderID, teamID, status, updatedBy string) (*models.WorkspaceItemView, error)
	AddNote(ctx context.Context, tenderID, teamID, content, createdBy string) (*models.WorkspaceItemView, error)
	AddTask(ctx context.Context, tenderID, teamID string, task models.WorkspaceTask) (*models.WorkspaceItemView, error)
}

// SyncEngine ingests tender payloads into both stores.
type SyncEngine interface {
	Upsert(ctx context.Context, payload map[string]interface{}) (string, error)
	Reconcile(ctx context.Context) (*sync.ReconcileResult, error)
}

// SearchService ranks tenders against keywords and filters.
type SearchService interface {
	Search(ctx context.Context, req search.Request) ([]models.SearchResult, error)
	Options(ctx context.Context) (*search.FilterOptions, error)
}

// ReadinessService computes and serves suitability scores.
type ReadinessService interface {
	Check(ctx context.Context, tenderID, teamID string) (*models.ReadinessScore, error)
	Get(ctx context.Context, tenderID, teamID string) (*models.ReadinessScore, error)
}

// ProfileService manages company profiles.
type ProfileService interface {
	Create(ctx context.Context, teamID string, payload map[string]interface{}) (*models.CompanyProfile, error)
	Get(ctx context.Context, teamID string) (*models.CompanyProfile, error)
	Update(ctx context.Context, teamID string, payload map[string]interface{}) (*models.CompanyProfile, error)
	Delete(ctx context.Context, teamID string) error
}

// AnalyticsService serves aggregated spend and trend views.
type AnalyticsService interface {
	SpendByBuyer(ctx context.Context, opts analytics.RangeOptions) ([]analytics.BuyerSpend, error)
	SpendByProvince(ctx context.Context, opts analytics.RangeOptions) ([]analytics.ProvinceSpend, error)
	Trends(ctx context.Context, interval string, monthsBack int) ([]analytics.TrendPoint, error)
}

// Deps bundles everything the server needs.
type Deps struct {
	Sync      SyncEngine
	Search    SearchService
	Readiness ReadinessService
	Profiles  ProfileService
	Analytics AnalyticsService
	Workspace WorkspaceService
	Obs       *observability.Observability
	Logger    logger.Logger
}

// Server wires the services into an echo instance.
type Server struct {
	Echo      *echo.Echo
	sync      SyncEngine
	search    SearchService
	readiness ReadinessService
	profiles  ProfileService
	analytics AnalyticsService
	workspace WorkspaceService
	obs       *observability.Observability
	logger    logger.Logger
}

// NewServer builds the HTTP server and registers all routes.
func NewServer(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	s := &Server{
		Echo:      e,
		sync:      deps.Sync,
		search:    deps.Search,
		readiness: deps.Readiness,
		profiles:  deps.Profiles,
		analytics: deps.Analytics,
		workspace: deps.Workspace,
		obs:       deps.Obs,
		logger:    deps.Logger,
	}

	if s.obs != nil {
		e.Use(s.observe)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/healthz", s.handleHealth)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.Echo.Group("/api")

	api.POST("/tenders/sync", s.handleTenderSync)
	api.POST("/tenders/reconcile", s.handleReconcile)

	api.GET("/search/tenders", s.handleSearch)
	api.GET("/search/filters", s.handleFilterOptions)

	api.POST("/company-profiles", s.handleProfileCreate)
	api.GET("/company-profiles/:team_id", s.handleProfileGet)
	api.PUT("/company-profiles/:team_id", s.handleProfileUpdate)
	api.DELETE("/company-profiles/:team_id", s.handleProfileDelete)

	api.POST("/readiness/check", s.handleReadinessCheck)
	api.GET("/readiness/:tender_id/:team_id", s.handleReadinessGet)

	api.POST("/workspace", s.handleWorkspaceAdd)
	api.GET("/workspace/team/:team_id", s.handleWorkspaceList)
	api.PUT("/workspace/:tender_id/:team_id", s.handleWorkspaceUpdate)
	api.POST("/workspace/:tender_id/:team_id/notes", s.handleWorkspaceAddNote)
	api.POST("/workspace/:tender_id/:team_id/tasks", s.handleWorkspaceAddTask)

	api.GET("/analytics/spend-by-buyer", s.handleSpendByBuyer)
	api.GET("/analytics/spend-by-province", s.handleSpendByProvince)
	api.GET("/analytics/tender-trends", s.handleTenderTrends)
}

// observe records per-route counters and latency.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		operation := c.Path()
		status := "ok"
		if err != nil || c.Response().Status >= http.StatusBadRequest {
			status = "error"
		}
		ctx := c.Request().Context()
		s.obs.RecordRequest(ctx, operation, status)
		s.obs.RecordDuration(ctx, operation, time.Since(start))
		return err
	}
}

// Start runs the server until the listener fails or is shut down.
func (s *Server) Start(address string) error {
	return s.Echo.Start(address)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
