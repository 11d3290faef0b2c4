package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"tender-insight-hub/internal/common/errors"
	"tender-insight-hub/internal/models"
	"tender-insight-hub/internal/tender/analytics"
	"tender-insight-hub/internal/tender/search"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTenderSync(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
	}

	tenderID, err := s.sync.Upsert(c.Request().Context(), payload)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"tender_id": tenderID})
}

func (s *Server) handleReconcile(c echo.Context) error {
	result, err := s.sync.Reconcile(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearch(c echo.Context) error {
	req := search.Request{
		Keywords: c.QueryParam("q"),
		Province: c.QueryParam("province"),
		Buyer:    c.QueryParam("buyer"),
	}

	var err error
	if req.MinBudget, err = floatParam(c, "min_budget"); err != nil {
		return s.writeError(c, err)
	}
	if req.MaxBudget, err = floatParam(c, "max_budget"); err != nil {
		return s.writeError(c, err)
	}
	if req.DeadlineFrom, err = timeParam(c, "start_deadline"); err != nil {
		return s.writeError(c, err)
	}
	if req.DeadlineTo, err = timeParam(c, "end_deadline"); err != nil {
		return s.writeError(c, err)
	}
	if limit, err := intParam(c, "limit"); err != nil {
		return s.writeError(c, err)
	} else if limit != nil {
		req.Limit = *limit
	}

	results, err := s.search.Search(c.Request().Context(), req)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleFilterOptions(c echo.Context) error {
	options, err := s.search.Options(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, options)
}

func (s *Server) handleProfileCreate(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
	}

	teamID, _ := payload["team_id"].(string)
	if teamID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "team_id is required"})
	}

	profile, err := s.profiles.Create(c.Request().Context(), teamID, payload)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, profile)
}

func (s *Server) handleProfileGet(c echo.Context) error {
	profile, err := s.profiles.Get(c.Request().Context(), c.Param("team_id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) handleProfileUpdate(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
	}

	profile, err := s.profiles.Update(c.Request().Context(), c.Param("team_id"), payload)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (s *Server) handleProfileDelete(c echo.Context) error {
	if err := s.profiles.Delete(c.Request().Context(), c.Param("team_id")); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type readinessCheckRequest struct {
	TenderID string `json:"tender_id"`
	TeamID   string `json:"team_id"`
}

func (s *Server) handleReadinessCheck(c echo.Context) error {
	var req readinessCheckRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
	}
	if req.TenderID == "" || req.TeamID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "tender_id and team_id are required"})
	}

	result, err := s.readiness.Check(c.Request().Context(), req.TenderID, req.TeamID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleReadinessGet(c echo.Context) error {
	result, err := s.readiness.Get(c.Request().Context(), c.Param("tender_id"), c.Param("team_id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type workspaceAddRequest struct {
	TenderID  string `json:"tender_id"`
	TeamID    string `json:"team_id"`
	Status    string `json:"status"`
	CreatedBy string `json:"created_by"`
}

func (s *Server) handleWorkspaceAdd(c echo.Context) error {
	var req workspaceAddRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
	}
	if req.TenderID == "" || req.TeamID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "tender_id and team_id are required"})
	}

	view, err := s.workspace.Add(c.Request().Context(), req.TenderID, req.TeamID, req.Status, req.CreatedBy)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, view)
}

func (s *Server) handleWorkspaceList(c echo.Context) error {
	views, err := s.workspace.ListByTeam(c.Request().Context(), c.Param("team_id"), c.QueryParam("status"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": views})
}

type workspaceUpdateRequest struct {
	Status    string `json:"status"`
	UpdatedBy string `json:"updated_by"`
}

func (s *Server) handleWorkspaceUpdate(c echo.Context) error {
	var req workspaceUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
	}
	if req.Status == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "status is required"})
	}

	view, err := s.workspace.UpdateStatus(c.Request().Context(),
		c.Param("tender_id"), c.Param("team_id"), req.Status, req.UpdatedBy)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

type workspaceNoteRequest struct {
	Content   string `json:"content"`
	CreatedBy string `json:"created_by"`
}

func (s *Server) handleWorkspaceAddNote(c echo.Context) error {
	var req workspaceNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	view, err := s.workspace.AddNote(c.Request().Context(),
		c.Param("tender_id"), c.Param("team_id"), req.Content, req.CreatedBy)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleWorkspaceAddTask(c echo.Context) error {
	var task models.WorkspaceTask
	if err := c.Bind(&task); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
	}
	if task.Description == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "description is required"})
	}

	view, err := s.workspace.AddTask(c.Request().Context(),
		c.Param("tender_id"), c.Param("team_id"), task)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleSpendByBuyer(c echo.Context) error {
	opts, err := rangeOptions(c)
	if err != nil {
		return s.writeError(c, err)
	}
	results, err := s.analytics.SpendByBuyer(c.Request().Context(), opts)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleSpendByProvince(c echo.Context) error {
	opts, err := rangeOptions(c)
	if err != nil {
		return s.writeError(c, err)
	}
	results, err := s.analytics.SpendByProvince(c.Request().Context(), opts)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleTenderTrends(c echo.Context) error {
	interval := c.QueryParam("interval")
	monthsBack := 12
	if raw, err := intParam(c, "months_back"); err != nil {
		return s.writeError(c, err)
	} else if raw != nil {
		monthsBack = *raw
	}

	points, err := s.analytics.Trends(c.Request().Context(), interval, monthsBack)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, points)
}

func rangeOptions(c echo.Context) (analytics.RangeOptions, error) {
	opts := analytics.RangeOptions{}

	start, err := timeParam(c, "start_date")
	if err != nil {
		return opts, err
	}
	end, err := timeParam(c, "end_date")
	if err != nil {
		return opts, err
	}
	limit, err := intParam(c, "limit")
	if err != nil {
		return opts, err
	}

	opts.StartDate = start
	opts.EndDate = end
	if limit != nil {
		opts.Limit = *limit
	}
	return opts, nil
}

func floatParam(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.NewInvalidFilterFormatError(name + " must be a number")
	}
	return &v, nil
}

func intParam(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.NewInvalidFilterFormatError(name + " must be an integer")
	}
	return &v, nil
}

// timeParam accepts RFC3339 timestamps and bare dates.
func timeParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if v, err := time.Parse(layout, raw); err == nil {
			return &v, nil
		}
	}
	return nil, errors.NewInvalidFilterFormatError(name + " must be an RFC3339 timestamp or date")
}

func (s *Server) writeError(c echo.Context, err error) error {
	se, ok := err.(*errors.StandardError)
	if !ok {
		s.logger.Error("unhandled error", map[string]interface{}{"error": err.Error()})
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFound(se):
		status = http.StatusNotFound
	case se.Code == errors.ErrCodeProfileExists || se.Code == errors.ErrCodeWorkspaceItemExists:
		status = http.StatusConflict
	case errors.GetErrorCategory(se.Code) == "VALIDATION":
		status = http.StatusBadRequest
	case se.Retryable:
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, se)
}
