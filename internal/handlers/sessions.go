package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/errs"
	"github.com/GregMSThompson/insights-dashboard/internal/middleware"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
	"github.com/GregMSThompson/insights-dashboard/internal/response"
)

type SessionService interface {
	Create(ctx context.Context, uid, dept string) (dto.SessionResponse, error)
	Get(ctx context.Context, uid, sessionID string) (dto.SessionResponse, error)
	Close(ctx context.Context, uid, sessionID string) error
	SwitchDepartment(ctx context.Context, uid, sessionID, dept string) (dto.SessionResponse, error)

	AddFilter(ctx context.Context, uid, sessionID string, req dto.AddFilterRequest) (models.WidgetFilter, error)
	RemoveFilter(ctx context.Context, uid, sessionID, filterID string) error
	ClearFilters(ctx context.Context, uid, sessionID string) error
	SetDateRange(ctx context.Context, uid, sessionID string, req dto.DateRangeRequest) (models.DateRange, error)
	SelectDataPoints(ctx context.Context, uid, sessionID, widgetID string, points []any) error
	ClearSelection(ctx context.Context, uid, sessionID, widgetID string) error
	ToggleComparison(ctx context.Context, uid, sessionID string) (models.ComparisonMode, error)
	SetComparison(ctx context.Context, uid, sessionID string, req dto.ComparisonRequest) (models.ComparisonMode, error)
	DrillDown(ctx context.Context, uid, sessionID string, req dto.DrillDownRequest) (*models.DrillDownPath, error)
	DrillUp(ctx context.Context, uid, sessionID, widgetID string) (*models.DrillDownPath, error)
	ResetDrillDown(ctx context.Context, uid, sessionID string) error
	Interact(ctx context.Context, uid, sessionID string, in models.Interaction) (models.Interaction, error)
	RecentInteractions(ctx context.Context, uid, sessionID, widgetID string, limit int) ([]models.Interaction, error)

	RenderWidget(ctx context.Context, uid, sessionID, widgetID string, inputs map[string]any) (dto.WidgetDataResponse, error)
}

type AnalysisService interface {
	WidgetStats(ctx context.Context, uid, sessionID, widgetID string, args dto.WidgetStatsArgs) (dto.WidgetStatsResult, error)
}

type sessionHandlers struct {
	ResponseHandler response.ResponseHandler
	SessionSvc      SessionService
	AnalysisSvc     AnalysisService
	insights        *insightHandlers
}

func NewSessionHandlers(deps *Deps) *sessionHandlers {
	return &sessionHandlers{
		ResponseHandler: deps.ResponseHandler,
		SessionSvc:      deps.SessionSvc,
		AnalysisSvc:     deps.AnalysisSvc,
		insights:        NewInsightHandlers(deps),
	}
}

func (h *sessionHandlers) SessionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateSession)
	r.Route("/{sessionId}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Put("/department", h.SwitchDepartment)

		r.Post("/filters", h.AddFilter)
		r.Delete("/filters", h.ClearFilters)
		r.Delete("/filters/{filterId}", h.RemoveFilter)
		r.Put("/date-range", h.SetDateRange)
		r.Put("/selections/{widgetId}", h.SelectDataPoints)
		r.Delete("/selections", h.ClearSelection)

		r.Post("/comparison/toggle", h.ToggleComparison)
		r.Put("/comparison", h.SetComparison)

		r.Post("/drill-down", h.DrillDown)
		r.Post("/drill-up", h.DrillUp)
		r.Delete("/drill-down", h.ResetDrillDown)

		r.Post("/interactions", h.Interact)

		r.Get("/widgets/{widgetId}/data", h.WidgetData)
		r.Get("/widgets/{widgetId}/interactions", h.WidgetInteractions)
		r.Get("/widgets/{widgetId}/stats", h.WidgetStats)
		r.With(middleware.RequirePermission(middleware.PermInsights)).
			Post("/widgets/{widgetId}/insights", h.insights.GenerateInsight)
	})
	return r
}

// ---- Lifecycle ----

func (h *sessionHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if req.DepartmentID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("departmentId is required"))
		return
	}
	uid := middleware.UID(r.Context())
	resp, err := h.SessionSvc.Create(r.Context(), uid, req.DepartmentID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, resp)
}

func (h *sessionHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	resp, err := h.SessionSvc.Get(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *sessionHandlers) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionSvc.Close(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *sessionHandlers) SwitchDepartment(w http.ResponseWriter, r *http.Request) {
	var req dto.SwitchDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if req.DepartmentID == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("departmentId is required"))
		return
	}
	resp, err := h.SessionSvc.SwitchDepartment(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId"), req.DepartmentID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

// ---- Filters and selections ----

func (h *sessionHandlers) AddFilter(w http.ResponseWriter, r *http.Request) {
	var req dto.AddFilterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	f, err := h.SessionSvc.AddFilter(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, f)
}

func (h *sessionHandlers) RemoveFilter(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	err := h.SessionSvc.RemoveFilter(r.Context(), uid, chi.URLParam(r, "sessionId"), chi.URLParam(r, "filterId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *sessionHandlers) ClearFilters(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionSvc.ClearFilters(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *sessionHandlers) SetDateRange(w http.ResponseWriter, r *http.Request) {
	var req dto.DateRangeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	dr, err := h.SessionSvc.SetDateRange(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dr)
}

func (h *sessionHandlers) SelectDataPoints(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectDataPointsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	err := h.SessionSvc.SelectDataPoints(r.Context(), uid, chi.URLParam(r, "sessionId"), chi.URLParam(r, "widgetId"), req.Points)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// ClearSelection clears one widget's selection when ?widgetId= is set,
// otherwise every selection.
func (h *sessionHandlers) ClearSelection(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	err := h.SessionSvc.ClearSelection(r.Context(), uid, chi.URLParam(r, "sessionId"), r.URL.Query().Get("widgetId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// ---- Comparison and drill-down ----

func (h *sessionHandlers) ToggleComparison(w http.ResponseWriter, r *http.Request) {
	cm, err := h.SessionSvc.ToggleComparison(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, cm)
}

func (h *sessionHandlers) SetComparison(w http.ResponseWriter, r *http.Request) {
	var req dto.ComparisonRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	cm, err := h.SessionSvc.SetComparison(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, cm)
}

func (h *sessionHandlers) DrillDown(w http.ResponseWriter, r *http.Request) {
	var req dto.DrillDownRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	path, err := h.SessionSvc.DrillDown(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId"), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, path)
}

func (h *sessionHandlers) DrillUp(w http.ResponseWriter, r *http.Request) {
	var req dto.DrillUpRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	path, err := h.SessionSvc.DrillUp(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId"), req.WidgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, path)
}

func (h *sessionHandlers) ResetDrillDown(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionSvc.ResetDrillDown(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *sessionHandlers) Interact(w http.ResponseWriter, r *http.Request) {
	var in models.Interaction
	if err := decodeJSON(r, &in); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	out, err := h.SessionSvc.Interact(r.Context(), middleware.UID(r.Context()), chi.URLParam(r, "sessionId"), in)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, out)
}

// WidgetInteractions serves the latest interactions that target one widget.
func (h *sessionHandlers) WidgetInteractions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	out, err := h.SessionSvc.RecentInteractions(r.Context(), uid, chi.URLParam(r, "sessionId"), chi.URLParam(r, "widgetId"), limit)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, out)
}

// ---- Widget data ----

func (h *sessionHandlers) WidgetData(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	resp, err := h.SessionSvc.RenderWidget(r.Context(), uid, chi.URLParam(r, "sessionId"), chi.URLParam(r, "widgetId"), localInputs(r))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *sessionHandlers) WidgetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	args := dto.WidgetStatsArgs{
		Key:     q.Get("key"),
		WithKey: q.Get("with"),
		Inputs:  localInputs(r),
	}
	uid := middleware.UID(r.Context())
	res, err := h.AnalysisSvc.WidgetStats(r.Context(), uid, chi.URLParam(r, "sessionId"), chi.URLParam(r, "widgetId"), args)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, res)
}
