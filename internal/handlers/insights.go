package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/insights-dashboard/internal/middleware"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
	"github.com/GregMSThompson/insights-dashboard/internal/response"
)

type InsightService interface {
	Generate(ctx context.Context, uid, sessionID, widgetID string) (*models.Insight, error)
	List(ctx context.Context, dept, widgetID string, limit int) ([]models.Insight, error)
}

type insightHandlers struct {
	ResponseHandler response.ResponseHandler
	InsightSvc      InsightService
}

func NewInsightHandlers(deps *Deps) *insightHandlers {
	return &insightHandlers{
		ResponseHandler: deps.ResponseHandler,
		InsightSvc:      deps.InsightSvc,
	}
}

// ListInsights serves GET /departments/{departmentId}/insights?widgetId=&limit=.
func (h *insightHandlers) ListInsights(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	dept := chi.URLParam(r, "departmentId")
	insights, err := h.InsightSvc.List(r.Context(), dept, r.URL.Query().Get("widgetId"), limit)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, insights)
}

// GenerateInsight serves POST /sessions/{sessionId}/widgets/{widgetId}/insights.
func (h *insightHandlers) GenerateInsight(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	sessionID := chi.URLParam(r, "sessionId")
	widgetID := chi.URLParam(r, "widgetId")
	insight, err := h.InsightSvc.Generate(r.Context(), uid, sessionID, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, insight)
}
