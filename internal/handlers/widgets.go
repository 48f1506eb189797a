package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/middleware"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
	"github.com/GregMSThompson/insights-dashboard/internal/response"
)

type WidgetService interface {
	ListWidgets(ctx context.Context, dept string) ([]*models.Widget, error)
	GetWidget(ctx context.Context, dept, widgetID string) (*models.Widget, error)
	CreateWidget(ctx context.Context, dept string, req dto.CreateWidgetRequest) (*models.Widget, error)
	UpdateWidget(ctx context.Context, dept, widgetID string, req dto.UpdateWidgetRequest) (*models.Widget, error)
	ReorderWidgets(ctx context.Context, dept string, req dto.ReorderWidgetsRequest) error
	DeleteWidget(ctx context.Context, dept, widgetID string) error
}

type widgetHandlers struct {
	ResponseHandler response.ResponseHandler
	WidgetSvc       WidgetService
}

func NewWidgetHandlers(deps *Deps) *widgetHandlers {
	return &widgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		WidgetSvc:       deps.WidgetSvc,
	}
}

// WidgetRoutes is mounted below /departments/{departmentId}/widgets.
func (h *widgetHandlers) WidgetRoutes() chi.Router {
	edit := middleware.RequirePermission(middleware.PermDashboardEdit)

	r := chi.NewRouter()
	r.Get("/", h.ListWidgets)
	r.With(edit).Post("/", h.CreateWidget)
	r.With(edit).Put("/reorder", h.ReorderWidgets)
	r.Get("/{widgetId}", h.GetWidget)
	r.With(edit).Put("/{widgetId}", h.UpdateWidget)
	r.With(edit).Delete("/{widgetId}", h.DeleteWidget)
	return r
}

func (h *widgetHandlers) ListWidgets(w http.ResponseWriter, r *http.Request) {
	dept := chi.URLParam(r, "departmentId")
	widgets, err := h.WidgetSvc.ListWidgets(r.Context(), dept)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgets)
}

func (h *widgetHandlers) GetWidget(w http.ResponseWriter, r *http.Request) {
	dept := chi.URLParam(r, "departmentId")
	widgetID := chi.URLParam(r, "widgetId")
	widget, err := h.WidgetSvc.GetWidget(r.Context(), dept, widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *widgetHandlers) CreateWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWidgetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	dept := chi.URLParam(r, "departmentId")
	widget, err := h.WidgetSvc.CreateWidget(r.Context(), dept, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, widget)
}

func (h *widgetHandlers) UpdateWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWidgetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	dept := chi.URLParam(r, "departmentId")
	widgetID := chi.URLParam(r, "widgetId")
	widget, err := h.WidgetSvc.UpdateWidget(r.Context(), dept, widgetID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *widgetHandlers) ReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderWidgetsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	dept := chi.URLParam(r, "departmentId")
	if err := h.WidgetSvc.ReorderWidgets(r.Context(), dept, req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *widgetHandlers) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	dept := chi.URLParam(r, "departmentId")
	widgetID := chi.URLParam(r, "widgetId")
	if err := h.WidgetSvc.DeleteWidget(r.Context(), dept, widgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}
