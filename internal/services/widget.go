package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/errs"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
	"github.com/GregMSThompson/insights-dashboard/pkg/logger"
)

const maxGridSpan = 12

// widgetStore is the Firestore storage interface for widgets.
type widgetStore interface {
	Create(ctx context.Context, dept string, w *models.Widget) error
	Get(ctx context.Context, dept, widgetID string) (*models.Widget, error)
	List(ctx context.Context, dept string) ([]*models.Widget, error)
	Update(ctx context.Context, dept string, w *models.Widget) error
	Delete(ctx context.Context, dept, widgetID string) error
	Count(ctx context.Context, dept string) (int, error)
	BulkUpdatePositions(ctx context.Context, dept string, positions map[string]int) error
}

type widgetService struct {
	store widgetStore
}

func NewWidgetService(store widgetStore) *widgetService {
	return &widgetService{store: store}
}

// --- Public service methods ---

func (s *widgetService) ListWidgets(ctx context.Context, dept string) ([]*models.Widget, error) {
	return s.store.List(ctx, dept)
}

func (s *widgetService) GetWidget(ctx context.Context, dept, widgetID string) (*models.Widget, error) {
	return s.store.Get(ctx, dept, widgetID)
}

func (s *widgetService) CreateWidget(ctx context.Context, dept string, req dto.CreateWidgetRequest) (*models.Widget, error) {
	if err := validateWidget(req); err != nil {
		return nil, err
	}
	count, err := s.store.Count(ctx, dept)
	if err != nil {
		return nil, err
	}
	w := &models.Widget{WidgetID: uuid.New().String(), Position: count + 1}
	applyWidgetRequest(w, req)
	if err := s.store.Create(ctx, dept, w); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("widget created", "department", dept, "widget_id", w.WidgetID, "type", w.Type)
	return w, nil
}

// UpdateWidget replaces a widget's configuration and data. Id, position and
// creation time are kept.
func (s *widgetService) UpdateWidget(ctx context.Context, dept, widgetID string, req dto.UpdateWidgetRequest) (*models.Widget, error) {
	if err := validateWidget(req); err != nil {
		return nil, err
	}
	w, err := s.store.Get(ctx, dept, widgetID)
	if err != nil {
		return nil, err
	}
	applyWidgetRequest(w, req)
	if err := s.store.Update(ctx, dept, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *widgetService) ReorderWidgets(ctx context.Context, dept string, req dto.ReorderWidgetsRequest) error {
	if len(req.WidgetOrder) == 0 {
		return errs.NewValidationError("widgetOrder is required")
	}
	positions := make(map[string]int, len(req.WidgetOrder))
	for _, item := range req.WidgetOrder {
		if item.WidgetID == "" {
			return errs.NewValidationError("widgetId is required")
		}
		if item.Position < 1 {
			return errs.NewValidationError("position must be positive")
		}
		if _, dup := positions[item.WidgetID]; dup {
			return errs.NewValidationError("duplicate widgetId: " + item.WidgetID)
		}
		positions[item.WidgetID] = item.Position
	}
	return s.store.BulkUpdatePositions(ctx, dept, positions)
}

func (s *widgetService) DeleteWidget(ctx context.Context, dept, widgetID string) error {
	return s.store.Delete(ctx, dept, widgetID)
}

// --- Validation ---

func validateWidget(req dto.CreateWidgetRequest) error {
	if !isValidWidgetType(req.Type) {
		return errs.NewValidationError("unknown widget type: " + req.Type)
	}
	if strings.TrimSpace(req.Title) == "" {
		return errs.NewValidationError("title is required")
	}
	if len(req.DataKey) == 0 {
		return errs.NewValidationError("dataKey is required")
	}
	for _, k := range req.DataKey {
		if strings.TrimSpace(k) == "" {
			return errs.NewValidationError("dataKey entries must not be empty")
		}
	}
	if req.CategoryKey == "" && needsCategory(req.Type) {
		return errs.NewValidationError(fmt.Sprintf("categoryKey is required for %s widgets", req.Type))
	}
	if req.GridSpan != 0 && (req.GridSpan < 1 || req.GridSpan > maxGridSpan) {
		return errs.NewValidationError(fmt.Sprintf("gridSpan must be between 1 and %d", maxGridSpan))
	}
	if req.Goal != nil && (req.Type == dto.WidgetTypeGauge || req.Type == dto.WidgetTypeProgress) && *req.Goal <= 0 {
		return errs.NewValidationError("goal must be positive")
	}
	return nil
}

func isValidWidgetType(t string) bool {
	switch t {
	case dto.WidgetTypeArea, dto.WidgetTypeBar, dto.WidgetTypePie, dto.WidgetTypeLine,
		dto.WidgetTypeStackedBar, dto.WidgetTypeMultiLine, dto.WidgetTypeGauge,
		dto.WidgetTypeProgress, dto.WidgetTypeScatter:
		return true
	}
	return false
}

// needsCategory reports whether the widget type plots values against a
// category axis. Gauges and progress bars show a single value.
func needsCategory(t string) bool {
	return t != dto.WidgetTypeGauge && t != dto.WidgetTypeProgress
}

func applyWidgetRequest(w *models.Widget, req dto.CreateWidgetRequest) {
	w.Type = req.Type
	w.Title = strings.TrimSpace(req.Title)
	w.Description = req.Description
	w.Data = req.Data
	if w.Data == nil {
		w.Data = []models.Record{}
	}
	w.DataKey = req.DataKey
	w.CategoryKey = req.CategoryKey
	w.DateKey = req.DateKey
	w.GridSpan = req.GridSpan
	w.Colors = req.Colors
	w.Stack = req.Stack
	w.Goal = req.Goal
	w.Forecast = req.Forecast
}
