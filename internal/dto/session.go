package dto

import "github.com/GregMSThompson/insights-dashboard/internal/models"

type CreateSessionRequest struct {
	DepartmentID string `json:"departmentId"`
}

type SwitchDepartmentRequest struct {
	DepartmentID string `json:"departmentId"`
}

type AddFilterRequest struct {
	SourceWidgetID string `json:"sourceWidgetId"`
	Field          string `json:"field"`
	Operator       string `json:"operator"`
	Value          any    `json:"value"`
	Label          string `json:"label"`
}

// DateRangeRequest carries either a named preset or explicit bounds.
type DateRangeRequest struct {
	Preset string           `json:"preset,omitempty"`
	Range  models.DateRange `json:"range"`
}

type SelectDataPointsRequest struct {
	Points []any `json:"points"`
}

// ComparisonRequest sets comparison periods. When Comparison is omitted the
// previous period of equal length is derived from Primary.
type ComparisonRequest struct {
	Primary    models.DateRange  `json:"primary"`
	Comparison *models.DateRange `json:"comparison,omitempty"`
}

type DrillDownRequest struct {
	WidgetID   string            `json:"widgetId"`
	Level      int               `json:"level"`
	Breadcrumb models.Breadcrumb `json:"breadcrumb"`
}

type DrillUpRequest struct {
	WidgetID string `json:"widgetId"`
}

// SessionResponse is the externally visible view of a dashboard session.
type SessionResponse struct {
	SessionID    string        `json:"sessionId"`
	DepartmentID string        `json:"departmentId"`
	Generation   uint64        `json:"generation"`
	State        StateSnapshot `json:"state"`
}

// StateSnapshot is a read-only copy of a dashboard's interactive state.
type StateSnapshot struct {
	ActiveFilters      []models.WidgetFilter `json:"activeFilters"`
	DateRange          models.DateRange      `json:"dateRange"`
	SelectedDataPoints map[string][]any      `json:"selectedDataPoints"`
	LastInteraction    *models.Interaction   `json:"lastInteraction"`
	ComparisonMode     models.ComparisonMode `json:"comparisonMode"`
	DrillDownPath      *models.DrillDownPath `json:"drillDownPath"`
}
