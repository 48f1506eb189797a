package dto

import (
	"time"

	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

// Widget type constants
const (
	WidgetTypeArea       = "area"
	WidgetTypeBar        = "bar"
	WidgetTypePie        = "pie"
	WidgetTypeLine       = "line"
	WidgetTypeStackedBar = "stacked-bar"
	WidgetTypeMultiLine  = "multi-line"
	WidgetTypeGauge      = "gauge"
	WidgetTypeProgress   = "progress"
	WidgetTypeScatter    = "scatter"
)

// Filter operators
const (
	OpEquals   = "equals"
	OpContains = "contains"
	OpGt       = "gt"
	OpLt       = "lt"
	OpGte      = "gte"
	OpLte      = "lte"
	OpBetween  = "between"
	OpIn       = "in"
)

// IsKnownOperator reports whether op is one of the supported filter operators.
func IsKnownOperator(op string) bool {
	switch op {
	case OpEquals, OpContains, OpGt, OpLt, OpGte, OpLte, OpBetween, OpIn:
		return true
	}
	return false
}

// Date range presets
const (
	DateRangeThisMonth   = "thisMonth"
	DateRangeLastMonth   = "lastMonth"
	DateRangeThisQuarter = "thisQuarter"
	DateRangeLastQuarter = "lastQuarter"
	DateRangeThisYear    = "thisYear"
	DateRangeLastYear    = "lastYear"
)

// Rolling window presets
const (
	Window7Day  = "7day"
	Window30Day = "30day"
	Window60Day = "60day"
	Window90Day = "90day"
)

// Local input keys with special meaning to the pipeline.
const (
	InputShowForecast = "showForecast"
	InputAll          = "all"
	FieldIsForecast   = "isForecast"
	FieldDate         = "date"
)

// --- Widget requests ---

type CreateWidgetRequest struct {
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Data        []models.Record `json:"data"`
	DataKey     models.DataKeys `json:"dataKey"`
	CategoryKey string          `json:"categoryKey"`
	DateKey     string          `json:"dateKey"`
	GridSpan    int             `json:"gridSpan"`
	Colors      []string        `json:"colors"`
	Stack       bool            `json:"stack"`
	Goal        *float64        `json:"goal"`
	Forecast    bool            `json:"forecast"`
}

type UpdateWidgetRequest = CreateWidgetRequest

type ReorderWidgetItem struct {
	WidgetID string `json:"widgetId"`
	Position int    `json:"position"`
}

type ReorderWidgetsRequest struct {
	WidgetOrder []ReorderWidgetItem `json:"widgetOrder"`
}

// --- Widget data responses ---

type WidgetDataResponse struct {
	WidgetID    string          `json:"widgetId"`
	Data        []models.Record `json:"data"`
	Comparison  *ComparisonData `json:"comparison,omitempty"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// ComparisonData splits rendered rows between the primary and comparison periods.
type ComparisonData struct {
	Primary    []models.Record `json:"primary"`
	Comparison []models.Record `json:"comparison"`
}

// RenderedWidget is pipeline output together with the context it was
// produced in. It feeds the data, stats and insight endpoints.
type RenderedWidget struct {
	Widget     *models.Widget
	Department string
	Generation uint64
	Rows       []models.Record
	Comparison *ComparisonData
	Window     models.DateRange
}
