package dto

import "github.com/GregMSThompson/insights-dashboard/internal/stats"

type WidgetStatsArgs struct {
	Key     string
	WithKey string
	Inputs  map[string]any
}

type CorrelationResult struct {
	With   string  `json:"with"`
	R      float64 `json:"r"`
	PValue float64 `json:"pValue"`
	Pairs  int     `json:"pairs"`
}

type TrendResult struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"rSquared"`
	Equation  string  `json:"equation"`
	Next      float64 `json:"next"` // projected value one step past the last row
}

// WidgetStatsResult is returned for the stats endpoint. Summary and Trend are
// nil when the rendered data has no usable numbers.
type WidgetStatsResult struct {
	WidgetID    string             `json:"widgetId"`
	Key         string             `json:"key"`
	Rows        int                `json:"rows"`
	Summary     *stats.Summary     `json:"summary"`
	Correlation *CorrelationResult `json:"correlation,omitempty"`
	Trend       *TrendResult       `json:"trend"`
}
