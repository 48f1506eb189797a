// Package pipeline turns a widget's stored dataset and the dashboard state into
// the rows a chart actually draws.
package pipeline

import (
	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/filter"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

// forecastShare is the leading share of rows that stay actuals when forecast
// mode is on; rows past it are marked as forecast.
const forecastShare = 0.7

// StateView is the read side of the dashboard state the pipeline depends on.
type StateView interface {
	ActiveFilters() []models.WidgetFilter
	DateRange() models.DateRange
	Comparison() models.ComparisonMode
}

// Render applies global filters, local inputs, the date window and forecast
// annotation to cfg.Data. Row order is preserved and cfg.Data is never mutated.
func Render(cfg *models.Widget, view StateView, inputs map[string]any) []models.Record {
	if cfg == nil {
		return nil
	}

	filters := applicableFilters(cfg, view.ActiveFilters())
	periods := datePeriods(cfg, view)

	out := make([]models.Record, 0, len(cfg.Data))
	for _, r := range cfg.Data {
		if !passesFilters(r, filters) {
			continue
		}
		if !passesInputs(r, inputs) {
			continue
		}
		if !inPeriods(r, cfg.DateKey, periods) {
			continue
		}
		out = append(out, r)
	}

	if forecastEnabled(cfg, inputs) {
		out = annotateForecast(out)
	}
	return out
}

// Split partitions rendered rows into the primary and comparison periods.
// Outside comparison mode every row is primary.
func Split(cfg *models.Widget, view StateView, rows []models.Record) dto.ComparisonData {
	cm := view.Comparison()
	if cfg == nil || cfg.DateKey == "" || !cm.Enabled {
		return dto.ComparisonData{Primary: rows, Comparison: []models.Record{}}
	}

	out := dto.ComparisonData{Primary: []models.Record{}, Comparison: []models.Record{}}
	for _, r := range rows {
		t, ok := filter.ParseTime(r[cfg.DateKey])
		if !ok {
			continue
		}
		switch {
		case cm.PrimaryPeriod.Contains(t):
			out.Primary = append(out.Primary, r)
		case cm.ComparisonPeriod.Contains(t):
			out.Comparison = append(out.Comparison, r)
		}
	}
	return out
}

// Window returns the overall date window a widget is restricted to: the
// dashboard date range, or the span of both periods in comparison mode.
func Window(view StateView) models.DateRange {
	cm := view.Comparison()
	if cm.Enabled && cm.PrimaryPeriod.Bounded() {
		return filter.Union(cm.PrimaryPeriod, cm.ComparisonPeriod)
	}
	return view.DateRange()
}

// ---- Helpers ----

// applicableFilters drops filters on the widget's own category so its
// selection does not filter itself down to a single row.
func applicableFilters(cfg *models.Widget, active []models.WidgetFilter) []models.WidgetFilter {
	out := make([]models.WidgetFilter, 0, len(active))
	for _, f := range active {
		if cfg.CategoryKey != "" && f.Field == cfg.CategoryKey {
			continue
		}
		out = append(out, f)
	}
	return out
}

func passesFilters(r models.Record, filters []models.WidgetFilter) bool {
	for _, f := range filters {
		if !filter.Matches(r, f) {
			return false
		}
	}
	return true
}

func passesInputs(r models.Record, inputs map[string]any) bool {
	for key, v := range inputs {
		if !narrows(v) {
			continue
		}
		if r.String(key) != models.ToString(v) {
			return false
		}
	}
	return true
}

// narrows reports whether a local input value restricts rows. Booleans are
// presentation toggles, handled elsewhere.
func narrows(v any) bool {
	switch t := v.(type) {
	case nil, bool:
		return false
	case string:
		return t != "" && t != dto.InputAll
	}
	return true
}

func datePeriods(cfg *models.Widget, view StateView) []models.DateRange {
	if cfg.DateKey == "" {
		return nil
	}
	cm := view.Comparison()
	if cm.Enabled && (cm.PrimaryPeriod.Bounded() || cm.ComparisonPeriod.Bounded()) {
		return []models.DateRange{cm.PrimaryPeriod, cm.ComparisonPeriod}
	}
	if r := view.DateRange(); r.Bounded() {
		return []models.DateRange{r}
	}
	return nil
}

func inPeriods(r models.Record, key string, periods []models.DateRange) bool {
	if len(periods) == 0 {
		return true
	}
	t, ok := filter.ParseTime(r[key])
	if !ok {
		return false
	}
	for _, p := range periods {
		if p.Bounded() && p.Contains(t) {
			return true
		}
	}
	return false
}

func forecastEnabled(cfg *models.Widget, inputs map[string]any) bool {
	if v, ok := inputs[dto.InputShowForecast].(bool); ok {
		return v
	}
	return cfg.Forecast
}

func annotateForecast(rows []models.Record) []models.Record {
	threshold := float64(len(rows)) * forecastShare
	for i, r := range rows {
		if float64(i) > threshold {
			c := r.Clone()
			c[dto.FieldIsForecast] = true
			rows[i] = c
		}
	}
	return rows
}
