package models

import "time"

// WidgetFilter is a dashboard-wide filter, usually created by clicking a data
// point in one widget.
type WidgetFilter struct {
	ID             string `json:"id"`
	SourceWidgetID string `json:"sourceWidgetId"`
	Field          string `json:"field"`
	Operator       string `json:"operator"`
	Value          any    `json:"value"`
	Label          string `json:"label,omitempty"`
}

// DateRange bounds a period. A nil bound is open; both nil means unbounded.
type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// Bounded reports whether at least one side of the range is set.
func (r DateRange) Bounded() bool {
	return r.Start != nil || r.End != nil
}

// Valid reports whether the range can contain anything. A range whose start is
// after its end is accepted but matches nothing.
func (r DateRange) Valid() bool {
	return r.Start == nil || r.End == nil || !r.Start.After(*r.End)
}

// Contains reports whether t falls inside the range, bounds inclusive.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Valid() {
		return false
	}
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// ComparisonMode contrasts a primary period with an equal-length comparison period.
type ComparisonMode struct {
	Enabled          bool      `json:"enabled"`
	PrimaryPeriod    DateRange `json:"primaryPeriod"`
	ComparisonPeriod DateRange `json:"comparisonPeriod"`
}

// Breadcrumb is one step of a drill-down path.
type Breadcrumb struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// DrillDownPath records nested category selections within a single widget.
type DrillDownPath struct {
	WidgetID    string       `json:"widgetId"`
	Level       int          `json:"level"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs"`
}
