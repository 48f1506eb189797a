// Package state holds the interactive state of one dashboard session.
//
// Dashboard is the only writer of its fields. Every mutation goes through a
// method, and every meaningful mutation is announced on the interaction bus so
// passive widgets can react without polling. Reads return copies.
package state

import (
	"log/slog"
	"sync"

	"github.com/GregMSThompson/insights-dashboard/internal/bus"
	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/filter"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

// SourceGlobal is the source widget id of interactions raised by dashboard-wide
// controls rather than a specific widget.
const SourceGlobal = "global"

// Broadcast actions.
const (
	ActionAdd              = "add"
	ActionRemove           = "remove"
	ActionClear            = "clear"
	ActionDateRange        = "date-range"
	ActionSelect           = "select"
	ActionClearSelection   = "clear-selection"
	ActionComparison       = "comparison"
	ActionComparisonToggle = "comparison-toggle"
	ActionDrillDown        = "drill-down"
	ActionDrillUp          = "drill-up"
	ActionDrillReset       = "drill-reset"
)

type Dashboard struct {
	mu         sync.RWMutex
	bus        *bus.Bus
	filters    []models.WidgetFilter
	dateRange  models.DateRange
	selections map[string][]any
	comparison models.ComparisonMode
	drill      *models.DrillDownPath
}

func New(log *slog.Logger) *Dashboard {
	return &Dashboard{
		bus:        bus.New(log),
		selections: make(map[string][]any),
	}
}

// --- Subscriptions ---

func (d *Dashboard) Subscribe(fn bus.Subscriber) bus.Token { return d.bus.Subscribe(fn) }

func (d *Dashboard) Unsubscribe(token bus.Token) { d.bus.Unsubscribe(token) }

func (d *Dashboard) LastInteraction() *models.Interaction { return d.bus.LastInteraction() }

// Broadcast publishes a widget-originated interaction (click, hover) that does
// not change dashboard state.
func (d *Dashboard) Broadcast(in models.Interaction) models.Interaction {
	return d.bus.Broadcast(in)
}

// --- Filters ---

// AddFilter assigns an id to f, appends it to the active filters and returns
// the stored filter.
func (d *Dashboard) AddFilter(f models.WidgetFilter) models.WidgetFilter {
	f.ID = filter.NewID()

	d.mu.Lock()
	d.filters = append(d.filters, f)
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionFilter,
		SourceWidgetID: sourceOr(f.SourceWidgetID),
		Payload:        models.Payload{Field: f.Field, Value: f.Value, Action: ActionAdd},
	})
	return f
}

// RemoveFilter removes the filter with the given id. It reports false, and
// broadcasts nothing, when no such filter exists.
func (d *Dashboard) RemoveFilter(id string) bool {
	d.mu.Lock()
	idx := -1
	for i, f := range d.filters {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.mu.Unlock()
		return false
	}
	removed := d.filters[idx]
	d.filters = append(d.filters[:idx:idx], d.filters[idx+1:]...)
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionFilter,
		SourceWidgetID: sourceOr(removed.SourceWidgetID),
		Payload:        models.Payload{Field: removed.Field, Value: removed.Value, Action: ActionRemove},
	})
	return true
}

// ClearFilters empties the active filters and always emits a single clear event.
func (d *Dashboard) ClearFilters() {
	d.mu.Lock()
	d.filters = nil
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionFilter,
		SourceWidgetID: SourceGlobal,
		Payload:        models.Payload{Action: ActionClear},
	})
}

func (d *Dashboard) ActiveFilters() []models.WidgetFilter {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.WidgetFilter, len(d.filters))
	copy(out, d.filters)
	return out
}

// --- Date range ---

func (d *Dashboard) SetDateRange(r models.DateRange) {
	r = copyRange(r)

	d.mu.Lock()
	d.dateRange = r
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionFilter,
		SourceWidgetID: SourceGlobal,
		Payload:        models.Payload{Field: dto.FieldDate, Value: copyRange(r), Action: ActionDateRange},
	})
}

func (d *Dashboard) DateRange() models.DateRange {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return copyRange(d.dateRange)
}

// --- Selections ---

func (d *Dashboard) SelectDataPoints(widgetID string, points []any) {
	pts := append([]any(nil), points...)

	d.mu.Lock()
	d.selections[widgetID] = pts
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionSelect,
		SourceWidgetID: widgetID,
		Payload:        models.Payload{DataPoint: append([]any(nil), pts...), Action: ActionSelect},
	})
}

// ClearSelection removes the selection of one widget, or of every widget when
// widgetID is empty.
func (d *Dashboard) ClearSelection(widgetID string) {
	d.mu.Lock()
	if widgetID == "" {
		d.selections = make(map[string][]any)
	} else {
		delete(d.selections, widgetID)
	}
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionSelect,
		SourceWidgetID: sourceOr(widgetID),
		Payload:        models.Payload{Action: ActionClearSelection},
	})
}

// SelectedDataPoints returns the selection of a widget; ok is false when the
// widget has no active selection.
func (d *Dashboard) SelectedDataPoints(widgetID string) (points []any, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	pts, ok := d.selections[widgetID]
	if !ok {
		return nil, false
	}
	return append([]any(nil), pts...), true
}

func (d *Dashboard) Selections() map[string][]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string][]any, len(d.selections))
	for k, v := range d.selections {
		out[k] = append([]any(nil), v...)
	}
	return out
}

// --- Comparison mode ---

// ToggleComparisonMode flips the enabled flag and leaves the stored periods
// untouched, so re-enabling restores them.
func (d *Dashboard) ToggleComparisonMode() bool {
	d.mu.Lock()
	d.comparison.Enabled = !d.comparison.Enabled
	enabled := d.comparison.Enabled
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionFilter,
		SourceWidgetID: SourceGlobal,
		Payload:        models.Payload{Field: dto.FieldDate, Value: enabled, Action: ActionComparisonToggle},
	})
	return enabled
}

// SetComparisonPeriods enables comparison mode and sets both periods at once.
func (d *Dashboard) SetComparisonPeriods(primary, comparison models.DateRange) {
	cm := models.ComparisonMode{
		Enabled:          true,
		PrimaryPeriod:    copyRange(primary),
		ComparisonPeriod: copyRange(comparison),
	}

	d.mu.Lock()
	d.comparison = cm
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionFilter,
		SourceWidgetID: SourceGlobal,
		Payload:        models.Payload{Field: dto.FieldDate, Value: copyComparison(cm), Action: ActionComparison},
	})
}

// EnableComparison compares primary against the previous period of equal length.
func (d *Dashboard) EnableComparison(primary models.DateRange) models.ComparisonMode {
	d.SetComparisonPeriods(primary, filter.PreviousPeriod(primary))
	return d.Comparison()
}

func (d *Dashboard) Comparison() models.ComparisonMode {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return copyComparison(d.comparison)
}

// --- Drill-down ---

// DrillDown extends the current path when it belongs to widgetID, and starts
// a fresh path at widgetID otherwise.
func (d *Dashboard) DrillDown(widgetID string, level int, crumb models.Breadcrumb) {
	d.mu.Lock()
	if d.drill != nil && d.drill.WidgetID == widgetID {
		d.drill.Level = level
		d.drill.Breadcrumbs = append(d.drill.Breadcrumbs, crumb)
	} else {
		d.drill = &models.DrillDownPath{
			WidgetID:    widgetID,
			Level:       level,
			Breadcrumbs: []models.Breadcrumb{crumb},
		}
	}
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionDrillDown,
		SourceWidgetID: widgetID,
		Payload:        models.Payload{Field: crumb.Label, Value: crumb.Value, Action: ActionDrillDown},
	})
}

// DrillUp pops the last breadcrumb of widgetID's path. A path left without
// breadcrumbs is cleared entirely. Calls for a widget that does not own the
// current path are no-ops and report false.
func (d *Dashboard) DrillUp(widgetID string) bool {
	d.mu.Lock()
	if d.drill == nil || d.drill.WidgetID != widgetID {
		d.mu.Unlock()
		return false
	}
	n := len(d.drill.Breadcrumbs)
	if n <= 1 {
		d.drill = nil
	} else {
		d.drill.Breadcrumbs = d.drill.Breadcrumbs[:n-1 : n-1]
		if d.drill.Level > 0 {
			d.drill.Level--
		}
	}
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionDrillDown,
		SourceWidgetID: widgetID,
		Payload:        models.Payload{Action: ActionDrillUp},
	})
	return true
}

func (d *Dashboard) ResetDrillDown() {
	d.mu.Lock()
	d.drill = nil
	d.mu.Unlock()

	d.bus.Broadcast(models.Interaction{
		Type:           models.InteractionDrillDown,
		SourceWidgetID: SourceGlobal,
		Payload:        models.Payload{Action: ActionDrillReset},
	})
}

func (d *Dashboard) DrillDownPath() *models.DrillDownPath {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.drill == nil {
		return nil
	}
	cp := *d.drill
	cp.Breadcrumbs = append([]models.Breadcrumb(nil), d.drill.Breadcrumbs...)
	return &cp
}

// Snapshot returns the whole state as a detached value.
func (d *Dashboard) Snapshot() dto.StateSnapshot {
	return dto.StateSnapshot{
		ActiveFilters:      d.ActiveFilters(),
		DateRange:          d.DateRange(),
		SelectedDataPoints: d.Selections(),
		LastInteraction:    d.LastInteraction(),
		ComparisonMode:     d.Comparison(),
		DrillDownPath:      d.DrillDownPath(),
	}
}

// ---- Helpers ----

func sourceOr(widgetID string) string {
	if widgetID == "" {
		return SourceGlobal
	}
	return widgetID
}

func copyRange(r models.DateRange) models.DateRange {
	var out models.DateRange
	if r.Start != nil {
		s := *r.Start
		out.Start = &s
	}
	if r.End != nil {
		e := *r.End
		out.End = &e
	}
	return out
}

func copyComparison(cm models.ComparisonMode) models.ComparisonMode {
	return models.ComparisonMode{
		Enabled:          cm.Enabled,
		PrimaryPeriod:    copyRange(cm.PrimaryPeriod),
		ComparisonPeriod: copyRange(cm.ComparisonPeriod),
	}
}
