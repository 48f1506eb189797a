package pipeline

import (
	"testing"
	"time"

	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

// --- Fakes ---

type fakeView struct {
	filters    []models.WidgetFilter
	dateRange  models.DateRange
	comparison models.ComparisonMode
}

func (v fakeView) ActiveFilters() []models.WidgetFilter { return v.filters }
func (v fakeView) DateRange() models.DateRange          { return v.dateRange }
func (v fakeView) Comparison() models.ComparisonMode    { return v.comparison }

func ptr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func monthlyWidget() *models.Widget {
	return &models.Widget{
		WidgetID:    "w-sales",
		Type:        dto.WidgetTypeBar,
		CategoryKey: "month",
		DataKey:     models.DataKeys{"sales"},
		Data: []models.Record{
			{"month": "Jan", "region": "EMEA", "model": "v1", "sales": 10.0},
			{"month": "Feb", "region": "AMER", "model": "v2", "sales": 20.0},
			{"month": "Mar", "region": "EMEA", "model": "v1", "sales": 30.0},
			{"month": "Apr", "region": "APAC", "model": "v2", "sales": 40.0},
		},
	}
}

// --- Tests ---

func TestRender_SelfFilterExclusion(t *testing.T) {
	cfg := monthlyWidget()
	view := fakeView{filters: []models.WidgetFilter{
		{ID: "f1", SourceWidgetID: "w-other", Field: "month", Operator: dto.OpEquals, Value: "Jan"},
	}}

	out := Render(cfg, view, nil)
	if len(out) != len(cfg.Data) {
		t.Fatalf("expected %d rows, got %d", len(cfg.Data), len(out))
	}
}

func TestRender_AppliesOtherFilters(t *testing.T) {
	cfg := monthlyWidget()
	view := fakeView{filters: []models.WidgetFilter{
		{Field: "region", Operator: dto.OpEquals, Value: "EMEA"},
		{Field: "sales", Operator: dto.OpGt, Value: 15},
	}}

	out := Render(cfg, view, nil)
	if len(out) != 1 || out[0]["month"] != "Mar" {
		t.Fatalf("expected only Mar, got %v", out)
	}
}

func TestRender_LocalInputs(t *testing.T) {
	cfg := monthlyWidget()

	tests := []struct {
		name   string
		inputs map[string]any
		want   int
	}{
		{"narrowing input", map[string]any{"model": "v2"}, 2},
		{"all is ignored", map[string]any{"model": "all"}, 4},
		{"empty is ignored", map[string]any{"model": ""}, 4},
		{"nil is ignored", map[string]any{"model": nil}, 4},
		{"bool is ignored", map[string]any{"model": true}, 4},
		{"numeric input string-compares", map[string]any{"sales": 20}, 1},
		{"unknown field drops rows", map[string]any{"missing": "x"}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(cfg, fakeView{}, tc.inputs); len(got) != tc.want {
				t.Errorf("expected %d rows, got %d", tc.want, len(got))
			}
		})
	}
}

func TestRender_PreservesOrder(t *testing.T) {
	cfg := monthlyWidget()
	view := fakeView{filters: []models.WidgetFilter{{Field: "region", Operator: dto.OpIn, Value: []any{"EMEA", "APAC"}}}}

	out := Render(cfg, view, nil)
	want := []string{"Jan", "Mar", "Apr"}
	if len(out) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(out))
	}
	for i, m := range want {
		if out[i]["month"] != m {
			t.Errorf("row %d: expected %s, got %v", i, m, out[i]["month"])
		}
	}
}

func TestRender_ForecastAnnotation(t *testing.T) {
	cfg := &models.Widget{Forecast: true}
	for i := 0; i < 10; i++ {
		cfg.Data = append(cfg.Data, models.Record{"i": i})
	}

	out := Render(cfg, fakeView{}, nil)
	for i, r := range out {
		_, marked := r[dto.FieldIsForecast]
		if want := i > 7; marked != want {
			t.Errorf("row %d: forecast mark = %v, want %v", i, marked, want)
		}
	}
	for i, r := range cfg.Data {
		if _, ok := r[dto.FieldIsForecast]; ok {
			t.Fatalf("input row %d was mutated", i)
		}
	}
}

func TestRender_ForecastOverride(t *testing.T) {
	cfg := &models.Widget{Forecast: true, Data: []models.Record{{"a": 1}, {"a": 2}, {"a": 3}, {"a": 4}}}

	out := Render(cfg, fakeView{}, map[string]any{dto.InputShowForecast: false})
	for _, r := range out {
		if _, ok := r[dto.FieldIsForecast]; ok {
			t.Fatal("expected override to disable forecast")
		}
	}

	cfg.Forecast = false
	out = Render(cfg, fakeView{}, map[string]any{dto.InputShowForecast: true})
	if _, ok := out[3][dto.FieldIsForecast]; !ok {
		t.Error("expected override to enable forecast on the last row")
	}
}

func datedWidget() *models.Widget {
	return &models.Widget{
		WidgetID:    "w-trend",
		CategoryKey: "date",
		DateKey:     "date",
		Data: []models.Record{
			{"date": "2023-12-28", "v": 1.0},
			{"date": "2024-01-20", "v": 2.0},
			{"date": "2024-02-02", "v": 3.0},
			{"date": "2024-02-01", "v": 4.0},
			{"date": "2024-02-15", "v": 5.0},
			{"date": "not a date", "v": 6.0},
		},
	}
}

func TestRender_DateRange(t *testing.T) {
	view := fakeView{dateRange: models.DateRange{Start: ptr(2024, 2, 1), End: ptr(2024, 2, 29)}}
	out := Render(datedWidget(), view, nil)
	if len(out) != 3 {
		t.Fatalf("expected 3 February rows, got %d: %v", len(out), out)
	}

	all := Render(datedWidget(), fakeView{}, nil)
	if len(all) != 6 {
		t.Errorf("expected unbounded range to keep every row, got %d", len(all))
	}
}

func TestRender_InvertedDateRangeIsEmpty(t *testing.T) {
	view := fakeView{dateRange: models.DateRange{Start: ptr(2024, 2, 29), End: ptr(2024, 2, 1)}}
	if out := Render(datedWidget(), view, nil); len(out) != 0 {
		t.Errorf("expected no rows for inverted range, got %d", len(out))
	}
}

func TestRender_ComparisonWindowAndSplit(t *testing.T) {
	view := fakeView{
		dateRange: models.DateRange{Start: ptr(2024, 2, 1), End: ptr(2024, 2, 29)},
		comparison: models.ComparisonMode{
			Enabled:          true,
			PrimaryPeriod:    models.DateRange{Start: ptr(2024, 2, 1), End: ptr(2024, 2, 29)},
			ComparisonPeriod: models.DateRange{Start: ptr(2024, 1, 3), End: ptr(2024, 1, 31)},
		},
	}
	cfg := datedWidget()

	rows := Render(cfg, view, nil)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows across both periods, got %d", len(rows))
	}

	split := Split(cfg, view, rows)
	if len(split.Primary) != 3 || len(split.Comparison) != 1 {
		t.Fatalf("unexpected split: %d primary, %d comparison", len(split.Primary), len(split.Comparison))
	}
	if split.Comparison[0]["date"] != "2024-01-20" {
		t.Errorf("unexpected comparison row: %v", split.Comparison[0])
	}

	w := Window(view)
	if !w.Start.Equal(*ptr(2024, 1, 3)) || !w.End.Equal(*ptr(2024, 2, 29)) {
		t.Errorf("unexpected window: %s..%s", w.Start, w.End)
	}
}

func TestSplit_ComparisonDisabled(t *testing.T) {
	cfg := datedWidget()
	split := Split(cfg, fakeView{}, cfg.Data)
	if len(split.Primary) != len(cfg.Data) || len(split.Comparison) != 0 {
		t.Errorf("expected all rows primary, got %d/%d", len(split.Primary), len(split.Comparison))
	}
}

func TestRender_NilConfig(t *testing.T) {
	if out := Render(nil, fakeView{}, nil); out != nil {
		t.Errorf("expected nil, got %v", out)
	}
}
