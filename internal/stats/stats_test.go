package stats

import (
	"math"
	"testing"

	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestExtractSeries_DropsNonNumeric(t *testing.T) {
	records := []models.Record{
		{"v": 1.0},
		{"v": "2.5"},
		{"v": "n/a"},
		{"other": 4.0},
		{"v": nil},
		{"v": true},
		{"v": 3},
	}
	got := ExtractSeries(records, "v")
	want := []float64{1, 2.5, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestBasicStats_Scenario(t *testing.T) {
	data := []models.Record{
		{"cat": "A", "val": 10.0},
		{"cat": "B", "val": 20.0},
		{"cat": "A", "val": 15.0},
	}
	s := BasicStats(data, "val")
	if s == nil {
		t.Fatal("expected summary, got nil")
	}
	if s.Mean != 15 || s.Min != 10 || s.Max != 20 || s.Sum != 45 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.Median != 15 {
		t.Errorf("expected median 15, got %v", s.Median)
	}
	// sample variance: ((-5)^2 + 5^2 + 0) / 2
	if !almostEqual(s.Variance, 25) {
		t.Errorf("expected sample variance 25, got %v", s.Variance)
	}
	if !almostEqual(s.StandardDeviation, 5) {
		t.Errorf("expected standard deviation 5, got %v", s.StandardDeviation)
	}
	if s.Count != 3 {
		t.Errorf("expected count 3, got %d", s.Count)
	}
}

func TestBasicStats_Mode(t *testing.T) {
	data := []models.Record{{"v": 3.0}, {"v": 1.0}, {"v": 3.0}, {"v": 2.0}}
	if s := BasicStats(data, "v"); s.Mode != 3 {
		t.Errorf("expected mode 3, got %v", s.Mode)
	}

	unique := []models.Record{{"v": 9.0}, {"v": 4.0}, {"v": 7.0}}
	if s := BasicStats(unique, "v"); s.Mode != 4 {
		t.Errorf("expected smallest value as mode for unique data, got %v", s.Mode)
	}
}

func TestBasicStats_SinglePoint(t *testing.T) {
	s := BasicStats([]models.Record{{"v": 7.0}}, "v")
	if s == nil {
		t.Fatal("expected summary, got nil")
	}
	if s.Variance != 0 || s.StandardDeviation != 0 {
		t.Errorf("expected zero spread for a single point, got %+v", s)
	}
	if s.Mean != 7 || s.Mode != 7 {
		t.Errorf("unexpected summary: %+v", s)
	}
}

func TestEmptyInputSafety(t *testing.T) {
	if BasicStats(nil, "x") != nil {
		t.Error("expected nil BasicStats for empty input")
	}
	if BasicStats([]models.Record{{"y": 1.0}}, "x") != nil {
		t.Error("expected nil BasicStats for unknown key")
	}
	if got := Correlation(nil, "a", "b"); got != 0 {
		t.Errorf("expected 0 correlation, got %v", got)
	}
	if LinearRegression(nil, "y") != nil {
		t.Error("expected nil regression for empty input")
	}
	if got := Describe(nil, "a", "b"); len(got) != 0 {
		t.Errorf("expected empty description, got %v", got)
	}
}

func TestCorrelation_PerfectAndInverse(t *testing.T) {
	data := []models.Record{
		{"a": 1.0, "b": 2.0, "c": 10.0},
		{"a": 2.0, "b": 4.0, "c": 8.0},
		{"a": 3.0, "b": 6.0, "c": 6.0},
		{"a": 4.0, "b": 8.0, "c": 4.0},
	}
	if got := Correlation(data, "a", "b"); !almostEqual(got, 1) {
		t.Errorf("expected 1, got %v", got)
	}
	if got := Correlation(data, "a", "c"); !almostEqual(got, -1) {
		t.Errorf("expected -1, got %v", got)
	}
}

func TestCorrelation_SymmetryAndBounds(t *testing.T) {
	datasets := [][]models.Record{
		{{"a": 1.0, "b": 7.0}, {"a": 5.0, "b": 2.0}, {"a": 3.0, "b": 9.0}, {"a": 8.0, "b": 1.0}},
		{{"a": "4", "b": 1.5}, {"a": 2.0, "b": "x"}, {"a": 9.0, "b": 3.5}, {"b": 0.25}},
		{{"a": -3.0, "b": 100.0}, {"a": 0.0, "b": 50.0}, {"a": 12.5, "b": 75.0}},
	}
	for i, data := range datasets {
		ab := Correlation(data, "a", "b")
		ba := Correlation(data, "b", "a")
		if !almostEqual(ab, ba) {
			t.Errorf("dataset %d: correlation not symmetric: %v vs %v", i, ab, ba)
		}
		if ab < -1 || ab > 1 {
			t.Errorf("dataset %d: correlation out of bounds: %v", i, ab)
		}
	}
}

func TestCorrelation_Degenerate(t *testing.T) {
	constant := []models.Record{{"a": 1.0, "b": 5.0}, {"a": 2.0, "b": 5.0}, {"a": 3.0, "b": 5.0}}
	if got := Correlation(constant, "a", "b"); got != 0 {
		t.Errorf("expected 0 for constant series, got %v", got)
	}
	single := []models.Record{{"a": 1.0, "b": 2.0}}
	if got := Correlation(single, "a", "b"); got != 0 {
		t.Errorf("expected 0 for a single pair, got %v", got)
	}
}

func TestCorrelationSignificance(t *testing.T) {
	if got := CorrelationSignificance(0.5, 2); got != 1 {
		t.Errorf("expected 1 for n < 3, got %v", got)
	}
	if got := CorrelationSignificance(0, 30); !almostEqual(got, 1) {
		t.Errorf("expected p = 1 for r = 0, got %v", got)
	}
	strong := CorrelationSignificance(0.95, 30)
	weak := CorrelationSignificance(0.1, 30)
	if strong >= weak {
		t.Errorf("expected stronger correlation to be more significant: %v >= %v", strong, weak)
	}
	if strong > 0.001 {
		t.Errorf("expected r=0.95 over 30 points to be significant, got p=%v", strong)
	}
}

func TestLinearRegression_KeepsOriginalIndices(t *testing.T) {
	// y = 2x + 1 at indices 0, 2, 3; index 1 is not numeric.
	data := []models.Record{
		{"y": 1.0},
		{"y": "missing"},
		{"y": 5.0},
		{"y": 7.0},
	}
	reg := LinearRegression(data, "y")
	if reg == nil {
		t.Fatal("expected regression, got nil")
	}
	if !almostEqual(reg.Slope, 2) || !almostEqual(reg.Intercept, 1) {
		t.Errorf("expected y = 2x + 1, got slope=%v intercept=%v", reg.Slope, reg.Intercept)
	}
	if reg.Points != 3 {
		t.Errorf("expected 3 points, got %d", reg.Points)
	}
	if !almostEqual(reg.RSquared, 1) {
		t.Errorf("expected perfect fit, got r2=%v", reg.RSquared)
	}
	p := reg.Predict(10)
	if p[0] != 10 || !almostEqual(p[1], 21) {
		t.Errorf("unexpected prediction: %v", p)
	}
	if got := reg.Equation(); got != "y = 2.00x + 1.00" {
		t.Errorf("unexpected equation: %q", got)
	}
}

func TestLinearRegression_NegativeIntercept(t *testing.T) {
	data := []models.Record{{"y": -3.0}, {"y": -1.0}, {"y": 1.0}}
	reg := LinearRegression(data, "y")
	if reg == nil {
		t.Fatal("expected regression, got nil")
	}
	if got := reg.Equation(); got != "y = 2.00x - 3.00" {
		t.Errorf("unexpected equation: %q", got)
	}
}

func TestLinearRegression_TooFewPoints(t *testing.T) {
	data := []models.Record{{"y": 1.0}, {"y": "x"}, {"z": 3.0}}
	if reg := LinearRegression(data, "y"); reg != nil {
		t.Errorf("expected nil, got %+v", reg)
	}
}
