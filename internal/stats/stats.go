// Package stats computes descriptive statistics, correlation and trend lines over
// user-uploaded records. Every function tolerates empty input, unknown keys and
// non-numeric values: results degrade to nil or 0, never to a panic or error.
package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

// Summary holds descriptive statistics for one numeric field.
// Variance and StandardDeviation use the sample (N-1) convention.
type Summary struct {
	Count             int     `json:"count"`
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	Mode              float64 `json:"mode"`
	Variance          float64 `json:"variance"`
	StandardDeviation float64 `json:"standardDeviation"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Sum               float64 `json:"sum"`
}

// ExtractSeries returns the numeric values of key in record order, skipping
// records where the value is missing or not a number.
func ExtractSeries(records []models.Record, key string) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := r.Number(key); ok {
			out = append(out, v)
		}
	}
	return out
}

// BasicStats summarises key across records. It returns nil when no record holds
// a numeric value for key.
func BasicStats(records []models.Record, key string) *Summary {
	series := ExtractSeries(records, key)
	if len(series) == 0 {
		return nil
	}
	data := mstats.Float64Data(series)

	s := &Summary{Count: len(series)}
	s.Sum, _ = mstats.Sum(data)
	s.Mean, _ = mstats.Mean(data)
	s.Median, _ = mstats.Median(data)
	s.Min, _ = mstats.Min(data)
	s.Max, _ = mstats.Max(data)
	s.Mode = mode(data, s.Min)
	if len(series) > 1 {
		s.Variance, _ = mstats.SampleVariance(data)
		s.StandardDeviation, _ = mstats.StandardDeviationSample(data)
	}
	return s
}

// Describe summarises several keys at once. Keys without numeric data are omitted.
func Describe(records []models.Record, keys ...string) map[string]*Summary {
	out := make(map[string]*Summary, len(keys))
	for _, k := range keys {
		if s := BasicStats(records, k); s != nil {
			out[k] = s
		}
	}
	return out
}

// mode returns the smallest of the most frequent values. When every value is
// unique, the library reports no mode and the minimum is used.
func mode(data mstats.Float64Data, min float64) float64 {
	modes, err := mstats.Mode(data)
	if err != nil || len(modes) == 0 {
		return min
	}
	return modes[0]
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
