// Package filter evaluates dashboard filter operators against dynamic record values.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

// Evaluate applies operator to a record value and a filter value.
// Unknown operators pass every value so a bad filter never hides the whole
// dataset. A missing record value fails every known operator.
func Evaluate(operator string, itemValue, filterValue any) bool {
	if !dto.IsKnownOperator(operator) {
		return true
	}
	if itemValue == nil {
		return false
	}

	switch operator {
	case dto.OpEquals:
		return models.ToString(itemValue) == models.ToString(filterValue)
	case dto.OpContains:
		return strings.Contains(
			strings.ToLower(models.ToString(itemValue)),
			strings.ToLower(models.ToString(filterValue)),
		)
	case dto.OpGt:
		return compare(itemValue, filterValue) > 0
	case dto.OpLt:
		return compare(itemValue, filterValue) < 0
	case dto.OpGte:
		return compare(itemValue, filterValue) >= 0
	case dto.OpLte:
		return compare(itemValue, filterValue) <= 0
	case dto.OpBetween:
		bounds, ok := asSlice(filterValue)
		if !ok || len(bounds) != 2 {
			return false
		}
		return compare(itemValue, bounds[0]) >= 0 && compare(itemValue, bounds[1]) <= 0
	case dto.OpIn:
		options, ok := asSlice(filterValue)
		if !ok {
			return false
		}
		s := models.ToString(itemValue)
		for _, o := range options {
			if models.ToString(o) == s {
				return true
			}
		}
		return false
	}
	return true
}

// Matches reports whether a record passes f.
func Matches(r models.Record, f models.WidgetFilter) bool {
	return Evaluate(f.Operator, r[f.Field], f.Value)
}

// NewID returns a filter id unique within a dashboard session.
func NewID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("flt_%d_%s", time.Now().UnixMilli(), suffix)
}

// compare orders two values numerically when both are numbers and lexically
// otherwise.
func compare(a, b any) int {
	fa, okA := models.ToNumber(a)
	fb, okB := models.ToNumber(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(models.ToString(a), models.ToString(b))
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []float64:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	}
	return nil, false
}
