package filter

import (
	"strings"
	"time"

	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/errs"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

const day = 24 * time.Hour

// PreviousPeriod returns the period of equal length ending the day before
// primary starts. The shift is plain duration arithmetic, never calendar months.
// An open-ended primary period has no previous period.
func PreviousPeriod(primary models.DateRange) models.DateRange {
	if primary.Start == nil || primary.End == nil {
		return models.DateRange{}
	}
	span := primary.End.Sub(*primary.Start)
	end := primary.Start.Add(-day)
	start := end.Add(-span)
	return models.DateRange{Start: &start, End: &end}
}

// Union returns the smallest range covering both a and b. An open bound on
// either side stays open.
func Union(a, b models.DateRange) models.DateRange {
	var out models.DateRange
	if a.Start != nil && b.Start != nil {
		s := *a.Start
		if b.Start.Before(s) {
			s = *b.Start
		}
		out.Start = &s
	}
	if a.End != nil && b.End != nil {
		e := *a.End
		if b.End.After(e) {
			e = *b.End
		}
		out.End = &e
	}
	return out
}

// ResolvePreset turns a named preset into a concrete range relative to now.
func ResolvePreset(preset string, now time.Time) (models.DateRange, error) {
	today := endOfDay(now)
	switch preset {
	case dto.DateRangeThisMonth:
		return span(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), today), nil
	case dto.DateRangeLastMonth:
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		lastOfPrev := firstOfMonth.AddDate(0, 0, -1)
		firstOfPrev := time.Date(lastOfPrev.Year(), lastOfPrev.Month(), 1, 0, 0, 0, 0, now.Location())
		return span(firstOfPrev, endOfDay(lastOfPrev)), nil
	case dto.DateRangeThisQuarter:
		return span(firstOfQuarter(now), today), nil
	case dto.DateRangeLastQuarter:
		f, l := prevQuarter(now)
		return span(f, endOfDay(l)), nil
	case dto.DateRangeThisYear:
		return span(time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), today), nil
	case dto.DateRangeLastYear:
		return span(time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location()),
			endOfDay(time.Date(now.Year()-1, 12, 31, 0, 0, 0, 0, now.Location()))), nil
	case dto.Window7Day:
		return span(startOfDay(now.AddDate(0, 0, -7)), today), nil
	case dto.Window30Day:
		return span(startOfDay(now.AddDate(0, 0, -30)), today), nil
	case dto.Window60Day:
		return span(startOfDay(now.AddDate(0, 0, -60)), today), nil
	case dto.Window90Day:
		return span(startOfDay(now.AddDate(0, 0, -90)), today), nil
	}
	return models.DateRange{}, errs.NewValidationError("unknown date range preset: " + preset)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
	"Jan 2006",
	"Jan-2006",
	"January 2006",
}

// ParseTime reads a date out of a dynamic record value. Numbers are treated as
// epoch milliseconds.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	}
	if ms, ok := models.ToNumber(v); ok {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

// --- Calendar helpers ---

func span(from, to time.Time) models.DateRange {
	return models.DateRange{Start: &from, End: &to}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(day - time.Nanosecond)
}

func firstOfQuarter(t time.Time) time.Time {
	m := int(t.Month())
	qStart := ((m-1)/3)*3 + 1
	return time.Date(t.Year(), time.Month(qStart), 1, 0, 0, 0, 0, t.Location())
}

func prevQuarter(t time.Time) (first, last time.Time) {
	thisFirst := firstOfQuarter(t)
	last = thisFirst.AddDate(0, 0, -1)
	first = firstOfQuarter(last)
	return
}
