package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
	"github.com/GregMSThompson/insights-dashboard/internal/stats"
	"github.com/GregMSThompson/insights-dashboard/pkg/helpers"
	"github.com/GregMSThompson/insights-dashboard/pkg/logger"
)

const (
	insightTemperature  = 0.3
	insightMaxTokens    = 512
	insightMaxSample    = 20
	insightDefaultLimit = 20
	insightDateLayout   = "2006-01-02"
)

const insightSystemPrompt = `You are a business intelligence analyst writing short insights for a dashboard tile.
Write two to four sentences in plain English. Refer only to the statistics provided.
Mention notable trends, outliers and correlations. Do not invent numbers.`

type vertexClient interface {
	GenerateText(ctx context.Context, req dto.TextRequest) (dto.TextResponse, error)
}

type insightStore interface {
	Save(ctx context.Context, dept string, in *models.Insight) error
	List(ctx context.Context, dept, widgetID string, limit int) ([]models.Insight, error)
}

// insightSessions is the session surface insights need: rendering plus the
// generation guard against stale writes.
type insightSessions interface {
	widgetRenderer
	Generation(ctx context.Context, uid, sessionID string) (uint64, error)
	CommitIfCurrent(ctx context.Context, uid, sessionID string, gen uint64, fn func(dept string) error) error
}

type insightService struct {
	vertex   vertexClient
	sessions insightSessions
	store    insightStore
	ttl      time.Duration
	clockNow func() time.Time
}

func NewInsightService(vertex vertexClient, sessions insightSessions, store insightStore, ttl time.Duration) *insightService {
	return &insightService{
		vertex:   vertex,
		sessions: sessions,
		store:    store,
		ttl:      ttl,
		clockNow: time.Now,
	}
}

// Generate writes an AI insight for the rows a widget currently shows. If the
// session moves to another department while the model is running, the
// insight is discarded with a ConflictError.
func (s *insightService) Generate(ctx context.Context, uid, sessionID, widgetID string) (*models.Insight, error) {
	log := logger.FromContext(ctx)

	gen, err := s.sessions.Generation(ctx, uid, sessionID)
	if err != nil {
		return nil, err
	}
	rendered, err := s.sessions.Render(ctx, uid, sessionID, widgetID, nil)
	if err != nil {
		return nil, err
	}

	prompt := buildInsightPrompt(rendered)
	if logger.IsDebugEnabled(ctx) {
		log.Debug("insight prompt", "widget_id", widgetID, "prompt", prompt)
	}
	resp, err := s.vertex.GenerateText(ctx, dto.TextRequest{
		System:          insightSystemPrompt,
		Prompt:          prompt,
		Temperature:     helpers.Ptr(float32(insightTemperature)),
		MaxOutputTokens: helpers.Ptr(int32(insightMaxTokens)),
	})
	if err != nil {
		return nil, err
	}

	now := s.clockNow()
	in := &models.Insight{
		InsightID: uuid.New().String(),
		WidgetID:  widgetID,
		Text:      resp.Text,
		Prompt:    prompt,
		CreatedBy: uid,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		in.ExpiresAt = now.Add(s.ttl)
	}

	err = s.sessions.CommitIfCurrent(ctx, uid, sessionID, gen, func(dept string) error {
		in.Department = dept
		return s.store.Save(ctx, dept, in)
	})
	if err != nil {
		return nil, err
	}

	log.Info("insight generated", "session_id", sessionID, "widget_id", widgetID, "rows", len(rendered.Rows), "finish_reason", resp.FinishReason)
	return in, nil
}

func (s *insightService) List(ctx context.Context, dept, widgetID string, limit int) ([]models.Insight, error) {
	if limit <= 0 {
		limit = insightDefaultLimit
	}
	return s.store.List(ctx, dept, widgetID, limit)
}

// --- Prompt ---

func buildInsightPrompt(rendered dto.RenderedWidget) string {
	w := rendered.Widget
	var sb strings.Builder

	fmt.Fprintf(&sb, "Widget: %s (%s chart)\n", w.Title, w.Type)
	if w.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", w.Description)
	}
	if w.CategoryKey != "" {
		fmt.Fprintf(&sb, "Category field: %s\n", w.CategoryKey)
	}
	if period := formatWindow(rendered.Window); period != "" {
		fmt.Fprintf(&sb, "Period: %s\n", period)
	}
	fmt.Fprintf(&sb, "Rows shown: %d\n", len(rendered.Rows))
	if w.Goal != nil {
		fmt.Fprintf(&sb, "Goal: %.2f\n", *w.Goal)
	}

	summaries := stats.Describe(rendered.Rows, w.DataKey...)
	keys := make([]string, 0, len(summaries))
	for k := range summaries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sm := summaries[k]
		fmt.Fprintf(&sb, "Field %s: count=%d mean=%.2f median=%.2f min=%.2f max=%.2f sum=%.2f stddev=%.2f\n",
			k, sm.Count, sm.Mean, sm.Median, sm.Min, sm.Max, sm.Sum, sm.StandardDeviation)
		if reg := stats.LinearRegression(rendered.Rows, k); reg != nil {
			fmt.Fprintf(&sb, "Trend %s: %s (r²=%.2f)\n", k, reg.Equation(), reg.RSquared)
		}
	}
	if len(keys) >= 2 {
		r := stats.Correlation(rendered.Rows, keys[0], keys[1])
		fmt.Fprintf(&sb, "Correlation %s/%s: %.2f\n", keys[0], keys[1], r)
	}
	if len(summaries) == 0 {
		sb.WriteString("No numeric values are available for the configured fields.\n")
	}

	if rendered.Comparison != nil {
		fmt.Fprintf(&sb, "Comparison mode: %d rows in the primary period, %d in the comparison period\n",
			len(rendered.Comparison.Primary), len(rendered.Comparison.Comparison))
		if key := w.DataKey.Primary(); key != "" {
			p := stats.BasicStats(rendered.Comparison.Primary, key)
			c := stats.BasicStats(rendered.Comparison.Comparison, key)
			if p != nil && c != nil {
				fmt.Fprintf(&sb, "Total %s: primary=%.2f comparison=%.2f\n", key, p.Sum, c.Sum)
			}
		}
	}

	if w.CategoryKey != "" && len(rendered.Rows) > 0 {
		sb.WriteString("Sample rows:\n")
		for i, r := range rendered.Rows {
			if i == insightMaxSample {
				break
			}
			fmt.Fprintf(&sb, "- %s", r.String(w.CategoryKey))
			for _, k := range w.DataKey {
				fmt.Fprintf(&sb, " %s=%s", k, r.String(k))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatWindow(r models.DateRange) string {
	switch {
	case r.Start != nil && r.End != nil:
		return r.Start.Format(insightDateLayout) + " to " + r.End.Format(insightDateLayout)
	case r.Start != nil:
		return "from " + r.Start.Format(insightDateLayout)
	case r.End != nil:
		return "until " + r.End.Format(insightDateLayout)
	}
	return ""
}
