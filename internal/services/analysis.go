package services

import (
	"context"

	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/errs"
	"github.com/GregMSThompson/insights-dashboard/internal/stats"
)

// widgetRenderer produces pipeline output for a widget within a session.
type widgetRenderer interface {
	Render(ctx context.Context, uid, sessionID, widgetID string, inputs map[string]any) (dto.RenderedWidget, error)
}

type analysisService struct {
	renderer widgetRenderer
}

func NewAnalysisService(renderer widgetRenderer) *analysisService {
	return &analysisService{renderer: renderer}
}

// WidgetStats describes the rows a widget currently shows. Key defaults to the
// widget's primary data key.
func (s *analysisService) WidgetStats(ctx context.Context, uid, sessionID, widgetID string, args dto.WidgetStatsArgs) (dto.WidgetStatsResult, error) {
	rendered, err := s.renderer.Render(ctx, uid, sessionID, widgetID, args.Inputs)
	if err != nil {
		return dto.WidgetStatsResult{}, err
	}

	key := args.Key
	if key == "" {
		key = rendered.Widget.DataKey.Primary()
	}
	if key == "" {
		return dto.WidgetStatsResult{}, errs.NewValidationError("key is required")
	}

	out := dto.WidgetStatsResult{
		WidgetID: widgetID,
		Key:      key,
		Rows:     len(rendered.Rows),
		Summary:  stats.BasicStats(rendered.Rows, key),
		Trend:    trend(rendered, key),
	}
	if args.WithKey != "" {
		out.Correlation = correlate(rendered, key, args.WithKey)
	}
	return out, nil
}

func correlate(rendered dto.RenderedWidget, key, with string) *dto.CorrelationResult {
	r := stats.Correlation(rendered.Rows, key, with)
	n := stats.PairCount(rendered.Rows, key, with)
	return &dto.CorrelationResult{
		With:   with,
		R:      r,
		PValue: stats.CorrelationSignificance(r, n),
		Pairs:  n,
	}
}

func trend(rendered dto.RenderedWidget, key string) *dto.TrendResult {
	reg := stats.LinearRegression(rendered.Rows, key)
	if reg == nil {
		return nil
	}
	return &dto.TrendResult{
		Slope:     reg.Slope,
		Intercept: reg.Intercept,
		RSquared:  reg.RSquared,
		Equation:  reg.Equation(),
		Next:      reg.Predict(float64(len(rendered.Rows)))[1],
	}
}
