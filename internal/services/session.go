package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/insights-dashboard/internal/bus"
	"github.com/GregMSThompson/insights-dashboard/internal/dto"
	"github.com/GregMSThompson/insights-dashboard/internal/errs"
	"github.com/GregMSThompson/insights-dashboard/internal/filter"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
	"github.com/GregMSThompson/insights-dashboard/internal/pipeline"
	"github.com/GregMSThompson/insights-dashboard/internal/state"
	"github.com/GregMSThompson/insights-dashboard/pkg/logger"
)

// widgetReader is the slice of the widget store sessions need to render.
type widgetReader interface {
	Get(ctx context.Context, dept, widgetID string) (*models.Widget, error)
}

// session is one open dashboard. mu serialises every state mutation and
// pipeline read, so each session has a single logical writer. lastUsed is
// unix nanoseconds and is read without mu so sweeping never waits on a
// session that is busy.
type session struct {
	mu         sync.Mutex
	id         string
	uid        string
	dept       string
	generation uint64
	state      *state.Dashboard
	recent     []models.Interaction
	lastUsed   atomic.Int64
}

// recentInteractionCap bounds the interaction history kept per session.
const recentInteractionCap = 100

type sessionService struct {
	mu       sync.RWMutex
	sessions map[string]*session
	widgets  widgetReader
	log      *slog.Logger
	clockNow func() time.Time
}

func NewSessionService(log *slog.Logger, widgets widgetReader) *sessionService {
	return &sessionService{
		sessions: make(map[string]*session),
		widgets:  widgets,
		log:      log,
		clockNow: time.Now,
	}
}

// --- Lifecycle ---

func (s *sessionService) Create(ctx context.Context, uid, dept string) (dto.SessionResponse, error) {
	if dept == "" {
		return dto.SessionResponse{}, errs.NewValidationError("departmentId is required")
	}

	sess := &session{
		id:         uuid.New().String(),
		uid:        uid,
		dept:       dept,
		generation: 1,
	}
	sess.lastUsed.Store(s.clockNow().UnixNano())
	auditLog := s.log.With("session_id", sess.id, "uid", uid)
	sess.state = state.New(auditLog)
	sess.state.Subscribe(auditSubscriber(auditLog))
	sess.state.Subscribe(sess.record)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	logger.FromContext(ctx).Info("dashboard session created", "session_id", sess.id, "department", dept)
	return sess.response(), nil
}

func (s *sessionService) Get(ctx context.Context, uid, sessionID string) (dto.SessionResponse, error) {
	var out dto.SessionResponse
	err := s.with(uid, sessionID, func(sess *session) error {
		out = sess.response()
		return nil
	})
	return out, err
}

func (s *sessionService) Close(ctx context.Context, uid, sessionID string) error {
	if _, err := s.lookup(uid, sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	logger.FromContext(ctx).Info("dashboard session closed", "session_id", sessionID)
	return nil
}

// SwitchDepartment points the session at another department. Filters,
// selections and drill-down refer to the old department's widgets and are
// cleared; the generation is bumped so in-flight work for the old department
// cannot land.
func (s *sessionService) SwitchDepartment(ctx context.Context, uid, sessionID, dept string) (dto.SessionResponse, error) {
	if dept == "" {
		return dto.SessionResponse{}, errs.NewValidationError("departmentId is required")
	}
	var out dto.SessionResponse
	err := s.with(uid, sessionID, func(sess *session) error {
		if sess.dept == dept {
			out = sess.response()
			return nil
		}
		sess.dept = dept
		sess.generation++
		sess.state.ClearFilters()
		sess.state.ClearSelection("")
		sess.state.ResetDrillDown()
		out = sess.response()
		return nil
	})
	if err == nil {
		logger.FromContext(ctx).Info("session switched department", "session_id", sessionID, "department", dept, "generation", out.Generation)
	}
	return out, err
}

// Sweep closes sessions idle for longer than maxIdle and returns how many
// were removed. It never takes a session lock, so a session blocked on a slow
// write does not stall the registry.
func (s *sessionService) Sweep(maxIdle time.Duration) int {
	cutoff := s.clockNow().Add(-maxIdle).UnixNano()

	s.mu.RLock()
	var idle []string
	for id, sess := range s.sessions {
		if sess.lastUsed.Load() < cutoff {
			idle = append(idle, id)
		}
	}
	s.mu.RUnlock()
	if len(idle) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, id := range idle {
		// Used again since the snapshot.
		sess, ok := s.sessions[id]
		if !ok || sess.lastUsed.Load() >= cutoff {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	return removed
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *sessionService) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(maxIdle); n > 0 {
				s.log.Info("idle dashboard sessions closed", "count", n)
			}
		}
	}
}

// --- State operations ---

func (s *sessionService) AddFilter(ctx context.Context, uid, sessionID string, req dto.AddFilterRequest) (models.WidgetFilter, error) {
	if req.Field == "" {
		return models.WidgetFilter{}, errs.NewValidationError("field is required")
	}
	if req.Operator == "" {
		req.Operator = dto.OpEquals
	}
	if !dto.IsKnownOperator(req.Operator) {
		// Unknown operators are kept and pass every row.
		logger.FromContext(ctx).Warn("filter with unknown operator", "operator", req.Operator, "field", req.Field)
	}

	var out models.WidgetFilter
	err := s.with(uid, sessionID, func(sess *session) error {
		out = sess.state.AddFilter(models.WidgetFilter{
			SourceWidgetID: req.SourceWidgetID,
			Field:          req.Field,
			Operator:       req.Operator,
			Value:          req.Value,
			Label:          req.Label,
		})
		return nil
	})
	return out, err
}

// RemoveFilter is a no-op for ids that are not active.
func (s *sessionService) RemoveFilter(ctx context.Context, uid, sessionID, filterID string) error {
	return s.with(uid, sessionID, func(sess *session) error {
		sess.state.RemoveFilter(filterID)
		return nil
	})
}

func (s *sessionService) ClearFilters(ctx context.Context, uid, sessionID string) error {
	return s.with(uid, sessionID, func(sess *session) error {
		sess.state.ClearFilters()
		return nil
	})
}

// SetDateRange applies a named preset or explicit bounds. A range whose start
// is after its end is accepted and matches no rows.
func (s *sessionService) SetDateRange(ctx context.Context, uid, sessionID string, req dto.DateRangeRequest) (models.DateRange, error) {
	r := req.Range
	if req.Preset != "" {
		var err error
		r, err = filter.ResolvePreset(req.Preset, s.clockNow())
		if err != nil {
			return models.DateRange{}, err
		}
	}
	if !r.Valid() {
		logger.FromContext(ctx).Warn("inverted date range set", "start", r.Start, "end", r.End)
	}

	err := s.with(uid, sessionID, func(sess *session) error {
		sess.state.SetDateRange(r)
		r = sess.state.DateRange()
		return nil
	})
	return r, err
}

func (s *sessionService) SelectDataPoints(ctx context.Context, uid, sessionID, widgetID string, points []any) error {
	if widgetID == "" {
		return errs.NewValidationError("widgetId is required")
	}
	return s.with(uid, sessionID, func(sess *session) error {
		if len(points) == 0 {
			sess.state.ClearSelection(widgetID)
			return nil
		}
		sess.state.SelectDataPoints(widgetID, points)
		return nil
	})
}

// ClearSelection clears one widget's selection, or all when widgetID is empty.
func (s *sessionService) ClearSelection(ctx context.Context, uid, sessionID, widgetID string) error {
	return s.with(uid, sessionID, func(sess *session) error {
		sess.state.ClearSelection(widgetID)
		return nil
	})
}

func (s *sessionService) ToggleComparison(ctx context.Context, uid, sessionID string) (models.ComparisonMode, error) {
	var out models.ComparisonMode
	err := s.with(uid, sessionID, func(sess *session) error {
		sess.state.ToggleComparisonMode()
		out = sess.state.Comparison()
		return nil
	})
	return out, err
}

// SetComparison sets both periods. Without an explicit comparison period the
// previous period of equal length is derived, which needs a bounded primary.
func (s *sessionService) SetComparison(ctx context.Context, uid, sessionID string, req dto.ComparisonRequest) (models.ComparisonMode, error) {
	if req.Comparison == nil && (req.Primary.Start == nil || req.Primary.End == nil) {
		return models.ComparisonMode{}, errs.NewValidationError("primary period needs a start and an end to derive the comparison period")
	}

	var out models.ComparisonMode
	err := s.with(uid, sessionID, func(sess *session) error {
		if req.Comparison == nil {
			out = sess.state.EnableComparison(req.Primary)
			return nil
		}
		sess.state.SetComparisonPeriods(req.Primary, *req.Comparison)
		out = sess.state.Comparison()
		return nil
	})
	return out, err
}

func (s *sessionService) DrillDown(ctx context.Context, uid, sessionID string, req dto.DrillDownRequest) (*models.DrillDownPath, error) {
	if req.WidgetID == "" {
		return nil, errs.NewValidationError("widgetId is required")
	}
	if req.Level < 0 {
		return nil, errs.NewValidationError("level must not be negative")
	}
	var out *models.DrillDownPath
	err := s.with(uid, sessionID, func(sess *session) error {
		sess.state.DrillDown(req.WidgetID, req.Level, req.Breadcrumb)
		out = sess.state.DrillDownPath()
		return nil
	})
	return out, err
}

// DrillUp returns the remaining path, nil once the last breadcrumb is popped.
func (s *sessionService) DrillUp(ctx context.Context, uid, sessionID, widgetID string) (*models.DrillDownPath, error) {
	var out *models.DrillDownPath
	err := s.with(uid, sessionID, func(sess *session) error {
		sess.state.DrillUp(widgetID)
		out = sess.state.DrillDownPath()
		return nil
	})
	return out, err
}

func (s *sessionService) ResetDrillDown(ctx context.Context, uid, sessionID string) error {
	return s.with(uid, sessionID, func(sess *session) error {
		sess.state.ResetDrillDown()
		return nil
	})
}

// Interact publishes a widget interaction that carries no state change, such
// as a hover or a click that the client handles itself.
func (s *sessionService) Interact(ctx context.Context, uid, sessionID string, in models.Interaction) (models.Interaction, error) {
	switch in.Type {
	case models.InteractionClick, models.InteractionHover, models.InteractionSelect,
		models.InteractionFilter, models.InteractionDrillDown:
	default:
		return models.Interaction{}, errs.NewValidationError("unknown interaction type: " + in.Type)
	}
	if in.SourceWidgetID == "" {
		return models.Interaction{}, errs.NewValidationError("sourceWidgetId is required")
	}

	var out models.Interaction
	err := s.with(uid, sessionID, func(sess *session) error {
		out = sess.state.Broadcast(in)
		return nil
	})
	return out, err
}

// RecentInteractions returns up to limit of the session's latest
// interactions that target widgetID, newest first. An empty widgetID returns
// every interaction.
func (s *sessionService) RecentInteractions(ctx context.Context, uid, sessionID, widgetID string, limit int) ([]models.Interaction, error) {
	if limit <= 0 || limit > recentInteractionCap {
		limit = recentInteractionCap
	}
	out := []models.Interaction{}
	err := s.with(uid, sessionID, func(sess *session) error {
		for i := len(sess.recent) - 1; i >= 0 && len(out) < limit; i-- {
			in := sess.recent[i]
			if widgetID == "" || in.Targets(widgetID) {
				out = append(out, in)
			}
		}
		return nil
	})
	return out, err
}

// --- Rendering ---

// Render runs the widget pipeline against the session state. The widget is
// loaded outside the session lock; if the session switched department in the
// meantime the result is stale and a ConflictError is returned.
func (s *sessionService) Render(ctx context.Context, uid, sessionID, widgetID string, inputs map[string]any) (dto.RenderedWidget, error) {
	dept, gen, err := s.position(uid, sessionID)
	if err != nil {
		return dto.RenderedWidget{}, err
	}

	w, err := s.widgets.Get(ctx, dept, widgetID)
	if err != nil {
		return dto.RenderedWidget{}, err
	}

	var out dto.RenderedWidget
	err = s.with(uid, sessionID, func(sess *session) error {
		if sess.generation != gen {
			return errs.NewConflictError("dashboard changed department while loading widget")
		}
		rows := pipeline.Render(w, sess.state, inputs)
		out = dto.RenderedWidget{
			Widget:     w,
			Department: sess.dept,
			Generation: sess.generation,
			Rows:       rows,
			Window:     pipeline.Window(sess.state),
		}
		if sess.state.Comparison().Enabled {
			split := pipeline.Split(w, sess.state, rows)
			out.Comparison = &split
		}
		return nil
	})
	return out, err
}

func (s *sessionService) RenderWidget(ctx context.Context, uid, sessionID, widgetID string, inputs map[string]any) (dto.WidgetDataResponse, error) {
	rendered, err := s.Render(ctx, uid, sessionID, widgetID, inputs)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}
	return dto.WidgetDataResponse{
		WidgetID:    widgetID,
		Data:        rendered.Rows,
		Comparison:  rendered.Comparison,
		LastUpdated: s.clockNow(),
	}, nil
}

// --- Stale write guard ---

// Generation returns the session's current generation. Long-running work
// records it before starting and commits with CommitIfCurrent.
func (s *sessionService) Generation(ctx context.Context, uid, sessionID string) (uint64, error) {
	_, gen, err := s.position(uid, sessionID)
	return gen, err
}

// CommitIfCurrent runs fn under the session lock only if the session is still
// at generation gen. Otherwise the write is dropped with a ConflictError.
func (s *sessionService) CommitIfCurrent(ctx context.Context, uid, sessionID string, gen uint64, fn func(dept string) error) error {
	return s.with(uid, sessionID, func(sess *session) error {
		if sess.generation != gen {
			logger.FromContext(ctx).Warn("stale write dropped", "session_id", sessionID, "expected_generation", gen, "generation", sess.generation)
			return errs.NewConflictError("dashboard changed while the request was in flight")
		}
		return fn(sess.dept)
	})
}

// ---- Helpers ----

func (s *sessionService) lookup(uid, sessionID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	// Sessions of other users are reported as missing.
	if !ok || sess.uid != uid {
		return nil, errs.NewNotFoundError("session not found")
	}
	return sess, nil
}

func (s *sessionService) with(uid, sessionID string, fn func(sess *session) error) error {
	sess, err := s.lookup(uid, sessionID)
	if err != nil {
		return err
	}
	sess.lastUsed.Store(s.clockNow().UnixNano())
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastUsed.Store(s.clockNow().UnixNano())
	return fn(sess)
}

func (s *sessionService) position(uid, sessionID string) (string, uint64, error) {
	var dept string
	var gen uint64
	err := s.with(uid, sessionID, func(sess *session) error {
		dept, gen = sess.dept, sess.generation
		return nil
	})
	return dept, gen, err
}

func (sess *session) response() dto.SessionResponse {
	return dto.SessionResponse{
		SessionID:    sess.id,
		DepartmentID: sess.dept,
		Generation:   sess.generation,
		State:        sess.state.Snapshot(),
	}
}

// record keeps the latest interactions. Broadcasts only happen under sess.mu.
func (sess *session) record(in models.Interaction) error {
	if len(sess.recent) == recentInteractionCap {
		copy(sess.recent, sess.recent[1:])
		sess.recent = sess.recent[:recentInteractionCap-1]
	}
	sess.recent = append(sess.recent, in)
	return nil
}

// auditSubscriber records every interaction of a session.
func auditSubscriber(log *slog.Logger) bus.Subscriber {
	return func(in models.Interaction) error {
		log.Info("dashboard interaction",
			"type", in.Type,
			"action", in.Payload.Action,
			"source", in.SourceWidgetID,
			"targets", in.TargetWidgets,
			"field", in.Payload.Field,
			"timestamp", in.Timestamp,
		)
		return nil
	}
}
