package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/insights-dashboard/internal/errs"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
	"github.com/GregMSThompson/insights-dashboard/pkg/logger"
)

type widgetStore struct {
	client *firestore.Client
}

func NewWidgetStore(client *firestore.Client) *widgetStore {
	return &widgetStore{client: client}
}

func (s *widgetStore) collection(dept string) *firestore.CollectionRef {
	return s.client.Collection("departments").Doc(dept).Collection("widgets")
}

func (s *widgetStore) Create(ctx context.Context, dept string, w *models.Widget) error {
	now := time.Now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	_, err := s.collection(dept).Doc(w.WidgetID).Create(ctx, w)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewAlreadyExistsError("widget already exists")
		}
		return errs.NewDatabaseError("create", "failed to create widget", err)
	}
	return nil
}

func (s *widgetStore) Get(ctx context.Context, dept, widgetID string) (*models.Widget, error) {
	doc, err := s.collection(dept).Doc(widgetID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("widget not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get widget", err)
	}
	var w models.Widget
	if err := doc.DataTo(&w); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse widget data", err)
	}
	return &w, nil
}

// List returns the department's widgets in layout order.
func (s *widgetStore) List(ctx context.Context, dept string) ([]*models.Widget, error) {
	docs, err := s.collection(dept).OrderBy("position", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list widgets", err)
	}
	widgets := make([]*models.Widget, 0, len(docs))
	for _, d := range docs {
		var w models.Widget
		if err := d.DataTo(&w); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse widget data", err)
		}
		widgets = append(widgets, &w)
	}
	return widgets, nil
}

func (s *widgetStore) Update(ctx context.Context, dept string, w *models.Widget) error {
	w.UpdatedAt = time.Now()
	_, err := s.collection(dept).Doc(w.WidgetID).Set(ctx, w)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update widget", err)
	}
	return nil
}

func (s *widgetStore) Delete(ctx context.Context, dept, widgetID string) error {
	_, err := s.collection(dept).Doc(widgetID).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete widget", err)
	}
	return nil
}

func (s *widgetStore) Count(ctx context.Context, dept string) (int, error) {
	docs, err := s.collection(dept).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, errs.NewDatabaseError("read", "failed to count widgets", err)
	}
	return len(docs), nil
}

type bulkPositionJob struct {
	widgetID string
	job      *firestore.BulkWriterJob
}

// positionWriter is the part of *firestore.BulkWriter used for reordering.
type positionWriter interface {
	Update(doc *firestore.DocumentRef, updates []firestore.Update, preconds ...firestore.Precondition) (*firestore.BulkWriterJob, error)
	End()
}

func (s *widgetStore) BulkUpdatePositions(ctx context.Context, dept string, positions map[string]int) error {
	log := logger.FromContext(ctx)
	jobs, err := schedulePositions(s.client.BulkWriter(ctx), s.collection(dept), positions, time.Now())
	if err != nil {
		return err
	}

	for _, entry := range jobs {
		if _, err := entry.job.Results(); err != nil {
			log.Error("failed to update widget position", "widget_id", entry.widgetID, "error", err)
			if status.Code(err) == codes.NotFound {
				return errs.NewNotFoundError("widget not found: " + entry.widgetID)
			}
			return errs.NewDatabaseError("update", "failed to update widget position", err)
		}
	}
	return nil
}

// schedulePositions queues one update per widget and always ends bw, so the
// writer is flushed and released even when scheduling fails part way.
func schedulePositions(bw positionWriter, coll *firestore.CollectionRef, positions map[string]int, now time.Time) ([]bulkPositionJob, error) {
	defer bw.End()

	jobs := make([]bulkPositionJob, 0, len(positions))
	for widgetID, pos := range positions {
		j, err := bw.Update(coll.Doc(widgetID), []firestore.Update{
			{Path: "position", Value: pos},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			return nil, errs.NewDatabaseError("update", "failed to schedule position update", err)
		}
		jobs = append(jobs, bulkPositionJob{widgetID: widgetID, job: j})
	}
	return jobs, nil
}
