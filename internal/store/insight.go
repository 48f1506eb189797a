package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/GregMSThompson/insights-dashboard/internal/errs"
	"github.com/GregMSThompson/insights-dashboard/internal/models"
)

type insightStore struct {
	client *firestore.Client
}

func NewInsightStore(client *firestore.Client) *insightStore {
	return &insightStore{client: client}
}

// Insight documents carry expiresAt, which the Firestore TTL policy deployed
// by infra/ uses to delete them.
func (s *insightStore) collection(dept string) *firestore.CollectionRef {
	return s.client.Collection("departments").Doc(dept).Collection("insights")
}

func (s *insightStore) Save(ctx context.Context, dept string, in *models.Insight) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	_, err := s.collection(dept).Doc(in.InsightID).Set(ctx, in)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to save insight", err)
	}
	return nil
}

// List returns the newest insights first, optionally only those for widgetID.
func (s *insightStore) List(ctx context.Context, dept, widgetID string, limit int) ([]models.Insight, error) {
	query := s.collection(dept).Query
	if widgetID != "" {
		query = query.Where("widgetId", "==", widgetID)
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	now := time.Now()
	out := []models.Insight{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list insights", err)
		}
		var in models.Insight
		if err := doc.DataTo(&in); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse insight data", err)
		}
		// TTL deletion is lazy; hide documents that have already expired.
		if !in.ExpiresAt.IsZero() && in.ExpiresAt.Before(now) {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}
