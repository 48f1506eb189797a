package models

import "time"

// Insight is AI-generated commentary about one widget's data.
type Insight struct {
	InsightID  string    `firestore:"insightId" json:"insightId"`
	WidgetID   string    `firestore:"widgetId" json:"widgetId"`
	Department string    `firestore:"department" json:"department"`
	Text       string    `firestore:"text" json:"text"`
	Prompt     string    `firestore:"prompt,omitempty" json:"-"`
	CreatedBy  string    `firestore:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt  time.Time `firestore:"createdAt" json:"createdAt"`
	ExpiresAt  time.Time `firestore:"expiresAt,omitempty" json:"expiresAt,omitempty"`
}
