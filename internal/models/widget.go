package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Widget is a single dashboard tile and the dataset it renders, stored in Firestore
// under its department.
type Widget struct {
	WidgetID    string    `firestore:"widgetId" json:"id"`
	Type        string    `firestore:"type" json:"type"`
	Title       string    `firestore:"title" json:"title"`
	Description string    `firestore:"description,omitempty" json:"description,omitempty"`
	Data        []Record  `firestore:"data" json:"data"`
	DataKey     DataKeys  `firestore:"dataKey" json:"dataKey"`
	CategoryKey string    `firestore:"categoryKey,omitempty" json:"categoryKey,omitempty"`
	DateKey     string    `firestore:"dateKey,omitempty" json:"dateKey,omitempty"`   // optional field holding the row date
	GridSpan    int       `firestore:"gridSpan,omitempty" json:"gridSpan,omitempty"` // 1..12
	Colors      []string  `firestore:"colors,omitempty" json:"colors,omitempty"`
	Stack       bool      `firestore:"stack,omitempty" json:"stack,omitempty"`
	Goal        *float64  `firestore:"goal,omitempty" json:"goal,omitempty"`
	Forecast    bool      `firestore:"forecast,omitempty" json:"forecast,omitempty"`
	Position    int       `firestore:"position" json:"position"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// DataKeys holds the measure field(s) a widget plots. In JSON it is either a
// single string or an array of strings.
type DataKeys []string

func (k DataKeys) MarshalJSON() ([]byte, error) {
	if len(k) == 1 {
		return json.Marshal(k[0])
	}
	return json.Marshal([]string(k))
}

func (k *DataKeys) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		if single == "" {
			*k = nil
		} else {
			*k = DataKeys{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("dataKey must be a string or an array of strings")
	}
	*k = many
	return nil
}

// Primary returns the first data key, or "" if none is configured.
func (k DataKeys) Primary() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}
