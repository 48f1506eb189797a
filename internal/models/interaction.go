package models

import (
	"encoding/json"
	"fmt"
)

// Interaction types.
const (
	InteractionClick     = "click"
	InteractionHover     = "hover"
	InteractionSelect    = "select"
	InteractionFilter    = "filter"
	InteractionDrillDown = "drill-down"
)

// TargetAll addresses every widget on the dashboard.
const TargetAll = "all"

// Interaction is a single cross-widget event. Timestamp is epoch milliseconds,
// stamped by the bus when the event is broadcast.
type Interaction struct {
	Type           string   `json:"type"`
	SourceWidgetID string   `json:"sourceWidgetId"`
	TargetWidgets  TargetIDs `json:"targetWidgetIds"`
	Payload        Payload   `json:"payload"`
	Timestamp      int64     `json:"timestamp"`
}

// TargetIDs lists the widgets an interaction is meant for. In JSON it is
// either "all", a single widget id, or an array of widget ids.
type TargetIDs []string

func (t TargetIDs) MarshalJSON() ([]byte, error) {
	if len(t) == 1 && t[0] == TargetAll {
		return json.Marshal(TargetAll)
	}
	return json.Marshal([]string(t))
}

func (t *TargetIDs) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		if single == "" {
			*t = nil
		} else {
			*t = TargetIDs{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("targetWidgetIds must be \"all\", a widget id or an array of widget ids")
	}
	*t = many
	return nil
}

type Payload struct {
	Field     string `json:"field,omitempty"`
	Value     any    `json:"value,omitempty"`
	DataPoint any    `json:"dataPoint,omitempty"`
	Action    string `json:"action,omitempty"`
}

// Targets reports whether widgetID is an intended recipient of the interaction.
func (i Interaction) Targets(widgetID string) bool {
	for _, t := range i.TargetWidgets {
		if t == TargetAll || t == widgetID {
			return true
		}
	}
	return false
}
