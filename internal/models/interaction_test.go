package models

import (
	"encoding/json"
	"testing"
)

func TestTargetIDs_UnmarshalForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want TargetIDs
	}{
		{"broadcast", `"all"`, TargetIDs{TargetAll}},
		{"single id", `"w1"`, TargetIDs{"w1"}},
		{"array", `["w1","w2"]`, TargetIDs{"w1", "w2"}},
		{"empty string", `""`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TargetIDs
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestTargetIDs_RejectsOtherShapes(t *testing.T) {
	var got TargetIDs
	if err := json.Unmarshal([]byte(`{"id":"w1"}`), &got); err == nil {
		t.Fatal("expected error for object")
	}
}

func TestTargetIDs_MarshalBroadcastAsString(t *testing.T) {
	b, err := json.Marshal(Interaction{Type: InteractionHover, TargetWidgets: TargetIDs{TargetAll}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["targetWidgetIds"]) != `"all"` {
		t.Errorf("expected \"all\", got %s", raw["targetWidgetIds"])
	}

	b, err = json.Marshal(TargetIDs{"w1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["w1"]` {
		t.Errorf("expected [\"w1\"], got %s", b)
	}
}

func TestInteractionTargets(t *testing.T) {
	in := Interaction{TargetWidgets: TargetIDs{"w1", "w2"}}
	if !in.Targets("w2") || in.Targets("w3") {
		t.Errorf("unexpected targeting for %v", in.TargetWidgets)
	}
	if !(Interaction{TargetWidgets: TargetIDs{TargetAll}}).Targets("w3") {
		t.Error("expected broadcast to reach every widget")
	}
}
