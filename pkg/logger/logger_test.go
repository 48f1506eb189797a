package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestGetSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := getSlogLevel(in); got != want {
			t.Errorf("getSlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCloudRunHandlerWritesSeverityAndData(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(&CloudRunHandler{level: slog.LevelInfo, out: &buf}).With("session_id", "s1")

	log.Debug("hidden")
	log.Warn("filter operator unknown", "operator", "like")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["severity"] != "WARNING" || entry["message"] != "filter operator unknown" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	data, _ := entry["data"].(map[string]any)
	if data["operator"] != "like" || data["session_id"] != "s1" {
		t.Fatalf("unexpected data: %v", data)
	}
}

func TestContextRoundTrip(t *testing.T) {
	log := slog.New(NewTestHandler(slog.LevelInfo))
	ctx := ToContext(context.Background(), log)
	if FromContext(ctx) != log {
		t.Fatal("expected the stored logger back")
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("expected a default logger")
	}

	enriched, ctx := With(ctx, "widget_id", "w1")
	if FromContext(ctx) != enriched {
		t.Fatal("expected With to store the enriched logger")
	}
}
