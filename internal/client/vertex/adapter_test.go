package vertexclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/insights-dashboard/internal/errs"
)

func TestParseTextResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content:      &genai.Content{Parts: []genai.Part{genai.Text("Sales rose "), genai.Text("12%. ")}},
				FinishReason: genai.FinishReasonStop,
			},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}

	text, reason := parseTextResponse(resp)
	if text != "Sales rose 12%." {
		t.Errorf("unexpected text: %q", text)
	}
	if reason != genai.FinishReasonStop.String() {
		t.Errorf("unexpected finish reason: %q", reason)
	}

	if text, _ := parseTextResponse(nil); text != "" {
		t.Errorf("expected empty text for nil response, got %q", text)
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
		external  bool
	}{
		{"unavailable", status.Error(codes.Unavailable, "down"), true, true},
		{"quota", status.Error(codes.ResourceExhausted, "quota"), true, true},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true, true},
		{"internal", status.Error(codes.Internal, "bug"), false, true},
		{"plain", errors.New("boom"), false, true},
		{"invalid", status.Error(codes.InvalidArgument, "bad"), false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := wrapError(tc.err)
			ext, ok := got.(*errs.ExternalServiceError)
			if ok != tc.external {
				t.Fatalf("expected external=%v, got %T", tc.external, got)
			}
			if ok && ext.Transient != tc.transient {
				t.Errorf("expected transient=%v, got %v", tc.transient, ext.Transient)
			}
		})
	}
}
