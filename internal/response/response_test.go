package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/insights-dashboard/internal/errs"
	"github.com/GregMSThompson/insights-dashboard/pkg/logger"
)

func newTestHandler() *responseHandler {
	return New(slog.New(logger.NewTestHandler(slog.LevelInfo)))
}

func TestHandleErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", errs.NewNotFoundError("widget not found"), http.StatusNotFound, "not_found"},
		{"already exists", errs.NewAlreadyExistsError("widget exists"), http.StatusConflict, "already_exists"},
		{"conflict", errs.NewConflictError("session moved"), http.StatusConflict, "conflict"},
		{"validation", errs.NewValidationError("title is required"), http.StatusBadRequest, "invalid_input"},
		{"permission", errs.NewPermissionError("no access"), http.StatusForbidden, "forbidden"},
		{"database", errs.NewDatabaseError("get widget", "boom", errors.New("rpc")), http.StatusInternalServerError, "internal_error"},
		{"transient upstream", errs.NewExternalServiceError("vertex", "busy", true, nil), http.StatusServiceUnavailable, "service_unavailable"},
		{"permanent upstream", errs.NewExternalServiceError("vertex", "bad", false, nil), http.StatusBadGateway, "service_unavailable"},
		{"syntax", &json.SyntaxError{}, http.StatusBadRequest, "invalid_input"},
		{"unknown", errors.New("???"), http.StatusInternalServerError, "internal_error"},
	}
	h := newTestHandler()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.HandleError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Code != tc.wantBody {
				t.Errorf("expected code %q, got %q", tc.wantBody, body.Code)
			}
		})
	}
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestHandler().WriteSuccess(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, map[string]string{"id": "w1"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var env struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !env.Success || env.Data["id"] != "w1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
