package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
)

type stubVerifier struct {
	token *auth.Token
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	return s.token, s.err
}

func TestFirebaseAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		verifier   *stubVerifier
		wantStatus int
	}{
		{"missing header", "", &stubVerifier{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", &stubVerifier{}, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", &stubVerifier{err: errors.New("expired")}, http.StatusUnauthorized},
		{"valid token", "Bearer good", &stubVerifier{token: &auth.Token{UID: "uid-1"}}, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotUID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUID = UID(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			NewMiddleware(tc.verifier).FirebaseAuth(next).ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if tc.wantStatus == http.StatusOK && gotUID != "uid-1" {
				t.Errorf("expected uid-1 in context, got %q", gotUID)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name       string
		claims     map[string]any
		wantStatus int
	}{
		{"no claim", nil, http.StatusForbidden},
		{"other permission", map[string]any{"permissions": []any{"insights:generate"}}, http.StatusForbidden},
		{"granted", map[string]any{"permissions": []any{"dashboard:view", "dashboard:edit"}}, http.StatusOK},
		{"wildcard", map[string]any{"permissions": []any{"*"}}, http.StatusOK},
		{"comma separated", map[string]any{"permissions": "dashboard:view,dashboard:edit"}, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			m := NewMiddleware(&stubVerifier{token: &auth.Token{UID: "u", Claims: tc.claims}})
			h := m.FirebaseAuth(RequirePermission(PermDashboardEdit)(ok))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Authorization", "Bearer t")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
		})
	}
}
