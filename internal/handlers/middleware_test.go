package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"door_controller/internal/service"
)

func TestAdminMiddleware_MissingHeader(t *testing.T) {
	s := &service.Service{Monitoring: &mockMonitoring{}, PortalAuth: &mockAuth{}}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminMiddleware_MalformedHeader(t *testing.T) {
	s := &service.Service{Monitoring: &mockMonitoring{}, PortalAuth: &mockAuth{}}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a non-Bearer scheme, got %d", w.Code)
	}
}

func TestAdminMiddleware_InvalidToken(t *testing.T) {
	auth := &mockAuth{parseErr: errors.New("expired")}
	s := &service.Service{Monitoring: &mockMonitoring{}, PortalAuth: auth}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header = authHeader("bad")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if auth.lastParsed != "bad" {
		t.Fatalf("token not forwarded to ParseToken: %q", auth.lastParsed)
	}
}

func TestAdminMiddleware_ValidToken(t *testing.T) {
	s := &service.Service{Monitoring: &mockMonitoring{}, PortalAuth: &mockAuth{}}
	r := newTestRouter(s)

	w := doAuthed(r, http.MethodGet, "/api/v1/status")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d", w.Code)
	}
}
