// ABOUTME: Shared test helpers plus tests for response and error mapping
// ABOUTME: Builds handlers against httptest fake upstream gallery servers

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artspark/gallery-bff/cache"
	"github.com/artspark/gallery-bff/config"
	"github.com/artspark/gallery-bff/middleware"
	"github.com/artspark/gallery-bff/models"
	"github.com/artspark/gallery-bff/services"
)

// newTestHandler builds a handler wired against the given upstream URL.
func newTestHandler(t *testing.T, upstreamURL string) *Handler {
	t.Helper()

	cfg := &config.Config{
		UpstreamAPIURL:  upstreamURL,
		UpstreamTimeout: 5 * time.Second,
		UploadTimeout:   5 * time.Second,
		MaxUploadMB:     10,
		SessionTTL:      time.Hour,
		CategoryTTL:     5 * time.Minute,
		CookieSecure:    false, // tests run over plain http
		AuthMode:        "optional",
		JWTSecret:       "test-secret-for-handlers",
		LogDir:          t.TempDir(),
	}

	c := cache.New(5 * time.Minute)
	return NewHandler(cfg, c)
}

// withSession creates a session directly and attaches its cookie to the request.
func withSession(t *testing.T, h *Handler, req *http.Request, user models.AuthUser, token string) *models.Session {
	t.Helper()

	session, err := h.sessions.Create(user, token)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: session.ID})
	return session
}

func testUser() models.AuthUser {
	return models.AuthUser{
		ID:       7,
		Username: "ada",
		Email:    "ada@example.com",
		Surname:  "Lovelace",
		Enabled:  true,
		Roles:    []string{models.RoleUser},
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

func TestWriteAPIError_KindMapping(t *testing.T) {
	tests := []struct {
		kind       services.ErrorKind
		wantStatus int
	}{
		{services.KindUnreachable, http.StatusBadGateway},
		{services.KindUnauthenticated, http.StatusUnauthorized},
		{services.KindForbidden, http.StatusForbidden},
		{services.KindNotFound, http.StatusNotFound},
		{services.KindValidationFailed, http.StatusUnprocessableEntity},
		{services.KindPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{services.KindUpstreamUnavailable, http.StatusServiceUnavailable},
		{services.KindUpstreamContractMismatch, http.StatusBadGateway},
		{services.KindMalformedData, http.StatusBadGateway},
	}

	h := NewHandler(nil, nil)
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			w := httptest.NewRecorder()
			h.writeAPIError(w, &services.APIError{Kind: tt.kind})

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}

			var body errorBody
			decodeBody(t, w, &body)
			if body.Error == "" {
				t.Error("Expected a user-safe error message")
			}
			if body.Code != tt.wantStatus {
				t.Errorf("Body code = %d, want %d", body.Code, tt.wantStatus)
			}
		})
	}
}

func TestWriteAPIError_RetryableFlag(t *testing.T) {
	h := NewHandler(nil, nil)

	w := httptest.NewRecorder()
	h.writeAPIError(w, &services.APIError{Kind: services.KindUpstreamUnavailable})
	var body errorBody
	decodeBody(t, w, &body)
	if !body.Retryable {
		t.Error("Unavailable upstream should be flagged retryable")
	}

	w = httptest.NewRecorder()
	h.writeAPIError(w, &services.APIError{Kind: services.KindForbidden})
	body = errorBody{}
	decodeBody(t, w, &body)
	if body.Retryable {
		t.Error("Forbidden should not be flagged retryable")
	}
}

func TestWriteAPIError_ValidationDetails(t *testing.T) {
	h := NewHandler(nil, nil)

	w := httptest.NewRecorder()
	h.writeAPIError(w, &services.APIError{
		Kind:            services.KindValidationFailed,
		UpstreamMessage: "title must not be blank",
		FieldErrors:     map[string][]string{"title": {"must not be blank"}},
	})

	var body errorBody
	decodeBody(t, w, &body)
	if body.Error != "title must not be blank" {
		t.Errorf("Error = %q, want the upstream validation message", body.Error)
	}
	if len(body.FieldErrors["title"]) != 1 {
		t.Errorf("FieldErrors = %v, want title entry", body.FieldErrors)
	}
}

func TestWriteAPIError_UnclassifiedError(t *testing.T) {
	h := NewHandler(nil, nil)

	w := httptest.NewRecorder()
	h.writeAPIError(w, http.ErrBodyNotAllowed)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", w.Code)
	}
	var body errorBody
	decodeBody(t, w, &body)
	if body.Error != "Internal error" {
		t.Errorf("Error = %q, want generic internal error", body.Error)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, "http://gallery.test/api")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}

	var body map[string]any
	decodeBody(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["gallery_api"] != "configured" {
		t.Errorf("gallery_api = %v, want configured", body["gallery_api"])
	}
	if body["ml_api"] != "not_configured" {
		t.Errorf("ml_api = %v, want not_configured", body["ml_api"])
	}
}

func TestRequireSession_NoCookie(t *testing.T) {
	h := newTestHandler(t, "http://gallery.test/api")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/artworks/mine", nil)
	w := httptest.NewRecorder()
	h.MyArtworks(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", w.Code)
	}
}

func TestRequireSession_StaleCookie(t *testing.T) {
	h := newTestHandler(t, "http://gallery.test/api")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/artworks/mine", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "no-such-session"})
	w := httptest.NewRecorder()
	h.MyArtworks(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", w.Code)
	}
}
