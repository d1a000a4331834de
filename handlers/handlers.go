// ABOUTME: HTTP handlers for the gallery BFF API endpoints
// ABOUTME: Holds handler wiring plus shared response and session helpers

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/artspark/gallery-bff/cache"
	"github.com/artspark/gallery-bff/config"
	"github.com/artspark/gallery-bff/middleware"
	"github.com/artspark/gallery-bff/models"
	"github.com/artspark/gallery-bff/services"
)

type Handler struct {
	cfg      *config.Config
	cache    *cache.Cache
	api      *services.GalleryClient
	ml       *services.MLClient
	sessions *services.SessionService
	catalog  *services.CatalogService
	identity *middleware.IdentityCodec
}

func NewHandler(cfg *config.Config, c *cache.Cache) *Handler {
	h := &Handler{
		cfg:   cfg,
		cache: c,
	}

	// Config is optional (for testing)
	if cfg != nil {
		h.api = services.NewGalleryClient(services.ClientConfig{
			BaseURL:            cfg.UpstreamAPIURL,
			Timeout:            cfg.UpstreamTimeout,
			UploadTimeout:      cfg.UploadTimeout,
			MaxUploadBytes:     cfg.MaxUploadBytes(),
			ProxyURL:           cfg.UpstreamProxyURL,
			InsecureSkipVerify: cfg.UpstreamSkipSSLValidation,
		})
		h.sessions = services.NewSessionService(c, cfg.SessionTTL)
		h.catalog = services.NewCatalogService(h.api, c, cfg.CategoryTTL)

		// ML prompt analysis is optional
		if cfg.MLConfigured() {
			h.ml = services.NewMLClient(cfg.MLAPIURL, cfg.MLTimeout)
		}

		if cfg.JWTSecret != "" {
			h.identity = middleware.NewIdentityCodec(cfg.JWTSecret, cfg.SessionTTL)
		}
	}

	return h
}

// SetGalleryClient replaces the upstream client (for testing).
func (h *Handler) SetGalleryClient(api *services.GalleryClient) {
	h.api = api
	if h.cache != nil && h.cfg != nil {
		h.catalog = services.NewCatalogService(api, h.cache, h.cfg.CategoryTTL)
	}
}

// SetSessionService replaces the session service (for testing).
func (h *Handler) SetSessionService(s *services.SessionService) {
	h.sessions = s
}

// SetMLClient replaces the prompt analysis client (for testing).
func (h *Handler) SetMLClient(ml *services.MLClient) {
	h.ml = ml
}

// SessionService exposes the session service for auth middleware wiring.
func (h *Handler) SessionService() *services.SessionService {
	return h.sessions
}

// IdentityCodec exposes the identity codec for auth middleware wiring.
func (h *Handler) IdentityCodec() *middleware.IdentityCodec {
	return h.identity
}

// errorBody is the JSON error shape returned by all handlers.
type errorBody struct {
	Error       string              `json:"error"`
	Code        int                 `json:"code"`
	Retryable   bool                `json:"retryable,omitempty"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, errorBody{Error: message, Code: code})
}

// writeAPIError maps a classified upstream error to an HTTP status and a
// user-safe message. Raw upstream bodies never reach the client except for
// validation messages, which are meant for the user.
func (h *Handler) writeAPIError(w http.ResponseWriter, err error) {
	apiErr, ok := services.AsAPIError(err)
	if !ok {
		slog.Error("Unclassified handler error", "error", err)
		h.writeError(w, "Internal error", http.StatusInternalServerError)
		return
	}

	status, message := errorPresentation(apiErr)
	body := errorBody{
		Error:     message,
		Code:      status,
		Retryable: apiErr.Retryable(),
	}
	if apiErr.Kind == services.KindValidationFailed {
		body.FieldErrors = apiErr.FieldErrors
	}
	h.writeJSON(w, status, body)
}

func errorPresentation(apiErr *services.APIError) (int, string) {
	switch apiErr.Kind {
	case services.KindUnreachable:
		return http.StatusBadGateway, "Gallery service is unreachable"
	case services.KindUnauthenticated:
		return http.StatusUnauthorized, "Authentication required"
	case services.KindForbidden:
		return http.StatusForbidden, "You do not have permission to perform this action"
	case services.KindNotFound:
		return http.StatusNotFound, "Not found"
	case services.KindValidationFailed:
		message := apiErr.UpstreamMessage
		if message == "" {
			message = "Validation failed"
		}
		return http.StatusUnprocessableEntity, message
	case services.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge, "Image exceeds the upload size limit"
	case services.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable, "Gallery service is temporarily unavailable"
	case services.KindMalformedData:
		return http.StatusBadGateway, "Gallery service returned unreadable data"
	default:
		return http.StatusBadGateway, "Unexpected response from gallery service"
	}
}

// userFacingMessage renders a classified error for degraded read responses.
func userFacingMessage(err error) string {
	if apiErr, ok := services.AsAPIError(err); ok {
		_, message := errorPresentation(apiErr)
		return message
	}
	return "Internal error"
}

// sessionFromCookie retrieves the server-side session for the request.
// Returns nil for anonymous callers and invalid or expired sessions.
func (h *Handler) sessionFromCookie(r *http.Request) *models.Session {
	if h.sessions == nil {
		return nil
	}

	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	session, err := h.sessions.Get(cookie.Value)
	if err != nil {
		return nil
	}
	return session
}

// requireSession resolves the session or writes a 401. Operations needing
// identity short-circuit here before any upstream I/O.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) *models.Session {
	session := h.sessionFromCookie(r)
	if session == nil {
		slog.Debug("Request rejected: no valid session", "path", r.URL.Path)
		h.writeError(w, "Authentication required", http.StatusUnauthorized)
		return nil
	}
	return session
}

// sessionToken returns the upstream bearer token for the caller, or "" for
// anonymous requests.
func (h *Handler) sessionToken(r *http.Request) string {
	if session := h.sessionFromCookie(r); session != nil {
		return session.AccessToken
	}
	return ""
}

// decodeJSON decodes a bounded JSON request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false
	}
	return true
}
