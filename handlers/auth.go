// ABOUTME: Auth handlers implementing the BFF session pattern
// ABOUTME: Handles login, register, logout, and session introspection with httpOnly cookies

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/artspark/gallery-bff/middleware"
	"github.com/artspark/gallery-bff/models"
	"github.com/artspark/gallery-bff/services"
)

// logoutTimeout bounds the best-effort upstream logout call.
const logoutTimeout = 5 * time.Second

// Login authenticates against the gallery API and creates a server-side session
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		h.writeError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.api.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apiErr, ok := services.AsAPIError(err); ok {
			switch apiErr.Kind {
			case services.KindUnauthenticated, services.KindForbidden, services.KindValidationFailed:
				slog.Warn("Login failed", "email", req.Email)
				h.writeJSON(w, http.StatusUnauthorized, models.LoginResponse{
					Success: false,
					Error:   "Invalid credentials",
				})
				return
			}
		}
		slog.Error("Login upstream error", "error", err)
		h.writeAPIError(w, err)
		return
	}

	// Create session (stores the upstream token server-side)
	session, err := h.sessions.Create(result.User, result.Token)
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		h.writeError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.setSessionCookies(w, session)

	resp := models.LoginResponse{
		Success:  true,
		Username: result.User.Username,
		UserID:   result.User.ID,
		Roles:    result.User.Roles,
	}

	// Identity assertion for clients that authenticate via Authorization
	// header instead of cookies. Optional: requires JWT_SECRET.
	if h.identity != nil {
		token, err := h.identity.Mint(&middleware.UserClaims{
			UserID:   result.User.ID,
			Username: result.User.Username,
			Roles:    result.User.Roles,
		})
		if err != nil {
			slog.Error("Failed to mint identity assertion", "error", err)
		} else {
			resp.Token = token
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Register creates a new account upstream. No session is created; the user
// logs in afterwards.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.writeError(w, "Username, email, and password are required", http.StatusBadRequest)
		return
	}

	message, err := h.api.Register(r.Context(), req)
	if err != nil {
		if apiErr, ok := services.AsAPIError(err); ok && apiErr.Kind == services.KindValidationFailed {
			resp := models.RegisterResponse{
				Success:     false,
				Error:       apiErr.UpstreamMessage,
				FieldErrors: apiErr.FieldErrors,
			}
			if resp.Error == "" {
				resp.Error = "Registration failed"
			}
			h.writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		slog.Error("Register upstream error", "error", err)
		h.writeAPIError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, models.RegisterResponse{
		Success: true,
		Message: message,
	})
}

// Logout destroys the session and clears cookies. Local teardown is
// unconditional; the upstream call is best effort and its failure never
// blocks the logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var token string

	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" && h.sessions != nil {
		if session, err := h.sessions.Get(cookie.Value); err == nil {
			token = session.AccessToken
		}
		h.sessions.Delete(cookie.Value)
	}

	h.clearSessionCookies(w)

	if token != "" && h.api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
		defer cancel()
		if err := h.api.Logout(ctx, token); err != nil {
			slog.Debug("Upstream logout failed", "error", err)
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the current user's authentication status. The session is
// revalidated upstream; a 401 there means the token died early and the
// session is torn down.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session := h.sessionFromCookie(r)
	if session == nil {
		h.writeJSON(w, http.StatusOK, models.UserInfoResponse{
			Authenticated: false,
		})
		return
	}

	user, err := h.api.CurrentUser(r.Context(), session.AccessToken)
	if err != nil {
		if apiErr, ok := services.AsAPIError(err); ok && apiErr.Kind == services.KindUnauthenticated {
			slog.Debug("Upstream rejected session token, destroying session", "user", session.Username)
			h.sessions.Delete(session.ID)
			h.clearSessionCookies(w)
			h.writeJSON(w, http.StatusOK, models.UserInfoResponse{
				Authenticated: false,
			})
			return
		}

		// Upstream trouble does not log the user out; answer from the session.
		slog.Warn("Upstream /auth/me failed, answering from session", "error", err)
		h.writeJSON(w, http.StatusOK, models.UserInfoResponse{
			Authenticated: true,
			UserID:        session.UserID,
			Username:      session.Username,
			Email:         session.Email,
			Surname:       session.Surname,
			Roles:         session.Roles,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, models.UserInfoResponse{
		Authenticated: true,
		UserID:        user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Surname:       user.Surname,
		Roles:         user.Roles,
	})
}

// setSessionCookies sets the httpOnly session cookie and the JS-readable
// CSRF cookie for the double-submit check.
func (h *Handler) setSessionCookies(w http.ResponseWriter, session *models.Session) {
	secure := true
	maxAge := 3600
	if h.cfg != nil {
		secure = h.cfg.CookieSecure
		if h.cfg.SessionTTL > 0 {
			maxAge = int(h.cfg.SessionTTL.Seconds())
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.ID,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    session.CSRFToken,
		HttpOnly: false, // frontend reads it back as X-CSRF-Token
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}

// clearSessionCookies removes both auth cookies.
func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	secure := true
	if h.cfg != nil {
		secure = h.cfg.CookieSecure
	}

	for _, name := range []string{middleware.SessionCookieName, middleware.CSRFCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			HttpOnly: name == middleware.SessionCookieName,
			Secure:   secure,
			SameSite: http.SameSiteStrictMode,
			Path:     "/",
			MaxAge:   -1,
		})
	}
}
