// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their methods, handlers, and policy hints

package handlers

import "net/http"

// Rate limit classes. main.go maps each class to its own limiter.
const (
	LimitAuth    = "auth"
	LimitUpload  = "upload"
	LimitWrite   = "write"
	LimitDefault = "default"
)

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method    string           // HTTP method (GET, POST, etc.)
	Path      string           // URL path (e.g., "/api/v1/health")
	Handler   http.HandlerFunc // Handler function
	Limit     string           // Rate limit class (defaults to LimitDefault)
	AdminOnly bool             // Requires ROLE_ADMIN
}

// Routes returns all API routes for registration under /api/v1/.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},

		// Auth
		{Method: http.MethodPost, Path: "/api/v1/auth/login", Handler: h.Login, Limit: LimitAuth},
		{Method: http.MethodPost, Path: "/api/v1/auth/register", Handler: h.Register, Limit: LimitAuth},
		{Method: http.MethodPost, Path: "/api/v1/auth/logout", Handler: h.Logout},
		{Method: http.MethodGet, Path: "/api/v1/auth/me", Handler: h.Me},

		// Artworks
		{Method: http.MethodGet, Path: "/api/v1/artworks", Handler: h.ListArtworks},
		{Method: http.MethodGet, Path: "/api/v1/artworks/{id}", Handler: h.GetArtwork},
		{Method: http.MethodGet, Path: "/api/v1/artworks/mine", Handler: h.MyArtworks},
		{Method: http.MethodPost, Path: "/api/v1/artworks", Handler: h.CreateArtwork, Limit: LimitUpload},
		{Method: http.MethodDelete, Path: "/api/v1/artworks/{id}", Handler: h.DeleteArtwork, Limit: LimitWrite},

		// Interactions
		{Method: http.MethodPost, Path: "/api/v1/artworks/{id}/like", Handler: h.ToggleLike, Limit: LimitWrite},
		{Method: http.MethodPost, Path: "/api/v1/artworks/{id}/comments", Handler: h.AddComment, Limit: LimitWrite},
		{Method: http.MethodDelete, Path: "/api/v1/comments/{id}", Handler: h.DeleteComment, Limit: LimitWrite},

		// Categories
		{Method: http.MethodGet, Path: "/api/v1/categories", Handler: h.Categories},

		// Prompt analysis
		{Method: http.MethodPost, Path: "/api/v1/ml/analyze", Handler: h.AnalyzePrompt, Limit: LimitWrite},

		// Admin
		{Method: http.MethodGet, Path: "/api/v1/admin/dashboard", Handler: h.AdminDashboard, AdminOnly: true},
		{Method: http.MethodGet, Path: "/api/v1/admin/views/{viewName}", Handler: h.AdminView, AdminOnly: true},
		{Method: http.MethodGet, Path: "/api/v1/admin/logs", Handler: h.ListLogs, AdminOnly: true},
		{Method: http.MethodGet, Path: "/api/v1/admin/logs/{name}", Handler: h.ViewLog, AdminOnly: true},
		{Method: http.MethodGet, Path: "/api/v1/admin/logs/{name}/download", Handler: h.DownloadLog, AdminOnly: true},
		{Method: http.MethodPost, Path: "/api/v1/admin/logs/{name}/clear", Handler: h.ClearLog, AdminOnly: true, Limit: LimitWrite},
		{Method: http.MethodDelete, Path: "/api/v1/admin/logs/{name}", Handler: h.DeleteLog, AdminOnly: true, Limit: LimitWrite},

		// Documentation
		{Method: http.MethodGet, Path: "/api/v1/openapi.yaml", Handler: h.OpenAPISpec},
	}
}
