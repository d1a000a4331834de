// ABOUTME: Entry point for the gallery BFF service
// ABOUTME: Wires config, cache, handlers, and the middleware stack onto an HTTP server

package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/artspark/gallery-bff/cache"
	"github.com/artspark/gallery-bff/config"
	"github.com/artspark/gallery-bff/handlers"
	"github.com/artspark/gallery-bff/logger"
	"github.com/artspark/gallery-bff/middleware"
	"github.com/artspark/gallery-bff/models"
)

func main() {
	// Initialize structured logging
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting Gallery BFF")
	slog.Info("Upstream gallery API configured", "url", cfg.UpstreamAPIURL)
	if cfg.MLConfigured() {
		slog.Info("Prompt analysis configured", "url", cfg.MLAPIURL)
	} else {
		slog.Info("Prompt analysis not configured, /ml endpoints disabled")
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, Bearer identity assertions disabled")
	}

	// Initialize cache
	c := cache.New(cfg.CacheTTL)
	slog.Info("Cache initialized", "ttl", cfg.CacheTTL)

	// Initialize handlers
	h := handlers.NewHandler(cfg, c)

	authMode, err := middleware.ValidateAuthMode(cfg.AuthMode)
	if err != nil {
		slog.Error("Invalid auth mode", "error", err)
		os.Exit(1)
	}
	authCfg := middleware.AuthConfig{
		Mode:             authMode,
		SessionValidator: sessionValidator(h),
		Identity:         h.IdentityCodec(),
	}

	limiters := newLimiters(cfg)

	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		mux.HandleFunc(route.Method+" "+route.Path, wrap(route, cfg, authCfg, limiters))
	}
	// Method-qualified patterns never match OPTIONS, so preflights need
	// their own registration for the CORS middleware to answer.
	mux.HandleFunc("OPTIONS /api/v1/", middleware.CORS(cfg.CORSAllowedOrigins)(func(http.ResponseWriter, *http.Request) {}))

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// wrap applies the middleware stack to one route. Order is outermost first:
// logging wraps everything, RBAC sits closest to the handler. Auth runs
// before the rate limiter so per-user keys can read the resolved claims.
func wrap(route handlers.Route, cfg *config.Config, authCfg middleware.AuthConfig, limiters map[string]*middleware.RateLimiter) http.HandlerFunc {
	mws := []func(http.HandlerFunc) http.HandlerFunc{
		middleware.LogRequest,
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.CSRF(),
		middleware.Auth(authCfg),
	}

	if limiter := limiters[limitClass(route)]; limiter != nil {
		mws = append(mws, middleware.RateLimit(limiter, limitKeyFunc(route)))
	}

	if route.AdminOnly {
		mws = append(mws, middleware.RequireRole(models.RoleAdmin))
	}

	return middleware.Chain(route.Handler, mws...)
}

// newLimiters builds one fixed-window limiter per rate limit class so a
// burst of uploads cannot starve reads. Returns nil limiters when disabled.
func newLimiters(cfg *config.Config) map[string]*middleware.RateLimiter {
	if !cfg.RateLimitEnabled {
		slog.Warn("Rate limiting disabled")
		return map[string]*middleware.RateLimiter{}
	}

	window := time.Minute
	return map[string]*middleware.RateLimiter{
		handlers.LimitAuth:    middleware.NewRateLimiter(cfg.RateLimitAuth, window),
		handlers.LimitUpload:  middleware.NewRateLimiter(cfg.RateLimitUpload, window),
		handlers.LimitWrite:   middleware.NewRateLimiter(cfg.RateLimitWrite, window),
		handlers.LimitDefault: middleware.NewRateLimiter(cfg.RateLimitDefault, window),
	}
}

func limitClass(route handlers.Route) string {
	if route.Limit == "" {
		return handlers.LimitDefault
	}
	return route.Limit
}

// limitKeyFunc picks the rate limit key per class. Auth endpoints key on the
// client IP because the caller has no session yet; everything else keys on
// the authenticated user, falling back to IP.
func limitKeyFunc(route handlers.Route) func(*http.Request) string {
	if limitClass(route) == handlers.LimitAuth {
		return middleware.ClientIP
	}
	return middleware.UserOrIP
}

// sessionValidator adapts the session store to the auth middleware. A nil
// return means the cookie is stale and the caller is anonymous.
func sessionValidator(h *handlers.Handler) middleware.SessionValidatorFunc {
	sessions := h.SessionService()
	if sessions == nil {
		return nil
	}
	return func(sessionID string) *middleware.UserClaims {
		session, err := sessions.Get(sessionID)
		if err != nil {
			return nil
		}
		return &middleware.UserClaims{
			UserID:   session.UserID,
			Username: session.Username,
			Roles:    session.Roles,
		}
	}
}
