// ABOUTME: Test helpers for e2e tests
// ABOUTME: Builds a fully wired BFF server with the production middleware chain

package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/artspark/gallery-bff/cache"
	"github.com/artspark/gallery-bff/config"
	"github.com/artspark/gallery-bff/handlers"
	"github.com/artspark/gallery-bff/middleware"
	"github.com/artspark/gallery-bff/models"
)

// testConfig returns a config pointed at the given upstream with settings
// suitable for tests. Callers mutate the result before starting the server.
func testConfig(upstreamURL string) *config.Config {
	return &config.Config{
		Port:             "0",
		AuthMode:         "optional",
		CookieSecure:     false,
		SessionTTL:       time.Hour,
		CacheTTL:         5 * time.Minute,
		CategoryTTL:      5 * time.Minute,
		JWTSecret:        "e2e-signing-secret",
		RateLimitEnabled: false,
		RateLimitAuth:    5,
		RateLimitUpload:  10,
		RateLimitWrite:   30,
		RateLimitDefault: 100,
		UpstreamAPIURL:   upstreamURL,
		UpstreamTimeout:  5 * time.Second,
		UploadTimeout:    5 * time.Second,
		MaxUploadMB:      10,
		MLTimeout:        5 * time.Second,
	}
}

// startBFF wires handlers and the full middleware stack the way main.go does
// and serves them from an httptest server.
func startBFF(t *testing.T, cfg *config.Config) (*httptest.Server, *handlers.Handler) {
	t.Helper()

	if cfg.LogDir == "" {
		cfg.LogDir = t.TempDir()
	}

	c := cache.New(cfg.CacheTTL)
	h := handlers.NewHandler(cfg, c)

	authMode, err := middleware.ValidateAuthMode(cfg.AuthMode)
	if err != nil {
		t.Fatalf("Invalid auth mode: %v", err)
	}
	sessions := h.SessionService()
	authCfg := middleware.AuthConfig{
		Mode: authMode,
		SessionValidator: func(sessionID string) *middleware.UserClaims {
			session, err := sessions.Get(sessionID)
			if err != nil {
				return nil
			}
			return &middleware.UserClaims{
				UserID:   session.UserID,
				Username: session.Username,
				Roles:    session.Roles,
			}
		},
		Identity: h.IdentityCodec(),
	}

	limiters := map[string]*middleware.RateLimiter{}
	if cfg.RateLimitEnabled {
		limiters[handlers.LimitAuth] = middleware.NewRateLimiter(cfg.RateLimitAuth, time.Minute)
		limiters[handlers.LimitUpload] = middleware.NewRateLimiter(cfg.RateLimitUpload, time.Minute)
		limiters[handlers.LimitWrite] = middleware.NewRateLimiter(cfg.RateLimitWrite, time.Minute)
		limiters[handlers.LimitDefault] = middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
	}

	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		limitClass := route.Limit
		if limitClass == "" {
			limitClass = handlers.LimitDefault
		}
		keyFunc := middleware.UserOrIP
		if limitClass == handlers.LimitAuth {
			keyFunc = middleware.ClientIP
		}

		mws := []func(http.HandlerFunc) http.HandlerFunc{
			middleware.LogRequest,
			middleware.CORS(cfg.CORSAllowedOrigins),
			middleware.CSRF(),
			middleware.Auth(authCfg),
		}
		if limiter := limiters[limitClass]; limiter != nil {
			mws = append(mws, middleware.RateLimit(limiter, keyFunc))
		}
		if route.AdminOnly {
			mws = append(mws, middleware.RequireRole(models.RoleAdmin))
		}

		mux.HandleFunc(route.Method+" "+route.Path, middleware.Chain(route.Handler, mws...))
	}
	mux.HandleFunc("OPTIONS /api/v1/", middleware.CORS(cfg.CORSAllowedOrigins)(func(http.ResponseWriter, *http.Request) {}))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, h
}

// galleryUpstream is a fake upstream gallery API with two known accounts.
type galleryUpstream struct {
	server *httptest.Server
	// requests counts every call that reached the upstream
	requests atomic.Int64
}

// tokens issued by the fake upstream per account
const (
	tokenAda = "upstream-token-ada"
	tokenEve = "upstream-token-eve"
)

func newGalleryUpstream(t *testing.T) *galleryUpstream {
	t.Helper()

	u := &galleryUpstream{}

	users := map[string]map[string]any{
		tokenAda: {
			"id": 7, "username": "ada", "email": "ada@example.com",
			"enabled": true, "roles": []string{models.RoleUser},
		},
		tokenEve: {
			"id": 9, "username": "eve", "email": "eve@example.com",
			"enabled": true, "roles": []string{models.RoleUser, models.RoleAdmin},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		var token string
		switch {
		case body.Email == "ada@example.com" && body.Password == "secret":
			token = tokenAda
		case body.Email == "eve@example.com" && body.Password == "hunter2":
			token = tokenEve
		default:
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Bad credentials"})
			return
		}

		resp := map[string]any{"token": token}
		for k, v := range users[token] {
			resp[k] = v
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		user, ok := users[bearerToken(r)]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /arts/public", func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "title": "Nebula", "likeCount": 2, "commentCount": 0},
		})
	})
	mux.HandleFunc("GET /arts/my-artworks", func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		// Echo per-token data so tests can detect token mixups
		switch bearerToken(r) {
		case tokenAda:
			json.NewEncoder(w).Encode([]map[string]any{{"id": 71, "title": "Ada's artwork"}})
		case tokenEve:
			json.NewEncoder(w).Encode([]map[string]any{{"id": 91, "title": "Eve's artwork"}})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	mux.HandleFunc("POST /interactions/like/1", func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		if _, ok := users[bearerToken(r)]; !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"isLiked": true, "likeCount": 3})
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "name": "Abstract"}})
	})
	mux.HandleFunc("GET /admin/views/vw_categorystats", func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		if bearerToken(r) != tokenEve {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{{"category": "Abstract", "artworks": 4}})
	})
	mux.HandleFunc("GET /admin/views/vw_activeusers", func(w http.ResponseWriter, r *http.Request) {
		u.requests.Add(1)
		if bearerToken(r) != tokenEve {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{{"username": "eve", "uploads": 2}})
	})

	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

// browserClient returns an http client with a cookie jar, like a browser.
func browserClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

// login authenticates through the BFF and returns the parsed response body.
// The client's jar picks up the session and CSRF cookies.
func login(t *testing.T, client *http.Client, baseURL, email, password string) map[string]any {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := client.Post(baseURL+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Login returned %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	return body
}

// csrfToken pulls the CSRF cookie value out of the client's jar.
func csrfToken(t *testing.T, client *http.Client, baseURL string) string {
	t.Helper()

	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("Parse %q: %v", baseURL, err)
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == middleware.CSRFCookieName {
			return c.Value
		}
	}
	return ""
}

// doJSON sends a JSON request with the CSRF header set from the jar.
func doJSON(t *testing.T, client *http.Client, method, url string, body []byte, csrf string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}
