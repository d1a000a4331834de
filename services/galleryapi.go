// ABOUTME: Gallery API client wrapping the upstream art service
// ABOUTME: Per-request bearer auth, bounded reads, classified failures

package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/artspark/gallery-bff/models"
)

// maxResponseBytes bounds how much of an upstream body is read into memory.
const maxResponseBytes = 8 << 20

// ClientConfig configures the gallery API client.
type ClientConfig struct {
	BaseURL            string
	Timeout            time.Duration
	UploadTimeout      time.Duration
	MaxUploadBytes     int64
	ProxyURL           string
	InsecureSkipVerify bool
}

// GalleryClient is the single gateway to the upstream gallery API. It is
// safe for concurrent use: credentials are attached per request, never
// stored on the client or on shared default headers.
type GalleryClient struct {
	baseURL        string
	maxUploadBytes int64
	client         *http.Client
	uploadClient   *http.Client
}

func NewGalleryClient(cfg ClientConfig) *GalleryClient {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cfg.ProxyURL != "" {
		if dialContextFunc := createSOCKS5DialContextFunc(cfg.ProxyURL); dialContextFunc != nil {
			transport.DialContext = dialContextFunc
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	uploadTimeout := cfg.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = 2 * time.Minute
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	return &GalleryClient{
		baseURL:        baseURL,
		maxUploadBytes: maxUpload,
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		uploadClient: &http.Client{
			Timeout:   uploadTimeout,
			Transport: transport,
		},
	}
}

// SetHTTPClient allows overriding the HTTP client (useful for testing)
func (c *GalleryClient) SetHTTPClient(client *http.Client) {
	c.client = client
	c.uploadClient = client
}

// do issues one upstream request. A fresh http.Request is built every call
// so concurrent requests with different tokens can never observe each
// other's credentials.
func (c *GalleryClient) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, classifyTransport(err)
	}
	return resp.StatusCode, respBody, nil
}

// doJSON marshals a request payload and issues the call.
func (c *GalleryClient) doJSON(ctx context.Context, method, path, token string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal %s payload: %w", path, err)
	}
	return c.do(ctx, method, path, token, bytes.NewReader(data), "application/json")
}

// Login exchanges credentials for a bearer token plus identity.
func (c *GalleryClient) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	status, body, err := c.doJSON(ctx, http.MethodPost, "auth/login", "", models.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return models.LoginResult{}, err
	}
	if status != http.StatusOK {
		return models.LoginResult{}, classifyStatus(status, body)
	}
	return NormalizeLogin(body)
}

// Register creates an account. The upstream answers with JSON on some
// revisions and plain text on others; both are accepted.
func (c *GalleryClient) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	status, body, err := c.doJSON(ctx, http.MethodPost, "auth/register", "", req)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", classifyStatus(status, body)
	}

	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String {
			return msg.String(), nil
		}
		return "Registration successful", nil
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text, nil
	}
	return "Registration successful", nil
}

// Logout notifies the upstream that the token should be invalidated.
func (c *GalleryClient) Logout(ctx context.Context, token string) error {
	status, body, err := c.do(ctx, http.MethodPost, "auth/logout", token, nil, "")
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return classifyStatus(status, body)
	}
	return nil
}

// CurrentUser fetches the identity the token resolves to.
func (c *GalleryClient) CurrentUser(ctx context.Context, token string) (models.AuthUser, error) {
	status, body, err := c.do(ctx, http.MethodGet, "auth/me", token, nil, "")
	if err != nil {
		return models.AuthUser{}, err
	}
	if status != http.StatusOK {
		return models.AuthUser{}, classifyStatus(status, body)
	}
	if !gjson.ValidBytes(body) {
		return models.AuthUser{}, malformedDataError("user response is not JSON")
	}
	return NormalizeUser(gjson.ParseBytes(body))
}

// PublicArtworks lists the public gallery. No token required.
func (c *GalleryClient) PublicArtworks(ctx context.Context) ([]models.ArtworkRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, "arts/public", "", nil, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classifyStatus(status, body)
	}
	return NormalizeArtworkList(body)
}

// ArtworkByID fetches a single artwork.
func (c *GalleryClient) ArtworkByID(ctx context.Context, token string, id int) (models.ArtworkRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("arts/%d", id), token, nil, "")
	if err != nil {
		return models.ArtworkRecord{}, err
	}
	if status != http.StatusOK {
		return models.ArtworkRecord{}, classifyStatus(status, body)
	}
	return NormalizeArtworkBody(body)
}

// MyArtworks lists the authenticated user's own artworks.
func (c *GalleryClient) MyArtworks(ctx context.Context, token string) ([]models.ArtworkRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, "arts/my-artworks", token, nil, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classifyStatus(status, body)
	}
	return NormalizeArtworkList(body)
}

// DeleteArtwork removes an artwork owned by the caller (or any, for admins).
func (c *GalleryClient) DeleteArtwork(ctx context.Context, token string, id int) error {
	status, body, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("arts/%d", id), token, nil, "")
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return classifyStatus(status, body)
	}
	return nil
}

// ToggleLike flips the caller's like on an artwork and reports the new state.
func (c *GalleryClient) ToggleLike(ctx context.Context, token string, artworkID int) (models.LikeToggleResult, error) {
	status, body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("interactions/like/%d", artworkID), token, nil, "")
	if err != nil {
		return models.LikeToggleResult{}, err
	}
	if status != http.StatusOK {
		return models.LikeToggleResult{}, classifyStatus(status, body)
	}
	return NormalizeLikeToggle(body)
}

// AddComment posts a comment on an artwork.
func (c *GalleryClient) AddComment(ctx context.Context, token string, artworkID int, content string) (models.CommentRecord, error) {
	status, body, err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("interactions/comment/%d", artworkID), token, map[string]string{
		"content": content,
	})
	if err != nil {
		return models.CommentRecord{}, err
	}
	if status < 200 || status > 299 {
		return models.CommentRecord{}, classifyStatus(status, body)
	}

	// Some upstream revisions echo the created comment, others answer with
	// a bare message. A non-parseable body degrades to a minimal record.
	if gjson.ValidBytes(body) {
		if rec, err := NormalizeComment(gjson.ParseBytes(body)); err == nil {
			return rec, nil
		}
	}
	return models.CommentRecord{Content: content, ArtworkID: artworkID}, nil
}

// DeleteComment removes a comment by id.
func (c *GalleryClient) DeleteComment(ctx context.Context, token string, commentID int) error {
	status, body, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("interactions/comment/%d", commentID), token, nil, "")
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return classifyStatus(status, body)
	}
	return nil
}

// ArtworkComments lists the comments on an artwork.
func (c *GalleryClient) ArtworkComments(ctx context.Context, token string, artworkID int) ([]models.CommentRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("arts/%d/comments", artworkID), token, nil, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classifyStatus(status, body)
	}
	return NormalizeComments(body)
}

// Categories lists all artwork categories.
func (c *GalleryClient) Categories(ctx context.Context) ([]models.CategorySummary, error) {
	status, body, err := c.do(ctx, http.MethodGet, "categories", "", nil, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classifyStatus(status, body)
	}
	return NormalizeCategories(body)
}

// AdminView fetches the rows of a reporting view. Rows keep whatever
// columns the view defines, so they stay generic maps.
func (c *GalleryClient) AdminView(ctx context.Context, token, viewName string) ([]map[string]any, error) {
	status, body, err := c.do(ctx, http.MethodGet, "admin/views/"+url.PathEscape(viewName), token, nil, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classifyStatus(status, body)
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		slog.Debug("Admin view response is not a JSON array", "view", viewName, "error", err)
		return nil, malformedDataError("view response is not a JSON array")
	}
	return rows, nil
}
