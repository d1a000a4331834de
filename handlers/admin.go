// ABOUTME: Admin handlers for the dashboard, database views, and log browser
// ABOUTME: All endpoints here sit behind the ROLE_ADMIN requirement

package handlers

import (
	"bufio"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/artspark/gallery-bff/models"
	"github.com/artspark/gallery-bff/services"
)

// adminViews are the upstream reporting views the dashboard knows about.
var adminViews = []string{
	"vw_categorystats",
	"vw_activeusers",
	"vw_recentuploads",
	"vw_detailedartlist",
	"vw_logsummary",
}

// AdminDashboardResponse aggregates gallery totals and operational status.
type AdminDashboardResponse struct {
	TotalArtworks  int                    `json:"total_artworks"`
	TotalLikes     int                    `json:"total_likes"`
	TotalComments  int                    `json:"total_comments"`
	RecentArtworks []models.ArtworkRecord `json:"recent_artworks"`
	CategoryCount  int                    `json:"category_count"`
	ActiveUsers    int                    `json:"active_users"`
	LogFileCount   int                    `json:"log_file_count"`
	UpstreamStatus string                 `json:"upstream_status"`
}

// AdminViewResponse wraps raw rows from one upstream database view.
type AdminViewResponse struct {
	View  string           `json:"view"`
	Rows  []map[string]any `json:"rows"`
	Count int              `json:"count"`
}

// LogFileInfo describes one file in the log directory.
type LogFileInfo struct {
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	Modified  time.Time `json:"modified"`
}

// AdminDashboard aggregates totals, recent uploads, and service status.
// The independent upstream fetches run concurrently.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	resp := AdminDashboardResponse{
		RecentArtworks: []models.ArtworkRecord{},
		UpstreamStatus: "ok",
	}

	var (
		artworks    []models.ArtworkRecord
		categories  []models.CategorySummary
		activeUsers []map[string]any
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		artworks, err = h.api.PublicArtworks(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = h.catalog.Categories(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		activeUsers, err = h.api.AdminView(ctx, session.AccessToken, "vw_activeusers")
		return err
	})

	if err := g.Wait(); err != nil {
		slog.Warn("Admin dashboard degraded, upstream fetch failed", "error", err)
		resp.UpstreamStatus = userFacingMessage(err)
	}

	resp.TotalArtworks = len(artworks)
	for _, a := range artworks {
		resp.TotalLikes += a.LikeCount
		resp.TotalComments += a.CommentCount
	}
	resp.CategoryCount = len(categories)
	resp.ActiveUsers = len(activeUsers)

	sort.Slice(artworks, func(i, j int) bool {
		return artworks[i].CreatedAt.After(artworks[j].CreatedAt)
	})
	if len(artworks) > 5 {
		artworks = artworks[:5]
	}
	if artworks != nil {
		resp.RecentArtworks = artworks
	}

	resp.LogFileCount = len(h.listLogFiles())

	h.writeJSON(w, http.StatusOK, resp)
}

// AdminView proxies one upstream reporting view. The view name is validated
// before it goes anywhere near a URL.
func (h *Handler) AdminView(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	viewName := r.PathValue("viewName")
	if err := services.ValidateViewName(viewName); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !knownAdminView(viewName) {
		h.writeError(w, "Unknown view", http.StatusNotFound)
		return
	}

	rows, err := h.api.AdminView(r.Context(), session.AccessToken, viewName)
	if err != nil {
		h.writeAPIError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, AdminViewResponse{
		View:  viewName,
		Rows:  rows,
		Count: len(rows),
	})
}

// ListLogs lists the files in the configured log directory.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"files": h.listLogFiles(),
	})
}

// ViewLog returns the last N lines of a log file.
func (h *Handler) ViewLog(w http.ResponseWriter, r *http.Request) {
	path, ok := h.logFilePath(w, r)
	if !ok {
		return
	}

	lines := 100
	if raw := r.URL.Query().Get("lines"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			h.writeError(w, "lines must be between 1 and 1000", http.StatusBadRequest)
			return
		}
		lines = n
	}

	f, err := os.Open(path)
	if err != nil {
		h.writeError(w, "Log file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	tail, err := tailLines(f, lines)
	if err != nil {
		slog.Error("Failed to read log file", "path", path, "error", err)
		h.writeError(w, "Failed to read log file", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"name":  filepath.Base(path),
		"lines": tail,
	})
}

// DownloadLog streams a log file as an attachment.
func (h *Handler) DownloadLog(w http.ResponseWriter, r *http.Request) {
	path, ok := h.logFilePath(w, r)
	if !ok {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		h.writeError(w, "Log file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	if _, err := io.Copy(w, f); err != nil {
		slog.Error("Log download interrupted", "path", path, "error", err)
	}
}

// ClearLog truncates a log file to zero bytes.
func (h *Handler) ClearLog(w http.ResponseWriter, r *http.Request) {
	path, ok := h.logFilePath(w, r)
	if !ok {
		return
	}

	if err := os.Truncate(path, 0); err != nil {
		if os.IsNotExist(err) {
			h.writeError(w, "Log file not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to clear log file", "path", path, "error", err)
		h.writeError(w, "Failed to clear log file", http.StatusInternalServerError)
		return
	}

	slog.Info("Log file cleared", "name", filepath.Base(path))
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteLog removes a log file.
func (h *Handler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	path, ok := h.logFilePath(w, r)
	if !ok {
		return
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			h.writeError(w, "Log file not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete log file", "path", path, "error", err)
		h.writeError(w, "Failed to delete log file", http.StatusInternalServerError)
		return
	}

	slog.Info("Log file deleted", "name", filepath.Base(path))
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func knownAdminView(name string) bool {
	for _, v := range adminViews {
		if v == name {
			return true
		}
	}
	return false
}

// logFilePath validates the {name} path value and confines it to the log
// directory. Validation rejects separators and traversal outright.
func (h *Handler) logFilePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("name")
	if err := services.ValidateLogFileName(name); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return filepath.Join(h.logDir(), name), true
}

func (h *Handler) logDir() string {
	if h.cfg != nil && h.cfg.LogDir != "" {
		return h.cfg.LogDir
	}
	return "logs"
}

func (h *Handler) listLogFiles() []LogFileInfo {
	entries, err := os.ReadDir(h.logDir())
	if err != nil {
		return []LogFileInfo{}
	}

	files := []LogFileInfo{}
	for _, entry := range entries {
		if entry.IsDir() || services.ValidateLogFileName(entry.Name()) != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, LogFileInfo{
			Name:      entry.Name(),
			SizeBytes: info.Size(),
			Modified:  info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files
}

// tailLines reads the last n lines of a file. Log files stay small enough
// (size-capped rotation) that a forward scan is fine.
func tailLines(f *os.File, n int) ([]string, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)

	lines := make([]string, 0, n)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	return lines, scanner.Err()
}
