// ABOUTME: Category list handler backed by the TTL-cached catalog service
// ABOUTME: Degrades to an empty list when the upstream cannot be read

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/artspark/gallery-bff/models"
)

// CategoriesResponse wraps the category list for the upload form and filters.
type CategoriesResponse struct {
	Categories []models.CategorySummary `json:"categories"`
	Error      string                   `json:"error,omitempty"`
}

// Categories returns the category list. Concurrent cache misses collapse to
// a single upstream fetch inside the catalog service.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		slog.Warn("Category list unavailable", "error", err)
		h.writeJSON(w, http.StatusOK, CategoriesResponse{
			Categories: []models.CategorySummary{},
			Error:      userFacingMessage(err),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}
