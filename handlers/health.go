// ABOUTME: Health endpoint reporting BFF and upstream configuration status
// ABOUTME: Liveness only; no upstream call is made on the health path

package handlers

import "net/http"

// Health returns API health status including upstream and ML configuration.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":      "ok",
		"gallery_api": "not_configured",
		"ml_api":      "not_configured",
	}

	if h.api != nil {
		resp["gallery_api"] = "configured"
	}
	if h.ml != nil {
		resp["ml_api"] = "configured"
	}
	if h.cfg != nil {
		resp["auth_mode"] = h.cfg.AuthMode
	}

	h.writeJSON(w, http.StatusOK, resp)
}
