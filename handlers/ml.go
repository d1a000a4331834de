// ABOUTME: Prompt analysis handler proxying to the optional ML service
// ABOUTME: Answers 503 when the service is not configured

package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxPromptLength bounds the text sent to the analysis service.
const maxPromptLength = 2000

// AnalyzeRequest is the body for prompt analysis.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzePrompt classifies a generation prompt via the ML service.
func (h *Handler) AnalyzePrompt(w http.ResponseWriter, r *http.Request) {
	if h.ml == nil {
		h.writeError(w, "Prompt analysis is not configured", http.StatusServiceUnavailable)
		return
	}

	var req AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		h.writeError(w, "Text is required", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(text) > maxPromptLength {
		h.writeError(w, "Text is too long", http.StatusBadRequest)
		return
	}

	analysis, err := h.ml.Analyze(r.Context(), text)
	if err != nil {
		h.writeAPIError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, analysis)
}
