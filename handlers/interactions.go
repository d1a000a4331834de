// ABOUTME: Like and comment handlers for artwork interactions
// ABOUTME: All interaction state lives upstream; these proxy with the session token

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"
)

// maxCommentLength matches the upstream's column limit.
const maxCommentLength = 1000

// CommentRequest is the body for posting a comment.
type CommentRequest struct {
	Content string `json:"content"`
}

// ToggleLike likes or unlikes an artwork and returns the resulting state.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.api.ToggleLike(r.Context(), session.AccessToken, id)
	if err != nil {
		h.writeAPIError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// AddComment posts a comment to an artwork.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		h.writeError(w, "Comment content is required", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		h.writeError(w, "Comment is too long", http.StatusBadRequest)
		return
	}

	comment, err := h.api.AddComment(r.Context(), session.AccessToken, id, content)
	if err != nil {
		h.writeAPIError(w, err)
		return
	}

	slog.Debug("Comment added", "user", session.Username, "artwork_id", id)
	h.writeJSON(w, http.StatusCreated, comment)
}

// DeleteComment removes one of the caller's comments. Ownership (or admin
// override) is enforced upstream.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.api.DeleteComment(r.Context(), session.AccessToken, id); err != nil {
		h.writeAPIError(w, err)
		return
	}

	slog.Debug("Comment deleted", "user", session.Username, "comment_id", id)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
