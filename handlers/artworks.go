// ABOUTME: Artwork handlers for listing, detail, upload, and deletion
// ABOUTME: Streams multipart uploads through to the upstream without buffering

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/artspark/gallery-bff/models"
	"github.com/artspark/gallery-bff/services"
)

// multipartOverheadBytes allows for form fields and part boundaries on top
// of the image size limit when pre-checking Content-Length.
const multipartOverheadBytes = 1 << 20

// ArtworkListResponse wraps a list of artworks. Error is set when the list
// is degraded because the upstream could not be read.
type ArtworkListResponse struct {
	Artworks []models.ArtworkRecord `json:"artworks"`
	Error    string                 `json:"error,omitempty"`
}

// ListArtworks returns the public gallery feed. Anonymous access is fine;
// on upstream failure the page degrades to an empty list with a message.
func (h *Handler) ListArtworks(w http.ResponseWriter, r *http.Request) {
	artworks, err := h.api.PublicArtworks(r.Context())
	if err != nil {
		slog.Warn("Public artwork list unavailable", "error", err)
		h.writeJSON(w, http.StatusOK, ArtworkListResponse{
			Artworks: []models.ArtworkRecord{},
			Error:    userFacingMessage(err),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, ArtworkListResponse{Artworks: artworks})
}

// GetArtwork returns one artwork with its comments. Comments load
// concurrently with the artwork and degrade to empty when they fail; a
// missing artwork is a hard 404.
func (h *Handler) GetArtwork(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	token := h.sessionToken(r)

	var (
		artwork  models.ArtworkRecord
		comments []models.CommentRecord
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		artwork, err = h.api.ArtworkByID(ctx, token, id)
		return err
	})
	g.Go(func() error {
		got, err := h.api.ArtworkComments(ctx, token, id)
		if err != nil {
			slog.Warn("Comments unavailable for artwork", "artwork_id", id, "error", err)
			return nil
		}
		comments = got
		return nil
	})

	if err := g.Wait(); err != nil {
		h.writeAPIError(w, err)
		return
	}

	if comments == nil {
		comments = []models.CommentRecord{}
	}
	h.writeJSON(w, http.StatusOK, models.ArtworkDetail{
		Artwork:  artwork,
		Comments: comments,
	})
}

// MyArtworks returns the caller's own uploads.
func (h *Handler) MyArtworks(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	artworks, err := h.api.MyArtworks(r.Context(), session.AccessToken)
	if err != nil {
		if apiErr, ok := services.AsAPIError(err); ok && apiErr.Kind == services.KindUnauthenticated {
			h.writeAPIError(w, err)
			return
		}
		slog.Warn("My-artworks list unavailable", "user", session.Username, "error", err)
		h.writeJSON(w, http.StatusOK, ArtworkListResponse{
			Artworks: []models.ArtworkRecord{},
			Error:    userFacingMessage(err),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, ArtworkListResponse{Artworks: artworks})
}

// CreateArtwork accepts a multipart upload and streams it to the upstream.
// The image is read directly off the wire; it is never written to disk or
// held in memory whole.
func (h *Handler) CreateArtwork(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	maxBytes := h.cfg.MaxUploadBytes()

	// Declared-size check before any reading or upstream dialing.
	if r.ContentLength > maxBytes+multipartOverheadBytes {
		h.writeError(w, "Image exceeds the upload size limit", http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverheadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		h.writeError(w, "Expected multipart form data", http.StatusBadRequest)
		return
	}

	req, part, err := readArtworkForm(mr)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer part.Close()

	if req.Title == "" {
		h.writeError(w, "Title is required", http.StatusBadRequest)
		return
	}

	artwork, err := h.api.CreateArtwork(
		r.Context(),
		session.AccessToken,
		req,
		part.FileName(),
		part.Header.Get("Content-Type"),
		0, // size unknown at this point; the streaming guard enforces the limit
		part,
	)
	if err != nil {
		slog.Warn("Artwork upload failed", "user", session.Username, "error", err)
		h.writeAPIError(w, err)
		return
	}

	slog.Info("Artwork uploaded", "user", session.Username, "artwork_id", artwork.ID, "title", artwork.Title)
	h.writeJSON(w, http.StatusCreated, artwork)
}

// DeleteArtwork removes one of the caller's artworks. Ownership is enforced
// upstream; a foreign ID comes back as Forbidden.
func (h *Handler) DeleteArtwork(w http.ResponseWriter, r *http.Request) {
	session := h.requireSession(w, r)
	if session == nil {
		return
	}

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.api.DeleteArtwork(r.Context(), session.AccessToken, id); err != nil {
		h.writeAPIError(w, err)
		return
	}

	slog.Info("Artwork deleted", "user", session.Username, "artwork_id", id)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// readArtworkForm walks the multipart stream up to the image part. Fields
// after the file cannot be read without buffering the image, so the form is
// expected to place the file last (the frontend does).
func readArtworkForm(mr *multipart.Reader) (models.CreateArtworkRequest, *multipart.Part, error) {
	var req models.CreateArtworkRequest

	for {
		part, err := mr.NextPart()
		if err != nil {
			return req, nil, errMissingImage
		}

		if part.FormName() == "imageFile" {
			return req, part, nil
		}

		value, err := readFormValue(part)
		part.Close()
		if err != nil {
			return req, nil, err
		}

		switch part.FormName() {
		case "title":
			req.Title = strings.TrimSpace(value)
		case "promptText":
			req.PromptText = strings.TrimSpace(value)
		case "categoryIds":
			id, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return req, nil, errBadCategoryID
			}
			req.CategoryIDs = append(req.CategoryIDs, id)
		}
	}
}

var (
	errMissingImage  = errors.New("Image file is required")
	errBadCategoryID = errors.New("Invalid category ID")
)

// maxFieldBytes bounds a single text form field.
const maxFieldBytes = 16 << 10

func readFormValue(part *multipart.Part) (string, error) {
	data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	if err != nil {
		return "", errors.New("Malformed form field")
	}
	return string(data), nil
}

// pathID parses a numeric {id}-style path value, writing a 400 on garbage.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		h.writeError(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
