// ABOUTME: Streaming multipart upload of artwork images to the gallery API
// ABOUTME: Pipes the file through without buffering it whole in memory

package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/artspark/gallery-bff/models"
)

// CreateArtwork uploads a new artwork. The image streams from the reader
// through an io.Pipe into the request body. The size limit is enforced
// before anything touches the network, and again while copying in case the
// declared size was wrong.
func (c *GalleryClient) CreateArtwork(ctx context.Context, token string, req models.CreateArtworkRequest, filename, contentType string, size int64, image io.Reader) (models.ArtworkRecord, error) {
	if size > c.maxUploadBytes {
		return models.ArtworkRecord{}, &APIError{
			Kind:            KindPayloadTooLarge,
			UpstreamMessage: fmt.Sprintf("image is %d bytes, limit is %d", size, c.maxUploadBytes),
		}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeArtworkForm(mw, req, filename, contentType, c.maxUploadBytes, image)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/arts/create", pr)
	if err != nil {
		pr.Close()
		return models.ArtworkRecord{}, fmt.Errorf("failed to create upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.uploadClient.Do(httpReq)
	if err != nil {
		// A pipe error raised by the writer goroutine surfaces through Do;
		// keep its classification if it already is an APIError.
		if apiErr, ok := AsAPIError(err); ok {
			return models.ArtworkRecord{}, apiErr
		}
		return models.ArtworkRecord{}, classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.ArtworkRecord{}, classifyTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ArtworkRecord{}, classifyStatus(resp.StatusCode, body)
	}

	// The create response echoes the stored artwork on current upstream
	// revisions. Older ones answer with a message only.
	if gjson.ValidBytes(body) {
		if rec, err := NormalizeArtwork(gjson.ParseBytes(body)); err == nil {
			return rec, nil
		}
	}
	return models.ArtworkRecord{Title: req.Title, PromptText: req.PromptText}, nil
}

// writeArtworkForm writes the multipart fields in the order the upstream
// expects: scalar fields first, repeated categoryIds, then the file part.
func writeArtworkForm(mw *multipart.Writer, req models.CreateArtworkRequest, filename, contentType string, maxBytes int64, image io.Reader) error {
	if err := mw.WriteField("title", req.Title); err != nil {
		return fmt.Errorf("failed to write title field: %w", err)
	}
	if err := mw.WriteField("promptText", req.PromptText); err != nil {
		return fmt.Errorf("failed to write promptText field: %w", err)
	}
	for _, id := range req.CategoryIDs {
		if err := mw.WriteField("categoryIds", strconv.Itoa(id)); err != nil {
			return fmt.Errorf("failed to write categoryIds field: %w", err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="imageFile"; filename="%s"`, escapeQuotes(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create image part: %w", err)
	}

	// Copy one byte past the limit so an undersized declaration still trips.
	n, err := io.Copy(part, io.LimitReader(image, maxBytes+1))
	if err != nil {
		return fmt.Errorf("failed to stream image: %w", err)
	}
	if n > maxBytes {
		return &APIError{
			Kind:            KindPayloadTooLarge,
			UpstreamMessage: fmt.Sprintf("image exceeds %d byte limit", maxBytes),
		}
	}
	return nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
