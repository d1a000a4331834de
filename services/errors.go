// ABOUTME: Error taxonomy for upstream gallery API failures
// ABOUTME: Classifies transport errors and HTTP statuses into stable kinds

package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrorKind identifies a class of upstream failure. Handlers map kinds to
// HTTP statuses and user-safe messages without inspecting upstream details.
type ErrorKind string

const (
	// KindUnreachable means the upstream never produced an HTTP response:
	// connection refused, DNS failure, TLS failure, timeout.
	KindUnreachable ErrorKind = "unreachable"

	// KindUnauthenticated is an upstream 401: missing, expired or rejected token.
	KindUnauthenticated ErrorKind = "unauthenticated"

	// KindForbidden is an upstream 403: authenticated but not allowed.
	KindForbidden ErrorKind = "forbidden"

	// KindNotFound is an upstream 404.
	KindNotFound ErrorKind = "not_found"

	// KindValidationFailed is an upstream 400/409/422 carrying field errors.
	KindValidationFailed ErrorKind = "validation_failed"

	// KindPayloadTooLarge is raised locally before upload, or by an
	// upstream 413.
	KindPayloadTooLarge ErrorKind = "payload_too_large"

	// KindUpstreamUnavailable is any upstream 5xx. Server errors are
	// treated as transient and safe to retry.
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"

	// KindUpstreamContractMismatch is any other unexpected status, such as
	// a redirect where JSON was expected.
	KindUpstreamContractMismatch ErrorKind = "upstream_contract_mismatch"

	// KindMalformedData means the upstream answered 2xx but the body could
	// not be normalized into a usable record.
	KindMalformedData ErrorKind = "malformed_upstream_data"
)

// APIError is the single error type crossing the services boundary.
type APIError struct {
	Kind            ErrorKind
	UpstreamStatus  int
	UpstreamMessage string
	FieldErrors     map[string][]string
	cause           error
}

func (e *APIError) Error() string {
	if e.UpstreamMessage != "" {
		return fmt.Sprintf("gallery api: %s: %s", e.Kind, e.UpstreamMessage)
	}
	if e.cause != nil {
		return fmt.Sprintf("gallery api: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("gallery api: %s", e.Kind)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Retryable reports whether retrying the same call may succeed. Only
// transport failures and upstream unavailability qualify; auth, validation
// and contract errors will fail the same way again.
func (e *APIError) Retryable() bool {
	return e.Kind == KindUnreachable || e.Kind == KindUpstreamUnavailable
}

// AsAPIError unwraps err to an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// classifyTransport wraps any error from http.Client.Do. By the time Do
// fails no HTTP response exists, so everything lands in KindUnreachable.
func classifyTransport(err error) *APIError {
	return &APIError{Kind: KindUnreachable, cause: err}
}

// classifyStatus maps a non-2xx upstream response to an APIError. The body
// is best-effort parsed for a human message and field-level errors; a body
// that is not JSON, or not in a recognized shape, is tolerated.
func classifyStatus(status int, body []byte) *APIError {
	apiErr := &APIError{UpstreamStatus: status}

	switch {
	case status == http.StatusUnauthorized:
		apiErr.Kind = KindUnauthenticated
	case status == http.StatusForbidden:
		apiErr.Kind = KindForbidden
	case status == http.StatusNotFound:
		apiErr.Kind = KindNotFound
	case status == http.StatusRequestEntityTooLarge:
		apiErr.Kind = KindPayloadTooLarge
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		apiErr.Kind = KindValidationFailed
	case status >= http.StatusInternalServerError:
		apiErr.Kind = KindUpstreamUnavailable
	default:
		apiErr.Kind = KindUpstreamContractMismatch
	}

	apiErr.UpstreamMessage = extractMessage(body)
	if apiErr.Kind == KindValidationFailed {
		apiErr.FieldErrors = extractFieldErrors(body)
	}
	return apiErr
}

// malformedDataError marks a 2xx response whose body defeated normalization.
func malformedDataError(detail string) *APIError {
	return &APIError{Kind: KindMalformedData, UpstreamMessage: detail}
}

// extractMessage pulls a human-readable message out of an error body.
// Accepts {"message": ...}, {"error": ...}, or a short plain-text body.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Type == gjson.String {
			return msg.String()
		}
		if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String {
			return msg.String()
		}
		return ""
	}
	// Plain-text error bodies happen (register endpoint among others).
	// Keep them only if they look like a sentence, not an HTML dump.
	const maxPlainText = 200
	text := string(body)
	if len(text) <= maxPlainText && !looksLikeMarkup(text) {
		return text
	}
	return ""
}

func looksLikeMarkup(s string) bool {
	for _, c := range s {
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		return c == '<'
	}
	return false
}

// extractFieldErrors collects per-field validation messages. Two upstream
// shapes are recognized:
//
//	{"errors": {"title": ["too short"], "email": "taken"}}
//	{"fieldErrors": [{"field": "title", "message": "too short"}]}
func extractFieldErrors(body []byte) map[string][]string {
	if !gjson.ValidBytes(body) {
		return nil
	}

	out := make(map[string][]string)

	if errs := gjson.GetBytes(body, "errors"); errs.IsObject() {
		errs.ForEach(func(field, value gjson.Result) bool {
			switch {
			case value.IsArray():
				for _, msg := range value.Array() {
					out[field.String()] = append(out[field.String()], msg.String())
				}
			case value.Type == gjson.String:
				out[field.String()] = append(out[field.String()], value.String())
			}
			return true
		})
	}

	if errs := gjson.GetBytes(body, "fieldErrors"); errs.IsArray() {
		for _, entry := range errs.Array() {
			field := entry.Get("field").String()
			msg := entry.Get("message").String()
			if field != "" && msg != "" {
				out[field] = append(out[field], msg)
			}
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
