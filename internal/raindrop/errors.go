package raindrop

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed API call. Every failure leaving the client carries
// exactly one kind and a fully rendered single-line message; callers forward
// the message without re-interpreting status codes.
type Kind string

const (
	KindConnectivity Kind = "connectivity"
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindRateLimited  Kind = "rate_limited"
	KindServerError  Kind = "server_error"
	KindUnexpected   Kind = "unexpected"
)

// APIError is the classified form of any Raindrop.io call failure.
type APIError struct {
	Kind       Kind
	StatusCode int // 0 when no response was received
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// Retryable reports whether the failure may resolve on its own: a missing
// response, a 429, or a 5xx. Everything else is terminal.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindConnectivity, KindRateLimited, KindServerError:
		return true
	}
	return false
}

// connectivityError classifies a transport-level failure (no response at all).
// The message is phrased for after the retry budget is spent, which is the only
// moment it can reach a caller.
func connectivityError(op string, cause error) *APIError {
	return &APIError{
		Kind: KindConnectivity,
		Message: fmt.Sprintf("Raindrop.io did not respond while %s (%v). "+
			"Retries were already attempted; the service is temporarily unavailable, do not retry immediately.", op, cause),
	}
}

// classifyStatus turns a non-2xx response into an APIError.
func classifyStatus(op string, status int, body []byte) *APIError {
	remote := remoteMessage(body)

	switch {
	case status == http.StatusBadRequest:
		msg := fmt.Sprintf("Raindrop.io rejected the request while %s", op)
		if remote != "" {
			msg += ": " + remote
		}
		msg += ". Do not retry with the same parameters."
		return &APIError{Kind: KindBadRequest, StatusCode: status, Message: msg}

	case status == http.StatusUnauthorized:
		return &APIError{Kind: KindUnauthorized, StatusCode: status,
			Message: "Raindrop.io authentication failed: the access token is invalid or expired. " +
				"Update RAINDROP_TOKEN and restart; retrying will not help."}

	case status == http.StatusForbidden:
		return &APIError{Kind: KindForbidden, StatusCode: status,
			Message: fmt.Sprintf("Raindrop.io denied access while %s: insufficient permissions. Not retryable.", op)}

	case status == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, StatusCode: status,
			Message: fmt.Sprintf("Not found while %s: the entity is absent or was already deleted. Not retryable.", op)}

	case status == http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimited, StatusCode: status,
			Message: fmt.Sprintf("Raindrop.io rate limit exceeded while %s. "+
				"Retries were already attempted internally; wait before calling again.", op)}

	case status >= 500 && status <= 599:
		return &APIError{Kind: KindServerError, StatusCode: status,
			Message: fmt.Sprintf("Raindrop.io server error (HTTP %d) while %s. "+
				"Retries were already exhausted; try again later.", status, op)}

	default:
		msg := fmt.Sprintf("Unexpected Raindrop.io response (HTTP %d) while %s", status, op)
		if remote != "" {
			msg += ": " + remote
		}
		return &APIError{Kind: KindUnexpected, StatusCode: status, Message: msg}
	}
}

// badParams builds a terminal client-side validation error, used for the few
// fields the API contract marks as required.
func badParams(format string, args ...interface{}) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: fmt.Sprintf(format, args...) + ". Do not retry with the same parameters.",
	}
}

// remoteMessage digs the human-readable error out of a Raindrop.io error body.
// The API is inconsistent: some endpoints use errorMessage, others error.
func remoteMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		ErrorMessage string          `json:"errorMessage"`
		ErrorField   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.ErrorMessage != "" {
		return strings.TrimSpace(envelope.ErrorMessage)
	}
	var s string
	if json.Unmarshal(envelope.ErrorField, &s) == nil {
		return strings.TrimSpace(s)
	}
	return ""
}
