package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Failure taxonomy. Everything the client can hit is matchable with
// errors.Is so the workflow can branch without string inspection.
// ErrUnauthenticated and booking.ErrInvalidWindow are raised before any
// network call; the rest translate transport and server responses.
var (
	ErrUnauthenticated = errors.New("not signed in")
	ErrConflict        = errors.New("slot no longer available")
	ErrNotFound        = errors.New("not found")
	ErrUnreachable     = errors.New("booking service unreachable")
	ErrServerError     = errors.New("booking service error")
)

// APIError carries the server's own message for a rejected request.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request (status=%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server rejected request (status=%d)", e.Status)
}

// Unwrap maps the HTTP status class onto the taxonomy sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrServerError
	}
}

// apiError builds an APIError from a non-2xx response, picking up the
// {"message": ...} body Spring error handlers emit when present.
func apiError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	return &APIError{Status: status, Message: msg}
}
