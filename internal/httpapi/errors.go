package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"eventloopd/internal/eventloop"
	"eventloopd/internal/hub"
	"eventloopd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case hub.IsQueueNotFound(err):
		return http.StatusNotFound
	case eventloop.IsQueueFull(err):
		return http.StatusTooManyRequests
	case eventloop.IsQueueClosed(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, eventloop.ErrInvalidEvent):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// only reached when the server is shutting down
		return http.StatusServiceUnavailable
	case errors.As(err, &he):
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
