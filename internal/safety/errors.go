package safety

import (
	"errors"
	"net/http"
)

// Domain errors for moderation queue operations.
var (
	ErrNotFound   = errors.New("safety queue item not found")
	ErrDuplicate  = errors.New("safety queue item already exists")
	ErrValidation = errors.New("invalid moderation decision")
)

// MapHTTPStatus maps safety domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
