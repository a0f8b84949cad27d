package faces

import (
	"errors"
	"net/http"
)

// Domain errors for face region operations.
var (
	ErrNotFound  = errors.New("face region not found")
	ErrDuplicate = errors.New("face region already exists")
	ErrInvalidID = errors.New("invalid face region id")
)

// MapHTTPStatus maps face domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
