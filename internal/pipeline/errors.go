package pipeline

import (
	"errors"
	"net/http"

	"github.com/jmswain/bindery/internal/safety"
	"github.com/jmswain/bindery/internal/workers"
	"github.com/jmswain/bindery/internal/yearbooks"
)

// ErrValidation indicates a malformed callback body or payload.
var ErrValidation = errors.New("invalid callback")

// MapHTTPStatus maps pipeline errors, including those surfaced from the
// domains it orchestrates, to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, workers.ErrNotFound) {
		return http.StatusNotFound
	}
	if status := safety.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	if status := yearbooks.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return http.StatusInternalServerError
}
