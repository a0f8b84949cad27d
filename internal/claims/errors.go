package claims

import (
	"errors"
	"net/http"
)

// Domain errors for claim operations.
var (
	ErrNotFound       = errors.New("claim not found")
	ErrFaceNotFound   = errors.New("face region not found")
	ErrValidation     = errors.New("invalid claim request")
	ErrNotReady       = errors.New("yearbook is not ready for claims")
	ErrDuplicateClaim = errors.New("claim already submitted for this face region")
	ErrConflict       = errors.New("claim conflicts with an existing resolution")
)

// MapHTTPStatus maps claim domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrFaceNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotReady) || errors.Is(err, ErrDuplicateClaim) || errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
