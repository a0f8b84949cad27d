package yearbooks

import (
	"errors"
	"net/http"
)

// Domain errors for yearbook operations.
var (
	ErrNotFound     = errors.New("yearbook not found")
	ErrPageNotFound = errors.New("page not found")
	ErrDuplicate    = errors.New("yearbook already exists")
	ErrValidation   = errors.New("invalid upload descriptor")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrTransition   = errors.New("illegal status transition")
)

// MapHTTPStatus maps yearbook domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrPageNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrTransition) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
