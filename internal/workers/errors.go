package workers

import (
	"errors"
	"net/http"
)

// Domain errors for job tracking and dispatch.
var (
	ErrNotFound   = errors.New("job not found")
	ErrDuplicate  = errors.New("job already exists")
	ErrValidation = errors.New("invalid job request")
	ErrDispatch   = errors.New("worker dispatch failed")
)

// MapHTTPStatus maps worker domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrDispatch) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
