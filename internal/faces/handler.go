package faces

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/pkg/handlers"
	"github.com/jmswain/bindery/pkg/routes"
)

// Handler provides HTTP endpoints for browsing detected face regions.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "faces"),
	}
}

// Routes returns the route group definition for face region endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/faces",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// YearbookRoutes returns the route group exposing a yearbook's face regions.
func (h *Handler) YearbookRoutes() routes.Group {
	return routes.Group{
		Prefix: "/yearbooks",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/faces", Handler: h.ListByYearbook},
		},
	}
}

// Find returns a single face region by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	region, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, region)
}

// ListByYearbook returns all face regions detected across a yearbook's pages.
func (h *Handler) ListByYearbook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	regions, err := h.sys.ListByYearbook(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, regions)
}
