package safety

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/pkg/handlers"
	"github.com/jmswain/bindery/pkg/routes"
)

// Handler provides read-only HTTP endpoints for the moderation queue.
// Decisions arrive through the moderation callback, not through this handler.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "safety"),
	}
}

// Routes returns the route group definition for moderation queue endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/moderation",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.ListPending},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// ListPending returns all queue items awaiting review, oldest first.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	items, err := h.sys.ListPending(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Find returns a single queue item by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	item, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, item)
}
