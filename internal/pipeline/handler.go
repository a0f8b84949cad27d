package pipeline

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jmswain/bindery/internal/workers"
	"github.com/jmswain/bindery/pkg/handlers"
	"github.com/jmswain/bindery/pkg/routes"
)

// Handler receives worker completion callbacks and moderation decisions.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "pipeline"),
	}
}

// Routes returns the route group definition for callback endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/callbacks",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/worker", Handler: h.WorkerCallback},
			{Method: "POST", Pattern: "/moderation", Handler: h.ModerationCallback},
		},
	}
}

// WorkerCallback ingests a job completion report from a worker.
func (h *Handler) WorkerCallback(w http.ResponseWriter, r *http.Request) {
	var cb workers.Callback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	if err := h.sys.HandleWorkerCallback(r.Context(), cb); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

// ModerationCallback ingests a reviewer decision for a held yearbook.
func (h *Handler) ModerationCallback(w http.ResponseWriter, r *http.Request) {
	var cmd ModerationCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	if err := h.sys.HandleModerationDecision(r.Context(), cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}
