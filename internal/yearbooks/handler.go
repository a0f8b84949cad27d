package yearbooks

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jmswain/bindery/pkg/formatting"
	"github.com/jmswain/bindery/pkg/handlers"
	"github.com/jmswain/bindery/pkg/pagination"
	"github.com/jmswain/bindery/pkg/routes"
)

// Handler provides HTTP endpoints for yearbook operations. Creation routes
// through the pipeline intake so processing starts immediately on registration.
type Handler struct {
	sys           System
	intake        Intake
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, intake, logger,
// pagination config, and upload size limit.
func NewHandler(
	sys System,
	intake Intake,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		intake:        intake,
		logger:        logger.With("handler", "yearbooks"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for yearbook endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/yearbooks",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/pages", Handler: h.Pages},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/upload", Handler: h.Upload},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// PageRoutes returns the route group for page-scoped endpoints.
func (h *Handler) PageRoutes() routes.Group {
	return routes.Group{
		Prefix: "/pages",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.FindPage},
			{Method: "GET", Pattern: "/{id}/spans", Handler: h.Spans},
		},
	}
}

// List returns a paginated list of yearbooks with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single yearbook by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	yb, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, yb)
}

// Pages returns all pages of a yearbook in page order.
func (h *Handler) Pages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	pages, err := h.sys.Pages(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, pages)
}

// FindPage returns a single page by its UUID path parameter.
func (h *Handler) FindPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	page, err := h.sys.FindPage(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, page)
}

// Spans returns the OCR text spans extracted from a page.
func (h *Handler) Spans(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	spans, err := h.sys.PageSpans(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, spans)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching yearbooks.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create registers a yearbook from an upload descriptor referencing a blob
// already in storage, and starts the processing pipeline.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	yb, err := h.intake.Intake(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, yb)
}

// Upload processes a multipart form upload containing a scanned yearbook PDF
// and school/uploader metadata. The page count is extracted via pdfcpu.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	schoolID, err := uuid.Parse(r.FormValue("school_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	uploaderID, err := uuid.Parse(r.FormValue("uploader_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	pageCount, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		h.logger.Warn("failed to extract page count", "filename", header.Filename, "error", err)
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	h.logger.Info(
		"upload received",
		"filename", header.Filename,
		"size", formatting.FormatBytes(int64(len(data)), 1),
		"page_count", pageCount,
	)

	cmd := UploadCommand{
		Data:       data,
		Filename:   header.Filename,
		SchoolID:   schoolID,
		UploaderID: uploaderID,
		PageCount:  pageCount,
	}

	yb, err := h.intake.IntakeUpload(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, yb)
}

// Delete removes a yearbook and everything it owns by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrValidation)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
