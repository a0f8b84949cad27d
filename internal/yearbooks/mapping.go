package yearbooks

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/pkg/query"
	"github.com/jmswain/bindery/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "yearbooks", "y").
	Project("id", "ID").
	Project("school_id", "SchoolID").
	Project("uploader_id", "UploaderID").
	Project("status", "Status").
	Project("storage_path", "StoragePath").
	Project("page_count", "PageCount").
	Project("ocr_complete", "OCRComplete").
	Project("face_complete", "FaceComplete").
	Project("safety_retries", "SafetyRetries").
	Project("ocr_retries", "OCRRetries").
	Project("face_retries", "FaceRetries").
	Project("tiling_retries", "TilingRetries").
	Project("failure_reason", "FailureReason").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const yearbookColumns = `id, school_id, uploader_id, status, storage_path, page_count,
		ocr_complete, face_complete, safety_retries, ocr_retries, face_retries,
		tiling_retries, failure_reason, created_at, updated_at`

const pageColumns = `id, yearbook_id, page_number, image_path, tile_manifest,
		ocr_status, face_status, tiling_status`

// Filters contains optional filtering criteria for yearbook queries.
// Nil fields are ignored; all fields use exact matching.
type Filters struct {
	Status     *string    `json:"status,omitempty"`
	SchoolID   *uuid.UUID `json:"school_id,omitempty"`
	UploaderID *uuid.UUID `json:"uploader_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("SchoolID", f.SchoolID).
		WhereEquals("UploaderID", f.UploaderID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if sid := values.Get("school_id"); sid != "" {
		if v, err := uuid.Parse(sid); err == nil {
			f.SchoolID = &v
		}
	}

	if upl := values.Get("uploader_id"); upl != "" {
		if v, err := uuid.Parse(upl); err == nil {
			f.UploaderID = &v
		}
	}

	return f
}

func scanYearbook(s repository.Scanner) (Yearbook, error) {
	var y Yearbook
	err := s.Scan(
		&y.ID,
		&y.SchoolID,
		&y.UploaderID,
		&y.Status,
		&y.StoragePath,
		&y.PageCount,
		&y.OCRComplete,
		&y.FaceComplete,
		&y.SafetyRetries,
		&y.OCRRetries,
		&y.FaceRetries,
		&y.TilingRetries,
		&y.FailureReason,
		&y.CreatedAt,
		&y.UpdatedAt,
	)
	return y, err
}

func scanPage(s repository.Scanner) (Page, error) {
	var p Page
	err := s.Scan(
		&p.ID,
		&p.YearbookID,
		&p.PageNumber,
		&p.ImagePath,
		&p.TileManifest,
		&p.OCRStatus,
		&p.FaceStatus,
		&p.TilingStatus,
	)
	return p, err
}

func scanSpan(s repository.Scanner) (Span, error) {
	var sp Span
	err := s.Scan(
		&sp.ID,
		&sp.PageID,
		&sp.Text,
		&sp.Bounds.X,
		&sp.Bounds.Y,
		&sp.Bounds.Width,
		&sp.Bounds.Height,
	)
	return sp, err
}
