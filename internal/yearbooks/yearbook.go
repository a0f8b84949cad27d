// Package yearbooks implements the yearbook domain for Bindery.
// It provides the durable representation of a yearbook and its pages:
// creation from an upload descriptor, compare-and-set status transitions,
// per-page sub-status tracking, aggregate recomputation, and OCR span
// persistence.
package yearbooks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status identifies a yearbook's position in the processing lattice.
type Status string

// Yearbook statuses. Transitions only move forward through the lattice;
// StatusFailed is reachable from any non-terminal status.
const (
	StatusUploaded       Status = "uploaded"
	StatusSafetyScanning Status = "safety_scanning"
	StatusSafetyPassed   Status = "safety_passed"
	StatusSafetyHold     Status = "safety_hold"
	StatusPageProcessing Status = "page_processing"
	StatusTiling         Status = "tiling"
	StatusReady          Status = "ready"
	StatusFailed         Status = "failed"
)

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

var lattice = map[Status][]Status{
	StatusUploaded:       {StatusSafetyScanning},
	StatusSafetyScanning: {StatusSafetyPassed, StatusSafetyHold},
	StatusSafetyHold:     {StatusSafetyPassed},
	StatusSafetyPassed:   {StatusPageProcessing},
	StatusPageProcessing: {StatusTiling},
	StatusTiling:         {StatusReady},
}

// CanTransition reports whether from → to is a legal forward move in the
// status lattice. Failing a non-terminal yearbook is always legal.
func CanTransition(from, to Status) bool {
	if to == StatusFailed {
		return !from.Terminal()
	}
	for _, next := range lattice[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Stage identifies one phase of yearbook processing. StageSafety targets the
// whole document; the other stages run per page.
type Stage string

// Processing stages dispatched to external workers.
const (
	StageSafety Stage = "safety_scan"
	StageOCR    Stage = "ocr"
	StageFace   Stage = "face_detect"
	StageTiling Stage = "tiling"
)

// PerPage reports whether the stage runs once per page rather than once per document.
func (s Stage) PerPage() bool {
	return s != StageSafety
}

// StageStatus tracks a single page's progress through one per-page stage.
type StageStatus string

// Per-page stage statuses.
const (
	StagePending StageStatus = "pending"
	StageRunning StageStatus = "running"
	StageDone    StageStatus = "done"
	StageFailed  StageStatus = "failed"
)

// Yearbook represents a registered yearbook with its processing state.
type Yearbook struct {
	ID            uuid.UUID `json:"id"`
	SchoolID      uuid.UUID `json:"school_id"`
	UploaderID    uuid.UUID `json:"uploader_id"`
	Status        Status    `json:"status"`
	StoragePath   string    `json:"storage_path"`
	PageCount     int       `json:"page_count"`
	OCRComplete   bool      `json:"ocr_complete"`
	FaceComplete  bool      `json:"face_complete"`
	SafetyRetries int       `json:"safety_retries"`
	OCRRetries    int       `json:"ocr_retries"`
	FaceRetries   int       `json:"face_retries"`
	TilingRetries int       `json:"tiling_retries"`
	FailureReason *string   `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Page represents a single page of a yearbook and its per-stage sub-statuses.
// TileManifest stays nil until the tiling stage completes.
type Page struct {
	ID           uuid.UUID       `json:"id"`
	YearbookID   uuid.UUID       `json:"yearbook_id"`
	PageNumber   int             `json:"page_number"`
	ImagePath    string          `json:"image_path"`
	TileManifest json.RawMessage `json:"tile_manifest,omitempty"`
	OCRStatus    StageStatus     `json:"ocr_status"`
	FaceStatus   StageStatus     `json:"face_status"`
	TilingStatus StageStatus     `json:"tiling_status"`
}

// StageOf returns the page's sub-status for the given per-page stage.
func (p *Page) StageOf(stage Stage) StageStatus {
	switch stage {
	case StageOCR:
		return p.OCRStatus
	case StageFace:
		return p.FaceStatus
	case StageTiling:
		return p.TilingStatus
	}
	return ""
}

// Bounds is a pixel-space bounding box within a page image.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Span represents one extracted text region on a page. Spans are immutable
// once written.
type Span struct {
	ID     uuid.UUID `json:"id"`
	PageID uuid.UUID `json:"page_id"`
	Text   string    `json:"text"`
	Bounds Bounds    `json:"bounds"`
}

// SpanInput carries one OCR result span for persistence.
type SpanInput struct {
	Text   string `json:"text"`
	Bounds Bounds `json:"bounds"`
}

// CreateCommand carries the upload descriptor needed to register a yearbook
// whose source document already resides in blob storage.
type CreateCommand struct {
	SchoolID    uuid.UUID `json:"school_id"`
	UploaderID  uuid.UUID `json:"uploader_id"`
	StoragePath string    `json:"storage_path"`
	PageCount   int       `json:"page_count"`
}

// UploadCommand carries a direct multipart upload. Data holds the raw PDF
// bytes; the page count is extracted from the document itself.
type UploadCommand struct {
	Data       []byte
	Filename   string
	SchoolID   uuid.UUID
	UploaderID uuid.UUID
	PageCount  int
}

// StageTally counts pages by sub-status for a single stage.
type StageTally struct {
	Pending int `json:"pending"`
	Running int `json:"running"`
	Done    int `json:"done"`
	Failed  int `json:"failed"`
}

// Complete reports whether every one of total pages has finished the stage
// successfully: nothing pending or running, nothing failed.
func (t StageTally) Complete(total int) bool {
	return t.Done == total && t.Pending == 0 && t.Running == 0 && t.Failed == 0
}

// Aggregates is a level-triggered snapshot of per-page stage progress for one
// yearbook. It is a pure function of current page state, not of event order,
// so recomputing it redundantly is always safe.
type Aggregates struct {
	PageCount int        `json:"page_count"`
	OCR       StageTally `json:"ocr"`
	Face      StageTally `json:"face"`
	Tiling    StageTally `json:"tiling"`
}

// OCRComplete reports whether every page finished OCR.
func (a *Aggregates) OCRComplete() bool { return a.OCR.Complete(a.PageCount) }

// FaceComplete reports whether every page finished face detection.
func (a *Aggregates) FaceComplete() bool { return a.Face.Complete(a.PageCount) }

// TilingComplete reports whether every page finished tiling.
func (a *Aggregates) TilingComplete() bool { return a.Tiling.Complete(a.PageCount) }

// Tally computes stage aggregates from the current state of a yearbook's pages.
func Tally(pages []Page) Aggregates {
	agg := Aggregates{PageCount: len(pages)}
	for _, p := range pages {
		bump(&agg.OCR, p.OCRStatus)
		bump(&agg.Face, p.FaceStatus)
		bump(&agg.Tiling, p.TilingStatus)
	}
	return agg
}

func bump(t *StageTally, s StageStatus) {
	switch s {
	case StagePending:
		t.Pending++
	case StageRunning:
		t.Running++
	case StageDone:
		t.Done++
	case StageFailed:
		t.Failed++
	}
}
