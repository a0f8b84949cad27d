package yearbooks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/pkg/pagination"
)

// System defines the public contract for yearbook domain operations.
// SetPageStage and Transition follow a compare-and-set discipline: the write
// applies only if the current value equals the expected one, and a lost race
// is reported as applied=false rather than an error so duplicate or late
// callbacks are absorbed instead of double-applied.
type System interface {
	Handler(intake Intake, maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Yearbook], error)

	Find(ctx context.Context, id uuid.UUID) (*Yearbook, error)
	Create(ctx context.Context, cmd CreateCommand) (*Yearbook, error)
	CreateFromUpload(ctx context.Context, cmd UploadCommand) (*Yearbook, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Pages(ctx context.Context, yearbookID uuid.UUID) ([]Page, error)
	FindPage(ctx context.Context, pageID uuid.UUID) (*Page, error)
	PageSpans(ctx context.Context, pageID uuid.UUID) ([]Span, error)

	InsertSpans(ctx context.Context, pageID uuid.UUID, spans []SpanInput) error
	SetTileManifest(ctx context.Context, pageID uuid.UUID, manifest json.RawMessage) error

	SetPageStage(
		ctx context.Context,
		pageID uuid.UUID,
		stage Stage,
		expected, next StageStatus,
	) (bool, error)

	Transition(ctx context.Context, id uuid.UUID, expected, next Status) (bool, error)
	Fail(ctx context.Context, id uuid.UUID, reason string) error
	BumpRetry(ctx context.Context, id uuid.UUID, stage Stage) error

	RecomputeAggregates(ctx context.Context, yearbookID uuid.UUID) (*Aggregates, error)
}

// Intake is implemented by the pipeline orchestrator. The upload handler
// routes creation through it so a fresh yearbook immediately enters the
// safety-scan stage.
type Intake interface {
	Intake(ctx context.Context, cmd CreateCommand) (*Yearbook, error)
	IntakeUpload(ctx context.Context, cmd UploadCommand) (*Yearbook, error)
}
