// Package pipeline orchestrates yearbook processing: intake, the safety scan,
// per-page OCR and face detection fan-out, tiling, and the promotion to ready.
// Progress is level-triggered: every callback funnels into Advance, which
// derives the next action from current state rather than from event order, so
// duplicate and out-of-order callbacks converge instead of corrupting.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/internal/faces"
	"github.com/jmswain/bindery/internal/safety"
	"github.com/jmswain/bindery/internal/workers"
	"github.com/jmswain/bindery/internal/yearbooks"
)

// Policy holds operator-tunable pipeline behavior.
type Policy struct {
	// MaxAttempts is the number of times a stage is tried before the
	// yearbook is failed. The first dispatch counts as attempt 1.
	MaxAttempts int
}

// System defines the public contract for pipeline orchestration.
type System interface {
	Handler() *Handler

	Intake(ctx context.Context, cmd yearbooks.CreateCommand) (*yearbooks.Yearbook, error)
	IntakeUpload(ctx context.Context, cmd yearbooks.UploadCommand) (*yearbooks.Yearbook, error)

	HandleWorkerCallback(ctx context.Context, cb workers.Callback) error
	HandleModerationDecision(ctx context.Context, cmd ModerationCommand) error

	Advance(ctx context.Context, yearbookID uuid.UUID) error
}

// ModerationCommand carries a reviewer decision posted to the moderation callback.
type ModerationCommand struct {
	ItemID     uuid.UUID       `json:"item_id"`
	Decision   safety.Decision `json:"decision"`
	ReviewerID uuid.UUID       `json:"reviewer_id"`
}

type orchestrator struct {
	yearbooks yearbooks.System
	faces     faces.System
	safety    safety.System
	gateway   workers.Gateway
	policy    Policy
	logger    *slog.Logger
}

// New creates the pipeline orchestrator.
func New(
	yb yearbooks.System,
	fc faces.System,
	sf safety.System,
	gw workers.Gateway,
	policy Policy,
	logger *slog.Logger,
) System {
	return &orchestrator{
		yearbooks: yb,
		faces:     fc,
		safety:    sf,
		gateway:   gw,
		policy:    policy,
		logger:    logger.With("system", "pipeline"),
	}
}

func (o *orchestrator) Handler() *Handler {
	return NewHandler(o, o.logger)
}

// Intake registers a yearbook from an upload descriptor and starts the safety scan.
func (o *orchestrator) Intake(
	ctx context.Context,
	cmd yearbooks.CreateCommand,
) (*yearbooks.Yearbook, error) {
	y, err := o.yearbooks.Create(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return o.beginSafetyScan(ctx, y)
}

// IntakeUpload stores a directly uploaded document, registers the yearbook,
// and starts the safety scan.
func (o *orchestrator) IntakeUpload(
	ctx context.Context,
	cmd yearbooks.UploadCommand,
) (*yearbooks.Yearbook, error) {
	y, err := o.yearbooks.CreateFromUpload(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return o.beginSafetyScan(ctx, y)
}

func (o *orchestrator) beginSafetyScan(
	ctx context.Context,
	y *yearbooks.Yearbook,
) (*yearbooks.Yearbook, error) {
	applied, err := o.yearbooks.Transition(
		ctx, y.ID,
		yearbooks.StatusUploaded, yearbooks.StatusSafetyScanning,
	)
	if err != nil {
		return nil, err
	}
	if !applied {
		o.logger.Warn("yearbook already past intake", "yearbook_id", y.ID, "status", y.Status)
		return y, nil
	}
	y.Status = yearbooks.StatusSafetyScanning

	o.dispatchSafety(ctx, y, 1)
	return y, nil
}

// dispatchSafety hands the whole document to the safety scanner. A delivery
// failure counts as a failed attempt and flows through the same retry path as
// a failure callback from the worker.
func (o *orchestrator) dispatchSafety(ctx context.Context, y *yearbooks.Yearbook, attempt int) {
	payload := map[string]any{
		"storage_path": y.StoragePath,
		"page_count":   y.PageCount,
	}

	job, err := o.gateway.Dispatch(
		ctx, string(yearbooks.StageSafety), y.ID, nil, attempt, payload,
	)
	if err != nil {
		o.logger.Error(
			"safety scan dispatch failed",
			"yearbook_id", y.ID,
			"attempt", attempt,
			"error", err,
		)
		o.absorbDispatchFailure(ctx, job)
	}
}

func (o *orchestrator) dispatchPageStage(
	ctx context.Context,
	yearbookID uuid.UUID,
	page yearbooks.Page,
	stage yearbooks.Stage,
	attempt int,
) {
	payload := map[string]any{
		"image_path":  page.ImagePath,
		"page_number": page.PageNumber,
	}

	pageID := page.ID
	job, err := o.gateway.Dispatch(
		ctx, string(stage), yearbookID, &pageID, attempt, payload,
	)
	if err != nil {
		o.logger.Error(
			"page stage dispatch failed",
			"yearbook_id", yearbookID,
			"page_id", page.ID,
			"stage", stage,
			"attempt", attempt,
			"error", err,
		)
		o.absorbDispatchFailure(ctx, job)
	}
}

// absorbDispatchFailure treats an undeliverable dispatch like a failure
// callback for the just-created handle: the job is resolved and the stage
// retried, so an unreachable worker exhausts the attempt budget and fails the
// yearbook instead of leaving it stuck with a pending job nothing resolves.
func (o *orchestrator) absorbDispatchFailure(ctx context.Context, job *workers.Job) {
	if job == nil {
		return
	}

	reason := "worker_unreachable"
	if _, applied, err := o.gateway.Resolve(ctx, job.ID, &reason); err != nil || !applied {
		o.logger.Error(
			"undeliverable job could not be resolved",
			"job_handle", job.ID,
			"kind", job.Kind,
			"error", err,
		)
		return
	}

	cb := workers.Callback{
		JobHandle:  job.ID,
		Outcome:    workers.OutcomeFailure,
		ReasonCode: &reason,
	}

	var err error
	if yearbooks.Stage(job.Kind) == yearbooks.StageSafety {
		err = o.retrySafety(ctx, job, cb)
	} else {
		err = o.retryPageStage(ctx, job, cb, yearbooks.Stage(job.Kind))
	}
	if err != nil {
		o.logger.Error(
			"dispatch failure recovery failed",
			"job_handle", job.ID,
			"kind", job.Kind,
			"error", err,
		)
	}
}
