package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmswain/bindery/internal/faces"
	"github.com/jmswain/bindery/internal/safety"
	"github.com/jmswain/bindery/internal/workers"
	"github.com/jmswain/bindery/internal/yearbooks"
)

// Safety scan verdicts reported by the scanner worker.
const (
	verdictClean   = "clean"
	verdictFlagged = "flagged"
)

type safetyResult struct {
	Verdict    string `json:"verdict"`
	ReasonCode string `json:"reason_code"`
}

type ocrResult struct {
	Spans []yearbooks.SpanInput `json:"spans"`
}

type faceResult struct {
	Regions []faces.RegionInput `json:"regions"`
}

type tilingResult struct {
	Manifest json.RawMessage `json:"manifest"`
}

// HandleWorkerCallback processes a job completion report. Resolving the job
// handle first makes the whole callback idempotent: a repeated delivery finds
// the handle already resolved and stops there.
func (o *orchestrator) HandleWorkerCallback(ctx context.Context, cb workers.Callback) error {
	if !cb.Outcome.Valid() {
		return fmt.Errorf("%w: unknown outcome %q", ErrValidation, cb.Outcome)
	}

	job, applied, err := o.gateway.Resolve(ctx, cb.JobHandle, cb.ReasonCode)
	if err != nil {
		return err
	}
	if !applied {
		o.logger.Info("callback already processed", "job_handle", cb.JobHandle)
		return nil
	}

	switch yearbooks.Stage(job.Kind) {
	case yearbooks.StageSafety:
		err = o.completeSafety(ctx, job, cb)
	case yearbooks.StageOCR:
		err = o.completePageStage(ctx, job, cb, yearbooks.StageOCR)
	case yearbooks.StageFace:
		err = o.completePageStage(ctx, job, cb, yearbooks.StageFace)
	case yearbooks.StageTiling:
		err = o.completePageStage(ctx, job, cb, yearbooks.StageTiling)
	default:
		return fmt.Errorf("%w: unknown job kind %q", ErrValidation, job.Kind)
	}
	if err != nil {
		return err
	}

	return o.Advance(ctx, job.YearbookID)
}

func (o *orchestrator) completeSafety(ctx context.Context, job *workers.Job, cb workers.Callback) error {
	if cb.Outcome == workers.OutcomeFailure {
		return o.retrySafety(ctx, job, cb)
	}

	var result safetyResult
	if err := json.Unmarshal(cb.Payload, &result); err != nil {
		return fmt.Errorf("%w: safety payload: %v", ErrValidation, err)
	}

	switch result.Verdict {
	case verdictClean:
		if _, err := o.yearbooks.Transition(
			ctx, job.YearbookID,
			yearbooks.StatusSafetyScanning, yearbooks.StatusSafetyPassed,
		); err != nil {
			return err
		}
		o.logger.Info("safety scan passed", "yearbook_id", job.YearbookID)
		return nil

	case verdictFlagged:
		if _, err := o.safety.Create(ctx, job.YearbookID, result.ReasonCode); err != nil {
			return err
		}
		if _, err := o.yearbooks.Transition(
			ctx, job.YearbookID,
			yearbooks.StatusSafetyScanning, yearbooks.StatusSafetyHold,
		); err != nil {
			return err
		}
		o.logger.Warn(
			"yearbook held for moderation",
			"yearbook_id", job.YearbookID,
			"reason_code", result.ReasonCode,
		)
		return nil

	default:
		return fmt.Errorf("%w: unknown safety verdict %q", ErrValidation, result.Verdict)
	}
}

func (o *orchestrator) retrySafety(ctx context.Context, job *workers.Job, cb workers.Callback) error {
	if job.Attempt < o.policy.MaxAttempts {
		if err := o.yearbooks.BumpRetry(ctx, job.YearbookID, yearbooks.StageSafety); err != nil {
			return err
		}

		y, err := o.yearbooks.Find(ctx, job.YearbookID)
		if err != nil {
			return err
		}

		o.dispatchSafety(ctx, y, job.Attempt+1)
		return nil
	}

	reason := fmt.Sprintf("safety scan failed after %d attempts", job.Attempt)
	if cb.ReasonCode != nil {
		reason = fmt.Sprintf("%s: %s", reason, *cb.ReasonCode)
	}
	return o.yearbooks.Fail(ctx, job.YearbookID, reason)
}

// completePageStage applies the outcome of one per-page job. Success writes
// the stage artifact and flips the page sub-status running → done; the
// compare-and-set absorbs any callback that lost a race.
func (o *orchestrator) completePageStage(
	ctx context.Context,
	job *workers.Job,
	cb workers.Callback,
	stage yearbooks.Stage,
) error {
	if job.PageID == nil {
		return fmt.Errorf("%w: %s job missing page reference", ErrValidation, stage)
	}
	pageID := *job.PageID

	if cb.Outcome == workers.OutcomeFailure {
		return o.retryPageStage(ctx, job, cb, stage)
	}

	switch stage {
	case yearbooks.StageOCR:
		var result ocrResult
		if err := json.Unmarshal(cb.Payload, &result); err != nil {
			return fmt.Errorf("%w: ocr payload: %v", ErrValidation, err)
		}
		if err := o.yearbooks.InsertSpans(ctx, pageID, result.Spans); err != nil {
			return err
		}

	case yearbooks.StageFace:
		var result faceResult
		if err := json.Unmarshal(cb.Payload, &result); err != nil {
			return fmt.Errorf("%w: face payload: %v", ErrValidation, err)
		}
		if err := o.faces.InsertRegions(ctx, pageID, result.Regions); err != nil {
			return err
		}

	case yearbooks.StageTiling:
		var result tilingResult
		if err := json.Unmarshal(cb.Payload, &result); err != nil {
			return fmt.Errorf("%w: tiling payload: %v", ErrValidation, err)
		}
		if err := o.yearbooks.SetTileManifest(ctx, pageID, result.Manifest); err != nil {
			return err
		}
	}

	applied, err := o.yearbooks.SetPageStage(
		ctx, pageID, stage,
		yearbooks.StageRunning, yearbooks.StageDone,
	)
	if err != nil {
		return err
	}
	if !applied {
		o.logger.Info(
			"stale page stage callback absorbed",
			"page_id", pageID,
			"stage", stage,
		)
	}
	return nil
}

func (o *orchestrator) retryPageStage(
	ctx context.Context,
	job *workers.Job,
	cb workers.Callback,
	stage yearbooks.Stage,
) error {
	pageID := *job.PageID

	if job.Attempt < o.policy.MaxAttempts {
		if err := o.yearbooks.BumpRetry(ctx, job.YearbookID, stage); err != nil {
			return err
		}

		page, err := o.yearbooks.FindPage(ctx, pageID)
		if err != nil {
			return err
		}

		o.dispatchPageStage(ctx, job.YearbookID, *page, stage, job.Attempt+1)
		return nil
	}

	if _, err := o.yearbooks.SetPageStage(
		ctx, pageID, stage,
		yearbooks.StageRunning, yearbooks.StageFailed,
	); err != nil {
		return err
	}

	page, err := o.yearbooks.FindPage(ctx, pageID)
	if err != nil {
		return err
	}

	reason := fmt.Sprintf(
		"page %d: %s failed after %d attempts",
		page.PageNumber, stage, job.Attempt,
	)
	if cb.ReasonCode != nil {
		reason = fmt.Sprintf("%s: %s", reason, *cb.ReasonCode)
	}
	return o.yearbooks.Fail(ctx, job.YearbookID, reason)
}

// HandleModerationDecision applies a reviewer ruling to a held yearbook.
// The decision is compare-and-set on the queue item, so a second ruling for
// the same item is absorbed without effect.
func (o *orchestrator) HandleModerationDecision(ctx context.Context, cmd ModerationCommand) error {
	item, applied, err := o.safety.Decide(ctx, cmd.ItemID, cmd.Decision, cmd.ReviewerID)
	if err != nil {
		return err
	}
	if !applied {
		o.logger.Info("moderation decision already processed", "item_id", cmd.ItemID)
		return nil
	}

	switch cmd.Decision {
	case safety.DecisionRejected:
		return o.yearbooks.Fail(
			ctx, item.YearbookID,
			fmt.Sprintf("content rejected: %s", item.ReasonCode),
		)

	case safety.DecisionApproved:
		if _, err := o.yearbooks.Transition(
			ctx, item.YearbookID,
			yearbooks.StatusSafetyHold, yearbooks.StatusSafetyPassed,
		); err != nil {
			return err
		}
		return o.Advance(ctx, item.YearbookID)
	}

	return nil
}
