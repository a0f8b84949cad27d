package pipeline

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jmswain/bindery/internal/yearbooks"
)

// Advance moves a yearbook forward as far as its current state allows. It is
// safe to call redundantly: each step is guarded by a compare-and-set
// transition, and aggregate checks are recomputed from page state.
func (o *orchestrator) Advance(ctx context.Context, yearbookID uuid.UUID) error {
	y, err := o.yearbooks.Find(ctx, yearbookID)
	if err != nil {
		return err
	}

	switch y.Status {
	case yearbooks.StatusSafetyPassed:
		return o.startPageProcessing(ctx, y)

	case yearbooks.StatusPageProcessing:
		return o.maybeStartTiling(ctx, y)

	case yearbooks.StatusTiling:
		return o.maybePromoteReady(ctx, y)
	}

	return nil
}

// startPageProcessing fans OCR and face detection out across every page.
// The per-page pending → running compare-and-set makes the fan-out safe to
// repeat: a page that already started is skipped, not re-dispatched.
func (o *orchestrator) startPageProcessing(ctx context.Context, y *yearbooks.Yearbook) error {
	applied, err := o.yearbooks.Transition(
		ctx, y.ID,
		yearbooks.StatusSafetyPassed, yearbooks.StatusPageProcessing,
	)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	pages, err := o.yearbooks.Pages(ctx, y.ID)
	if err != nil {
		return err
	}

	o.logger.Info("page processing started", "yearbook_id", y.ID, "pages", len(pages))

	g, gctx := errgroup.WithContext(ctx)
	for _, page := range pages {
		g.Go(func() error {
			return o.startPageStage(gctx, y.ID, page, yearbooks.StageOCR)
		})
		g.Go(func() error {
			return o.startPageStage(gctx, y.ID, page, yearbooks.StageFace)
		})
	}
	return g.Wait()
}

func (o *orchestrator) startPageStage(
	ctx context.Context,
	yearbookID uuid.UUID,
	page yearbooks.Page,
	stage yearbooks.Stage,
) error {
	applied, err := o.yearbooks.SetPageStage(
		ctx, page.ID, stage,
		yearbooks.StagePending, yearbooks.StageRunning,
	)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	o.dispatchPageStage(ctx, yearbookID, page, stage, 1)
	return nil
}

func (o *orchestrator) maybeStartTiling(ctx context.Context, y *yearbooks.Yearbook) error {
	agg, err := o.yearbooks.RecomputeAggregates(ctx, y.ID)
	if err != nil {
		return err
	}
	if !agg.OCRComplete() || !agg.FaceComplete() {
		return nil
	}

	applied, err := o.yearbooks.Transition(
		ctx, y.ID,
		yearbooks.StatusPageProcessing, yearbooks.StatusTiling,
	)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	pages, err := o.yearbooks.Pages(ctx, y.ID)
	if err != nil {
		return err
	}

	o.logger.Info("tiling started", "yearbook_id", y.ID, "pages", len(pages))

	g, gctx := errgroup.WithContext(ctx)
	for _, page := range pages {
		g.Go(func() error {
			return o.startPageStage(gctx, y.ID, page, yearbooks.StageTiling)
		})
	}
	return g.Wait()
}

func (o *orchestrator) maybePromoteReady(ctx context.Context, y *yearbooks.Yearbook) error {
	agg, err := o.yearbooks.RecomputeAggregates(ctx, y.ID)
	if err != nil {
		return err
	}
	if !agg.TilingComplete() {
		return nil
	}

	applied, err := o.yearbooks.Transition(
		ctx, y.ID,
		yearbooks.StatusTiling, yearbooks.StatusReady,
	)
	if err != nil {
		return err
	}
	if applied {
		o.logger.Info("yearbook ready", "yearbook_id", y.ID, "pages", agg.PageCount)
	}
	return nil
}
