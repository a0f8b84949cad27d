package workers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/pkg/repository"
)

const jobColumns = "id, kind, yearbook_id, page_id, attempt, status, reason_code, created_at, resolved_at"

// Gateway persists job records and hands work to the worker client.
// Resolve is the deduplication point: only the first callback for a handle
// flips the job to resolved, every later one returns applied=false.
type Gateway interface {
	Find(ctx context.Context, handle uuid.UUID) (*Job, error)
	Dispatch(
		ctx context.Context,
		kind string,
		yearbookID uuid.UUID,
		pageID *uuid.UUID,
		attempt int,
		payload map[string]any,
	) (*Job, error)
	Resolve(ctx context.Context, handle uuid.UUID, reasonCode *string) (*Job, bool, error)
}

type gateway struct {
	db     *sql.DB
	client Client
	logger *slog.Logger
}

// NewGateway creates a job gateway backed by the database and the given client.
func NewGateway(db *sql.DB, client Client, logger *slog.Logger) Gateway {
	return &gateway{
		db:     db,
		client: client,
		logger: logger.With("system", "workers"),
	}
}

func scanJob(s repository.Scanner) (Job, error) {
	var j Job
	err := s.Scan(
		&j.ID,
		&j.Kind,
		&j.YearbookID,
		&j.PageID,
		&j.Attempt,
		&j.Status,
		&j.ReasonCode,
		&j.CreatedAt,
		&j.ResolvedAt,
	)
	return j, err
}

func (g *gateway) Find(ctx context.Context, handle uuid.UUID) (*Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	job, err := repository.QueryOne(ctx, g.db, q, []any{handle}, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &job, nil
}

// Dispatch records the job before delivering it. A delivery failure leaves
// the pending row in place so the attempt still counts against the retry
// budget when the failure callback never arrives.
func (g *gateway) Dispatch(
	ctx context.Context,
	kind string,
	yearbookID uuid.UUID,
	pageID *uuid.UUID,
	attempt int,
	payload map[string]any,
) (*Job, error) {
	if attempt < 1 {
		return nil, fmt.Errorf("%w: attempt must be positive", ErrValidation)
	}

	q := `
		INSERT INTO jobs(id, kind, yearbook_id, page_id, attempt)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + jobColumns

	handle := uuid.New()
	job, err := repository.QueryOne(ctx, g.db, q, []any{handle, kind, yearbookID, pageID, attempt}, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	target := yearbookID
	if pageID != nil {
		target = *pageID
	}

	req := DispatchRequest{
		JobHandle: handle,
		Kind:      kind,
		TargetID:  target,
		Attempt:   attempt,
		Payload:   payload,
	}

	if err := g.client.Dispatch(ctx, req); err != nil {
		g.logger.Error(
			"worker dispatch failed",
			"job_handle", handle,
			"kind", kind,
			"error", err,
		)
		return &job, fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	g.logger.Info(
		"job dispatched",
		"job_handle", handle,
		"kind", kind,
		"yearbook_id", yearbookID,
		"attempt", attempt,
	)
	return &job, nil
}

// Resolve flips a pending job to resolved. The conditional update makes the
// first callback win: repeats find no pending row and come back applied=false
// with the stored job, never an error.
func (g *gateway) Resolve(ctx context.Context, handle uuid.UUID, reasonCode *string) (*Job, bool, error) {
	q := `
		UPDATE jobs
		SET status = $2, reason_code = $3, resolved_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING ` + jobColumns

	job, err := repository.QueryOne(ctx, g.db, q, []any{handle, JobResolved, reasonCode, JobPending}, scanJob)
	if err == nil {
		return &job, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("resolve job: %w", err)
	}

	existing, err := g.Find(ctx, handle)
	if err != nil {
		return nil, false, err
	}

	g.logger.Warn("duplicate job callback ignored", "job_handle", handle)
	return existing, false, nil
}
