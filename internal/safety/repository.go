package safety

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/pkg/repository"
)

const itemColumns = "id, yearbook_id, reason_code, status, reviewer_id, created_at, decided_at"

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a moderation queue repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "safety"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func scanItem(s repository.Scanner) (Item, error) {
	var i Item
	err := s.Scan(
		&i.ID,
		&i.YearbookID,
		&i.ReasonCode,
		&i.Status,
		&i.ReviewerID,
		&i.CreatedAt,
		&i.DecidedAt,
	)
	return i, err
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Item, error) {
	q := `SELECT ` + itemColumns + ` FROM safety_queue WHERE id = $1`

	item, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanItem)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &item, nil
}

func (r *repo) ListPending(ctx context.Context) ([]Item, error) {
	q := `
		SELECT ` + itemColumns + `
		FROM safety_queue
		WHERE status = $1
		ORDER BY created_at ASC`

	items, err := repository.QueryMany(ctx, r.db, q, []any{ItemPending}, scanItem)
	if err != nil {
		return nil, fmt.Errorf("list pending safety items: %w", err)
	}
	return items, nil
}

func (r *repo) Create(ctx context.Context, yearbookID uuid.UUID, reasonCode string) (*Item, error) {
	q := `
		INSERT INTO safety_queue(id, yearbook_id, reason_code)
		VALUES ($1, $2, $3)
		RETURNING ` + itemColumns

	item, err := repository.QueryOne(ctx, r.db, q, []any{uuid.New(), yearbookID, reasonCode}, scanItem)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"yearbook queued for moderation",
		"id", item.ID,
		"yearbook_id", yearbookID,
		"reason_code", reasonCode,
	)
	return &item, nil
}

// Decide records a reviewer's ruling on a pending queue item. The update is
// conditional on the item still being pending: a second decision for the same
// item returns the stored item with applied=false instead of overwriting the
// first ruling.
func (r *repo) Decide(
	ctx context.Context,
	id uuid.UUID,
	decision Decision,
	reviewerID uuid.UUID,
) (*Item, bool, error) {
	if !decision.Valid() {
		return nil, false, fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
	}
	if reviewerID == uuid.Nil {
		return nil, false, fmt.Errorf("%w: reviewer reference required", ErrValidation)
	}

	q := `
		UPDATE safety_queue
		SET status = $2, reviewer_id = $3, decided_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING ` + itemColumns

	item, err := repository.QueryOne(
		ctx, r.db, q,
		[]any{id, ItemStatus(decision), reviewerID, ItemPending},
		scanItem,
	)
	if err == nil {
		r.logger.Info(
			"moderation decision recorded",
			"id", item.ID,
			"yearbook_id", item.YearbookID,
			"decision", decision,
		)
		return &item, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("decide safety item: %w", err)
	}

	// Not pending anymore, or unknown. Distinguish the two.
	existing, err := r.Find(ctx, id)
	if err != nil {
		return nil, false, err
	}

	r.logger.Warn(
		"moderation decision ignored, item already decided",
		"id", existing.ID,
		"status", existing.Status,
	)
	return existing, false, nil
}
