package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/internal/yearbooks"
	"github.com/jmswain/bindery/pkg/pagination"
	"github.com/jmswain/bindery/pkg/query"
	"github.com/jmswain/bindery/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a claim repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "claims"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Claim], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count claims: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanClaim)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Claim, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClaim)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicateClaim)
	}
	return &c, nil
}

func (r *repo) Submit(ctx context.Context, faceRegionID, claimantID uuid.UUID) (*Claim, error) {
	if claimantID == uuid.Nil {
		return nil, fmt.Errorf("%w: claimant reference required", ErrValidation)
	}

	statusQ := `
		SELECT y.status
		FROM face_regions f
		JOIN pages p ON p.id = f.page_id
		JOIN yearbooks y ON y.id = p.yearbook_id
		WHERE f.id = $1`

	var status yearbooks.Status
	if err := r.db.QueryRowContext(ctx, statusQ, faceRegionID).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFaceNotFound
		}
		return nil, fmt.Errorf("resolve face region yearbook: %w", err)
	}

	if status != yearbooks.StatusReady {
		return nil, fmt.Errorf("%w: yearbook status is %s", ErrNotReady, status)
	}

	insertQ := `
		INSERT INTO claims(id, face_region_id, claimant_id)
		VALUES ($1, $2, $3)
		RETURNING ` + claimColumns

	insertArgs := []any{uuid.New(), faceRegionID, claimantID}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Claim, error) {
		dupQ := `
			SELECT EXISTS(
				SELECT 1 FROM claims
				WHERE face_region_id = $1 AND claimant_id = $2 AND status <> $3
			)`

		var dup bool
		if err := tx.QueryRowContext(ctx, dupQ, faceRegionID, claimantID, ClaimRejected).Scan(&dup); err != nil {
			return Claim{}, err
		}
		if dup {
			return Claim{}, ErrDuplicateClaim
		}

		return repository.QueryOne(ctx, tx, insertQ, insertArgs, scanClaim)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrFaceNotFound, ErrDuplicateClaim)
	}

	r.logger.Info(
		"claim submitted",
		"id", c.ID,
		"face_region_id", faceRegionID,
		"claimant_id", claimantID,
	)
	return &c, nil
}

func (r *repo) Resolve(ctx context.Context, id uuid.UUID, decision Decision) (*Claim, error) {
	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Claim, error) {
		lockQ := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1 FOR UPDATE`

		claim, err := repository.QueryOne(ctx, tx, lockQ, []any{id}, scanClaim)
		if err != nil {
			return Claim{}, err
		}

		siblingQ := `
			SELECT ` + claimColumns + `
			FROM claims
			WHERE face_region_id = $1 AND id <> $2
			FOR UPDATE`

		siblings, err := repository.QueryMany(
			ctx, tx, siblingQ,
			[]any{claim.FaceRegionID, claim.ID},
			scanClaim,
		)
		if err != nil {
			return Claim{}, err
		}

		plan, err := PlanResolution(claim, siblings, decision)
		if err != nil {
			return Claim{}, err
		}
		if plan.NoOp {
			return claim, nil
		}

		updateQ := `
			UPDATE claims
			SET status = $2, resolved_at = NOW()
			WHERE id = $1
			RETURNING ` + claimColumns

		resolved, err := repository.QueryOne(ctx, tx, updateQ, []any{claim.ID, plan.Status}, scanClaim)
		if err != nil {
			return Claim{}, err
		}

		for _, siblingID := range plan.RejectPending {
			if err := repository.ExecExpectOne(
				ctx, tx,
				"UPDATE claims SET status = $2, resolved_at = NOW() WHERE id = $1",
				siblingID, ClaimRejected,
			); err != nil {
				return Claim{}, fmt.Errorf("auto-reject claim %s: %w", siblingID, err)
			}
		}

		if plan.SetClaimedBy {
			if err := repository.ExecExpectOne(
				ctx, tx,
				"UPDATE face_regions SET claimed_by = $2 WHERE id = $1",
				claim.FaceRegionID, claim.ClaimantID,
			); err != nil {
				return Claim{}, fmt.Errorf("set claimed_by: %w", err)
			}
		}

		return resolved, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicateClaim)
	}

	r.logger.Info(
		"claim resolved",
		"id", c.ID,
		"face_region_id", c.FaceRegionID,
		"status", c.Status,
	)
	return &c, nil
}
