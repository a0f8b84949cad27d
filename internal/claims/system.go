package claims

import (
	"context"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/pkg/pagination"
)

// System defines the public contract for claim domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Claim], error)

	Find(ctx context.Context, id uuid.UUID) (*Claim, error)

	// Submit creates a pending claim against a face region. It fails with
	// ErrNotReady if the owning yearbook has not reached ready status and
	// ErrDuplicateClaim if the claimant already has an unrejected claim on
	// the region.
	Submit(ctx context.Context, faceRegionID, claimantID uuid.UUID) (*Claim, error)

	// Resolve applies an adjudication decision. Verifying sets the claim
	// verified, auto-rejects all other pending claims on the same face
	// region, and records the claimant on the region; it fails with
	// ErrConflict if a different claim already holds verified status.
	// Rejecting marks only this claim rejected.
	Resolve(ctx context.Context, id uuid.UUID, decision Decision) (*Claim, error)
}
