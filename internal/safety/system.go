package safety

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for moderation queue operations.
// Decide follows the compare-and-set discipline: a decision applies only to a
// pending item, and applied=false signals a duplicate or late decision that
// was absorbed rather than double-applied.
type System interface {
	Handler() *Handler

	Find(ctx context.Context, id uuid.UUID) (*Item, error)
	ListPending(ctx context.Context) ([]Item, error)

	Create(ctx context.Context, yearbookID uuid.UUID, reasonCode string) (*Item, error)
	Decide(
		ctx context.Context,
		id uuid.UUID,
		decision Decision,
		reviewerID uuid.UUID,
	) (*Item, bool, error)
}
