package faces

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for face region domain operations.
type System interface {
	Handler() *Handler

	Find(ctx context.Context, id uuid.UUID) (*Region, error)
	ListByPage(ctx context.Context, pageID uuid.UUID) ([]Region, error)
	ListByYearbook(ctx context.Context, yearbookID uuid.UUID) ([]Region, error)

	InsertRegions(ctx context.Context, pageID uuid.UUID, regions []RegionInput) error
}
