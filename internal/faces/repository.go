package faces

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/pkg/repository"
)

const regionColumns = "f.id, f.page_id, f.x, f.y, f.width, f.height, f.claimed_by"

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a face region repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "faces"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Region, error) {
	q := `SELECT ` + regionColumns + ` FROM face_regions f WHERE f.id = $1`

	region, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanRegion)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &region, nil
}

func (r *repo) ListByPage(ctx context.Context, pageID uuid.UUID) ([]Region, error) {
	q := `
		SELECT ` + regionColumns + `
		FROM face_regions f
		WHERE f.page_id = $1
		ORDER BY f.y, f.x`

	regions, err := repository.QueryMany(ctx, r.db, q, []any{pageID}, scanRegion)
	if err != nil {
		return nil, fmt.Errorf("query face regions: %w", err)
	}
	return regions, nil
}

func (r *repo) ListByYearbook(ctx context.Context, yearbookID uuid.UUID) ([]Region, error) {
	q := `
		SELECT ` + regionColumns + `
		FROM face_regions f
		JOIN pages p ON p.id = f.page_id
		WHERE p.yearbook_id = $1
		ORDER BY p.page_number, f.y, f.x`

	regions, err := repository.QueryMany(ctx, r.db, q, []any{yearbookID}, scanRegion)
	if err != nil {
		return nil, fmt.Errorf("query yearbook face regions: %w", err)
	}
	return regions, nil
}

func (r *repo) InsertRegions(ctx context.Context, pageID uuid.UUID, regions []RegionInput) error {
	q := `
		INSERT INTO face_regions(id, page_id, x, y, width, height)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, region := range regions {
			if _, err := tx.ExecContext(
				ctx, q,
				uuid.New(), pageID,
				region.Bounds.X, region.Bounds.Y,
				region.Bounds.Width, region.Bounds.Height,
			); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})

	if err != nil {
		return fmt.Errorf("insert face regions for page %s: %w", pageID, err)
	}

	r.logger.Info("face regions stored", "page_id", pageID, "count", len(regions))
	return nil
}

func scanRegion(s repository.Scanner) (Region, error) {
	var region Region
	err := s.Scan(
		&region.ID,
		&region.PageID,
		&region.Bounds.X,
		&region.Bounds.Y,
		&region.Bounds.Width,
		&region.Bounds.Height,
		&region.ClaimedBy,
	)
	return region, err
}
