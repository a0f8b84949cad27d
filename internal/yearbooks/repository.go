package yearbooks

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/pkg/pagination"
	"github.com/jmswain/bindery/pkg/query"
	"github.com/jmswain/bindery/pkg/repository"
	"github.com/jmswain/bindery/pkg/storage"
)

const sourceBlobName = "source.pdf"

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a yearbook repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "yearbooks"),
		pagination: pagination,
	}
}

func (r *repo) Handler(intake Intake, maxUploadSize int64) *Handler {
	return NewHandler(r, intake, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Yearbook], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "StoragePath", "FailureReason")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count yearbooks: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	books, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanYearbook)
	if err != nil {
		return nil, fmt.Errorf("query yearbooks: %w", err)
	}

	result := pagination.NewPageResult(books, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Yearbook, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	yb, err := repository.QueryOne(ctx, r.db, q, args, scanYearbook)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &yb, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Yearbook, error) {
	if err := validateCreate(cmd); err != nil {
		return nil, err
	}

	exists, err := r.storage.Exists(ctx, cmd.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("check storage path: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: storage path %s unreachable", ErrValidation, cmd.StoragePath)
	}

	yb, err := r.insertYearbook(ctx, uuid.New(), cmd)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"yearbook created",
		"id", yb.ID,
		"school_id", yb.SchoolID,
		"page_count", yb.PageCount,
	)
	return yb, nil
}

func (r *repo) insertYearbook(ctx context.Context, id uuid.UUID, cmd CreateCommand) (*Yearbook, error) {
	q := `
		INSERT INTO yearbooks(id, school_id, uploader_id, storage_path, page_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + yearbookColumns

	insertArgs := []any{id, cmd.SchoolID, cmd.UploaderID, cmd.StoragePath, cmd.PageCount}

	pageQ := `
		INSERT INTO pages(id, yearbook_id, page_number, image_path)
		VALUES ($1, $2, $3, $4)`

	yb, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Yearbook, error) {
		created, err := repository.QueryOne(ctx, tx, q, insertArgs, scanYearbook)
		if err != nil {
			return Yearbook{}, err
		}

		for n := 1; n <= cmd.PageCount; n++ {
			imagePath := pageImagePath(cmd.StoragePath, n)
			if _, err := tx.ExecContext(ctx, pageQ, uuid.New(), id, n, imagePath); err != nil {
				return Yearbook{}, fmt.Errorf("insert page %d: %w", n, err)
			}
		}

		return created, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &yb, nil
}

func (r *repo) CreateFromUpload(ctx context.Context, cmd UploadCommand) (*Yearbook, error) {
	if cmd.PageCount <= 0 {
		return nil, fmt.Errorf("%w: page count must be positive", ErrValidation)
	}
	if cmd.SchoolID == uuid.Nil || cmd.UploaderID == uuid.Nil {
		return nil, fmt.Errorf("%w: school and uploader references required", ErrValidation)
	}

	id := uuid.New()
	key := fmt.Sprintf("yearbooks/%s/%s", id, sourceBlobName)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), "application/pdf"); err != nil {
		return nil, fmt.Errorf("upload yearbook blob: %w", err)
	}

	yb, err := r.insertYearbook(ctx, id, CreateCommand{
		SchoolID:    cmd.SchoolID,
		UploaderID:  cmd.UploaderID,
		StoragePath: key,
		PageCount:   cmd.PageCount,
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, err
	}

	r.logger.Info("yearbook uploaded", "id", yb.ID, "filename", cmd.Filename)
	return yb, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	yb, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM yearbooks WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, yb.StoragePath); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", yb.StoragePath,
			"error", delErr,
		)
	}

	r.logger.Info("yearbook deleted", "id", id)
	return nil
}

func (r *repo) Pages(ctx context.Context, yearbookID uuid.UUID) ([]Page, error) {
	q := `
		SELECT ` + pageColumns + `
		FROM pages
		WHERE yearbook_id = $1
		ORDER BY page_number`

	pages, err := repository.QueryMany(ctx, r.db, q, []any{yearbookID}, scanPage)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	return pages, nil
}

func (r *repo) FindPage(ctx context.Context, pageID uuid.UUID) (*Page, error) {
	q := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`

	p, err := repository.QueryOne(ctx, r.db, q, []any{pageID}, scanPage)
	if err != nil {
		return nil, repository.MapError(err, ErrPageNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) PageSpans(ctx context.Context, pageID uuid.UUID) ([]Span, error) {
	q := `
		SELECT id, page_id, text, x, y, width, height
		FROM ocr_spans
		WHERE page_id = $1
		ORDER BY y, x`

	spans, err := repository.QueryMany(ctx, r.db, q, []any{pageID}, scanSpan)
	if err != nil {
		return nil, fmt.Errorf("query spans: %w", err)
	}
	return spans, nil
}

func (r *repo) InsertSpans(ctx context.Context, pageID uuid.UUID, spans []SpanInput) error {
	q := `
		INSERT INTO ocr_spans(id, page_id, text, x, y, width, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, s := range spans {
			if _, err := tx.ExecContext(
				ctx, q,
				uuid.New(), pageID, s.Text,
				s.Bounds.X, s.Bounds.Y, s.Bounds.Width, s.Bounds.Height,
			); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})

	if err != nil {
		return fmt.Errorf("insert spans for page %s: %w", pageID, err)
	}
	return nil
}

func (r *repo) SetTileManifest(ctx context.Context, pageID uuid.UUID, manifest json.RawMessage) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE pages SET tile_manifest = $2 WHERE id = $1",
		pageID, []byte(manifest),
	)
	if err != nil {
		return repository.MapError(err, ErrPageNotFound, ErrDuplicate)
	}
	return nil
}

var stageColumns = map[Stage]string{
	StageOCR:    "ocr_status",
	StageFace:   "face_status",
	StageTiling: "tiling_status",
}

func (r *repo) SetPageStage(
	ctx context.Context,
	pageID uuid.UUID,
	stage Stage,
	expected, next StageStatus,
) (bool, error) {
	col, ok := stageColumns[stage]
	if !ok {
		return false, fmt.Errorf("stage %s is not a per-page stage", stage)
	}

	q := fmt.Sprintf("UPDATE pages SET %s = $1 WHERE id = $2 AND %s = $3", col, col)

	result, err := r.db.ExecContext(ctx, q, next, pageID, expected)
	if err != nil {
		return false, fmt.Errorf("update page stage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *repo) Transition(ctx context.Context, id uuid.UUID, expected, next Status) (bool, error) {
	if !CanTransition(expected, next) {
		return false, fmt.Errorf("%w: %s → %s", ErrTransition, expected, next)
	}

	result, err := r.db.ExecContext(
		ctx,
		"UPDATE yearbooks SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		next, id, expected,
	)
	if err != nil {
		return false, fmt.Errorf("transition yearbook: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if rows == 1 {
		r.logger.Info("yearbook transitioned", "id", id, "from", expected, "to", next)
	}
	return rows == 1, nil
}

func (r *repo) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE yearbooks
		 SET status = $1, failure_reason = $2, updated_at = NOW()
		 WHERE id = $3 AND status NOT IN ($4, $5)`,
		StatusFailed, reason, id, StatusReady, StatusFailed,
	)
	if err != nil {
		return fmt.Errorf("fail yearbook: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 1 {
		r.logger.Warn("yearbook failed", "id", id, "reason", reason)
	}
	return nil
}

var retryColumns = map[Stage]string{
	StageSafety: "safety_retries",
	StageOCR:    "ocr_retries",
	StageFace:   "face_retries",
	StageTiling: "tiling_retries",
}

func (r *repo) BumpRetry(ctx context.Context, id uuid.UUID, stage Stage) error {
	col, ok := retryColumns[stage]
	if !ok {
		return fmt.Errorf("unknown stage %s", stage)
	}

	q := fmt.Sprintf(
		"UPDATE yearbooks SET %s = %s + 1, updated_at = NOW() WHERE id = $1",
		col, col,
	)

	if err := repository.ExecExpectOne(ctx, r.db, q, id); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) RecomputeAggregates(ctx context.Context, yearbookID uuid.UUID) (*Aggregates, error) {
	pages, err := r.Pages(ctx, yearbookID)
	if err != nil {
		return nil, err
	}

	agg := Tally(pages)

	err = repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE yearbooks
		 SET ocr_complete = $2, face_complete = $3, updated_at = NOW()
		 WHERE id = $1`,
		yearbookID, agg.OCRComplete(), agg.FaceComplete(),
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return &agg, nil
}

func validateCreate(cmd CreateCommand) error {
	if cmd.PageCount <= 0 {
		return fmt.Errorf("%w: page count must be positive", ErrValidation)
	}
	if cmd.StoragePath == "" {
		return fmt.Errorf("%w: storage path required", ErrValidation)
	}
	if cmd.SchoolID == uuid.Nil || cmd.UploaderID == uuid.Nil {
		return fmt.Errorf("%w: school and uploader references required", ErrValidation)
	}
	return nil
}

func pageImagePath(storagePath string, pageNumber int) string {
	return path.Join(path.Dir(storagePath), "pages", fmt.Sprintf("%04d.png", pageNumber))
}
