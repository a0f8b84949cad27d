package claims

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/pkg/query"
	"github.com/jmswain/bindery/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "claims", "c").
	Project("id", "ID").
	Project("face_region_id", "FaceRegionID").
	Project("claimant_id", "ClaimantID").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("resolved_at", "ResolvedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const claimColumns = "id, face_region_id, claimant_id, status, created_at, resolved_at"

// Filters contains optional filtering criteria for claim queries.
// Nil fields are ignored; all fields use exact matching.
type Filters struct {
	FaceRegionID *uuid.UUID `json:"face_region_id,omitempty"`
	ClaimantID   *uuid.UUID `json:"claimant_id,omitempty"`
	Status       *string    `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("FaceRegionID", f.FaceRegionID).
		WhereEquals("ClaimantID", f.ClaimantID).
		WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if fr := values.Get("face_region_id"); fr != "" {
		if v, err := uuid.Parse(fr); err == nil {
			f.FaceRegionID = &v
		}
	}

	if cl := values.Get("claimant_id"); cl != "" {
		if v, err := uuid.Parse(cl); err == nil {
			f.ClaimantID = &v
		}
	}

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	return f
}

func scanClaim(s repository.Scanner) (Claim, error) {
	var c Claim
	err := s.Scan(
		&c.ID,
		&c.FaceRegionID,
		&c.ClaimantID,
		&c.Status,
		&c.CreatedAt,
		&c.ResolvedAt,
	)
	return c, err
}
