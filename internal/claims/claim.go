// Package claims implements the identity claim domain for Bindery.
// Users assert "this face region is me"; many claims may target the same
// region, and an adjudicator resolves them. Exclusivity — at most one
// verified claim per face region — is enforced at resolution time so that
// submission stays cheap and non-blocking while users compete for a region.
package claims

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClaimStatus tracks a claim through adjudication.
type ClaimStatus string

// Claim statuses. Rejected claims are retained for audit, never deleted.
const (
	ClaimPending  ClaimStatus = "pending"
	ClaimVerified ClaimStatus = "verified"
	ClaimRejected ClaimStatus = "rejected"
)

// Decision is an adjudicator's ruling on a pending claim.
type Decision string

// Resolution decisions.
const (
	DecisionVerify Decision = "verify"
	DecisionReject Decision = "reject"
)

// Claim represents one user's identity assertion against a face region.
type Claim struct {
	ID           uuid.UUID   `json:"id"`
	FaceRegionID uuid.UUID   `json:"face_region_id"`
	ClaimantID   uuid.UUID   `json:"claimant_id"`
	Status       ClaimStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	ResolvedAt   *time.Time  `json:"resolved_at,omitempty"`
}

// SubmitCommand carries the data needed to submit a new claim.
type SubmitCommand struct {
	ClaimantID uuid.UUID `json:"claimant_id"`
}

// ResolveCommand carries an adjudication decision for a claim.
type ResolveCommand struct {
	Decision Decision `json:"decision"`
}

// ResolutionPlan describes the writes a decision implies. It is computed as a
// pure function of the claim, its siblings on the same face region, and the
// decision, so the exclusivity invariant can be checked without a database.
type ResolutionPlan struct {
	Status        ClaimStatus
	RejectPending []uuid.UUID
	SetClaimedBy  bool
	NoOp          bool
}

// PlanResolution validates a decision against the claim and its siblings and
// returns the writes to perform. Re-applying a decision that already took
// effect is a no-op; a decision that contradicts a prior resolution, or a
// verification when a different claim already holds verified status, returns
// ErrConflict.
func PlanResolution(claim Claim, siblings []Claim, decision Decision) (*ResolutionPlan, error) {
	switch decision {
	case DecisionVerify, DecisionReject:
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
	}

	switch claim.Status {
	case ClaimVerified:
		if decision == DecisionVerify {
			return &ResolutionPlan{Status: ClaimVerified, NoOp: true}, nil
		}
		return nil, fmt.Errorf("%w: claim %s already verified", ErrConflict, claim.ID)
	case ClaimRejected:
		if decision == DecisionReject {
			return &ResolutionPlan{Status: ClaimRejected, NoOp: true}, nil
		}
		return nil, fmt.Errorf("%w: claim %s already rejected", ErrConflict, claim.ID)
	}

	if decision == DecisionReject {
		return &ResolutionPlan{Status: ClaimRejected}, nil
	}

	plan := &ResolutionPlan{Status: ClaimVerified, SetClaimedBy: true}
	for _, sibling := range siblings {
		switch sibling.Status {
		case ClaimVerified:
			return nil, fmt.Errorf(
				"%w: face region %s already verified for claim %s",
				ErrConflict, claim.FaceRegionID, sibling.ID,
			)
		case ClaimPending:
			plan.RejectPending = append(plan.RejectPending, sibling.ID)
		}
	}

	return plan, nil
}
