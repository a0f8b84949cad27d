package claims_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/jmswain/bindery/internal/claims"
)

func claim(status claims.ClaimStatus) claims.Claim {
	return claims.Claim{
		ID:           uuid.New(),
		FaceRegionID: uuid.New(),
		ClaimantID:   uuid.New(),
		Status:       status,
	}
}

func TestPlanResolutionVerify(t *testing.T) {
	c := claim(claims.ClaimPending)

	plan, err := claims.PlanResolution(c, nil, claims.DecisionVerify)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Status != claims.ClaimVerified {
		t.Errorf("status: got %s, want verified", plan.Status)
	}
	if !plan.SetClaimedBy {
		t.Error("verification should set claimed_by on the face region")
	}
	if plan.NoOp {
		t.Error("fresh verification should not be a no-op")
	}
}

func TestPlanResolutionVerifyRejectsPendingSiblings(t *testing.T) {
	c := claim(claims.ClaimPending)
	siblings := []claims.Claim{
		claim(claims.ClaimPending),
		claim(claims.ClaimRejected),
		claim(claims.ClaimPending),
	}

	plan, err := claims.PlanResolution(c, siblings, claims.DecisionVerify)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.RejectPending) != 2 {
		t.Fatalf("reject pending: got %d, want 2", len(plan.RejectPending))
	}
	for i, id := range []uuid.UUID{siblings[0].ID, siblings[2].ID} {
		if plan.RejectPending[i] != id {
			t.Errorf("reject pending[%d]: got %s, want %s", i, plan.RejectPending[i], id)
		}
	}
}

func TestPlanResolutionVerifyConflictsWithVerifiedSibling(t *testing.T) {
	c := claim(claims.ClaimPending)
	siblings := []claims.Claim{claim(claims.ClaimVerified)}

	_, err := claims.PlanResolution(c, siblings, claims.DecisionVerify)
	if !errors.Is(err, claims.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestPlanResolutionReject(t *testing.T) {
	c := claim(claims.ClaimPending)
	siblings := []claims.Claim{claim(claims.ClaimPending)}

	plan, err := claims.PlanResolution(c, siblings, claims.DecisionReject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Status != claims.ClaimRejected {
		t.Errorf("status: got %s, want rejected", plan.Status)
	}
	if plan.SetClaimedBy {
		t.Error("rejection should not touch claimed_by")
	}
	if len(plan.RejectPending) != 0 {
		t.Error("rejection should leave sibling claims pending")
	}
}

func TestPlanResolutionIdempotent(t *testing.T) {
	tests := []struct {
		name     string
		status   claims.ClaimStatus
		decision claims.Decision
	}{
		{"re-verify verified", claims.ClaimVerified, claims.DecisionVerify},
		{"re-reject rejected", claims.ClaimRejected, claims.DecisionReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := claims.PlanResolution(claim(tt.status), nil, tt.decision)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !plan.NoOp {
				t.Error("re-applying the same decision should be a no-op")
			}
		})
	}
}

func TestPlanResolutionContradiction(t *testing.T) {
	tests := []struct {
		name     string
		status   claims.ClaimStatus
		decision claims.Decision
	}{
		{"reject verified", claims.ClaimVerified, claims.DecisionReject},
		{"verify rejected", claims.ClaimRejected, claims.DecisionVerify},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := claims.PlanResolution(claim(tt.status), nil, tt.decision)
			if !errors.Is(err, claims.ErrConflict) {
				t.Errorf("expected ErrConflict, got %v", err)
			}
		})
	}
}

func TestPlanResolutionUnknownDecision(t *testing.T) {
	_, err := claims.PlanResolution(claim(claims.ClaimPending), nil, claims.Decision("maybe"))
	if !errors.Is(err, claims.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", claims.ErrNotFound, http.StatusNotFound},
		{"face not found", claims.ErrFaceNotFound, http.StatusNotFound},
		{"validation", claims.ErrValidation, http.StatusBadRequest},
		{"not ready", claims.ErrNotReady, http.StatusConflict},
		{"duplicate", claims.ErrDuplicateClaim, http.StatusConflict},
		{"conflict", claims.ErrConflict, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := claims.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
