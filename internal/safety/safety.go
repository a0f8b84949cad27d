// Package safety implements the moderation queue domain for Bindery.
// When the safety scan flags a yearbook, a queue item is created and the
// pipeline holds until a human reviewer records a decision.
package safety

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus tracks a queue item through review.
type ItemStatus string

// Queue item statuses.
const (
	ItemPending  ItemStatus = "pending"
	ItemApproved ItemStatus = "approved"
	ItemRejected ItemStatus = "rejected"
)

// Decision is a reviewer's ruling on a flagged yearbook.
type Decision string

// Moderation decisions.
const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Item represents one flagged yearbook awaiting (or past) moderation review.
type Item struct {
	ID         uuid.UUID  `json:"id"`
	YearbookID uuid.UUID  `json:"yearbook_id"`
	ReasonCode string     `json:"reason_code"`
	Status     ItemStatus `json:"status"`
	ReviewerID *uuid.UUID `json:"reviewer_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}
