// Package workers tracks dispatched processing jobs and delivers work to the
// external worker fleet. Every dispatch mints a job handle; workers echo the
// handle back in their callback, which lets the pipeline deduplicate retried
// or repeated deliveries.
package workers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks a job from dispatch to callback.
type JobStatus string

// Job statuses.
const (
	JobPending  JobStatus = "pending"
	JobResolved JobStatus = "resolved"
)

// Outcome is the result a worker reports for a job.
type Outcome string

// Callback outcomes.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	return o == OutcomeSuccess || o == OutcomeFailure
}

// Job records one unit of work handed to a worker. Kind matches the
// processing stage the job drives; PageID is nil for yearbook-level work.
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Kind       string     `json:"kind"`
	YearbookID uuid.UUID  `json:"yearbook_id"`
	PageID     *uuid.UUID `json:"page_id,omitempty"`
	Attempt    int        `json:"attempt"`
	Status     JobStatus  `json:"status"`
	ReasonCode *string    `json:"reason_code,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// DispatchRequest is the payload delivered to a worker endpoint.
type DispatchRequest struct {
	JobHandle uuid.UUID      `json:"job_handle"`
	Kind      string         `json:"kind"`
	TargetID  uuid.UUID      `json:"target_id"`
	Attempt   int            `json:"attempt"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Callback is the body a worker posts back when a job finishes.
type Callback struct {
	JobHandle  uuid.UUID       `json:"job_handle"`
	Outcome    Outcome         `json:"outcome"`
	ReasonCode *string         `json:"reason_code,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}
