// Package faces implements the face region domain for Bindery.
// Face regions are produced by the face-detection stage and later become the
// targets of identity claims. A region's ClaimedBy is a weak user reference
// set only by claim resolution, never an ownership relation.
package faces

import (
	"github.com/google/uuid"

	"github.com/jmswain/bindery/internal/yearbooks"
)

// Region represents a detected face region on a yearbook page.
type Region struct {
	ID        uuid.UUID        `json:"id"`
	PageID    uuid.UUID        `json:"page_id"`
	Bounds    yearbooks.Bounds `json:"bounds"`
	ClaimedBy *uuid.UUID       `json:"claimed_by,omitempty"`
}

// RegionInput carries one detected bounding box for persistence.
type RegionInput struct {
	Bounds yearbooks.Bounds `json:"bounds"`
}
