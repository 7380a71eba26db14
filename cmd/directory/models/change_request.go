package models

import (
	"time"

	"github.com/google/uuid"
)

// ChangeStatus is the lifecycle state of a change request
type ChangeStatus string

const (
	StatusDraft    ChangeStatus = "draft"
	StatusPending  ChangeStatus = "pending"
	StatusApproved ChangeStatus = "approved"
	StatusRejected ChangeStatus = "rejected"
)

// Terminal reports whether no further transition exists out of s.
// Terminal requests stay in the ledger as an audit trail.
func (s ChangeStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Live reports whether the request still occupies its (service, field)
// slot for the one-draft-one-pending invariant
func (s ChangeStatus) Live() bool {
	return s == StatusDraft || s == StatusPending
}

// ChangeRequest is a proposed single-field edit awaiting review
type ChangeRequest struct {
	ID          uuid.UUID    `json:"id"`
	ServiceID   string       `json:"service_id"`
	Field       FieldPath    `json:"field"`
	OldValue    string       `json:"old_value"` // catalog snapshot at creation/edit time
	NewValue    string       `json:"new_value"`
	RequestedBy string       `json:"requested_by"`
	RequestedAt time.Time    `json:"requested_at"`
	Status      ChangeStatus `json:"status"`
	ReviewedBy  *string      `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
	Comments    *string      `json:"comments,omitempty"`
}

// Clone returns a deep copy
func (r *ChangeRequest) Clone() *ChangeRequest {
	if r == nil {
		return nil
	}
	cp := *r
	if r.ReviewedBy != nil {
		v := *r.ReviewedBy
		cp.ReviewedBy = &v
	}
	if r.ReviewedAt != nil {
		v := *r.ReviewedAt
		cp.ReviewedAt = &v
	}
	if r.Comments != nil {
		v := *r.Comments
		cp.Comments = &v
	}
	return &cp
}
