package model

import (
	"time"

	"github.com/google/uuid"
)

type OverrideStatus string

const (
	OverrideStatusPending  OverrideStatus = "pending"
	OverrideStatusApproved OverrideStatus = "approved"
	OverrideStatusRejected OverrideStatus = "rejected"
)

// OverrideRequest is a nurse-filed request to change a patient's dosage,
// decided by the assigned doctor. The status transition pending -> decided is
// last-write-wins unless guarded transitions are enabled.
type OverrideRequest struct {
	Base
	NurseID         uuid.UUID  `db:"nurse_id" json:"nurse_id"`
	DoctorID        uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	Medication      string     `db:"medication" json:"medication"`
	CurrentDosage   string     `db:"current_dosage" json:"current_dosage"`
	RequestedDosage string     `db:"requested_dosage" json:"requested_dosage"`
	Reason          string     `db:"reason" json:"reason"`
	Status          string     `db:"status" json:"status"`
	DecidedBy       *uuid.UUID `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt       *time.Time `db:"decided_at" json:"decided_at,omitempty"`

	// NurseName is resolved by a secondary lookup, not stored.
	NurseName string `db:"-" json:"nurse_name,omitempty"`
}

// SearchField implements search.Fielder.
func (o *OverrideRequest) SearchField(name string) string {
	switch name {
	case "medication":
		return o.Medication
	case "reason":
		return o.Reason
	case "status":
		return o.Status
	case "nurse_name":
		return o.NurseName
	default:
		return ""
	}
}

type CreateOverrideRequest struct {
	DoctorID        string `json:"doctor_id" binding:"required,uuid"`
	PatientID       string `json:"patient_id" binding:"required,uuid"`
	Medication      string `json:"medication" binding:"required"`
	CurrentDosage   string `json:"current_dosage" binding:"required"`
	RequestedDosage string `json:"requested_dosage" binding:"required"`
	Reason          string `json:"reason" binding:"required"`
}
