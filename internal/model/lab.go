package model

import (
	"time"

	"github.com/google/uuid"
)

type LabStatus string

const (
	LabStatusPending   LabStatus = "pending"
	LabStatusCompleted LabStatus = "completed"
)

// LabTestRequest is a doctor-filed request for a lab test.
type LabTestRequest struct {
	Base
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	TestType  string    `db:"test_type" json:"test_type"`
	Status    string    `db:"status" json:"status"`

	// PatientName is resolved by a secondary lookup, not stored.
	PatientName string `db:"-" json:"patient_name,omitempty"`
}

// SearchField implements search.Fielder.
func (r *LabTestRequest) SearchField(name string) string {
	switch name {
	case "test_type":
		return r.TestType
	case "status":
		return r.Status
	case "patient_name":
		return r.PatientName
	default:
		return ""
	}
}

// LabResult is the outcome of a lab test, optionally tied to the request that
// produced it. Adding reviewer notes transitions the status to completed in
// the same write; readers rely on the status column, never on notes presence.
type LabResult struct {
	Base
	RequestID  *uuid.UUID `db:"request_id" json:"request_id,omitempty"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID   uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	TestType   string     `db:"test_type" json:"test_type"`
	Value      string     `db:"value" json:"value"`
	Unit       string     `db:"unit" json:"unit"`
	Status     string     `db:"status" json:"status"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	ReviewedBy *uuid.UUID `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// SearchField implements search.Fielder.
func (r *LabResult) SearchField(name string) string {
	switch name {
	case "test_type":
		return r.TestType
	case "value":
		return r.Value
	case "status":
		return r.Status
	default:
		return ""
	}
}

type AddLabNotesRequest struct {
	Notes string `json:"notes" binding:"required"`
}

type CreateLabTestRequest struct {
	PatientID string `json:"patient_id" binding:"required,uuid"`
	TestType  string `json:"test_type" binding:"required"`
}
