package model

import (
	"github.com/google/uuid"
)

type PrescriptionStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "pending"
	PrescriptionStatusActive    PrescriptionStatus = "active"
	PrescriptionStatusCompleted PrescriptionStatus = "completed"
)

// ActivePrescriptionStatuses are the statuses the app treats as "active":
// prescriptions still pending count as active on every screen.
var ActivePrescriptionStatuses = []string{
	string(PrescriptionStatusPending),
	string(PrescriptionStatusActive),
}

type Prescription struct {
	Base
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID   uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Medication string    `db:"medication" json:"medication"`
	Dosage     string    `db:"dosage" json:"dosage"`
	Frequency  string    `db:"frequency" json:"frequency"`
	Status     string    `db:"status" json:"status"`
}

// SearchField implements search.Fielder.
func (p *Prescription) SearchField(name string) string {
	switch name {
	case "medication":
		return p.Medication
	case "dosage":
		return p.Dosage
	case "status":
		return p.Status
	default:
		return ""
	}
}

type CreatePrescriptionRequest struct {
	PatientID  string `json:"patient_id" binding:"required,uuid"`
	Medication string `json:"medication" binding:"required"`
	Dosage     string `json:"dosage" binding:"required"`
	Frequency  string `json:"frequency"`
}
