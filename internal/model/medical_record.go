package model

import (
	"github.com/google/uuid"
)

// MedicalRecord is immutable once created; there is no update operation
// anywhere in this layer.
type MedicalRecord struct {
	Base
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
}

// SearchField implements search.Fielder.
func (m *MedicalRecord) SearchField(name string) string {
	switch name {
	case "category":
		return m.Category
	case "description":
		return m.Description
	default:
		return ""
	}
}

type CreateMedicalRecordRequest struct {
	PatientID   string `json:"patient_id" binding:"required,uuid"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description" binding:"required"`
}
