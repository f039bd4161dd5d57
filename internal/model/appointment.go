package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment lists are always ordered by scheduled time ascending.
type Appointment struct {
	Base
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	ClinicianID   uuid.UUID `db:"clinician_id" json:"clinician_id"`
	ClinicianRole string    `db:"clinician_role" json:"clinician_role"`
	ScheduledAt   time.Time `db:"scheduled_at" json:"scheduled_at"`
	Location      string    `db:"location" json:"location"`
	Status        string    `db:"status" json:"status"`
	Notes         string    `db:"notes" json:"notes"`
}

// SearchField implements search.Fielder.
func (a *Appointment) SearchField(name string) string {
	switch name {
	case "location":
		return a.Location
	case "status":
		return a.Status
	case "notes":
		return a.Notes
	default:
		return ""
	}
}
