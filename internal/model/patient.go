package model

import (
	"github.com/google/uuid"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

// Patient is the patient profile. Assigned clinicians are weak references:
// they are only ever resolved by point lookups, never joined.
type Patient struct {
	Base
	UID                string     `db:"uid" json:"uid"`
	Name               string     `db:"name" json:"name"`
	Email              string     `db:"email" json:"email"`
	Phone              string     `db:"phone" json:"phone"`
	Diagnosis          string     `db:"diagnosis" json:"diagnosis"`
	Status             string     `db:"status" json:"status"`
	AssignedDoctorID   *uuid.UUID `db:"assigned_doctor_id" json:"assigned_doctor_id,omitempty"`
	AssignedNurseID    *uuid.UUID `db:"assigned_nurse_id" json:"assigned_nurse_id,omitempty"`
	ResponsiblePartyID *uuid.UUID `db:"responsible_party_id" json:"responsible_party_id,omitempty"`
}

// SearchField implements search.Fielder.
func (p *Patient) SearchField(name string) string {
	switch name {
	case "name":
		return p.Name
	case "email":
		return p.Email
	case "diagnosis":
		return p.Diagnosis
	case "phone":
		return p.Phone
	default:
		return ""
	}
}
