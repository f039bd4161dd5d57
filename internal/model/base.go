package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Role identifies the dashboard a user acts under.
type Role string

const (
	RoleDoctor      Role = "doctor"
	RoleNurse       Role = "nurse"
	RolePatient     Role = "patient"
	RoleResponsible Role = "responsible"
)

// UnknownName is the placeholder used when a secondary display-name lookup
// fails; a failed lookup must never fail the enclosing list.
const UnknownName = "Unknown"

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
