package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUID(ctx context.Context, uid string) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE uid = $1 LIMIT 1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient by uid: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE assigned_doctor_id = $1`
	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients for doctor: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ListForNurse(ctx context.Context, nurseID uuid.UUID) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE assigned_nurse_id = $1`
	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, nurseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients for nurse: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) ListForResponsible(ctx context.Context, partyID uuid.UUID) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE responsible_party_id = $1 ORDER BY name ASC`
	var patients []*model.Patient
	err := r.db.SelectContext(ctx, &patients, query, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients for responsible party: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) IDsForResponsible(ctx context.Context, partyID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT id FROM patients WHERE responsible_party_id = $1`
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, query, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient ids for responsible party: %w", err)
	}
	return ids, nil
}

func (r *patientRepository) CountActiveForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM patients WHERE assigned_doctor_id = $1 AND status = $2`
	var count int
	err := r.db.GetContext(ctx, &count, query, doctorID, string(model.PatientStatusActive))
	if err != nil {
		return 0, fmt.Errorf("failed to count active patients: %w", err)
	}
	return count, nil
}

func (r *patientRepository) CountForResponsible(ctx context.Context, partyID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM patients WHERE responsible_party_id = $1`
	var count int
	err := r.db.GetContext(ctx, &count, query, partyID)
	if err != nil {
		return 0, fmt.Errorf("failed to count patients for responsible party: %w", err)
	}
	return count, nil
}

// inPatients expands a patient-id set for IN queries; an empty set matches
// nothing without touching the store.
func inPatients(ids []uuid.UUID) (interface{}, bool) {
	if len(ids) == 0 {
		return nil, false
	}
	return pq.Array(ids), true
}
