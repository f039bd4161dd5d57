package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
)

type prescriptionRepository struct {
	db *sqlx.DB
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func (r *prescriptionRepository) Create(ctx context.Context, rx *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (id, patient_id, doctor_id, medication, dosage, frequency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		rx.ID,
		rx.PatientID,
		rx.DoctorID,
		rx.Medication,
		rx.Dosage,
		rx.Frequency,
		rx.Status,
	).Scan(&rx.CreatedAt, &rx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	query := `SELECT * FROM prescriptions WHERE patient_id = $1`
	var rxs []*model.Prescription
	err := r.db.SelectContext(ctx, &rxs, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return rxs, nil
}

func (r *prescriptionRepository) ListActiveForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	query := `SELECT * FROM prescriptions WHERE patient_id = $1 AND status = ANY($2)`
	var rxs []*model.Prescription
	err := r.db.SelectContext(ctx, &rxs, query, patientID, pq.Array(model.ActivePrescriptionStatuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list active prescriptions: %w", err)
	}
	return rxs, nil
}

func (r *prescriptionRepository) CountCreatedSince(ctx context.Context, doctorID uuid.UUID, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM prescriptions WHERE doctor_id = $1 AND created_at >= $2`
	var count int
	err := r.db.GetContext(ctx, &count, query, doctorID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent prescriptions: %w", err)
	}
	return count, nil
}

func (r *prescriptionRepository) CountCreatedSinceForPatients(ctx context.Context, patientIDs []uuid.UUID, since time.Time) (int, error) {
	arr, ok := inPatients(patientIDs)
	if !ok {
		return 0, nil
	}
	query := `SELECT COUNT(*) FROM prescriptions WHERE patient_id = ANY($1) AND created_at >= $2`
	var count int
	err := r.db.GetContext(ctx, &count, query, arr, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent prescriptions for patients: %w", err)
	}
	return count, nil
}
