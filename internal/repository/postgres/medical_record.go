package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
)

type medicalRecordRepository struct {
	db *sqlx.DB
}

func NewMedicalRecordRepository(db *sqlx.DB) repository.MedicalRecordRepository {
	return &medicalRecordRepository{db: db}
}

// Create is the only write on medical records; there is no update or delete.
func (r *medicalRecordRepository) Create(ctx context.Context, rec *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (id, patient_id, doctor_id, category, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		rec.ID,
		rec.PatientID,
		rec.DoctorID,
		rec.Category,
		rec.Description,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE patient_id = $1 ORDER BY created_at DESC`
	var records []*model.MedicalRecord
	err := r.db.SelectContext(ctx, &records, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}
