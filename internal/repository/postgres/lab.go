package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
)

type labRepository struct {
	db *sqlx.DB
}

func NewLabRepository(db *sqlx.DB) repository.LabRepository {
	return &labRepository{db: db}
}

func (r *labRepository) CreateRequest(ctx context.Context, req *model.LabTestRequest) error {
	query := `
		INSERT INTO lab_test_requests (id, patient_id, doctor_id, test_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		req.ID,
		req.PatientID,
		req.DoctorID,
		req.TestType,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lab test request: %w", err)
	}
	return nil
}

func (r *labRepository) ListPendingForDoctor(ctx context.Context, doctorID uuid.UUID, ordered bool) ([]*model.LabTestRequest, error) {
	query := `SELECT * FROM lab_test_requests WHERE doctor_id = $1 AND status = $2`
	if ordered {
		query += ` ORDER BY created_at DESC`
	}
	var requests []*model.LabTestRequest
	err := r.db.SelectContext(ctx, &requests, query, doctorID, string(model.LabStatusPending))
	if err != nil {
		if ordered {
			return nil, classifyOrdered("lab_test_requests", err)
		}
		return nil, fmt.Errorf("failed to list pending lab requests: %w", err)
	}
	return requests, nil
}

func (r *labRepository) CountPendingForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM lab_test_requests WHERE doctor_id = $1 AND status = $2`
	var count int
	err := r.db.GetContext(ctx, &count, query, doctorID, string(model.LabStatusPending))
	if err != nil {
		return 0, fmt.Errorf("failed to count pending lab requests: %w", err)
	}
	return count, nil
}

func (r *labRepository) CountPendingForPatients(ctx context.Context, patientIDs []uuid.UUID) (int, error) {
	arr, ok := inPatients(patientIDs)
	if !ok {
		return 0, nil
	}
	query := `SELECT COUNT(*) FROM lab_results WHERE patient_id = ANY($1) AND status = $2`
	var count int
	err := r.db.GetContext(ctx, &count, query, arr, string(model.LabStatusPending))
	if err != nil {
		return 0, fmt.Errorf("failed to count pending lab results for patients: %w", err)
	}
	return count, nil
}

func (r *labRepository) ListResultsForPatient(ctx context.Context, patientID uuid.UUID, ordered bool) ([]*model.LabResult, error) {
	query := `SELECT * FROM lab_results WHERE patient_id = $1`
	if ordered {
		query += ` ORDER BY created_at DESC`
	}
	var results []*model.LabResult
	err := r.db.SelectContext(ctx, &results, query, patientID)
	if err != nil {
		if ordered {
			return nil, classifyOrdered("lab_results", err)
		}
		return nil, fmt.Errorf("failed to list lab results: %w", err)
	}
	return results, nil
}

func (r *labRepository) GetResult(ctx context.Context, id uuid.UUID) (*model.LabResult, error) {
	query := `SELECT * FROM lab_results WHERE id = $1`
	var result model.LabResult
	err := r.db.GetContext(ctx, &result, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("lab result", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lab result: %w", err)
	}
	return &result, nil
}

// AddNotes sets the reviewer notes and transitions the result to completed in
// the same write. The timestamp is assigned by the store clock so ordering
// stays consistent across clients with skewed clocks.
func (r *labRepository) AddNotes(ctx context.Context, resultID, reviewerID uuid.UUID, notes string) error {
	query := `
		UPDATE lab_results
		SET notes = $1, reviewed_by = $2, reviewed_at = NOW(), status = $3, updated_at = NOW()
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, notes, reviewerID, string(model.LabStatusCompleted), resultID)
	if err != nil {
		return fmt.Errorf("failed to add notes to lab result: %w", err)
	}
	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return apperrors.NewNotFound("lab result", sql.ErrNoRows)
	}
	return nil
}
