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

type overrideRepository struct {
	db *sqlx.DB
}

func NewOverrideRepository(db *sqlx.DB) repository.OverrideRepository {
	return &overrideRepository{db: db}
}

func (r *overrideRepository) Create(ctx context.Context, req *model.OverrideRequest) error {
	query := `
		INSERT INTO override_requests
			(id, nurse_id, doctor_id, patient_id, medication, current_dosage, requested_dosage, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		req.ID,
		req.NurseID,
		req.DoctorID,
		req.PatientID,
		req.Medication,
		req.CurrentDosage,
		req.RequestedDosage,
		req.Reason,
		req.Status,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create override request: %w", err)
	}
	return nil
}

func (r *overrideRepository) Get(ctx context.Context, id uuid.UUID) (*model.OverrideRequest, error) {
	query := `SELECT * FROM override_requests WHERE id = $1`
	var req model.OverrideRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("override request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get override request: %w", err)
	}
	return &req, nil
}

func (r *overrideRepository) ListPendingForDoctor(ctx context.Context, doctorID uuid.UUID, ordered bool) ([]*model.OverrideRequest, error) {
	query := `SELECT * FROM override_requests WHERE doctor_id = $1 AND status = $2`
	if ordered {
		query += ` ORDER BY created_at DESC`
	}
	var requests []*model.OverrideRequest
	err := r.db.SelectContext(ctx, &requests, query, doctorID, string(model.OverrideStatusPending))
	if err != nil {
		if ordered {
			return nil, classifyOrdered("override_requests", err)
		}
		return nil, fmt.Errorf("failed to list pending override requests: %w", err)
	}
	return requests, nil
}

func (r *overrideRepository) ListForNurse(ctx context.Context, nurseID uuid.UUID, ordered bool) ([]*model.OverrideRequest, error) {
	query := `SELECT * FROM override_requests WHERE nurse_id = $1`
	if ordered {
		query += ` ORDER BY created_at DESC`
	}
	var requests []*model.OverrideRequest
	err := r.db.SelectContext(ctx, &requests, query, nurseID)
	if err != nil {
		if ordered {
			return nil, classifyOrdered("override_requests", err)
		}
		return nil, fmt.Errorf("failed to list override requests for nurse: %w", err)
	}
	return requests, nil
}

func (r *overrideRepository) CountPendingForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM override_requests WHERE doctor_id = $1 AND status = $2`
	var count int
	err := r.db.GetContext(ctx, &count, query, doctorID, string(model.OverrideStatusPending))
	if err != nil {
		return 0, fmt.Errorf("failed to count pending override requests: %w", err)
	}
	return count, nil
}

// UpdateStatus writes the status, the deciding actor and a store-clock
// timestamp. It deliberately does not check the prior status: concurrent
// decisions resolve by last-write-wins.
func (r *overrideRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actorID uuid.UUID) error {
	query := `
		UPDATE override_requests
		SET status = $1, decided_by = $2, decided_at = NOW(), updated_at = NOW()
		WHERE id = $3
	`
	res, err := r.db.ExecContext(ctx, query, status, actorID, id)
	if err != nil {
		return fmt.Errorf("failed to update override request status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return apperrors.NewNotFound("override request", sql.ErrNoRows)
	}
	return nil
}

// UpdateStatusIfPending is the guarded form: the write lands only if the row
// is still pending.
func (r *overrideRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status string, actorID uuid.UUID) (bool, error) {
	query := `
		UPDATE override_requests
		SET status = $1, decided_by = $2, decided_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, query, status, actorID, id, string(model.OverrideStatusPending))
	if err != nil {
		return false, fmt.Errorf("failed to update override request status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows > 0, nil
}
