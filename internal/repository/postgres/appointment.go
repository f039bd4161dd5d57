package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE patient_id = $1 ORDER BY scheduled_at ASC`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for patient: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE clinician_id = $1 ORDER BY scheduled_at ASC`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, clinicianID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for clinician: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountUpcomingForPatients(ctx context.Context, patientIDs []uuid.UUID) (int, error) {
	arr, ok := inPatients(patientIDs)
	if !ok {
		return 0, nil
	}
	query := `SELECT COUNT(*) FROM appointments WHERE patient_id = ANY($1) AND scheduled_at >= NOW() AND status = $2`
	var count int
	err := r.db.GetContext(ctx, &count, query, arr, string(model.AppointmentStatusScheduled))
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming appointments: %w", err)
	}
	return count, nil
}
