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

type doctorRepository struct {
	db *sqlx.DB
}

type nurseRepository struct {
	db *sqlx.DB
}

type responsibleRepository struct {
	db *sqlx.DB
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func NewNurseRepository(db *sqlx.DB) repository.NurseRepository {
	return &nurseRepository{db: db}
}

func NewResponsibleRepository(db *sqlx.DB) repository.ResponsibleRepository {
	return &responsibleRepository{db: db}
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `SELECT * FROM doctors WHERE id = $1`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByUID(ctx context.Context, uid string) (*model.Doctor, error) {
	query := `SELECT * FROM doctors WHERE uid = $1 LIMIT 1`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor by uid: %w", err)
	}
	return &doctor, nil
}

func (r *nurseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Nurse, error) {
	query := `SELECT * FROM nurses WHERE id = $1`
	var nurse model.Nurse
	err := r.db.GetContext(ctx, &nurse, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("nurse", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get nurse: %w", err)
	}
	return &nurse, nil
}

func (r *nurseRepository) GetByUID(ctx context.Context, uid string) (*model.Nurse, error) {
	query := `SELECT * FROM nurses WHERE uid = $1 LIMIT 1`
	var nurse model.Nurse
	err := r.db.GetContext(ctx, &nurse, query, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("nurse", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get nurse by uid: %w", err)
	}
	return &nurse, nil
}

func (r *responsibleRepository) Get(ctx context.Context, id uuid.UUID) (*model.ResponsibleParty, error) {
	query := `SELECT * FROM responsible_parties WHERE id = $1`
	var party model.ResponsibleParty
	err := r.db.GetContext(ctx, &party, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("responsible party", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get responsible party: %w", err)
	}
	return &party, nil
}

func (r *responsibleRepository) GetByUID(ctx context.Context, uid string) (*model.ResponsibleParty, error) {
	query := `SELECT * FROM responsible_parties WHERE uid = $1 LIMIT 1`
	var party model.ResponsibleParty
	err := r.db.GetContext(ctx, &party, query, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("responsible party", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get responsible party by uid: %w", err)
	}
	return &party, nil
}
