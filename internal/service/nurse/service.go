package nurse

import (
	"context"

	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
	"github.com/Majedzeyad/cancare-api/internal/service/identity"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/metrics"
	"github.com/Majedzeyad/cancare-api/pkg/readresult"
)

// Service implements the nurse dashboard's reads. Override-request writes
// live in the override service.
type Service struct {
	nurses   repository.NurseRepository
	patients repository.PatientRepository
	appts    repository.AppointmentRepository
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(
	nurses repository.NurseRepository,
	patients repository.PatientRepository,
	appts repository.AppointmentRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		nurses:   nurses,
		patients: patients,
		appts:    appts,
		metrics:  m,
		logger:   log,
	}
}

// Profile looks up a nurse profile by uid field first, then by document id.
func (s *Service) Profile(ctx context.Context, target uuid.UUID) (*model.Nurse, error) {
	nurse, err := s.nurses.GetByUID(ctx, target.String())
	if err == nil {
		return nurse, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}
	nurse, err = s.nurses.Get(ctx, target)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	return nurse, err
}

// ListPatients returns the patients assigned to the nurse.
func (s *Service) ListPatients(ctx context.Context, nurseID uuid.UUID) readresult.Result[[]*model.Patient] {
	empty := []*model.Patient{}
	s.metrics.ReadsTotal.WithLabelValues("nurse.list_patients").Inc()

	owner, ok := s.owner(ctx, nurseID)
	if !ok {
		return readresult.Ok(empty)
	}

	patients, err := s.patients.ListForNurse(ctx, owner)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("nurse.list_patients").Inc()
		s.logger.Error(err, "patient list degraded", "nurse_id", owner.String())
		return readresult.Degraded(empty, "nurse.list_patients", err)
	}
	if patients == nil {
		patients = empty
	}
	return readresult.Ok(patients)
}

// ListAppointments returns the nurse's appointments, soonest first.
func (s *Service) ListAppointments(ctx context.Context, nurseID uuid.UUID) readresult.Result[[]*model.Appointment] {
	empty := []*model.Appointment{}
	s.metrics.ReadsTotal.WithLabelValues("nurse.list_appointments").Inc()

	owner, ok := s.owner(ctx, nurseID)
	if !ok {
		return readresult.Ok(empty)
	}

	appointments, err := s.appts.ListForClinician(ctx, owner)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("nurse.list_appointments").Inc()
		s.logger.Error(err, "appointment list degraded", "nurse_id", owner.String())
		return readresult.Degraded(empty, "nurse.list_appointments", err)
	}
	if appointments == nil {
		appointments = empty
	}
	return readresult.Ok(appointments)
}

func (s *Service) owner(ctx context.Context, explicit uuid.UUID) (uuid.UUID, bool) {
	if explicit != uuid.Nil {
		return explicit, true
	}
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	nurse, err := s.Profile(ctx, caller.ID)
	if err != nil || nurse == nil {
		return uuid.Nil, false
	}
	return nurse.ID, true
}
