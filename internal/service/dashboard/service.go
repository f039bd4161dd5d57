package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
	"github.com/Majedzeyad/cancare-api/internal/service/identity"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/metrics"
	"github.com/Majedzeyad/cancare-api/pkg/readresult"
)

// Config tunes the dashboard aggregation.
type Config struct {
	// RecentWindowDays bounds the "recent prescriptions" count. The window
	// boundary is re-derived on every call, never cached.
	RecentWindowDays int
}

// Service assembles home-screen summaries from independent scoped counts.
// There is no reconciliation policy for half a dashboard: if any count
// fails, the whole aggregate answers all-zero.
type Service struct {
	doctors      repository.DoctorRepository
	responsibles repository.ResponsibleRepository
	patients     repository.PatientRepository
	labs         repository.LabRepository
	overrides    repository.OverrideRepository
	rxs          repository.PrescriptionRepository
	appts        repository.AppointmentRepository
	cfg          Config
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(
	doctors repository.DoctorRepository,
	responsibles repository.ResponsibleRepository,
	patients repository.PatientRepository,
	labs repository.LabRepository,
	overrides repository.OverrideRepository,
	rxs repository.PrescriptionRepository,
	appts repository.AppointmentRepository,
	cfg Config,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	if cfg.RecentWindowDays <= 0 {
		cfg.RecentWindowDays = 7
	}
	return &Service{
		doctors:      doctors,
		responsibles: responsibles,
		patients:     patients,
		labs:         labs,
		overrides:    overrides,
		rxs:          rxs,
		appts:        appts,
		cfg:          cfg,
		metrics:      m,
		logger:       log,
	}
}

// DoctorStats aggregates the doctor home-screen counts.
func (s *Service) DoctorStats(ctx context.Context, doctorID uuid.UUID) readresult.Result[model.DoctorDashboard] {
	var zero model.DoctorDashboard
	s.metrics.ReadsTotal.WithLabelValues("dashboard.doctor").Inc()

	owner, ok := s.resolveDoctor(ctx, doctorID)
	if !ok {
		return readresult.Ok(zero)
	}

	since := time.Now().AddDate(0, 0, -s.cfg.RecentWindowDays)

	activePatients, err := s.patients.CountActiveForDoctor(ctx, owner)
	if err != nil {
		return s.doctorDegraded(owner, err)
	}
	pendingLabs, err := s.labs.CountPendingForDoctor(ctx, owner)
	if err != nil {
		return s.doctorDegraded(owner, err)
	}
	pendingOverrides, err := s.overrides.CountPendingForDoctor(ctx, owner)
	if err != nil {
		return s.doctorDegraded(owner, err)
	}
	recentRxs, err := s.rxs.CountCreatedSince(ctx, owner, since)
	if err != nil {
		return s.doctorDegraded(owner, err)
	}

	return readresult.Ok(model.DoctorDashboard{
		ActivePatients:      activePatients,
		PendingLabTests:     pendingLabs,
		PendingOverrides:    pendingOverrides,
		RecentPrescriptions: recentRxs,
	})
}

// ResponsibleStats aggregates the responsible-party summary across every
// followed patient.
func (s *Service) ResponsibleStats(ctx context.Context, partyID uuid.UUID) readresult.Result[model.ResponsibleDashboard] {
	var zero model.ResponsibleDashboard
	s.metrics.ReadsTotal.WithLabelValues("dashboard.responsible").Inc()

	owner, ok := s.resolveResponsible(ctx, partyID)
	if !ok {
		return readresult.Ok(zero)
	}

	since := time.Now().AddDate(0, 0, -s.cfg.RecentWindowDays)

	total, err := s.patients.CountForResponsible(ctx, owner)
	if err != nil {
		return s.responsibleDegraded(owner, err)
	}
	patientIDs, err := s.patients.IDsForResponsible(ctx, owner)
	if err != nil {
		return s.responsibleDegraded(owner, err)
	}
	pendingLabs, err := s.labs.CountPendingForPatients(ctx, patientIDs)
	if err != nil {
		return s.responsibleDegraded(owner, err)
	}
	recentRxs, err := s.rxs.CountCreatedSinceForPatients(ctx, patientIDs, since)
	if err != nil {
		return s.responsibleDegraded(owner, err)
	}
	upcoming, err := s.appts.CountUpcomingForPatients(ctx, patientIDs)
	if err != nil {
		return s.responsibleDegraded(owner, err)
	}

	return readresult.Ok(model.ResponsibleDashboard{
		Patients:             total,
		PendingLabTests:      pendingLabs,
		RecentPrescriptions:  recentRxs,
		UpcomingAppointments: upcoming,
	})
}

func (s *Service) doctorDegraded(owner uuid.UUID, err error) readresult.Result[model.DoctorDashboard] {
	s.metrics.ReadsDegraded.WithLabelValues("dashboard.doctor").Inc()
	s.logger.Error(err, "doctor dashboard degraded to zeros", "doctor_id", owner.String())
	return readresult.Degraded(model.DoctorDashboard{}, "dashboard.doctor", err)
}

func (s *Service) responsibleDegraded(owner uuid.UUID, err error) readresult.Result[model.ResponsibleDashboard] {
	s.metrics.ReadsDegraded.WithLabelValues("dashboard.responsible").Inc()
	s.logger.Error(err, "responsible dashboard degraded to zeros", "party_id", owner.String())
	return readresult.Degraded(model.ResponsibleDashboard{}, "dashboard.responsible", err)
}

func (s *Service) resolveDoctor(ctx context.Context, explicit uuid.UUID) (uuid.UUID, bool) {
	if explicit != uuid.Nil {
		return explicit, true
	}
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	doctor, err := s.doctors.GetByUID(ctx, caller.ID.String())
	if err == nil {
		return doctor.ID, true
	}
	if !apperrors.IsNotFound(err) {
		return uuid.Nil, false
	}
	doctor, err = s.doctors.Get(ctx, caller.ID)
	if err != nil {
		return uuid.Nil, false
	}
	return doctor.ID, true
}

func (s *Service) resolveResponsible(ctx context.Context, explicit uuid.UUID) (uuid.UUID, bool) {
	if explicit != uuid.Nil {
		return explicit, true
	}
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	party, err := s.responsibles.GetByUID(ctx, caller.ID.String())
	if err == nil {
		return party.ID, true
	}
	if !apperrors.IsNotFound(err) {
		return uuid.Nil, false
	}
	party, err = s.responsibles.Get(ctx, caller.ID)
	if err != nil {
		return uuid.Nil, false
	}
	return party.ID, true
}
