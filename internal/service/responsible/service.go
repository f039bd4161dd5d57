package responsible

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
	"github.com/Majedzeyad/cancare-api/internal/service/identity"
	"github.com/Majedzeyad/cancare-api/internal/service/listing"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/metrics"
	"github.com/Majedzeyad/cancare-api/pkg/readresult"
)

// Service implements the responsible-party (family member) reads. A
// responsible party only ever sees the patients that reference them.
type Service struct {
	responsibles repository.ResponsibleRepository
	patients     repository.PatientRepository
	labs         repository.LabRepository
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(
	responsibles repository.ResponsibleRepository,
	patients repository.PatientRepository,
	labs repository.LabRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		responsibles: responsibles,
		patients:     patients,
		labs:         labs,
		metrics:      m,
		logger:       log,
	}
}

// Profile looks up the responsible-party profile by uid field first, then by
// document id.
func (s *Service) Profile(ctx context.Context, target uuid.UUID) (*model.ResponsibleParty, error) {
	party, err := s.responsibles.GetByUID(ctx, target.String())
	if err == nil {
		return party, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}
	party, err = s.responsibles.Get(ctx, target)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	return party, err
}

// ListPatients returns the followed patients ordered by name.
func (s *Service) ListPatients(ctx context.Context, partyID uuid.UUID) readresult.Result[[]*model.Patient] {
	empty := []*model.Patient{}
	s.metrics.ReadsTotal.WithLabelValues("responsible.list_patients").Inc()

	owner, ok := s.owner(ctx, partyID)
	if !ok {
		return readresult.Ok(empty)
	}

	patients, err := s.patients.ListForResponsible(ctx, owner)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("responsible.list_patients").Inc()
		s.logger.Error(err, "patient list degraded", "party_id", owner.String())
		return readresult.Degraded(empty, "responsible.list_patients", err)
	}
	if patients == nil {
		patients = empty
	}
	return readresult.Ok(patients)
}

// ListLabResults returns a followed patient's lab results, newest first. A
// patient outside the caller's scope answers the empty default, the same as
// no data.
func (s *Service) ListLabResults(ctx context.Context, patientID uuid.UUID) readresult.Result[[]*model.LabResult] {
	empty := []*model.LabResult{}
	s.metrics.ReadsTotal.WithLabelValues("responsible.list_lab_results").Inc()

	owner, ok := s.owner(ctx, uuid.Nil)
	if !ok {
		return readresult.Ok(empty)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("responsible.list_lab_results").Inc()
		s.logger.Error(err, "patient scope check degraded", "patient_id", patientID.String())
		return readresult.Degraded(empty, "responsible.list_lab_results", err)
	}
	if patient.ResponsiblePartyID == nil || *patient.ResponsiblePartyID != owner {
		return readresult.Ok(empty)
	}

	results, fellBack, err := listing.OrderedWithFallback(ctx,
		func(ctx context.Context, ordered bool) ([]*model.LabResult, error) {
			return s.labs.ListResultsForPatient(ctx, patientID, ordered)
		},
		func(r *model.LabResult) *time.Time {
			if r.CreatedAt.IsZero() {
				return nil
			}
			return &r.CreatedAt
		},
	)
	if fellBack {
		s.metrics.IndexFallbacks.WithLabelValues("lab_results").Inc()
	}
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("responsible.list_lab_results").Inc()
		s.logger.Error(err, "lab result list degraded", "patient_id", patientID.String())
		return readresult.Degraded(empty, "responsible.list_lab_results", err)
	}
	return readresult.Ok(results)
}

func (s *Service) owner(ctx context.Context, explicit uuid.UUID) (uuid.UUID, bool) {
	if explicit != uuid.Nil {
		return explicit, true
	}
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	party, err := s.Profile(ctx, caller.ID)
	if err != nil || party == nil {
		return uuid.Nil, false
	}
	return party.ID, true
}
