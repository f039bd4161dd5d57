package override

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
	"github.com/Majedzeyad/cancare-api/internal/service/identity"
	"github.com/Majedzeyad/cancare-api/internal/service/listing"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/messaging"
	"github.com/Majedzeyad/cancare-api/pkg/metrics"
	"github.com/Majedzeyad/cancare-api/pkg/readresult"
)

// Config tunes the override workflow.
type Config struct {
	// GuardedTransitions switches approve/reject to a compare-and-set on the
	// pending status. Off by default: the historical behavior is
	// last-write-wins between concurrent decisions.
	GuardedTransitions bool
	// LookupConcurrency caps the fan-out of per-record nurse-name lookups.
	LookupConcurrency int
	// NameCacheTTL bounds how long a resolved nurse name is reused.
	NameCacheTTL time.Duration
}

type Service struct {
	repo    repository.OverrideRepository
	nurses  repository.NurseRepository
	doctors repository.DoctorRepository
	broker  messaging.Broker
	names   *cache.Cache
	cfg     Config
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(
	repo repository.OverrideRepository,
	nurses repository.NurseRepository,
	doctors repository.DoctorRepository,
	broker messaging.Broker,
	cfg Config,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	if cfg.LookupConcurrency <= 0 {
		cfg.LookupConcurrency = 4
	}
	if cfg.NameCacheTTL <= 0 {
		cfg.NameCacheTTL = 5 * time.Minute
	}
	return &Service{
		repo:    repo,
		nurses:  nurses,
		doctors: doctors,
		broker:  broker,
		names:   cache.New(cfg.NameCacheTTL, 2*cfg.NameCacheTTL),
		cfg:     cfg,
		metrics: m,
		logger:  log,
	}
}

// Create files a new override request. Writes fail loud: a missing caller or
// a store failure is returned to the caller, never swallowed.
func (s *Service) Create(ctx context.Context, req *model.CreateOverrideRequest) (*model.OverrideRequest, error) {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return nil, apperrors.NewUnauthorized(nil)
	}

	nurse, err := s.nurseProfile(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve nurse profile: %w", err)
	}
	if nurse == nil {
		return nil, apperrors.NewForbidden("caller has no nurse profile")
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid doctor id", err)
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid patient id", err)
	}

	request := &model.OverrideRequest{
		Base:            model.Base{ID: uuid.New()},
		NurseID:         nurse.ID,
		DoctorID:        doctorID,
		PatientID:       patientID,
		Medication:      req.Medication,
		CurrentDosage:   req.CurrentDosage,
		RequestedDosage: req.RequestedDosage,
		Reason:          req.Reason,
		Status:          string(model.OverrideStatusPending),
		NurseName:       nurse.Name,
	}

	s.metrics.WritesTotal.WithLabelValues("override.create").Inc()
	if err := s.repo.Create(ctx, request); err != nil {
		s.metrics.WriteFailues.WithLabelValues("override.create").Inc()
		return nil, fmt.Errorf("failed to create override request: %w", err)
	}
	return request, nil
}

// ListPendingForDoctor returns pending requests scoped to the doctor, newest
// first, with nurse display names resolved. Reads fail soft.
func (s *Service) ListPendingForDoctor(ctx context.Context, doctorID uuid.UUID) readresult.Result[[]*model.OverrideRequest] {
	empty := []*model.OverrideRequest{}
	s.metrics.ReadsTotal.WithLabelValues("override.list_pending").Inc()

	owner, ok := s.resolveDoctor(ctx, doctorID)
	if !ok {
		return readresult.Ok(empty)
	}

	requests, fellBack, err := listing.OrderedWithFallback(ctx,
		func(ctx context.Context, ordered bool) ([]*model.OverrideRequest, error) {
			return s.repo.ListPendingForDoctor(ctx, owner, ordered)
		},
		overrideCreatedAt,
	)
	if fellBack {
		s.metrics.IndexFallbacks.WithLabelValues("override_requests").Inc()
	}
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("override.list_pending").Inc()
		s.logger.Error(err, "pending override list degraded", "doctor_id", owner.String())
		return readresult.Degraded(empty, "override.list_pending", err)
	}

	s.resolveNurseNames(ctx, requests)
	return readresult.Ok(requests)
}

// ListForNurse returns the caller's own requests, newest first.
func (s *Service) ListForNurse(ctx context.Context, nurseID uuid.UUID) readresult.Result[[]*model.OverrideRequest] {
	empty := []*model.OverrideRequest{}
	s.metrics.ReadsTotal.WithLabelValues("override.list_for_nurse").Inc()

	owner, ok := s.resolveNurse(ctx, nurseID)
	if !ok {
		return readresult.Ok(empty)
	}

	requests, fellBack, err := listing.OrderedWithFallback(ctx,
		func(ctx context.Context, ordered bool) ([]*model.OverrideRequest, error) {
			return s.repo.ListForNurse(ctx, owner, ordered)
		},
		overrideCreatedAt,
	)
	if fellBack {
		s.metrics.IndexFallbacks.WithLabelValues("override_requests").Inc()
	}
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("override.list_for_nurse").Inc()
		s.logger.Error(err, "nurse override list degraded", "nurse_id", owner.String())
		return readresult.Degraded(empty, "override.list_for_nurse", err)
	}
	return readresult.Ok(requests)
}

// Approve decides a request in favor of the nurse.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*model.OverrideRequest, error) {
	return s.decide(ctx, id, model.OverrideStatusApproved)
}

// Reject declines a request.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*model.OverrideRequest, error) {
	return s.decide(ctx, id, model.OverrideStatusRejected)
}

func (s *Service) decide(ctx context.Context, id uuid.UUID, status model.OverrideStatus) (*model.OverrideRequest, error) {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return nil, apperrors.NewUnauthorized(nil)
	}

	op := "override." + string(status)
	s.metrics.WritesTotal.WithLabelValues(op).Inc()

	if s.cfg.GuardedTransitions {
		updated, err := s.repo.UpdateStatusIfPending(ctx, id, string(status), caller.ID)
		if err != nil {
			s.metrics.WriteFailues.WithLabelValues(op).Inc()
			return nil, fmt.Errorf("failed to decide override request: %w", err)
		}
		if !updated {
			return nil, apperrors.NewBadRequest("override request already decided", nil)
		}
	} else {
		if err := s.repo.UpdateStatus(ctx, id, string(status), caller.ID); err != nil {
			s.metrics.WriteFailues.WithLabelValues(op).Inc()
			return nil, fmt.Errorf("failed to decide override request: %w", err)
		}
	}

	request, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload override request: %w", err)
	}

	s.publishDecision(ctx, request)
	return request, nil
}

// publishDecision fans the decision out to the notification worker. The
// write already landed; a broker failure is logged, not surfaced.
func (s *Service) publishDecision(ctx context.Context, request *model.OverrideRequest) {
	if s.broker == nil {
		return
	}
	err := s.broker.Publish(ctx, messaging.ChannelOverrideDecided, messaging.Envelope{
		Type: messaging.ChannelOverrideDecided,
		Payload: map[string]interface{}{
			"id":               request.ID.String(),
			"nurse_id":         request.NurseID.String(),
			"doctor_id":        request.DoctorID.String(),
			"patient_id":       request.PatientID.String(),
			"medication":       request.Medication,
			"requested_dosage": request.RequestedDosage,
			"status":           request.Status,
		},
	})
	if err != nil {
		s.metrics.MessagesFailed.Inc()
		s.logger.Error(err, "failed to publish override decision", "request_id", request.ID.String())
		return
	}
	s.metrics.MessagesPublished.Inc()
}

// resolveNurseNames attaches display names with a bounded fan-out. A failed
// lookup leaves the Unknown placeholder and never fails the list; results
// land by index so the primary order is preserved.
func (s *Service) resolveNurseNames(ctx context.Context, requests []*model.OverrideRequest) {
	sem := make(chan struct{}, s.cfg.LookupConcurrency)
	var wg sync.WaitGroup

	for i := range requests {
		wg.Add(1)
		sem <- struct{}{}
		go func(req *model.OverrideRequest) {
			defer wg.Done()
			defer func() { <-sem }()
			req.NurseName = s.nurseName(ctx, req.NurseID)
		}(requests[i])
	}
	wg.Wait()
}

func (s *Service) nurseName(ctx context.Context, nurseID uuid.UUID) string {
	key := nurseID.String()
	if name, ok := s.names.Get(key); ok {
		return name.(string)
	}

	nurse, err := s.nurses.Get(ctx, nurseID)
	if err != nil {
		s.metrics.LookupFailures.Inc()
		s.logger.Debug("nurse name lookup failed", "nurse_id", key)
		return model.UnknownName
	}

	s.names.Set(key, nurse.Name, cache.DefaultExpiration)
	return nurse.Name
}

// resolveDoctor maps an explicit owner or the caller to a doctor profile id.
// Profiles were written under two id conventions over time, so the lookup
// tries the uid field first and falls back to the document id.
func (s *Service) resolveDoctor(ctx context.Context, explicit uuid.UUID) (uuid.UUID, bool) {
	if explicit != uuid.Nil {
		return explicit, true
	}
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	doctor, err := s.doctorProfile(ctx, caller.ID)
	if err != nil || doctor == nil {
		return uuid.Nil, false
	}
	return doctor.ID, true
}

func (s *Service) resolveNurse(ctx context.Context, explicit uuid.UUID) (uuid.UUID, bool) {
	if explicit != uuid.Nil {
		return explicit, true
	}
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	nurse, err := s.nurseProfile(ctx, caller.ID)
	if err != nil || nurse == nil {
		return uuid.Nil, false
	}
	return nurse.ID, true
}

func (s *Service) doctorProfile(ctx context.Context, target uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.doctors.GetByUID(ctx, target.String())
	if err == nil {
		return doctor, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}
	doctor, err = s.doctors.Get(ctx, target)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	return doctor, err
}

func (s *Service) nurseProfile(ctx context.Context, target uuid.UUID) (*model.Nurse, error) {
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

func overrideCreatedAt(req *model.OverrideRequest) *time.Time {
	if req.CreatedAt.IsZero() {
		return nil
	}
	return &req.CreatedAt
}
