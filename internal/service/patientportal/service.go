package patientportal

import (
	"context"
	"fmt"
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

// Service implements the patient-facing reads plus the community board.
type Service struct {
	patients repository.PatientRepository
	labs     repository.LabRepository
	rxs      repository.PrescriptionRepository
	appts    repository.AppointmentRepository
	posts    repository.PostRepository
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(
	patients repository.PatientRepository,
	labs repository.LabRepository,
	rxs repository.PrescriptionRepository,
	appts repository.AppointmentRepository,
	posts repository.PostRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		patients: patients,
		labs:     labs,
		rxs:      rxs,
		appts:    appts,
		posts:    posts,
		metrics:  m,
		logger:   log,
	}
}

// Profile looks up the patient profile by uid field first, then document id.
// Nil without error means no profile exists under either convention.
func (s *Service) Profile(ctx context.Context, target uuid.UUID) (*model.Patient, error) {
	patient, err := s.patients.GetByUID(ctx, target.String())
	if err == nil {
		return patient, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}
	patient, err = s.patients.Get(ctx, target)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	return patient, err
}

// OwnProfile resolves the caller's patient profile; nil when the caller is
// absent or has no profile.
func (s *Service) OwnProfile(ctx context.Context) (*model.Patient, error) {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return nil, nil
	}
	return s.Profile(ctx, caller.ID)
}

// ListLabResults returns the caller's lab results, newest first.
func (s *Service) ListLabResults(ctx context.Context, patientID uuid.UUID) readresult.Result[[]*model.LabResult] {
	empty := []*model.LabResult{}
	s.metrics.ReadsTotal.WithLabelValues("patient.list_lab_results").Inc()

	owner, ok := s.owner(ctx, patientID)
	if !ok {
		return readresult.Ok(empty)
	}

	results, fellBack, err := listing.OrderedWithFallback(ctx,
		func(ctx context.Context, ordered bool) ([]*model.LabResult, error) {
			return s.labs.ListResultsForPatient(ctx, owner, ordered)
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
		s.metrics.ReadsDegraded.WithLabelValues("patient.list_lab_results").Inc()
		s.logger.Error(err, "lab result list degraded", "patient_id", owner.String())
		return readresult.Degraded(empty, "patient.list_lab_results", err)
	}
	return readresult.Ok(results)
}

// ListActivePrescriptions returns prescriptions still pending or active.
func (s *Service) ListActivePrescriptions(ctx context.Context, patientID uuid.UUID) readresult.Result[[]*model.Prescription] {
	empty := []*model.Prescription{}
	s.metrics.ReadsTotal.WithLabelValues("patient.list_active_rxs").Inc()

	owner, ok := s.owner(ctx, patientID)
	if !ok {
		return readresult.Ok(empty)
	}

	rxs, err := s.rxs.ListActiveForPatient(ctx, owner)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("patient.list_active_rxs").Inc()
		s.logger.Error(err, "active prescription list degraded", "patient_id", owner.String())
		return readresult.Degraded(empty, "patient.list_active_rxs", err)
	}
	if rxs == nil {
		rxs = empty
	}
	return readresult.Ok(rxs)
}

// ListAppointments returns the caller's appointments ordered by scheduled
// time ascending.
func (s *Service) ListAppointments(ctx context.Context, patientID uuid.UUID) readresult.Result[[]*model.Appointment] {
	empty := []*model.Appointment{}
	s.metrics.ReadsTotal.WithLabelValues("patient.list_appointments").Inc()

	owner, ok := s.owner(ctx, patientID)
	if !ok {
		return readresult.Ok(empty)
	}

	appointments, err := s.appts.ListForPatient(ctx, owner)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("patient.list_appointments").Inc()
		s.logger.Error(err, "appointment list degraded", "patient_id", owner.String())
		return readresult.Degraded(empty, "patient.list_appointments", err)
	}
	if appointments == nil {
		appointments = empty
	}
	return readresult.Ok(appointments)
}

// ListPosts returns the community board, newest first.
func (s *Service) ListPosts(ctx context.Context) readresult.Result[[]*model.Post] {
	empty := []*model.Post{}
	s.metrics.ReadsTotal.WithLabelValues("patient.list_posts").Inc()

	posts, fellBack, err := listing.OrderedWithFallback(ctx,
		func(ctx context.Context, ordered bool) ([]*model.Post, error) {
			return s.posts.List(ctx, ordered)
		},
		func(p *model.Post) *time.Time {
			if p.CreatedAt.IsZero() {
				return nil
			}
			return &p.CreatedAt
		},
	)
	if fellBack {
		s.metrics.IndexFallbacks.WithLabelValues("posts").Inc()
	}
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("patient.list_posts").Inc()
		s.logger.Error(err, "post list degraded")
		return readresult.Degraded(empty, "patient.list_posts", err)
	}
	return readresult.Ok(posts)
}

// CreatePost publishes a community post under the caller's identity.
func (s *Service) CreatePost(ctx context.Context, req *model.CreatePostRequest) (*model.Post, error) {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return nil, apperrors.NewUnauthorized(nil)
	}

	post := &model.Post{
		Base:       model.Base{ID: uuid.New()},
		AuthorID:   caller.ID,
		AuthorName: caller.Name,
		AuthorRole: string(caller.Role),
		Title:      req.Title,
		Body:       req.Body,
	}

	s.metrics.WritesTotal.WithLabelValues("post.create").Inc()
	if err := s.posts.Create(ctx, post); err != nil {
		s.metrics.WriteFailues.WithLabelValues("post.create").Inc()
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *Service) owner(ctx context.Context, explicit uuid.UUID) (uuid.UUID, bool) {
	if explicit != uuid.Nil {
		return explicit, true
	}
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	patient, err := s.Profile(ctx, caller.ID)
	if err != nil || patient == nil {
		return uuid.Nil, false
	}
	return patient.ID, true
}
