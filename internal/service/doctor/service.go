package doctor

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
	"github.com/Majedzeyad/cancare-api/pkg/metrics"
	"github.com/Majedzeyad/cancare-api/pkg/readresult"
)

// Config tunes the doctor-facing reads.
type Config struct {
	LookupConcurrency int
	NameCacheTTL      time.Duration
}

// Service implements the doctor dashboard's reads and writes. Reads fail
// soft: a store failure logs, counts, and answers the safe default. Writes
// fail loud.
type Service struct {
	doctors  repository.DoctorRepository
	patients repository.PatientRepository
	labs     repository.LabRepository
	rxs      repository.PrescriptionRepository
	records  repository.MedicalRecordRepository
	appts    repository.AppointmentRepository
	names    *cache.Cache
	cfg      Config
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	labs repository.LabRepository,
	rxs repository.PrescriptionRepository,
	records repository.MedicalRecordRepository,
	appts repository.AppointmentRepository,
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
		doctors:  doctors,
		patients: patients,
		labs:     labs,
		rxs:      rxs,
		records:  records,
		appts:    appts,
		names:    cache.New(cfg.NameCacheTTL, 2*cfg.NameCacheTTL),
		cfg:      cfg,
		metrics:  m,
		logger:   log,
	}
}

// Profile looks up a doctor profile by the uid field first, then by document
// id. Nil without error means no profile exists under either convention.
func (s *Service) Profile(ctx context.Context, target uuid.UUID) (*model.Doctor, error) {
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

// ListPatients returns the patients assigned to the doctor.
func (s *Service) ListPatients(ctx context.Context, doctorID uuid.UUID) readresult.Result[[]*model.Patient] {
	empty := []*model.Patient{}
	s.metrics.ReadsTotal.WithLabelValues("doctor.list_patients").Inc()

	owner, ok := s.owner(ctx, doctorID)
	if !ok {
		return readresult.Ok(empty)
	}

	patients, err := s.patients.ListForDoctor(ctx, owner)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("doctor.list_patients").Inc()
		s.logger.Error(err, "patient list degraded", "doctor_id", owner.String())
		return readresult.Degraded(empty, "doctor.list_patients", err)
	}
	if patients == nil {
		patients = empty
	}
	return readresult.Ok(patients)
}

// ListPendingLabRequests returns the doctor's pending lab requests, newest
// first, with patient display names resolved.
func (s *Service) ListPendingLabRequests(ctx context.Context, doctorID uuid.UUID) readresult.Result[[]*model.LabTestRequest] {
	empty := []*model.LabTestRequest{}
	s.metrics.ReadsTotal.WithLabelValues("doctor.list_pending_labs").Inc()

	owner, ok := s.owner(ctx, doctorID)
	if !ok {
		return readresult.Ok(empty)
	}

	requests, fellBack, err := listing.OrderedWithFallback(ctx,
		func(ctx context.Context, ordered bool) ([]*model.LabTestRequest, error) {
			return s.labs.ListPendingForDoctor(ctx, owner, ordered)
		},
		func(r *model.LabTestRequest) *time.Time {
			if r.CreatedAt.IsZero() {
				return nil
			}
			return &r.CreatedAt
		},
	)
	if fellBack {
		s.metrics.IndexFallbacks.WithLabelValues("lab_test_requests").Inc()
	}
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("doctor.list_pending_labs").Inc()
		s.logger.Error(err, "pending lab list degraded", "doctor_id", owner.String())
		return readresult.Degraded(empty, "doctor.list_pending_labs", err)
	}

	s.resolvePatientNames(ctx, requests)
	return readresult.Ok(requests)
}

// RequestLabTest files a new pending lab request for one of the doctor's
// patients.
func (s *Service) RequestLabTest(ctx context.Context, req *model.CreateLabTestRequest) (*model.LabTestRequest, error) {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return nil, apperrors.NewUnauthorized(nil)
	}

	doctor, err := s.Profile(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve doctor profile: %w", err)
	}
	if doctor == nil {
		return nil, apperrors.NewForbidden("caller has no doctor profile")
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid patient id", err)
	}

	request := &model.LabTestRequest{
		Base:      model.Base{ID: uuid.New()},
		PatientID: patientID,
		DoctorID:  doctor.ID,
		TestType:  req.TestType,
		Status:    string(model.LabStatusPending),
	}

	s.metrics.WritesTotal.WithLabelValues("lab.request").Inc()
	if err := s.labs.CreateRequest(ctx, request); err != nil {
		s.metrics.WriteFailues.WithLabelValues("lab.request").Inc()
		return nil, fmt.Errorf("failed to create lab request: %w", err)
	}
	return request, nil
}

// AddLabNotes records reviewer notes on a result and completes it. A write,
// so failures propagate.
func (s *Service) AddLabNotes(ctx context.Context, resultID uuid.UUID, notes string) error {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return apperrors.NewUnauthorized(nil)
	}

	s.metrics.WritesTotal.WithLabelValues("lab.add_notes").Inc()
	if err := s.labs.AddNotes(ctx, resultID, caller.ID, notes); err != nil {
		s.metrics.WriteFailues.WithLabelValues("lab.add_notes").Inc()
		return fmt.Errorf("failed to add lab notes: %w", err)
	}
	return nil
}

// CreatePrescription writes a new prescription for one of the doctor's
// patients.
func (s *Service) CreatePrescription(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return nil, apperrors.NewUnauthorized(nil)
	}

	doctor, err := s.Profile(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve doctor profile: %w", err)
	}
	if doctor == nil {
		return nil, apperrors.NewForbidden("caller has no doctor profile")
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid patient id", err)
	}

	rx := &model.Prescription{
		Base:       model.Base{ID: uuid.New()},
		PatientID:  patientID,
		DoctorID:   doctor.ID,
		Medication: req.Medication,
		Dosage:     req.Dosage,
		Frequency:  req.Frequency,
		Status:     string(model.PrescriptionStatusPending),
	}

	s.metrics.WritesTotal.WithLabelValues("prescription.create").Inc()
	if err := s.rxs.Create(ctx, rx); err != nil {
		s.metrics.WriteFailues.WithLabelValues("prescription.create").Inc()
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}
	return rx, nil
}

// ListPrescriptions returns every prescription for a patient.
func (s *Service) ListPrescriptions(ctx context.Context, patientID uuid.UUID) readresult.Result[[]*model.Prescription] {
	empty := []*model.Prescription{}
	s.metrics.ReadsTotal.WithLabelValues("doctor.list_prescriptions").Inc()

	rxs, err := s.rxs.ListForPatient(ctx, patientID)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("doctor.list_prescriptions").Inc()
		s.logger.Error(err, "prescription list degraded", "patient_id", patientID.String())
		return readresult.Degraded(empty, "doctor.list_prescriptions", err)
	}
	if rxs == nil {
		rxs = empty
	}
	return readresult.Ok(rxs)
}

// CreateMedicalRecord appends an immutable record to a patient's history.
func (s *Service) CreateMedicalRecord(ctx context.Context, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	caller, ok := identity.CallerFrom(ctx)
	if !ok {
		return nil, apperrors.NewUnauthorized(nil)
	}

	doctor, err := s.Profile(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve doctor profile: %w", err)
	}
	if doctor == nil {
		return nil, apperrors.NewForbidden("caller has no doctor profile")
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid patient id", err)
	}

	rec := &model.MedicalRecord{
		Base:        model.Base{ID: uuid.New()},
		PatientID:   patientID,
		DoctorID:    doctor.ID,
		Category:    req.Category,
		Description: req.Description,
	}

	s.metrics.WritesTotal.WithLabelValues("medical_record.create").Inc()
	if err := s.records.Create(ctx, rec); err != nil {
		s.metrics.WriteFailues.WithLabelValues("medical_record.create").Inc()
		return nil, fmt.Errorf("failed to create medical record: %w", err)
	}
	return rec, nil
}

// ListMedicalRecords returns a patient's records, newest first.
func (s *Service) ListMedicalRecords(ctx context.Context, patientID uuid.UUID) readresult.Result[[]*model.MedicalRecord] {
	empty := []*model.MedicalRecord{}
	s.metrics.ReadsTotal.WithLabelValues("doctor.list_records").Inc()

	records, err := s.records.ListForPatient(ctx, patientID)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("doctor.list_records").Inc()
		s.logger.Error(err, "medical record list degraded", "patient_id", patientID.String())
		return readresult.Degraded(empty, "doctor.list_records", err)
	}
	if records == nil {
		records = empty
	}
	return readresult.Ok(records)
}

// ListAppointments returns the doctor's appointments, soonest first.
func (s *Service) ListAppointments(ctx context.Context, doctorID uuid.UUID) readresult.Result[[]*model.Appointment] {
	empty := []*model.Appointment{}
	s.metrics.ReadsTotal.WithLabelValues("doctor.list_appointments").Inc()

	owner, ok := s.owner(ctx, doctorID)
	if !ok {
		return readresult.Ok(empty)
	}

	appointments, err := s.appts.ListForClinician(ctx, owner)
	if err != nil {
		s.metrics.ReadsDegraded.WithLabelValues("doctor.list_appointments").Inc()
		s.logger.Error(err, "appointment list degraded", "doctor_id", owner.String())
		return readresult.Degraded(empty, "doctor.list_appointments", err)
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
	doctor, err := s.Profile(ctx, caller.ID)
	if err != nil || doctor == nil {
		return uuid.Nil, false
	}
	return doctor.ID, true
}

func (s *Service) resolvePatientNames(ctx context.Context, requests []*model.LabTestRequest) {
	sem := make(chan struct{}, s.cfg.LookupConcurrency)
	var wg sync.WaitGroup

	for i := range requests {
		wg.Add(1)
		sem <- struct{}{}
		go func(req *model.LabTestRequest) {
			defer wg.Done()
			defer func() { <-sem }()
			req.PatientName = s.patientName(ctx, req.PatientID)
		}(requests[i])
	}
	wg.Wait()
}

func (s *Service) patientName(ctx context.Context, patientID uuid.UUID) string {
	key := patientID.String()
	if name, ok := s.names.Get(key); ok {
		return name.(string)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		s.metrics.LookupFailures.Inc()
		s.logger.Debug("patient name lookup failed", "patient_id", key)
		return model.UnknownName
	}

	s.names.Set(key, patient.Name, cache.DefaultExpiration)
	return patient.Name
}
