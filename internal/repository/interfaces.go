package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/model"
)

// Repositories are typed views over externally persisted documents. This
// layer owns no storage: entities are created by write operations, read by
// scoped queries, and never deleted. Ordered list reads take an ordered flag;
// when the ordered form is rejected because the store lacks the composite
// index (errors.IsMissingIndex), callers retry unordered and sort in memory.

type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type PatientRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	GetByUID(ctx context.Context, uid string) (*model.Patient, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Patient, error)
	ListForNurse(ctx context.Context, nurseID uuid.UUID) ([]*model.Patient, error)
	ListForResponsible(ctx context.Context, partyID uuid.UUID) ([]*model.Patient, error)
	IDsForResponsible(ctx context.Context, partyID uuid.UUID) ([]uuid.UUID, error)
	CountActiveForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error)
	CountForResponsible(ctx context.Context, partyID uuid.UUID) (int, error)
}

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetByUID(ctx context.Context, uid string) (*model.Doctor, error)
}

type NurseRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Nurse, error)
	GetByUID(ctx context.Context, uid string) (*model.Nurse, error)
}

type ResponsibleRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.ResponsibleParty, error)
	GetByUID(ctx context.Context, uid string) (*model.ResponsibleParty, error)
}

type LabRepository interface {
	CreateRequest(ctx context.Context, req *model.LabTestRequest) error
	ListPendingForDoctor(ctx context.Context, doctorID uuid.UUID, ordered bool) ([]*model.LabTestRequest, error)
	CountPendingForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error)
	CountPendingForPatients(ctx context.Context, patientIDs []uuid.UUID) (int, error)
	ListResultsForPatient(ctx context.Context, patientID uuid.UUID, ordered bool) ([]*model.LabResult, error)
	GetResult(ctx context.Context, id uuid.UUID) (*model.LabResult, error)
	AddNotes(ctx context.Context, resultID, reviewerID uuid.UUID, notes string) error
}

type PrescriptionRepository interface {
	Create(ctx context.Context, rx *model.Prescription) error
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error)
	ListActiveForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error)
	CountCreatedSince(ctx context.Context, doctorID uuid.UUID, since time.Time) (int, error)
	CountCreatedSinceForPatients(ctx context.Context, patientIDs []uuid.UUID, since time.Time) (int, error)
}

type MedicalRecordRepository interface {
	Create(ctx context.Context, rec *model.MedicalRecord) error
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
}

type OverrideRepository interface {
	Create(ctx context.Context, req *model.OverrideRequest) error
	Get(ctx context.Context, id uuid.UUID) (*model.OverrideRequest, error)
	ListPendingForDoctor(ctx context.Context, doctorID uuid.UUID, ordered bool) ([]*model.OverrideRequest, error)
	ListForNurse(ctx context.Context, nurseID uuid.UUID, ordered bool) ([]*model.OverrideRequest, error)
	CountPendingForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error)
	// UpdateStatus is last-write-wins: it does not check the prior status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, actorID uuid.UUID) error
	// UpdateStatusIfPending is the compare-and-set form; it reports whether
	// the row was still pending and therefore updated.
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status string, actorID uuid.UUID) (bool, error)
}

type AppointmentRepository interface {
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
	ListForClinician(ctx context.Context, clinicianID uuid.UUID) ([]*model.Appointment, error)
	CountUpcomingForPatients(ctx context.Context, patientIDs []uuid.UUID) (int, error)
}

type ChatRepository interface {
	Create(ctx context.Context, chat *model.GroupChat) error
	AddMember(ctx context.Context, chatID, memberID uuid.UUID) error
	IsMember(ctx context.Context, chatID, memberID uuid.UUID) (bool, error)
	Members(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error)
	ListForMember(ctx context.Context, memberID uuid.UUID) ([]*model.GroupChat, error)
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]*model.Message, error)
	AppendMessage(ctx context.Context, msg *model.Message) error
	MarkRead(ctx context.Context, chatID, memberID uuid.UUID) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	List(ctx context.Context, ordered bool) ([]*model.Post, error)
}
