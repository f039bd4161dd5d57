package responsible

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Majedzeyad/cancare-api/internal/model"
	"github.com/Majedzeyad/cancare-api/internal/repository"
	"github.com/Majedzeyad/cancare-api/internal/service/identity"
	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/metrics"
)

var (
	testMetrics = metrics.New("responsible_test")
	testLogger  = logger.NewLogger(&logger.Config{Output: io.Discard})
)

type fakeResponsibles struct {
	repository.ResponsibleRepository
	byUID map[string]*model.ResponsibleParty
}

func (f *fakeResponsibles) Get(ctx context.Context, id uuid.UUID) (*model.ResponsibleParty, error) {
	return nil, apperrors.NewNotFound("responsible party", nil)
}

func (f *fakeResponsibles) GetByUID(ctx context.Context, uid string) (*model.ResponsibleParty, error) {
	p, ok := f.byUID[uid]
	if !ok {
		return nil, apperrors.NewNotFound("responsible party", nil)
	}
	return p, nil
}

type fakePatients struct {
	repository.PatientRepository
	byID map[uuid.UUID]*model.Patient
}

func (f *fakePatients) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("patient", nil)
	}
	return p, nil
}

type fakeLabs struct {
	repository.LabRepository
	results []*model.LabResult
}

func (f *fakeLabs) ListResultsForPatient(ctx context.Context, patientID uuid.UUID, ordered bool) ([]*model.LabResult, error) {
	return f.results, nil
}

func TestListLabResultsOutOfScopePatientAnswersEmpty(t *testing.T) {
	party := &model.ResponsibleParty{Base: model.Base{ID: uuid.New()}, UID: uuid.New().String()}
	otherParty := uuid.New()
	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, ResponsiblePartyID: &otherParty}

	svc := NewService(
		&fakeResponsibles{byUID: map[string]*model.ResponsibleParty{party.UID: party}},
		&fakePatients{byID: map[uuid.UUID]*model.Patient{patient.ID: patient}},
		&fakeLabs{results: []*model.LabResult{{Value: "9.1"}}},
		testMetrics, testLogger,
	)

	uid, _ := uuid.Parse(party.UID)
	ctx := identity.WithCaller(context.Background(), identity.Caller{ID: uid, Role: model.RoleResponsible})

	result := svc.ListLabResults(ctx, patient.ID)

	assert.False(t, result.Degraded())
	assert.Empty(t, result.Value)
}

func TestListLabResultsInScopePatient(t *testing.T) {
	party := &model.ResponsibleParty{Base: model.Base{ID: uuid.New()}, UID: uuid.New().String()}
	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, ResponsiblePartyID: &party.ID}

	svc := NewService(
		&fakeResponsibles{byUID: map[string]*model.ResponsibleParty{party.UID: party}},
		&fakePatients{byID: map[uuid.UUID]*model.Patient{patient.ID: patient}},
		&fakeLabs{results: []*model.LabResult{{Value: "9.1"}}},
		testMetrics, testLogger,
	)

	uid, _ := uuid.Parse(party.UID)
	ctx := identity.WithCaller(context.Background(), identity.Caller{ID: uid, Role: model.RoleResponsible})

	result := svc.ListLabResults(ctx, patient.ID)

	require.False(t, result.Degraded())
	assert.Len(t, result.Value, 1)
}

func TestListLabResultsMissingCallerAnswersEmpty(t *testing.T) {
	svc := NewService(
		&fakeResponsibles{byUID: map[string]*model.ResponsibleParty{}},
		&fakePatients{byID: map[uuid.UUID]*model.Patient{}},
		&fakeLabs{},
		testMetrics, testLogger,
	)

	result := svc.ListLabResults(context.Background(), uuid.New())

	assert.False(t, result.Degraded())
	assert.Empty(t, result.Value)
}
