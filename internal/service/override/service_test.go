package override

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

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
	testMetrics = metrics.New("override_test")
	testLogger  = logger.NewLogger(&logger.Config{Output: io.Discard})
)

// fakeOverrideRepo is an in-memory OverrideRepository.
type fakeOverrideRepo struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*model.OverrideRequest
	indexed  bool
	listErr  error
	inserted []*model.OverrideRequest
}

func newFakeOverrideRepo(indexed bool) *fakeOverrideRepo {
	return &fakeOverrideRepo{
		byID:    map[uuid.UUID]*model.OverrideRequest{},
		indexed: indexed,
	}
}

func (f *fakeOverrideRepo) Create(ctx context.Context, req *model.OverrideRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.CreatedAt = time.Now()
	f.byID[req.ID] = req
	f.inserted = append(f.inserted, req)
	return nil
}

func (f *fakeOverrideRepo) Get(ctx context.Context, id uuid.UUID) (*model.OverrideRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("override request", nil)
	}
	return req, nil
}

func (f *fakeOverrideRepo) ListPendingForDoctor(ctx context.Context, doctorID uuid.UUID, ordered bool) ([]*model.OverrideRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if ordered && !f.indexed {
		return nil, apperrors.NewMissingIndex("override_requests", errors.New("no composite index"))
	}
	var out []*model.OverrideRequest
	for _, req := range f.inserted {
		if req.DoctorID == doctorID && req.Status == string(model.OverrideStatusPending) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeOverrideRepo) ListForNurse(ctx context.Context, nurseID uuid.UUID, ordered bool) ([]*model.OverrideRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ordered && !f.indexed {
		return nil, apperrors.NewMissingIndex("override_requests", errors.New("no composite index"))
	}
	var out []*model.OverrideRequest
	for _, req := range f.inserted {
		if req.NurseID == nurseID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeOverrideRepo) CountPendingForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	return 0, nil
}

func (f *fakeOverrideRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actorID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return apperrors.NewNotFound("override request", nil)
	}
	now := time.Now()
	req.Status = status
	req.DecidedBy = &actorID
	req.DecidedAt = &now
	return nil
}

func (f *fakeOverrideRepo) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status string, actorID uuid.UUID) (bool, error) {
	f.mu.Lock()
	req, ok := f.byID[id]
	if !ok || req.Status != string(model.OverrideStatusPending) {
		f.mu.Unlock()
		return false, nil
	}
	f.mu.Unlock()
	return true, f.UpdateStatus(ctx, id, status, actorID)
}

type fakeNurses struct {
	repository.NurseRepository
	byID    map[uuid.UUID]*model.Nurse
	byUID   map[string]*model.Nurse
	getErrs map[uuid.UUID]error
}

func (f *fakeNurses) Get(ctx context.Context, id uuid.UUID) (*model.Nurse, error) {
	if err, ok := f.getErrs[id]; ok {
		return nil, err
	}
	n, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("nurse", nil)
	}
	return n, nil
}

func (f *fakeNurses) GetByUID(ctx context.Context, uid string) (*model.Nurse, error) {
	n, ok := f.byUID[uid]
	if !ok {
		return nil, apperrors.NewNotFound("nurse", nil)
	}
	return n, nil
}

type fakeDoctors struct {
	repository.DoctorRepository
	byID  map[uuid.UUID]*model.Doctor
	byUID map[string]*model.Doctor
}

func (f *fakeDoctors) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("doctor", nil)
	}
	return d, nil
}

func (f *fakeDoctors) GetByUID(ctx context.Context, uid string) (*model.Doctor, error) {
	d, ok := f.byUID[uid]
	if !ok {
		return nil, apperrors.NewNotFound("doctor", nil)
	}
	return d, nil
}

type fakeBroker struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, channel)
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBroker) Close() error { return nil }

type env struct {
	svc     *Service
	repo    *fakeOverrideRepo
	nurses  *fakeNurses
	doctors *fakeDoctors
	broker  *fakeBroker
	nurse   *model.Nurse
	doctor  *model.Doctor
}

func newEnv(t *testing.T, cfg Config, indexed bool) *env {
	t.Helper()

	nurse := &model.Nurse{Base: model.Base{ID: uuid.New()}, UID: uuid.New().String(), Name: "Nina"}
	doctor := &model.Doctor{Base: model.Base{ID: uuid.New()}, UID: uuid.New().String(), Name: "Dr. Who"}

	repo := newFakeOverrideRepo(indexed)
	nurses := &fakeNurses{
		byID:    map[uuid.UUID]*model.Nurse{nurse.ID: nurse},
		byUID:   map[string]*model.Nurse{nurse.UID: nurse},
		getErrs: map[uuid.UUID]error{},
	}
	doctors := &fakeDoctors{
		byID:  map[uuid.UUID]*model.Doctor{doctor.ID: doctor},
		byUID: map[string]*model.Doctor{doctor.UID: doctor},
	}
	broker := &fakeBroker{}

	return &env{
		svc:     NewService(repo, nurses, doctors, broker, cfg, testMetrics, testLogger),
		repo:    repo,
		nurses:  nurses,
		doctors: doctors,
		broker:  broker,
		nurse:   nurse,
		doctor:  doctor,
	}
}

func nurseCtx(e *env) context.Context {
	uid, _ := uuid.Parse(e.nurse.UID)
	return identity.WithCaller(context.Background(), identity.Caller{
		ID: uid, Name: e.nurse.Name, Role: model.RoleNurse,
	})
}

func doctorCtx(e *env) context.Context {
	uid, _ := uuid.Parse(e.doctor.UID)
	return identity.WithCaller(context.Background(), identity.Caller{
		ID: uid, Name: e.doctor.Name, Role: model.RoleDoctor,
	})
}

func file(t *testing.T, e *env, ctx context.Context) *model.OverrideRequest {
	t.Helper()
	req, err := e.svc.Create(ctx, &model.CreateOverrideRequest{
		DoctorID:        e.doctor.ID.String(),
		PatientID:       uuid.New().String(),
		Medication:      "morphine",
		CurrentDosage:   "5mg",
		RequestedDosage: "10mg",
		Reason:          "uncontrolled pain",
	})
	require.NoError(t, err)
	return req
}

func TestCreateFilesPendingRequest(t *testing.T) {
	e := newEnv(t, Config{}, true)

	req := file(t, e, nurseCtx(e))

	assert.Equal(t, string(model.OverrideStatusPending), req.Status)
	assert.Equal(t, e.nurse.ID, req.NurseID)
	assert.Nil(t, req.DecidedBy)
}

func TestCreateRequiresCaller(t *testing.T) {
	e := newEnv(t, Config{}, true)

	_, err := e.svc.Create(context.Background(), &model.CreateOverrideRequest{})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestApprovePublishesDecision(t *testing.T) {
	e := newEnv(t, Config{}, true)
	req := file(t, e, nurseCtx(e))

	decided, err := e.svc.Approve(doctorCtx(e), req.ID)

	require.NoError(t, err)
	assert.Equal(t, string(model.OverrideStatusApproved), decided.Status)
	assert.NotNil(t, decided.DecidedBy)
	assert.Equal(t, []string{"override.decided"}, e.broker.published)
}

func TestDecisionIsLastWriteWinsByDefault(t *testing.T) {
	e := newEnv(t, Config{}, true)
	req := file(t, e, nurseCtx(e))

	_, err := e.svc.Approve(doctorCtx(e), req.ID)
	require.NoError(t, err)

	// A second, conflicting decision overwrites the first.
	decided, err := e.svc.Reject(doctorCtx(e), req.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.OverrideStatusRejected), decided.Status)
}

func TestGuardedTransitionsRejectSecondDecision(t *testing.T) {
	e := newEnv(t, Config{GuardedTransitions: true}, true)
	req := file(t, e, nurseCtx(e))

	_, err := e.svc.Approve(doctorCtx(e), req.ID)
	require.NoError(t, err)

	_, err = e.svc.Reject(doctorCtx(e), req.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestBrokerFailureDoesNotFailDecision(t *testing.T) {
	e := newEnv(t, Config{}, true)
	e.broker.err = errors.New("redis down")
	req := file(t, e, nurseCtx(e))

	decided, err := e.svc.Approve(doctorCtx(e), req.ID)

	require.NoError(t, err)
	assert.Equal(t, string(model.OverrideStatusApproved), decided.Status)
}

func TestListPendingFallsBackWhenIndexMissing(t *testing.T) {
	e := newEnv(t, Config{}, false)
	ctx := nurseCtx(e)
	first := file(t, e, ctx)
	time.Sleep(2 * time.Millisecond)
	second := file(t, e, ctx)

	result := e.svc.ListPendingForDoctor(doctorCtx(e), uuid.Nil)

	require.False(t, result.Degraded())
	require.Len(t, result.Value, 2)
	// Newest first despite the unordered store read.
	assert.Equal(t, second.ID, result.Value[0].ID)
	assert.Equal(t, first.ID, result.Value[1].ID)
}

func TestListPendingResolvesNurseNames(t *testing.T) {
	e := newEnv(t, Config{}, true)
	file(t, e, nurseCtx(e))

	result := e.svc.ListPendingForDoctor(doctorCtx(e), uuid.Nil)

	require.Len(t, result.Value, 1)
	assert.Equal(t, "Nina", result.Value[0].NurseName)
}

func TestFailedNameLookupLeavesUnknownPlaceholder(t *testing.T) {
	e := newEnv(t, Config{}, true)
	req := file(t, e, nurseCtx(e))
	e.nurses.getErrs[req.NurseID] = errors.New("unavailable")

	result := e.svc.ListPendingForDoctor(doctorCtx(e), uuid.Nil)

	require.False(t, result.Degraded())
	require.Len(t, result.Value, 1)
	assert.Equal(t, model.UnknownName, result.Value[0].NurseName)
}

func TestListPendingDegradesOnStoreFailure(t *testing.T) {
	e := newEnv(t, Config{}, true)
	e.repo.listErr = errors.New("connection refused")

	result := e.svc.ListPendingForDoctor(doctorCtx(e), uuid.Nil)

	assert.True(t, result.Degraded())
	assert.Empty(t, result.Value)
}

func TestListPendingMissingCallerAnswersEmpty(t *testing.T) {
	e := newEnv(t, Config{}, true)
	file(t, e, nurseCtx(e))

	result := e.svc.ListPendingForDoctor(context.Background(), uuid.Nil)

	assert.False(t, result.Degraded())
	assert.Empty(t, result.Value)
}

func TestListForNurseScopedToCaller(t *testing.T) {
	e := newEnv(t, Config{}, true)
	file(t, e, nurseCtx(e))

	result := e.svc.ListForNurse(nurseCtx(e), uuid.Nil)

	require.False(t, result.Degraded())
	assert.Len(t, result.Value, 1)
}
