package dashboard

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Majedzeyad/cancare-api/internal/repository"
	"github.com/Majedzeyad/cancare-api/pkg/logger"
	"github.com/Majedzeyad/cancare-api/pkg/metrics"
)

var (
	testMetrics = metrics.New("dashboard_test")
	testLogger  = logger.NewLogger(&logger.Config{Output: io.Discard})
)

type fakePatients struct {
	repository.PatientRepository
	active    int
	activeErr error
	total     int
	ids       []uuid.UUID
}

func (f *fakePatients) CountActiveForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	return f.active, f.activeErr
}

func (f *fakePatients) CountForResponsible(ctx context.Context, partyID uuid.UUID) (int, error) {
	return f.total, nil
}

func (f *fakePatients) IDsForResponsible(ctx context.Context, partyID uuid.UUID) ([]uuid.UUID, error) {
	return f.ids, nil
}

type fakeLabs struct {
	repository.LabRepository
	pending    int
	pendingErr error
}

func (f *fakeLabs) CountPendingForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	return f.pending, f.pendingErr
}

func (f *fakeLabs) CountPendingForPatients(ctx context.Context, patientIDs []uuid.UUID) (int, error) {
	return f.pending, f.pendingErr
}

type fakeOverrides struct {
	repository.OverrideRepository
	pending int
}

func (f *fakeOverrides) CountPendingForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	return f.pending, nil
}

type fakeRxs struct {
	repository.PrescriptionRepository
	recent    int
	gotSince  time.Time
	recentErr error
}

func (f *fakeRxs) CountCreatedSince(ctx context.Context, doctorID uuid.UUID, since time.Time) (int, error) {
	f.gotSince = since
	return f.recent, f.recentErr
}

func (f *fakeRxs) CountCreatedSinceForPatients(ctx context.Context, patientIDs []uuid.UUID, since time.Time) (int, error) {
	f.gotSince = since
	return f.recent, f.recentErr
}

type fakeAppts struct {
	repository.AppointmentRepository
	upcoming int
}

func (f *fakeAppts) CountUpcomingForPatients(ctx context.Context, patientIDs []uuid.UUID) (int, error) {
	return f.upcoming, nil
}

func newDoctorService(patients *fakePatients, labs *fakeLabs, overrides *fakeOverrides, rxs *fakeRxs) *Service {
	return NewService(
		nil, nil, patients, labs, overrides, rxs, &fakeAppts{},
		Config{RecentWindowDays: 7},
		testMetrics, testLogger,
	)
}

func TestDoctorStatsAggregatesIndependentCounts(t *testing.T) {
	svc := newDoctorService(
		&fakePatients{active: 4},
		&fakeLabs{pending: 1},
		&fakeOverrides{pending: 3},
		&fakeRxs{recent: 2},
	)

	result := svc.DoctorStats(context.Background(), uuid.New())

	assert.False(t, result.Degraded())
	assert.Equal(t, 4, result.Value.ActivePatients)
	assert.Equal(t, 1, result.Value.PendingLabTests)
	assert.Equal(t, 3, result.Value.PendingOverrides)
	assert.Equal(t, 2, result.Value.RecentPrescriptions)
}

func TestDoctorStatsAllOrZeroOnAnyFailure(t *testing.T) {
	svc := newDoctorService(
		&fakePatients{active: 4},
		&fakeLabs{pendingErr: errors.New("unavailable")},
		&fakeOverrides{pending: 3},
		&fakeRxs{recent: 2},
	)

	result := svc.DoctorStats(context.Background(), uuid.New())

	assert.True(t, result.Degraded())
	assert.Zero(t, result.Value.ActivePatients)
	assert.Zero(t, result.Value.PendingLabTests)
	assert.Zero(t, result.Value.PendingOverrides)
	assert.Zero(t, result.Value.RecentPrescriptions)
}

func TestDoctorStatsRecencyWindowDerivedPerCall(t *testing.T) {
	rxs := &fakeRxs{recent: 2}
	svc := newDoctorService(&fakePatients{}, &fakeLabs{}, &fakeOverrides{}, rxs)

	before := time.Now().AddDate(0, 0, -7)
	svc.DoctorStats(context.Background(), uuid.New())
	after := time.Now().AddDate(0, 0, -7)

	assert.False(t, rxs.gotSince.Before(before))
	assert.False(t, rxs.gotSince.After(after))
}

func TestDoctorStatsMissingCallerAnswersZeros(t *testing.T) {
	svc := newDoctorService(&fakePatients{active: 4}, &fakeLabs{}, &fakeOverrides{}, &fakeRxs{})

	// No explicit owner and no caller on the context.
	result := svc.DoctorStats(context.Background(), uuid.Nil)

	assert.False(t, result.Degraded())
	assert.Zero(t, result.Value.ActivePatients)
}

func TestResponsibleStatsAggregatesAcrossPatients(t *testing.T) {
	patients := &fakePatients{total: 2, ids: []uuid.UUID{uuid.New(), uuid.New()}}
	svc := NewService(
		nil, nil, patients,
		&fakeLabs{pending: 1},
		&fakeOverrides{},
		&fakeRxs{recent: 5},
		&fakeAppts{upcoming: 3},
		Config{RecentWindowDays: 7},
		testMetrics, testLogger,
	)

	result := svc.ResponsibleStats(context.Background(), uuid.New())

	assert.False(t, result.Degraded())
	assert.Equal(t, 2, result.Value.Patients)
	assert.Equal(t, 1, result.Value.PendingLabTests)
	assert.Equal(t, 5, result.Value.RecentPrescriptions)
	assert.Equal(t, 3, result.Value.UpcomingAppointments)
}

func TestResponsibleStatsAllOrZeroOnFailure(t *testing.T) {
	patients := &fakePatients{total: 2, ids: []uuid.UUID{uuid.New()}}
	svc := NewService(
		nil, nil, patients,
		&fakeLabs{},
		&fakeOverrides{},
		&fakeRxs{recentErr: errors.New("unavailable")},
		&fakeAppts{upcoming: 3},
		Config{RecentWindowDays: 7},
		testMetrics, testLogger,
	)

	result := svc.ResponsibleStats(context.Background(), uuid.New())

	assert.True(t, result.Degraded())
	assert.Zero(t, result.Value.Patients)
	assert.Zero(t, result.Value.UpcomingAppointments)
}
