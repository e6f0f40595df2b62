package escalation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/escalation"
	"complaintdesk/backend/internal/models"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) EscalateStaleComplaints(ctx context.Context, cutoff time.Time) ([]string, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, e audit.Entry) {
	m.Called(ctx, e)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyEscalation(ctx context.Context, ids []string) {
	m.Called(ctx, ids)
}

var now = time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC)

func TestShouldEscalate(t *testing.T) {
	window := 72 * time.Hour
	tests := []struct {
		name string
		c    models.Complaint
		want bool
	}{
		{"pending medium 4 days old", models.Complaint{Status: models.StatusPending, Priority: models.PriorityMedium, CreatedAt: now.Add(-96 * time.Hour)}, true},
		{"in progress low 4 days old", models.Complaint{Status: models.StatusInProgress, Priority: models.PriorityLow, CreatedAt: now.Add(-96 * time.Hour)}, true},
		{"exactly 72h is not older", models.Complaint{Status: models.StatusPending, Priority: models.PriorityHigh, CreatedAt: now.Add(-72 * time.Hour)}, false},
		{"one second past the window", models.Complaint{Status: models.StatusPending, Priority: models.PriorityHigh, CreatedAt: now.Add(-72*time.Hour - time.Second)}, true},
		{"already critical", models.Complaint{Status: models.StatusPending, Priority: models.PriorityCritical, CreatedAt: now.Add(-96 * time.Hour)}, false},
		{"resolved", models.Complaint{Status: models.StatusResolved, Priority: models.PriorityLow, CreatedAt: now.Add(-96 * time.Hour)}, false},
		{"closed", models.Complaint{Status: models.StatusClosed, Priority: models.PriorityLow, CreatedAt: now.Add(-96 * time.Hour)}, false},
		{"rejected", models.Complaint{Status: models.StatusRejected, Priority: models.PriorityLow, CreatedAt: now.Add(-96 * time.Hour)}, false},
		{"fresh", models.Complaint{Status: models.StatusPending, Priority: models.PriorityLow, CreatedAt: now.Add(-time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escalation.ShouldEscalate(&tt.c, now, window))
		})
	}
}

func TestShouldEscalate_ComparesInUTC(t *testing.T) {
	kyiv := time.FixedZone("EEST", 3*60*60)
	c := models.Complaint{Status: models.StatusPending, Priority: models.PriorityLow, CreatedAt: now.Add(-73 * time.Hour).In(kyiv)}
	assert.True(t, escalation.ShouldEscalate(&c, now, 72*time.Hour))
}

func TestSweep_ExplicitRecordsAndNotifies(t *testing.T) {
	store := new(MockStore)
	rec := new(MockRecorder)
	notifier := new(MockNotifier)
	logger, _ := test.NewNullLogger()
	policy := escalation.NewPolicy(store, rec, notifier, logger).WithClock(func() time.Time { return now })
	admin := &models.User{ID: "admin-1", Role: models.RoleAdmin}

	store.On("EscalateStaleComplaints", mock.Anything, now.Add(-72*time.Hour)).Return([]string{"c1", "c2"}, nil).Once()
	rec.On("Record", mock.Anything, mock.MatchedBy(func(e audit.Entry) bool {
		return e.Action == models.ActionUpdateComplaint && e.Level == models.LevelWarning && e.Actor == admin
	})).Twice()
	notifier.On("NotifyEscalation", mock.Anything, []string{"c1", "c2"}).Once()

	res, err := policy.Sweep(context.Background(), admin, escalation.SourceEndpoint)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []string{"c1", "c2"}, res.IDs)
	store.AssertExpectations(t)
	rec.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSweep_IsIdempotent(t *testing.T) {
	store := new(MockStore)
	rec := new(MockRecorder)
	notifier := new(MockNotifier)
	policy := escalation.NewPolicy(store, rec, notifier, nil).WithClock(func() time.Time { return now })

	store.On("EscalateStaleComplaints", mock.Anything, mock.Anything).Return([]string{"c1"}, nil).Once()
	store.On("EscalateStaleComplaints", mock.Anything, mock.Anything).Return([]string{}, nil).Once()
	rec.On("Record", mock.Anything, mock.Anything).Once()
	notifier.On("NotifyEscalation", mock.Anything, mock.Anything).Once()

	first, err := policy.Sweep(context.Background(), system, escalation.SourceScheduler)
	require.NoError(t, err)
	second, err := policy.Sweep(context.Background(), system, escalation.SourceScheduler)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Count)
	assert.Equal(t, 0, second.Count)
	rec.AssertNumberOfCalls(t, "Record", 1)
	notifier.AssertNumberOfCalls(t, "NotifyEscalation", 1)
}

func TestSweep_ListPathIsSilent(t *testing.T) {
	store := new(MockStore)
	rec := new(MockRecorder)
	notifier := new(MockNotifier)
	policy := escalation.NewPolicy(store, rec, notifier, nil).WithClock(func() time.Time { return now })

	store.On("EscalateStaleComplaints", mock.Anything, mock.Anything).Return([]string{"c1"}, nil)

	res, err := policy.Sweep(context.Background(), &models.User{Role: models.RoleAdmin}, escalation.SourceList)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	rec.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyEscalation", mock.Anything, mock.Anything)
}

func TestSweep_StoreError(t *testing.T) {
	store := new(MockStore)
	policy := escalation.NewPolicy(store, nil, nil, nil).WithClock(func() time.Time { return now })
	store.On("EscalateStaleComplaints", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := policy.Sweep(context.Background(), &models.User{ID: "admin-1", Role: models.RoleAdmin}, escalation.SourceEndpoint)

	assert.Error(t, err)
}

func TestSweep_ExplicitRunNeedsActor(t *testing.T) {
	store := new(MockStore)
	policy := escalation.NewPolicy(store, new(MockRecorder), nil, nil).WithClock(func() time.Time { return now })

	for _, source := range []string{escalation.SourceEndpoint, escalation.SourceScheduler, escalation.SourceCLI} {
		_, err := policy.Sweep(context.Background(), nil, source)
		assert.ErrorIs(t, err, escalation.ErrNoActor, source)
	}
	store.AssertNotCalled(t, "EscalateStaleComplaints", mock.Anything, mock.Anything)
}
