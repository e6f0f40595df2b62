package audit_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateLog(ctx context.Context, entry *models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type captureSink struct {
	entries []*models.AuditLog
}

func (c *captureSink) Publish(_ context.Context, entry *models.AuditLog) {
	c.entries = append(c.entries, entry)
}

func TestRecord_AdminActionCarriesSnapshot(t *testing.T) {
	store := new(MockStore)
	sink := &captureSink{}
	logger, _ := test.NewNullLogger()
	rec := audit.NewRecorder(store, logger, sink)

	admin := &models.User{ID: "admin-1", Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin}
	var stored *models.AuditLog
	store.On("CreateLog", mock.Anything, mock.AnythingOfType("*models.AuditLog")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.AuditLog) }).
		Return(nil)

	ctx := audit.WithRequestInfo(context.Background(), "10.0.0.1", "curl/8")
	rec.Record(ctx, audit.Entry{
		Actor:        admin,
		Action:       models.ActionUpdateComplaint,
		Details:      "Status changed to Resolved",
		ResourceType: models.ResourceComplaint,
		ResourceID:   "c-1",
	})

	require.NotNil(t, stored)
	assert.Equal(t, "admin-1", *stored.UserID)
	assert.Equal(t, models.LevelInfo, stored.Level)
	assert.Equal(t, models.ResourceComplaint, *stored.ResourceType)
	assert.Equal(t, "c-1", *stored.ResourceID)
	assert.Equal(t, "Ada", stored.Metadata["adminName"])
	assert.Equal(t, "ada@example.com", stored.Metadata["adminEmail"])
	assert.Equal(t, "Ada", stored.HandledBy)
	assert.Equal(t, "10.0.0.1", stored.IPAddress)
	assert.Equal(t, "curl/8", stored.UserAgent)
	require.Len(t, sink.entries, 1)
	assert.Same(t, admin, sink.entries[0].User)
}

func TestRecord_NonAdminHasNoSnapshot(t *testing.T) {
	store := new(MockStore)
	logger, _ := test.NewNullLogger()
	rec := audit.NewRecorder(store, logger)

	user := &models.User{ID: "u-1", Name: "Bob", Role: models.RoleUser}
	store.On("CreateLog", mock.Anything, mock.MatchedBy(func(e *models.AuditLog) bool {
		return e.Metadata == nil && e.HandledBy == "" && e.ResourceType == nil
	})).Return(nil)

	rec.Record(context.Background(), audit.Entry{Actor: user, Action: models.ActionLogin, Details: "User logged in"})

	store.AssertExpectations(t)
}

func TestRecord_StoreFailureIsLoggedNotReturned(t *testing.T) {
	store := new(MockStore)
	sink := &captureSink{}
	logger, hook := test.NewNullLogger()
	rec := audit.NewRecorder(store, logger, sink)

	store.On("CreateLog", mock.Anything, mock.Anything).Return(errors.New("db down"))

	rec.Record(context.Background(), audit.Entry{Action: models.ActionSystemError, Details: "x"})

	assert.Empty(t, sink.entries, "failed writes are not fanned out")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "failed to write audit log", hook.LastEntry().Message)
}

func TestRecord_TruncatesDetails(t *testing.T) {
	store := new(MockStore)
	logger, _ := test.NewNullLogger()
	rec := audit.NewRecorder(store, logger)

	store.On("CreateLog", mock.Anything, mock.MatchedBy(func(e *models.AuditLog) bool {
		return len([]rune(e.Details)) == 500
	})).Return(nil)

	rec.Record(context.Background(), audit.Entry{Action: models.ActionSystemInfo, Details: strings.Repeat("é", 800)})

	store.AssertExpectations(t)
}

func TestAdminSnapshot(t *testing.T) {
	assert.Nil(t, audit.AdminSnapshot(nil))
	snap := audit.AdminSnapshot(&models.User{ID: "a", Name: "Ada", Email: "ada@example.com"})
	assert.Equal(t, map[string]any{"adminId": "a", "adminName": "Ada", "adminEmail": "ada@example.com"}, snap)
}
