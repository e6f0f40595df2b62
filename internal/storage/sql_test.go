package storage

import (
	"context"
	"testing"
	"time"

	"complaintdesk/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlCapture records every statement gorm builds, with its arguments inlined.
type sqlCapture struct {
	logger.Interface
	statements []string
}

func (c *sqlCapture) LogMode(logger.LogLevel) logger.Interface { return c }

func (c *sqlCapture) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	c.statements = append(c.statements, sql)
}

// dryRunService builds statements against the postgres dialect without a server.
func dryRunService(t *testing.T) (*Service, *sqlCapture) {
	t.Helper()
	capture := &sqlCapture{Interface: logger.Discard}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=complaintdesk dbname=complaintdesk sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               capture,
	})
	require.NoError(t, err)
	return NewStorageService(db, nil, nil), capture
}

func TestEscalateStaleComplaints_SQL(t *testing.T) {
	s, capture := dryRunService(t)
	cutoff := time.Date(2025, 7, 17, 12, 0, 0, 0, time.UTC)

	ids, err := s.EscalateStaleComplaints(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Empty(t, ids)
	require.Len(t, capture.statements, 1)
	sql := capture.statements[0]
	assert.Contains(t, sql, `UPDATE "complaints" SET`)
	assert.Contains(t, sql, `"priority"='Critical'`)
	assert.Contains(t, sql, `status IN ('Pending','In Progress')`)
	assert.Contains(t, sql, `priority <> 'Critical'`)
	assert.Contains(t, sql, `created_at < '2025-07-17 12:00:00`)
	assert.Contains(t, sql, `RETURNING "id"`)
	for _, terminal := range []models.Status{models.StatusResolved, models.StatusClosed, models.StatusRejected} {
		assert.NotContains(t, sql, string(terminal))
	}
}

func TestEscalateStaleComplaints_CutoffInUTC(t *testing.T) {
	s, capture := dryRunService(t)
	kyiv := time.FixedZone("EEST", 3*60*60)

	_, err := s.EscalateStaleComplaints(context.Background(), time.Date(2025, 7, 17, 15, 0, 0, 0, kyiv))

	require.NoError(t, err)
	require.Len(t, capture.statements, 1)
	assert.Contains(t, capture.statements[0], `created_at < '2025-07-17 12:00:00`)
}

func TestListComplaints_SQL(t *testing.T) {
	t.Run("owner restriction survives search", func(t *testing.T) {
		s, capture := dryRunService(t)

		_, _, err := s.ListComplaints(context.Background(), models.ComplaintFilter{
			SubmittedBy: "user-1",
			Status:      models.StatusPending,
			Search:      "50%",
		})

		require.NoError(t, err)
		require.NotEmpty(t, capture.statements)
		count := capture.statements[0]
		assert.Contains(t, count, `SELECT count(*) FROM "complaints"`)
		assert.Contains(t, count, `status = 'Pending'`)
		assert.Contains(t, count, `(title ILIKE '%50\%%' OR description ILIKE '%50\%%')`)
		assert.Contains(t, count, `submitted_by = 'user-1'`)
	})

	t.Run("no owner filter without submitter", func(t *testing.T) {
		s, capture := dryRunService(t)

		_, _, err := s.ListComplaints(context.Background(), models.ComplaintFilter{})

		require.NoError(t, err)
		require.NotEmpty(t, capture.statements)
		assert.NotContains(t, capture.statements[0], "submitted_by")
		assert.NotContains(t, capture.statements[0], "WHERE")
	})
}

func TestListUrgentComplaints_SQL(t *testing.T) {
	s, capture := dryRunService(t)

	_, err := s.ListUrgentComplaints(context.Background(), 10)

	require.NoError(t, err)
	require.NotEmpty(t, capture.statements)
	sql := capture.statements[0]
	assert.Contains(t, sql, `priority = 'Critical'`)
	assert.Contains(t, sql, `status IN ('Pending','In Progress')`)
	assert.Contains(t, sql, `ORDER BY created_at DESC LIMIT 10`)
}

func TestListLogsForResource_SQL(t *testing.T) {
	s, capture := dryRunService(t)

	_, err := s.ListLogsForResource(context.Background(), models.ResourceComplaint, "c1")

	require.NoError(t, err)
	require.NotEmpty(t, capture.statements)
	sql := capture.statements[0]
	assert.Contains(t, sql, `FROM "logs"`)
	assert.Contains(t, sql, `resource_type = 'COMPLAINT' AND resource_id = 'c1'`)
	assert.Contains(t, sql, `ORDER BY created_at ASC`)
}

func TestListLogs_SQL(t *testing.T) {
	s, capture := dryRunService(t)
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	_, _, err := s.ListLogs(context.Background(), models.AuditLogFilter{
		Action: models.ActionDeleteComplaint,
		Level:  models.LevelWarning,
		From:   &from,
	})

	require.NoError(t, err)
	require.NotEmpty(t, capture.statements)
	count := capture.statements[0]
	assert.Contains(t, count, `action = 'DELETE_COMPLAINT'`)
	assert.Contains(t, count, `level = 'WARNING'`)
	assert.Contains(t, count, `created_at >= '2025-07-01 00:00:00`)
}
