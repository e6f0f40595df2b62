package models_test

import (
	"complaintdesk/backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Predicates(t *testing.T) {
	tests := []struct {
		status   models.Status
		open     bool
		terminal bool
	}{
		{models.StatusPending, true, false},
		{models.StatusInProgress, true, false},
		{models.StatusResolved, false, true},
		{models.StatusClosed, false, true},
		{models.StatusRejected, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.True(t, tt.status.Valid())
			assert.Equal(t, tt.open, tt.status.IsOpen())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestEnums_RejectUnknownValues(t *testing.T) {
	assert.False(t, models.Status("Done").Valid())
	assert.False(t, models.Priority("Urgent").Valid())
	assert.False(t, models.Category("").Valid())
	assert.False(t, models.Role("root").Valid())
	assert.False(t, models.Action("HACK").Valid())
	assert.False(t, models.Level("DEBUG").Valid())
	assert.False(t, models.ResourceType("FILE").Valid())

	_, err := models.Priority("Urgent").Value()
	assert.Error(t, err)
}

func TestEnums_ValueAndScan(t *testing.T) {
	v, err := models.StatusInProgress.Value()
	require.NoError(t, err)
	assert.Equal(t, "In Progress", v)

	var s models.Status
	require.NoError(t, s.Scan([]byte("Resolved")))
	assert.Equal(t, models.StatusResolved, s)

	var p models.Priority
	assert.Error(t, p.Scan("Urgent"))
	assert.Error(t, p.Scan(42))

	var r models.ResourceType
	require.NoError(t, r.Scan(nil))
	assert.Equal(t, models.ResourceType(""), r)
}
