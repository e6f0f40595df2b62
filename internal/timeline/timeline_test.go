package timeline_test

import (
	"testing"
	"time"

	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

func complaint() *models.Complaint {
	return &models.Complaint{
		ID:          "c1",
		Title:       "Printer on floor 2 is broken",
		CreatedAt:   t0,
		SubmittedBy: &models.User{ID: "u1", Name: "Olena", Email: "olena@example.com"},
	}
}

func TestAssemble_OnlyCreation(t *testing.T) {
	events := timeline.Assemble(complaint(), nil, nil)

	require.Len(t, events, 1)
	assert.Equal(t, models.TimelineCreated, events[0].Type)
	assert.Equal(t, t0, events[0].Timestamp)
	assert.Equal(t, "u1", events[0].By.ID)
}

func TestAssemble_MergesByTime(t *testing.T) {
	admin := &models.User{ID: "a1", Name: "Admin"}
	logs := []models.AuditLog{
		{Action: models.ActionCreateComplaint, CreatedAt: t0, Details: "created"},
		{Action: models.ActionUpdateComplaint, CreatedAt: t0.Add(2 * time.Hour), User: admin, HandledBy: "Admin", Details: "Status changed to Resolved"},
	}
	comments := []models.Comment{
		{Text: "Any news?", CreatedAt: t0.Add(time.Hour), User: &models.User{ID: "u1"}},
		{Text: "Thanks", CreatedAt: t0.Add(3 * time.Hour), User: &models.User{ID: "u1"}},
	}

	events := timeline.Assemble(complaint(), logs, comments)

	require.Len(t, events, 1+len(logs)+len(comments))
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	assert.Equal(t, []string{
		models.TimelineCreated,
		string(models.ActionCreateComplaint),
		models.TimelineComment,
		string(models.ActionUpdateComplaint),
		models.TimelineComment,
	}, types)
	assert.Equal(t, "Admin", events[3].HandledBy)
	assert.Equal(t, "Any news?", events[2].Comment)

	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
	}
}

func TestAssemble_TiesKeepSourceOrder(t *testing.T) {
	logs := []models.AuditLog{{Action: models.ActionUpdateComplaint, CreatedAt: t0}}
	comments := []models.Comment{{Text: "same instant", CreatedAt: t0}}

	events := timeline.Assemble(complaint(), logs, comments)

	require.Len(t, events, 3)
	assert.Equal(t, models.TimelineCreated, events[0].Type)
	assert.Equal(t, string(models.ActionUpdateComplaint), events[1].Type)
	assert.Equal(t, models.TimelineComment, events[2].Type)
}

func TestAssemble_MissingActorsAreNil(t *testing.T) {
	c := complaint()
	c.SubmittedBy = nil
	logs := []models.AuditLog{{Action: models.ActionSystemInfo, CreatedAt: t0.Add(time.Minute)}}

	events := timeline.Assemble(c, logs, nil)

	assert.Nil(t, events[0].By)
	assert.Nil(t, events[1].By)
}
