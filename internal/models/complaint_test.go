package models_test

import (
	"complaintdesk/backend/internal/models"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComplaintBeforeCreate_AppliesDefaults(t *testing.T) {
	c := &models.Complaint{Title: "Broken printer", Department: "IT"}

	err := c.BeforeCreate(nil)

	assert.NoError(t, err)
	_, parseErr := uuid.Parse(c.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, models.CategoryGeneral, c.Category)
	assert.Equal(t, models.PriorityMedium, c.Priority)
}

func TestComplaintBeforeCreate_KeepsExplicitValues(t *testing.T) {
	c := &models.Complaint{Status: models.StatusInProgress, Category: models.CategoryBilling, Priority: models.PriorityHigh}

	assert.NoError(t, c.BeforeCreate(nil))

	assert.Equal(t, models.StatusInProgress, c.Status)
	assert.Equal(t, models.CategoryBilling, c.Category)
	assert.Equal(t, models.PriorityHigh, c.Priority)
}

func TestComplaint_IsAssignee(t *testing.T) {
	assignee := "u-2"
	c := &models.Complaint{AssignedToID: &assignee}

	assert.True(t, c.IsAssignee("u-2"))
	assert.False(t, c.IsAssignee("u-3"))
	assert.False(t, (&models.Complaint{}).IsAssignee("u-2"))
}

func TestAuditLogBeforeCreate_DefaultsLevel(t *testing.T) {
	l := &models.AuditLog{Action: models.ActionLogin}

	assert.NoError(t, l.BeforeCreate(nil))

	assert.NotEmpty(t, l.ID)
	assert.Equal(t, models.LevelInfo, l.Level)
	assert.Equal(t, "logs", l.TableName())
}

func TestCommentBeforeCreate_GeneratesUUID(t *testing.T) {
	c := &models.Comment{Text: "hello"}
	assert.NoError(t, c.BeforeCreate(nil))
	assert.NotEmpty(t, c.ID)
}
