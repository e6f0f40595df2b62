// Package notify pushes short operational messages about complaints to admins.
package notify

import (
	"context"

	"complaintdesk/backend/internal/models"
)

// Notifier is told about complaints that need an admin's attention. Implementations must not block.
type Notifier interface {
	NotifyCritical(ctx context.Context, c *models.Complaint)
	NotifyEscalation(ctx context.Context, complaintIDs []string)
}

// Nop drops every notification; used when no channel is configured.
type Nop struct{}

func (Nop) NotifyCritical(context.Context, *models.Complaint) {}
func (Nop) NotifyEscalation(context.Context, []string)       {}
