// Package access holds the capability checks applied by services before any mutation.
// Callers load the resource first so a missing resource yields 404 before these run.
package access

import (
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
)

// RequireAdmin fails with Forbidden unless the actor is an admin.
func RequireAdmin(actor *models.User) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if !actor.IsAdmin() {
		return apperr.Forbidden("Admin access required")
	}
	return nil
}

// RequireOwnerOrAdmin fails with Forbidden unless the actor is an admin or owns the resource.
func RequireOwnerOrAdmin(actor *models.User, ownerID string) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if actor.IsAdmin() || actor.ID == ownerID {
		return nil
	}
	return apperr.Forbidden("Access denied")
}

// RequireStatusUpdater allows admins and the complaint's current assignee.
func RequireStatusUpdater(actor *models.User, c *models.Complaint) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if actor.IsAdmin() || c.IsAssignee(actor.ID) {
		return nil
	}
	return apperr.Forbidden("Only an admin or the assignee can change the status")
}

// CanSeeAll reports whether list queries should skip the owner restriction.
func CanSeeAll(actor *models.User) bool {
	return actor.IsAdmin()
}
