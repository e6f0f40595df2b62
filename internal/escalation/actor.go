package escalation

import (
	"context"
	"fmt"
	"strings"

	"complaintdesk/backend/internal/models"
)

// UserLookup finds the account an unattended sweep acts as.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// ActorFunc resolves the account recorded as the actor of a sweep.
type ActorFunc func(ctx context.Context) (*models.User, error)

// AccountActor looks the account up on every call, so a revoked role or a deactivation
// stops the next sweep.
func AccountActor(users UserLookup, email string) ActorFunc {
	email = strings.ToLower(strings.TrimSpace(email))
	return func(ctx context.Context) (*models.User, error) {
		if email == "" {
			return nil, ErrNoActor
		}
		u, err := users.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("escalation actor %s: %w", email, err)
		}
		if !u.IsAdmin() || !u.IsActive {
			return nil, fmt.Errorf("escalation actor %s must be an active admin", email)
		}
		return u, nil
	}
}
