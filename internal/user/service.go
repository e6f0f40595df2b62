// Package user is admin account management.
package user

import (
	"context"
	"fmt"

	"complaintdesk/backend/internal/access"
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"
)

type Recorder interface {
	Record(ctx context.Context, e audit.Entry)
}

type CreateInput struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Password   string      `json:"password"`
	Role       models.Role `json:"role"`
	Department string      `json:"department"`
	IsActive   *bool       `json:"isActive"`
}

type UpdateInput struct {
	Name       *string      `json:"name"`
	Email      *string      `json:"email"`
	Role       *models.Role `json:"role"`
	Department *string      `json:"department"`
	IsActive   *bool        `json:"isActive"`
}

type Service struct {
	Storage  storage.Storage
	recorder Recorder
}

func NewService(s storage.Storage, recorder Recorder) *Service {
	return &Service{Storage: s, recorder: recorder}
}

func (s *Service) record(ctx context.Context, actor *models.User, action models.Action, target *models.User, details string) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, audit.Entry{
		Actor:        actor,
		Action:       action,
		Details:      details,
		ResourceType: models.ResourceUser,
		ResourceID:   target.ID,
	})
}

func (s *Service) List(ctx context.Context, actor *models.User, filter models.UserFilter) ([]models.User, models.Pagination, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, models.Pagination{}, err
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, models.Pagination{}, apperr.Validation("Validation failed",
			apperr.FieldError{Field: "role", Message: "Role must be either user or admin"})
	}
	filter.Page, filter.Limit = config.NormalizePage(filter.Page, filter.Limit)
	users, total, err := s.Storage.ListUsers(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return users, models.NewPagination(filter.Page, filter.Limit, total), nil
}

func (s *Service) Get(ctx context.Context, actor *models.User, id string) (*models.User, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Storage.GetUserByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.User, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var fe apperr.FieldErrors
	name := auth.ValidateName(&fe, in.Name)
	email := auth.ValidateEmail(&fe, in.Email)
	auth.ValidatePassword(&fe, "password", in.Password)
	department := auth.ValidateDepartment(&fe, in.Department)
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		fe.Add("role", "Role must be either user or admin")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	if _, err := s.Storage.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User with this email already exists")
	} else if apperr.CodeOf(err) != apperr.CodeNotFound {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err, "Error creating user")
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   department,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	if err := s.Storage.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.record(ctx, actor, models.ActionCreateUser, u, fmt.Sprintf("Created user: %s (%s)", u.Name, u.Email))
	return u, nil
}

func (s *Service) Update(ctx context.Context, actor *models.User, id string, in UpdateInput) (*models.User, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	target, err := s.Storage.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var fe apperr.FieldErrors
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = auth.ValidateName(&fe, *in.Name)
	}
	if in.Email != nil {
		fields["email"] = auth.ValidateEmail(&fe, *in.Email)
	}
	if in.Department != nil {
		fields["department"] = auth.ValidateDepartment(&fe, *in.Department)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			fe.Add("role", "Role must be either user or admin")
		}
		fields["role"] = *in.Role
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("No fields to update")
	}

	if email, ok := fields["email"].(string); ok && email != target.Email {
		existing, err := s.Storage.GetUserByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != target.ID:
			return nil, apperr.Conflict("Email is already taken")
		case err != nil && apperr.CodeOf(err) != apperr.CodeNotFound:
			return nil, err
		}
	}

	if err := s.Storage.UpdateUser(ctx, target.ID, fields); err != nil {
		return nil, err
	}
	updated, err := s.Storage.GetUserByID(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, models.ActionUpdateUser, updated, fmt.Sprintf("Updated user: %s (%s)", updated.Name, updated.Email))
	return updated, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	target, err := s.Storage.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if target.ID == actor.ID {
		return apperr.Validation("Cannot delete your own account")
	}
	if err := s.Storage.DeleteUser(ctx, target.ID); err != nil {
		return err
	}
	s.record(ctx, actor, models.ActionDeleteUser, target, fmt.Sprintf("Deleted user: %s (%s)", target.Name, target.Email))
	return nil
}

func (s *Service) Stats(ctx context.Context, actor *models.User) (*models.UserStats, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Storage.GetUserStats(ctx)
}

// SetPassword is an admin reset; no current password is needed.
func (s *Service) SetPassword(ctx context.Context, actor *models.User, id, password string) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	target, err := s.Storage.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	var fe apperr.FieldErrors
	auth.ValidatePassword(&fe, "password", password)
	if err := fe.Err(); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperr.Internal(err, "Error changing password")
	}
	if err := s.Storage.UpdateUser(ctx, target.ID, map[string]any{"password": hash}); err != nil {
		return err
	}
	s.record(ctx, actor, models.ActionChangePassword, target, "Password reset for user: "+target.Email)
	return nil
}
