package auth

import (
	"context"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/sirupsen/logrus"
)

type Recorder interface {
	Record(ctx context.Context, e audit.Entry)
}

type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput holds the self-editable fields; nil means unchanged.
type ProfileInput struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Session is returned on register and login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type Service struct {
	Storage  storage.Storage
	tokens   *TokenManager
	recorder Recorder
	logger   *logrus.Logger
	now      func() time.Time
}

func NewService(s storage.Storage, tokens *TokenManager, recorder Recorder, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{Storage: s, tokens: tokens, recorder: recorder, logger: logger, now: time.Now}
}

func (s *Service) record(ctx context.Context, actor *models.User, action models.Action, details string) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, audit.Entry{
		Actor:        actor,
		Action:       action,
		Details:      details,
		ResourceType: models.ResourceUser,
		ResourceID:   actor.ID,
	})
}

// emailTaken reports whether another account already uses email.
func (s *Service) emailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	existing, err := s.Storage.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return existing.ID != exceptID, nil
}

// Register creates a regular account and signs the new user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	var fe apperr.FieldErrors
	name := ValidateName(&fe, in.Name)
	email := ValidateEmail(&fe, in.Email)
	ValidatePassword(&fe, "password", in.Password)
	department := ValidateDepartment(&fe, in.Department)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	taken, err := s.emailTaken(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("User already exists with this email")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err, "Error creating user")
	}
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Department:   department,
		IsActive:     true,
	}
	if err := s.Storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.record(ctx, user, models.ActionRegister, "User registered: "+user.Email)

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal(err, "Error creating token")
	}
	return &Session{Token: token, User: user}, nil
}

// Login checks the credentials. Unknown email, wrong password and a disabled account all
// produce the same 401 so the response does not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	var fe apperr.FieldErrors
	email := ValidateEmail(&fe, in.Email)
	if in.Password == "" {
		fe.Add("password", "Password is required")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	invalid := apperr.Unauthorized("Invalid credentials")
	user, err := s.Storage.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, invalid
		}
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, in.Password) || !user.IsActive {
		s.logger.WithField("user_id", user.ID).Info("rejected login attempt")
		return nil, invalid
	}

	loginAt := s.now().UTC()
	if err := s.Storage.UpdateUser(ctx, user.ID, map[string]any{"last_login": loginAt}); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	} else {
		user.LastLogin = &loginAt
	}
	s.record(ctx, user, models.ActionLogin, "User logged in: "+user.Email)

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal(err, "Error creating token")
	}
	return &Session{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to an active account.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.Storage.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, apperr.Unauthorized("User not found or inactive")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("User not found or inactive")
	}
	return user, nil
}

// Me reloads the caller so the response reflects the stored profile.
func (s *Service) Me(ctx context.Context, actor *models.User) (*models.User, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return s.Storage.GetUserByID(ctx, actor.ID)
}

func (s *Service) UpdateProfile(ctx context.Context, actor *models.User, in ProfileInput) (*models.User, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	var fe apperr.FieldErrors
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = ValidateName(&fe, *in.Name)
	}
	if in.Email != nil {
		fields["email"] = ValidateEmail(&fe, *in.Email)
	}
	if in.Department != nil {
		fields["department"] = ValidateDepartment(&fe, *in.Department)
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("No fields to update")
	}

	if email, ok := fields["email"].(string); ok && email != actor.Email {
		taken, err := s.emailTaken(ctx, email, actor.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("Email is already in use")
		}
	}

	if err := s.Storage.UpdateUser(ctx, actor.ID, fields); err != nil {
		return nil, err
	}
	updated, err := s.Storage.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, updated, models.ActionUpdateProfile, "Profile updated")
	return updated, nil
}

func (s *Service) ChangePassword(ctx context.Context, actor *models.User, in PasswordInput) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}

	var fe apperr.FieldErrors
	if in.CurrentPassword == "" {
		fe.Add("currentPassword", "Current password is required")
	}
	ValidatePassword(&fe, "newPassword", in.NewPassword)
	if err := fe.Err(); err != nil {
		return err
	}

	user, err := s.Storage.GetUserByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return apperr.Validation("Current password is incorrect",
			apperr.FieldError{Field: "currentPassword", Message: "Current password is incorrect"})
	}

	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal(err, "Error changing password")
	}
	if err := s.Storage.UpdateUser(ctx, user.ID, map[string]any{"password": hash}); err != nil {
		return err
	}
	s.record(ctx, user, models.ActionChangePassword, "Password changed")
	return nil
}
