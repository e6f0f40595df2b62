// Package storage is the persistence layer: PostgreSQL via GORM, with an optional Redis cache.
package storage

import (
	"context"
	"errors"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Storage is everything the services need from the store. Lookups of missing rows return apperr NotFound.
type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, id string, fields map[string]any) error
	DeleteUser(ctx context.Context, id string) error
	GetUserStats(ctx context.Context) (*models.UserStats, error)

	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int64, error)
	UpdateComplaint(ctx context.Context, id string, fields map[string]any) error
	DeleteComplaint(ctx context.Context, id string) error
	ListUrgentComplaints(ctx context.Context, limit int) ([]models.Complaint, error)
	GetComplaintStats(ctx context.Context) (*models.ComplaintStats, error)
	EscalateStaleComplaints(ctx context.Context, cutoff time.Time) ([]string, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, complaintID string) ([]models.Comment, error)

	CreateLog(ctx context.Context, entry *models.AuditLog) error
	GetLogByID(ctx context.Context, id string) (*models.AuditLog, error)
	ListLogs(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int64, error)
	ListLogsForResource(ctx context.Context, resourceType models.ResourceType, resourceID string) ([]models.AuditLog, error)
}

type Service struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Logger *logrus.Logger
}

// NewStorageService Constructor. rdb may be nil.
func NewStorageService(db *gorm.DB, rdb *redis.Client, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		DB:     db,
		Redis:  rdb,
		Logger: logger,
	}
}

// Migrate creates or updates the schema for every persisted model.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.Comment{},
		&models.AuditLog{},
	)
}

// Ping checks database and, when configured, Redis connectivity.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if s.Redis != nil {
		return s.Redis.Ping(ctx).Err()
	}
	return nil
}

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// translate maps store errors onto the application taxonomy so raw driver errors never leak upward.
func translate(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(err, apperr.CodeConflict, "Resource already exists")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return apperr.Wrap(err, apperr.CodeConflict, "Resource already exists")
		case invalidTextRepresentation:
			// A malformed id can never match a row.
			if notFoundMsg != "" {
				return apperr.NotFound(notFoundMsg)
			}
			return apperr.Wrap(err, apperr.CodeValidation, "Invalid identifier")
		}
	}
	return apperr.Internal(err, "Database error")
}
