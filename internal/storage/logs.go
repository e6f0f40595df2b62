package storage

import (
	"context"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"

	"gorm.io/gorm/clause"
)

func (s *Service) CreateLog(ctx context.Context, entry *models.AuditLog) error {
	return translate(s.DB.WithContext(ctx).Omit(clause.Associations).Create(entry).Error, "Log not found")
}

func (s *Service) GetLogByID(ctx context.Context, id string) (*models.AuditLog, error) {
	var entry models.AuditLog
	if err := s.DB.WithContext(ctx).Preload("User").Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, translate(err, "Log not found")
	}
	return &entry, nil
}

// ListLogs returns newest entries first.
func (s *Service) ListLogs(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int64, error) {
	page, limit := config.NormalizePage(filter.Page, filter.Limit)

	q := s.DB.WithContext(ctx).Model(&models.AuditLog{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.Level != "" {
		q = q.Where("level = ?", filter.Level)
	}
	if filter.ResourceType != "" {
		q = q.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		q = q.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", filter.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "")
	}

	var entries []models.AuditLog
	err := q.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, translate(err, "")
	}
	return entries, total, nil
}

// ListLogsForResource returns the entries attached to one resource, oldest first.
func (s *Service) ListLogsForResource(ctx context.Context, resourceType models.ResourceType, resourceID string) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := s.DB.WithContext(ctx).
		Preload("User").
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, translate(err, "")
	}
	return entries, nil
}
