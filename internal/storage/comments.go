package storage

import (
	"context"

	"complaintdesk/backend/internal/models"

	"gorm.io/gorm/clause"
)

func (s *Service) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.DB.WithContext(ctx).Omit(clause.Associations).Create(comment).Error, "Comment not found")
}

// ListComments returns a complaint's comments oldest first, with authors loaded.
func (s *Service) ListComments(ctx context.Context, complaintID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.DB.WithContext(ctx).
		Preload("User").
		Where("complaint_id = ?", complaintID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err, "")
	}
	return comments, nil
}
