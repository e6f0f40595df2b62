package storage

import (
	"context"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var complaintSortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"title":      "title",
	"priority":   "priority",
	"status":     "status",
	"category":   "category",
	"department": "department",
}

func withPeople(db *gorm.DB) *gorm.DB {
	return db.Preload("SubmittedBy").Preload("AssignedTo").Preload("ResolvedBy")
}

func (s *Service) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(complaint).Error; err != nil {
		return translate(err, "Complaint not found")
	}
	s.invalidateStats(ctx)
	return nil
}

func (s *Service) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := withPeople(s.DB.WithContext(ctx)).Where("id = ?", id).First(&complaint).Error; err != nil {
		return nil, translate(err, "Complaint not found")
	}
	return &complaint, nil
}

func (s *Service) ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int64, error) {
	page, limit := config.NormalizePage(filter.Page, filter.Limit)

	q := s.DB.WithContext(ctx).Model(&models.Complaint{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.SubmittedBy != "" {
		q = q.Where("submitted_by = ?", filter.SubmittedBy)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "")
	}

	var complaints []models.Complaint
	err := withPeople(q).
		Order(orderClause(complaintSortColumns, filter.SortBy, filter.SortDesc)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&complaints).Error
	if err != nil {
		return nil, 0, translate(err, "")
	}
	return complaints, total, nil
}

// UpdateComplaint writes the given columns. Keys are column names.
func (s *Service) UpdateComplaint(ctx context.Context, id string, fields map[string]any) error {
	res := s.DB.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, "Complaint not found")
	}
	if res.RowsAffected == 0 {
		return translate(errNoRows, "Complaint not found")
	}
	s.invalidateStats(ctx)
	return nil
}

// DeleteComplaint removes the row; comments go with it through the FK cascade, logs stay.
func (s *Service) DeleteComplaint(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Complaint{})
	if res.Error != nil {
		return translate(res.Error, "Complaint not found")
	}
	if res.RowsAffected == 0 {
		return translate(errNoRows, "Complaint not found")
	}
	s.invalidateStats(ctx)
	return nil
}

func (s *Service) ListUrgentComplaints(ctx context.Context, limit int) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := withPeople(s.DB.WithContext(ctx)).
		Where("priority = ?", models.PriorityCritical).
		Where("status IN ?", models.OpenStatuses).
		Order("created_at DESC").
		Limit(limit).
		Find(&complaints).Error
	if err != nil {
		return nil, translate(err, "")
	}
	return complaints, nil
}

// EscalateStaleComplaints promotes every open, non-critical complaint created before cutoff
// to Critical in a single statement and returns the ids it touched.
func (s *Service) EscalateStaleComplaints(ctx context.Context, cutoff time.Time) ([]string, error) {
	var escalated []models.Complaint
	res := s.DB.WithContext(ctx).
		Model(&escalated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("status IN ?", models.OpenStatuses).
		Where("priority <> ?", models.PriorityCritical).
		Where("created_at < ?", cutoff.UTC()).
		Update("priority", models.PriorityCritical)
	if res.Error != nil {
		return nil, translate(res.Error, "")
	}

	ids := make([]string, 0, len(escalated))
	for _, c := range escalated {
		ids = append(ids, c.ID)
	}
	if len(ids) > 0 {
		s.invalidateStats(ctx)
	}
	return ids, nil
}

func (s *Service) GetComplaintStats(ctx context.Context) (*models.ComplaintStats, error) {
	if cached, ok := s.cachedStats(ctx); ok {
		return cached, nil
	}

	stats := &models.ComplaintStats{}
	var err error
	if stats.StatusStats, err = s.countBy(ctx, "status"); err != nil {
		return nil, err
	}
	if stats.PriorityStats, err = s.countBy(ctx, "priority"); err != nil {
		return nil, err
	}
	if stats.CategoryStats, err = s.countBy(ctx, "category"); err != nil {
		return nil, err
	}
	for _, n := range stats.StatusStats {
		stats.Total += n
	}
	stats.Resolved = stats.StatusStats[string(models.StatusResolved)]
	stats.Pending = stats.StatusStats[string(models.StatusPending)]

	s.storeStats(ctx, stats)
	return stats, nil
}

func (s *Service) countBy(ctx context.Context, column string) (map[string]int64, error) {
	var rows []groupCount
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "")
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out, nil
}
