package storage

import (
	"context"
	"strings"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
)

var userSortColumns = map[string]string{
	"createdAt":  "created_at",
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"department": "department",
	"lastLogin":  "last_login",
}

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.DB.WithContext(ctx).Create(user).Error, "User not found")
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, "User not found")
	}
	return &user, nil
}

// GetUserByEmail matches case-insensitively; emails are stored lower-cased.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, translate(err, "User not found")
	}
	return &user, nil
}

func (s *Service) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error) {
	page, limit := config.NormalizePage(filter.Page, filter.Limit)

	q := s.DB.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "")
	}

	var users []models.User
	err := q.Order(orderClause(userSortColumns, filter.SortBy, filter.SortDesc)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, translate(err, "")
	}
	return users, total, nil
}

// UpdateUser applies an explicit column map so zero values (e.g. is_active=false) are written.
func (s *Service) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, "User not found")
	}
	if res.RowsAffected == 0 {
		return translate(errNoRows, "User not found")
	}
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return translate(res.Error, "User not found")
	}
	if res.RowsAffected == 0 {
		return translate(errNoRows, "User not found")
	}
	s.invalidateStats(ctx)
	return nil
}

func (s *Service) GetUserStats(ctx context.Context) (*models.UserStats, error) {
	stats := &models.UserStats{DepartmentStats: map[string]int64{}}

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.Total, "", nil},
		{&stats.Active, "is_active = ?", []any{true}},
		{&stats.Inactive, "is_active = ?", []any{false}},
		{&stats.Admins, "role = ?", []any{models.RoleAdmin}},
		{&stats.Users, "role = ?", []any{models.RoleUser}},
	}
	for _, c := range counts {
		q := s.DB.WithContext(ctx).Model(&models.User{})
		if c.query != "" {
			q = q.Where(c.query, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, translate(err, "")
		}
	}

	var rows []groupCount
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Select("department AS key, COUNT(*) AS count").
		Where("department <> ''").
		Group("department").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "")
	}
	for _, r := range rows {
		stats.DepartmentStats[r.Key] = r.Count
	}
	return stats, nil
}
