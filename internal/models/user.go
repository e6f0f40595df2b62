package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that can submit, handle or administer complaints.
type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:50;not null" json:"name"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password;not null" json:"-"`
	Role         Role       `gorm:"type:varchar(10);not null;check:chk_users_role,role IN ('user','admin')" json:"role"`
	Department   string     `gorm:"size:100" json:"department,omitempty"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// BeforeCreate is a GORM hook that assigns a UUID and the default role before insert.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Summary returns the public identity of the user for embedding in other payloads.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Department: u.Department}
}

// UserSummary is the subset of a user that is safe to show next to records they touched.
type UserSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

// UserStats aggregates account counts for the admin dashboard.
type UserStats struct {
	Total           int64            `json:"total"`
	Active          int64            `json:"active"`
	Inactive        int64            `json:"inactive"`
	Admins          int64            `json:"admins"`
	Users           int64            `json:"users"`
	DepartmentStats map[string]int64 `json:"departmentStats"`
}
