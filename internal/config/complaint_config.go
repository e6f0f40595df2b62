package config

import "time"

const (
	// Escalation
	StalenessWindow = 72 * time.Hour

	// Complaint field bounds (characters, after trimming)
	TitleMinLen       = 5
	TitleMaxLen       = 60
	DescriptionMinLen = 15
	DescriptionMaxLen = 500
	ResolutionMinLen  = 10
	ResolutionMaxLen  = 500
	CommentMinLen     = 1
	CommentMaxLen     = 500
	DetailsMaxLen     = 500

	// Accounts
	NameMinLen       = 2
	NameMaxLen       = 50
	PasswordMinLen   = 6
	DepartmentMaxLen = 100
	EmailMaxLen      = 100

	// Listing
	UrgentLimit     = 10
	DefaultPageSize = 10
	MaxPageSize     = 100

	DefaultResolution = "Complaint resolved"
)

// Departments is the fixed set a complaint may be filed against.
var Departments = []string{"IT", "HR", "Facilities", "Finance", "Marketing", "Operations"}

// IsDepartment reports whether d is one of the known departments.
func IsDepartment(d string) bool {
	for _, known := range Departments {
		if known == d {
			return true
		}
	}
	return false
}

// NormalizePage clamps paging input: page starts at 1, limit falls back to the default and is capped.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
