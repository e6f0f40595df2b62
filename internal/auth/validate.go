package auth

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
)

// Account field checks shared by self-service and admin account management.
// Each returns the cleaned value and records a field error when it is unusable.

func ValidateName(fe *apperr.FieldErrors, name string) string {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < config.NameMinLen || n > config.NameMaxLen {
		fe.Add("name", "Name must be between "+strconv.Itoa(config.NameMinLen)+" and "+strconv.Itoa(config.NameMaxLen)+" characters")
	}
	return name
}

// ValidateEmail lower-cases the address; lookups rely on that.
func ValidateEmail(fe *apperr.FieldErrors, email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || len(email) > config.EmailMaxLen {
		fe.Add("email", "Please provide a valid email")
	}
	return email
}

func ValidatePassword(fe *apperr.FieldErrors, field, password string) {
	if utf8.RuneCountInString(password) < config.PasswordMinLen {
		fe.Add(field, "Password must be at least "+strconv.Itoa(config.PasswordMinLen)+" characters long")
	}
}

func ValidateDepartment(fe *apperr.FieldErrors, department string) string {
	department = strings.TrimSpace(department)
	if utf8.RuneCountInString(department) > config.DepartmentMaxLen {
		fe.Add("department", "Department must be less than "+strconv.Itoa(config.DepartmentMaxLen)+" characters")
	}
	return department
}
