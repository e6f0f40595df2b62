package models

import (
	"database/sql/driver"
	"fmt"
)

// Role is the access level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var AllRoles = []Role{RoleUser, RoleAdmin}

// Category classifies a complaint by subject area.
type Category string

const (
	CategoryTechnical Category = "Technical"
	CategoryBilling   Category = "Billing"
	CategoryService   Category = "Service"
	CategoryGeneral   Category = "General"
	CategoryOther     Category = "Other"
)

var AllCategories = []Category{CategoryTechnical, CategoryBilling, CategoryService, CategoryGeneral, CategoryOther}

// Priority is the urgency of a complaint. Escalation only ever moves it to Critical.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
	StatusRejected   Status = "Rejected"
)

var AllStatuses = []Status{StatusPending, StatusInProgress, StatusResolved, StatusClosed, StatusRejected}

// OpenStatuses are the states the escalation sweep and the urgent list look at.
var OpenStatuses = []Status{StatusPending, StatusInProgress}

// Action names the kind of event an audit entry records.
type Action string

const (
	ActionLogin            Action = "LOGIN"
	ActionLogout           Action = "LOGOUT"
	ActionRegister         Action = "REGISTER"
	ActionCreateComplaint  Action = "CREATE_COMPLAINT"
	ActionUpdateComplaint  Action = "UPDATE_COMPLAINT"
	ActionDeleteComplaint  Action = "DELETE_COMPLAINT"
	ActionAssignComplaint  Action = "ASSIGN_COMPLAINT"
	ActionResolveComplaint Action = "RESOLVE_COMPLAINT"
	ActionCreateUser       Action = "CREATE_USER"
	ActionUpdateUser       Action = "UPDATE_USER"
	ActionDeleteUser       Action = "DELETE_USER"
	ActionUpdateProfile    Action = "UPDATE_PROFILE"
	ActionChangePassword   Action = "CHANGE_PASSWORD"
	ActionSystemError      Action = "SYSTEM_ERROR"
	ActionSystemWarning    Action = "SYSTEM_WARNING"
	ActionSystemInfo       Action = "SYSTEM_INFO"
)

var AllActions = []Action{
	ActionLogin, ActionLogout, ActionRegister,
	ActionCreateComplaint, ActionUpdateComplaint, ActionDeleteComplaint, ActionAssignComplaint, ActionResolveComplaint,
	ActionCreateUser, ActionUpdateUser, ActionDeleteUser,
	ActionUpdateProfile, ActionChangePassword,
	ActionSystemError, ActionSystemWarning, ActionSystemInfo,
}

// Level is the severity of an audit entry.
type Level string

const (
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
)

var AllLevels = []Level{LevelInfo, LevelWarning, LevelError, LevelCritical}

// ResourceType is the kind of entity an audit entry points at.
type ResourceType string

const (
	ResourceComplaint ResourceType = "COMPLAINT"
	ResourceUser      ResourceType = "USER"
	ResourceSystem    ResourceType = "SYSTEM"
)

var AllResourceTypes = []ResourceType{ResourceComplaint, ResourceUser, ResourceSystem}

func (r Role) Valid() bool         { return contains(AllRoles, r) }
func (c Category) Valid() bool     { return contains(AllCategories, c) }
func (p Priority) Valid() bool     { return contains(AllPriorities, p) }
func (s Status) Valid() bool       { return contains(AllStatuses, s) }
func (a Action) Valid() bool       { return contains(AllActions, a) }
func (l Level) Valid() bool        { return contains(AllLevels, l) }
func (r ResourceType) Valid() bool { return contains(AllResourceTypes, r) }

// IsOpen reports whether the complaint still awaits handling.
func (s Status) IsOpen() bool { return contains(OpenStatuses, s) }

// IsTerminal reports whether the status ends the normal lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusClosed || s == StatusRejected
}

func (r Role) Value() (driver.Value, error)         { return enumValue(r) }
func (c Category) Value() (driver.Value, error)     { return enumValue(c) }
func (p Priority) Value() (driver.Value, error)     { return enumValue(p) }
func (s Status) Value() (driver.Value, error)       { return enumValue(s) }
func (a Action) Value() (driver.Value, error)       { return enumValue(a) }
func (l Level) Value() (driver.Value, error)        { return enumValue(l) }
func (r ResourceType) Value() (driver.Value, error) { return enumValue(r) }

func (r *Role) Scan(src any) error         { return enumScan(r, src) }
func (c *Category) Scan(src any) error     { return enumScan(c, src) }
func (p *Priority) Scan(src any) error     { return enumScan(p, src) }
func (s *Status) Scan(src any) error       { return enumScan(s, src) }
func (a *Action) Scan(src any) error       { return enumScan(a, src) }
func (l *Level) Scan(src any) error        { return enumScan(l, src) }
func (r *ResourceType) Scan(src any) error { return enumScan(r, src) }

type enum interface {
	~string
	Valid() bool
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func enumValue[T enum](v T) (driver.Value, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid %T value %q", v, string(v))
	}
	return string(v), nil
}

func enumScan[T enum](dst *T, src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*dst = ""
		return nil
	default:
		return fmt.Errorf("cannot scan %T into %T", src, *dst)
	}
	val := T(raw)
	if !val.Valid() {
		return fmt.Errorf("invalid %T value %q", *dst, raw)
	}
	*dst = val
	return nil
}
