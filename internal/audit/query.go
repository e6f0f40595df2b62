package audit

import (
	"context"

	"complaintdesk/backend/internal/access"
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/models"

	"github.com/google/uuid"
)

// Reader is the read side of the log store.
type Reader interface {
	GetLogByID(ctx context.Context, id string) (*models.AuditLog, error)
	ListLogs(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int64, error)
}

// LabeledLog is an entry with its action rendered for people.
type LabeledLog struct {
	models.AuditLog
	ActionLabel string `json:"actionLabel"`
}

// Query serves the admin log views. Entries are never edited or removed.
type Query struct {
	store     Reader
	localizer *localization.Localizer
}

func NewQuery(store Reader, localizer *localization.Localizer) *Query {
	return &Query{store: store, localizer: localizer}
}

func (q *Query) label(lang string, entry models.AuditLog) LabeledLog {
	return LabeledLog{AuditLog: entry, ActionLabel: q.localizer.Label(lang, string(entry.Action))}
}

func (q *Query) List(ctx context.Context, actor *models.User, filter models.AuditLogFilter, lang string) ([]LabeledLog, models.Pagination, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, models.Pagination{}, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, models.Pagination{}, err
	}
	page, limit := config.NormalizePage(filter.Page, filter.Limit)
	filter.Page, filter.Limit = page, limit

	entries, total, err := q.store.ListLogs(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	out := make([]LabeledLog, 0, len(entries))
	for _, e := range entries {
		out = append(out, q.label(lang, e))
	}
	return out, models.NewPagination(page, limit, total), nil
}

func (q *Query) Get(ctx context.Context, actor *models.User, id, lang string) (*LabeledLog, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	entry, err := q.store.GetLogByID(ctx, id)
	if err != nil {
		return nil, err
	}
	labeled := q.label(lang, *entry)
	return &labeled, nil
}

// validateFilter keeps malformed values away from the typed columns.
func validateFilter(f models.AuditLogFilter) error {
	var fe apperr.FieldErrors
	if f.Action != "" && !f.Action.Valid() {
		fe.Add("action", "Invalid action")
	}
	if f.Level != "" && !f.Level.Valid() {
		fe.Add("level", "Invalid level. Must be one of: INFO, WARNING, ERROR, CRITICAL")
	}
	if f.ResourceType != "" && !f.ResourceType.Valid() {
		fe.Add("resourceType", "Invalid resource type. Must be one of: COMPLAINT, USER, SYSTEM")
	}
	if f.UserID != "" && uuid.Validate(f.UserID) != nil {
		fe.Add("userId", "userId must be a valid id")
	}
	if f.ResourceID != "" && uuid.Validate(f.ResourceID) != nil {
		fe.Add("resourceId", "resourceId must be a valid id")
	}
	return fe.Err()
}
