// Package audit appends action records on a best-effort basis: a failed write is logged
// and reported in metrics but never returned to the caller.
package audit

import (
	"context"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/metrics"
	"complaintdesk/backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Store persists audit entries.
type Store interface {
	CreateLog(ctx context.Context, entry *models.AuditLog) error
}

// Sink receives every entry after it has been stored (live feed, message bus).
type Sink interface {
	Publish(ctx context.Context, entry *models.AuditLog)
}

// Entry describes one action to record.
type Entry struct {
	Actor        *models.User
	Action       models.Action
	Details      string
	Level        models.Level
	ResourceType models.ResourceType
	ResourceID   string
	Metadata     map[string]any
}

type Recorder struct {
	store  Store
	sinks  []Sink
	logger *logrus.Logger
}

func NewRecorder(store Store, logger *logrus.Logger, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Recorder{store: store, sinks: sinks, logger: logger}
}

// AddSink registers another fan-out target. Not safe for use once requests are being served.
func (r *Recorder) AddSink(s Sink) {
	r.sinks = append(r.sinks, s)
}

// Record stores the entry and fans it out. It never fails the caller.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	entry := r.build(ctx, e)

	if err := r.store.CreateLog(ctx, entry); err != nil {
		metrics.ObserveAuditWrite("error")
		r.logger.WithError(err).WithFields(logrus.Fields{
			"action":      entry.Action,
			"resource_id": e.ResourceID,
			"details":     entry.Details,
		}).Warn("failed to write audit log")
		return
	}
	metrics.ObserveAuditWrite("ok")

	if e.Actor != nil && entry.User == nil {
		entry.User = e.Actor
	}
	for _, s := range r.sinks {
		s.Publish(ctx, entry)
	}
}

func (r *Recorder) build(ctx context.Context, e Entry) *models.AuditLog {
	entry := &models.AuditLog{
		Action:  e.Action,
		Details: truncate(e.Details, config.DetailsMaxLen),
		Level:   e.Level,
	}
	if entry.Level == "" {
		entry.Level = models.LevelInfo
	}
	if e.Actor != nil {
		id := e.Actor.ID
		entry.UserID = &id
	}
	if e.ResourceType != "" {
		rt := e.ResourceType
		entry.ResourceType = &rt
		if e.ResourceID != "" {
			rid := e.ResourceID
			entry.ResourceID = &rid
		}
	}

	meta := datatypes.JSONMap{}
	for k, v := range e.Metadata {
		meta[k] = v
	}
	if e.Actor.IsAdmin() {
		for k, v := range AdminSnapshot(e.Actor) {
			meta[k] = v
		}
		entry.HandledBy = e.Actor.Name
	}
	if len(meta) > 0 {
		entry.Metadata = meta
	}

	if info, ok := requestInfoFrom(ctx); ok {
		entry.IPAddress = info.IP
		entry.UserAgent = info.UserAgent
	}
	return entry
}

// AdminSnapshot captures who the admin was at the time of the action, so the entry stays
// readable after the account changes or disappears.
func AdminSnapshot(admin *models.User) map[string]any {
	if admin == nil {
		return nil
	}
	return map[string]any{
		"adminId":    admin.ID,
		"adminName":  admin.Name,
		"adminEmail": admin.Email,
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
