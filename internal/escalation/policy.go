// Package escalation promotes complaints that have sat open for too long to Critical priority.
package escalation

import (
	"context"
	"errors"
	"time"

	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/metrics"
	"complaintdesk/backend/internal/models"

	"github.com/sirupsen/logrus"
)

// Sources of a sweep; they differ only in what is reported afterwards.
const (
	SourceList      = "list"
	SourceEndpoint  = "endpoint"
	SourceScheduler = "scheduler"
	SourceCLI       = "cli"
)

// ErrNoActor is returned for an explicit sweep without an acting account; its audit entries need one.
var ErrNoActor = errors.New("escalation sweep requires an acting account")

// ShouldEscalate is the staleness rule: open, not yet Critical, and older than window.
func ShouldEscalate(c *models.Complaint, now time.Time, window time.Duration) bool {
	return c.Status.IsOpen() &&
		c.Priority != models.PriorityCritical &&
		now.UTC().Sub(c.CreatedAt.UTC()) > window
}

// Cutoff is the creation time before which an open complaint counts as stale.
func Cutoff(now time.Time, window time.Duration) time.Time {
	return now.UTC().Add(-window)
}

type Store interface {
	EscalateStaleComplaints(ctx context.Context, cutoff time.Time) ([]string, error)
}

type Recorder interface {
	Record(ctx context.Context, e audit.Entry)
}

type Notifier interface {
	NotifyEscalation(ctx context.Context, complaintIDs []string)
}

// Result reports one sweep.
type Result struct {
	Count int      `json:"escalatedCount"`
	IDs   []string `json:"escalatedIds"`
}

type Policy struct {
	store    Store
	recorder Recorder
	notifier Notifier
	logger   *logrus.Logger
	window   time.Duration
	now      func() time.Time
}

func NewPolicy(store Store, recorder Recorder, notifier Notifier, logger *logrus.Logger) *Policy {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Policy{
		store:    store,
		recorder: recorder,
		notifier: notifier,
		logger:   logger,
		window:   config.StalenessWindow,
		now:      time.Now,
	}
}

// WithClock overrides the time source; used by tests and the admin CLI.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

// Sweep escalates every stale complaint. Re-running it immediately escalates nothing.
// The list path stays quiet; explicit runs write one audit entry per complaint and notify.
func (p *Policy) Sweep(ctx context.Context, actor *models.User, source string) (Result, error) {
	if actor == nil && source != SourceList {
		return Result{}, ErrNoActor
	}
	ids, err := p.store.EscalateStaleComplaints(ctx, Cutoff(p.now(), p.window))
	if err != nil {
		return Result{}, err
	}
	res := Result{Count: len(ids), IDs: ids}
	metrics.ObserveEscalation(source, res.Count)
	if res.Count == 0 {
		return res, nil
	}

	p.logger.WithFields(logrus.Fields{
		"source":          source,
		"escalated_count": res.Count,
	}).Info("escalated stale complaints")

	if source == SourceList {
		return res, nil
	}
	for _, id := range ids {
		if p.recorder != nil {
			p.recorder.Record(ctx, audit.Entry{
				Actor:        actor,
				Action:       models.ActionUpdateComplaint,
				Details:      "Priority auto-escalated to Critical",
				Level:        models.LevelWarning,
				ResourceType: models.ResourceComplaint,
				ResourceID:   id,
				Metadata:     map[string]any{"source": source},
			})
		}
	}
	if p.notifier != nil {
		p.notifier.NotifyEscalation(ctx, ids)
	}
	return res, nil
}
