package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"complaintdesk/backend/internal/metrics"
	"complaintdesk/backend/internal/models"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// JetStream is the publishing half of nats.JetStreamContext.
type JetStream interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// AuditEvent is the message body.
type AuditEvent struct {
	Type string           `json:"type"`
	Log  *models.AuditLog `json:"log"`
}

// Publisher implements audit.Sink. A breaker stops it from hammering a broker that is down;
// failures are logged and never reach the request that produced the entry.
type Publisher struct {
	js      JetStream
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

func NewPublisher(js JetStream, logger *logrus.Logger) *Publisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nats-audit-publisher",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	return &Publisher{js: js, breaker: breaker, logger: logger}
}

// Subject is cms.audit.<action in lower case>.
func Subject(action models.Action) string {
	return SubjectPrefix + "." + strings.ToLower(string(action))
}

func (p *Publisher) Publish(ctx context.Context, entry *models.AuditLog) {
	data, err := json.Marshal(AuditEvent{Type: "created", Log: entry})
	if err != nil {
		p.logger.WithError(err).Error("failed to marshal audit event")
		metrics.ObserveEventPublish("error")
		return
	}

	subject := Subject(entry.Action)
	_, err = p.breaker.Execute(func() (interface{}, error) {
		return p.js.Publish(subject, data, nats.Context(ctx))
	})
	if err != nil {
		result := "error"
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			result = "skipped"
		}
		metrics.ObserveEventPublish(result)
		p.logger.WithFields(logrus.Fields{
			"subject": subject,
			"log_id":  entry.ID,
		}).WithError(err).Warn("failed to publish audit event")
		return
	}
	metrics.ObserveEventPublish("ok")
}
