// Package timeline merges a complaint's creation, its audit entries and its comments into one history.
package timeline

import (
	"sort"

	"complaintdesk/backend/internal/models"
)

// Assemble returns 1 + len(logs) + len(comments) events ordered by time.
// Events with equal timestamps keep the order creation, logs, comments.
func Assemble(c *models.Complaint, logs []models.AuditLog, comments []models.Comment) []models.TimelineEvent {
	events := make([]models.TimelineEvent, 0, 1+len(logs)+len(comments))

	events = append(events, models.TimelineEvent{
		Type:      models.TimelineCreated,
		Timestamp: c.CreatedAt,
		By:        c.SubmittedBy.Summary(),
		Details:   "Complaint created: " + c.Title,
	})

	for i := range logs {
		l := &logs[i]
		events = append(events, models.TimelineEvent{
			Type:      string(l.Action),
			Timestamp: l.CreatedAt,
			By:        l.User.Summary(),
			Details:   l.Details,
			HandledBy: l.HandledBy,
			Metadata:  l.Metadata,
		})
	}

	for i := range comments {
		cm := &comments[i]
		events = append(events, models.TimelineEvent{
			Type:      models.TimelineComment,
			Timestamp: cm.CreatedAt,
			By:        cm.User.Summary(),
			Comment:   cm.Text,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events
}
