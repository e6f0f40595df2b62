package models

import (
	"time"

	"gorm.io/datatypes"
)

// TimelineCreated and TimelineComment are the synthetic event types; the rest reuse Action values.
const (
	TimelineCreated = "CREATED"
	TimelineComment = "COMMENT"
)

// TimelineEvent is one row of a complaint's history view.
type TimelineEvent struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	By        *UserSummary      `json:"by,omitempty"`
	Details   string            `json:"details,omitempty"`
	Comment   string            `json:"comment,omitempty"`
	HandledBy string            `json:"handledBy,omitempty"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
}
