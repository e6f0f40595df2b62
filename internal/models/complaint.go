package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Complaint is a grievance raised by a user and driven through its lifecycle by admins or the assignee.
type Complaint struct {
	ID          string   `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string   `gorm:"size:100;not null" json:"title"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Category    Category `gorm:"type:varchar(20);not null;index;check:chk_complaints_category,category IN ('Technical','Billing','Service','General','Other')" json:"category"`
	Priority    Priority `gorm:"type:varchar(10);not null;index;check:chk_complaints_priority,priority IN ('Low','Medium','High','Critical')" json:"priority"`
	Status      Status   `gorm:"type:varchar(20);not null;index;check:chk_complaints_status,status IN ('Pending','In Progress','Resolved','Closed','Rejected')" json:"status"`
	Department  string   `gorm:"size:50;not null;index" json:"department"`

	SubmittedByID string  `gorm:"column:submitted_by;type:uuid;not null;index" json:"submittedById"`
	SubmittedBy   *User   `gorm:"foreignKey:SubmittedByID;constraint:OnDelete:CASCADE" json:"submittedBy,omitempty"`
	AssignedToID  *string `gorm:"column:assigned_to;type:uuid;index" json:"assignedToId,omitempty"`
	AssignedTo    *User   `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"assignedTo,omitempty"`
	ResolvedByID  *string `gorm:"column:resolved_by;type:uuid" json:"resolvedById,omitempty"`
	ResolvedBy    *User   `gorm:"foreignKey:ResolvedByID;constraint:OnDelete:SET NULL" json:"resolvedBy,omitempty"`

	ResolvedAt              *time.Time `json:"resolvedAt,omitempty"`
	Resolution              *string    `gorm:"type:text" json:"resolution,omitempty"`
	EstimatedResolutionTime *time.Time `json:"estimatedResolutionTime,omitempty"`

	Tags        datatypes.JSONSlice[string]     `gorm:"type:jsonb" json:"tags"`
	Attachments datatypes.JSONSlice[Attachment] `gorm:"type:jsonb" json:"attachments"`

	Comments []Comment `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Attachment describes a file reference attached to a complaint.
type Attachment struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName,omitempty"`
	Path         string    `json:"path,omitempty"`
	Size         int64     `json:"size,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	if c.Category == "" {
		c.Category = CategoryGeneral
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	return
}

// IsAssignee reports whether the given user is the current assignee.
func (c *Complaint) IsAssignee(userID string) bool {
	return c.AssignedToID != nil && *c.AssignedToID == userID
}

// ComplaintStats holds the admin dashboard counters.
type ComplaintStats struct {
	Total         int64            `json:"total"`
	Resolved      int64            `json:"resolved"`
	Pending       int64            `json:"pending"`
	StatusStats   map[string]int64 `json:"statusStats"`
	PriorityStats map[string]int64 `json:"priorityStats"`
	CategoryStats map[string]int64 `json:"categoryStats"`
}
