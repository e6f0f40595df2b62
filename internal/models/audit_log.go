package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of something an actor did.
// Resource references are loose (type + id, no foreign key) so entries outlive what they point at.
type AuditLog struct {
	ID           string            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       *string           `gorm:"type:uuid;index" json:"userId,omitempty"`
	User         *User             `gorm:"foreignKey:UserID;-:migration" json:"user,omitempty"`
	Action       Action            `gorm:"type:varchar(30);not null;index;check:chk_logs_action,action IN ('LOGIN','LOGOUT','REGISTER','CREATE_COMPLAINT','UPDATE_COMPLAINT','DELETE_COMPLAINT','ASSIGN_COMPLAINT','RESOLVE_COMPLAINT','CREATE_USER','UPDATE_USER','DELETE_USER','UPDATE_PROFILE','CHANGE_PASSWORD','SYSTEM_ERROR','SYSTEM_WARNING','SYSTEM_INFO')" json:"action"`
	Details      string            `gorm:"size:500" json:"details"`
	Level        Level             `gorm:"type:varchar(10);not null;index;check:chk_logs_level,level IN ('INFO','WARNING','ERROR','CRITICAL')" json:"level"`
	ResourceType *ResourceType     `gorm:"type:varchar(20);index:idx_logs_resource" json:"resourceType,omitempty"`
	ResourceID   *string           `gorm:"type:uuid;index:idx_logs_resource" json:"resourceId,omitempty"`
	IPAddress    string            `gorm:"size:45" json:"ipAddress,omitempty"`
	UserAgent    string            `gorm:"type:text" json:"userAgent,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	HandledBy    string            `gorm:"size:100" json:"handledBy,omitempty"`
	CreatedAt    time.Time         `gorm:"index" json:"timestamp"`
}

func (AuditLog) TableName() string {
	return "logs"
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Level == "" {
		l.Level = LevelInfo
	}
	return
}

// AuditLogFilter narrows a log listing.
type AuditLogFilter struct {
	UserID       string
	Action       Action
	Level        Level
	ResourceType ResourceType
	ResourceID   string
	From         *time.Time
	To           *time.Time
	Page         int
	Limit        int
}
