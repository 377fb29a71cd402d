package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog is a best-effort operational log row. Writes to it must never
// fail the primary operation that produced them.
type SystemLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Level     string    `gorm:"size:20;not null;index" json:"level"`
	Source    string    `gorm:"size:100;not null" json:"source"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func (SystemLog) TableName() string {
	return "system_logs"
}

// AuditLog records who did what to which entity. Best-effort, same rule as
// SystemLog.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ActorID    *uuid.UUID     `gorm:"type:uuid;index" json:"actorId,omitempty"`
	Action     string         `gorm:"size:100;not null;index" json:"action"`
	EntityType string         `gorm:"size:50;not null" json:"entityType"`
	EntityID   string         `gorm:"size:100" json:"entityId,omitempty"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
