package models

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus defines the approval state of a submitted fuel status
// change. approved and rejected are terminal.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// PendingApproval links a staff-submitted fuel status change to manager
// sign-off. Concurrent decisions are raced out at the store with a
// conditional update on status = 'pending', never by id alone.
type PendingApproval struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FuelStatusID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"fuelStatusId"`
	StationID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"stationId"`
	SubmittedBy         uuid.UUID        `gorm:"type:uuid;not null" json:"submittedBy"`
	SubmittedStatus     FuelAvailability `gorm:"size:20;not null" json:"submittedStatus"`
	SubmittedPrice      *float64         `json:"submittedPrice,omitempty"`
	SubmittedQueueLevel QueueLevel       `gorm:"size:20;default:'none'" json:"submittedQueueLevel"`
	Status              ApprovalStatus   `gorm:"size:20;default:'pending';index" json:"status"`
	Notes               string           `gorm:"type:text" json:"notes,omitempty"`
	ReviewedBy          *uuid.UUID       `gorm:"type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt          *time.Time       `json:"reviewedAt,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`

	FuelStatus *FuelStatus `gorm:"foreignKey:FuelStatusID" json:"fuelStatus,omitempty"`
	Station    *Station    `gorm:"foreignKey:StationID" json:"station,omitempty"`
}

func (PendingApproval) TableName() string {
	return "pending_approvals"
}
