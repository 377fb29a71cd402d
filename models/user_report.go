package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserReportStatus is the moderation state of a crowd-sourced report.
type UserReportStatus string

const (
	ReportOpen     UserReportStatus = "open"
	ReportResolved UserReportStatus = "resolved"
	ReportRejected UserReportStatus = "rejected"
)

// UserReportType distinguishes availability reports from complaints about
// incorrect portal data.
type UserReportType string

const (
	ReportTypeAvailability  UserReportType = "availability"
	ReportTypeIncorrectInfo UserReportType = "incorrect_info"
)

func ParseUserReportType(s string) (UserReportType, bool) {
	switch UserReportType(strings.ToLower(strings.TrimSpace(s))) {
	case ReportTypeAvailability:
		return ReportTypeAvailability, true
	case ReportTypeIncorrectInfo:
		return ReportTypeIncorrectInfo, true
	}
	return "", false
}

// UserReport is a public or staff submission about fuel availability at a
// station. Status is mutated only by staff/manager/admin moderation.
type UserReport struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StationID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"stationId"`
	UserID             *uuid.UUID       `gorm:"type:uuid;index" json:"userId,omitempty"`
	FuelType           FuelType         `gorm:"size:20;not null" json:"fuelType"`
	ReportedStatus     FuelAvailability `gorm:"size:20;not null" json:"reportedStatus"`
	ReportedQueueLevel *QueueLevel      `gorm:"size:20" json:"reportedQueueLevel,omitempty"`
	EstimatedWaitTime  *int             `json:"estimatedWaitTime,omitempty"`
	ReportType         UserReportType   `gorm:"size:30;default:'availability'" json:"reportType"`
	Status             UserReportStatus `gorm:"size:20;default:'open';index" json:"status"`
	Notes              string           `gorm:"type:text" json:"notes,omitempty"`
	ResolvedBy         *uuid.UUID       `gorm:"type:uuid" json:"resolvedBy,omitempty"`
	ResolvedAt         *time.Time       `json:"resolvedAt,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`

	Station *Station `gorm:"foreignKey:StationID" json:"station,omitempty"`
}

func (UserReport) TableName() string {
	return "user_reports"
}
