package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalyticsReportType selects which aggregation an analytics report runs.
type AnalyticsReportType string

const (
	ReportFuelTrends   AnalyticsReportType = "FUEL_TRENDS"
	ReportUserActivity AnalyticsReportType = "USER_ACTIVITY"
	ReportReportStats  AnalyticsReportType = "REPORT_STATS"
)

func ParseAnalyticsReportType(s string) (AnalyticsReportType, bool) {
	switch AnalyticsReportType(strings.ToUpper(strings.TrimSpace(s))) {
	case ReportFuelTrends:
		return ReportFuelTrends, true
	case ReportUserActivity:
		return ReportUserActivity, true
	case ReportReportStats:
		return ReportReportStats, true
	}
	return "", false
}

// AnalyticsReportStatus marks whether a report completed synchronously or was
// deferred by the range/deadline policy.
type AnalyticsReportStatus string

const (
	AnalyticsCompleted AnalyticsReportStatus = "completed"
	AnalyticsDeferred  AnalyticsReportStatus = "deferred"
)

// AnalyticsReport is a persisted aggregation snapshot. Completed rows are
// immutable once created.
type AnalyticsReport struct {
	ID             uuid.UUID             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ReportType     AnalyticsReportType   `gorm:"size:30;not null;index" json:"reportType"`
	Status         AnalyticsReportStatus `gorm:"size:20;default:'completed'" json:"status"`
	DateRangeStart time.Time             `gorm:"not null" json:"dateRangeStart"`
	DateRangeEnd   time.Time             `gorm:"not null" json:"dateRangeEnd"`
	GeneratedBy    uuid.UUID             `gorm:"type:uuid;not null" json:"generatedBy"`
	Data           datatypes.JSON        `gorm:"type:jsonb" json:"data,omitempty"`
	GeneratedAt    time.Time             `gorm:"not null" json:"generatedAt"`
	CreatedAt      time.Time             `json:"createdAt"`
}

func (AnalyticsReport) TableName() string {
	return "analytics_reports"
}
