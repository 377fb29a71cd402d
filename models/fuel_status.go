package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FuelType is the closed set of tracked fuel products.
type FuelType string

const (
	FuelDiesel    FuelType = "diesel"
	FuelBenzene95 FuelType = "benzene_95"
	FuelBenzene97 FuelType = "benzene_97"
)

// ParseFuelType normalizes a raw fuel type string.
func ParseFuelType(s string) (FuelType, bool) {
	switch FuelType(strings.ToLower(strings.TrimSpace(s))) {
	case FuelDiesel:
		return FuelDiesel, true
	case FuelBenzene95:
		return FuelBenzene95, true
	case FuelBenzene97:
		return FuelBenzene97, true
	}
	return "", false
}

// Label returns the display label used by the portal frontend.
func (f FuelType) Label() string {
	switch f {
	case FuelDiesel:
		return "Diesel"
	case FuelBenzene95:
		return "Benzene 95"
	case FuelBenzene97:
		return "Benzene 97"
	}
	return string(f)
}

// FuelAvailability is the availability bucket of one fuel type at a station.
type FuelAvailability string

const (
	FuelAvailable  FuelAvailability = "available"
	FuelLow        FuelAvailability = "low"
	FuelOutOfStock FuelAvailability = "out_of_stock"
)

func ParseFuelAvailability(s string) (FuelAvailability, bool) {
	switch FuelAvailability(strings.ToLower(strings.TrimSpace(s))) {
	case FuelAvailable:
		return FuelAvailable, true
	case FuelLow:
		return FuelLow, true
	case FuelOutOfStock:
		return FuelOutOfStock, true
	}
	return "", false
}

// QueueLevel is the bucketed pump wait-time category.
type QueueLevel string

const (
	QueueNone     QueueLevel = "none"
	QueueShort    QueueLevel = "short"
	QueueMedium   QueueLevel = "medium"
	QueueLong     QueueLevel = "long"
	QueueVeryLong QueueLevel = "very_long"
)

func ParseQueueLevel(s string) (QueueLevel, bool) {
	switch QueueLevel(strings.ToLower(strings.TrimSpace(s))) {
	case QueueNone:
		return QueueNone, true
	case QueueShort:
		return QueueShort, true
	case QueueMedium:
		return QueueMedium, true
	case QueueLong:
		return QueueLong, true
	case QueueVeryLong:
		return QueueVeryLong, true
	}
	return "", false
}

// SourceType records how a fuel status row was produced.
type SourceType string

const (
	SourceStaff      SourceType = "STAFF"
	SourceUserReport SourceType = "USER_REPORT"
	SourceSystem     SourceType = "SYSTEM"
)

// FuelStatus is the current availability record for one fuel type at one
// station. TrustScore is always recomputed server-side, never taken from
// client input. One row per (station, fuel type), enforced by a unique index.
type FuelStatus struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StationID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_station_fuel,priority:1" json:"stationId"`
	FuelType          FuelType         `gorm:"size:20;not null;uniqueIndex:idx_station_fuel,priority:2" json:"fuelType"`
	Status            FuelAvailability `gorm:"size:20;not null" json:"status"`
	PricePerLiter     *float64         `json:"pricePerLiter,omitempty"`
	QueueLevel        QueueLevel       `gorm:"size:20;default:'none'" json:"queueLevel"`
	TrustScore        float64          `gorm:"default:0.5" json:"trustScore"`
	SourceType        SourceType       `gorm:"size:20;default:'SYSTEM'" json:"sourceType"`
	VerificationCount int              `gorm:"default:0" json:"verificationCount"`
	LastUpdated       time.Time        `gorm:"not null" json:"lastUpdated"`
	UpdatedBy         *uuid.UUID       `gorm:"type:uuid" json:"updatedBy,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`

	Station *Station `gorm:"foreignKey:StationID" json:"station,omitempty"`
}

func (FuelStatus) TableName() string {
	return "fuel_statuses"
}

// FuelStatusHistory is an append-only record of every status change.
type FuelStatusHistory struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StationID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"stationId"`
	FuelType      FuelType         `gorm:"size:20;not null" json:"fuelType"`
	OldStatus     FuelAvailability `gorm:"size:20" json:"oldStatus,omitempty"`
	NewStatus     FuelAvailability `gorm:"size:20;not null" json:"newStatus"`
	PricePerLiter *float64         `json:"pricePerLiter,omitempty"`
	Source        SourceType       `gorm:"size:20;not null" json:"source"`
	ChangedBy     *uuid.UUID       `gorm:"type:uuid" json:"changedBy,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func (FuelStatusHistory) TableName() string {
	return "fuel_status_history"
}
