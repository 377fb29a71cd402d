package models

import (
	"time"

	"github.com/google/uuid"
)

// TankerStatus tracks a tanker's operational state. in_transit is set and
// cleared only in lock-step with its active trip's transitions.
type TankerStatus string

const (
	TankerAvailable   TankerStatus = "available"
	TankerInTransit   TankerStatus = "in_transit"
	TankerMaintenance TankerStatus = "maintenance"
	TankerOffline     TankerStatus = "offline"
)

type Tanker struct {
	ID                uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PlateNumber       string       `gorm:"size:20;uniqueIndex;not null" json:"plateNumber"`
	CapacityLiters    float64      `gorm:"not null" json:"capacityLiters"`
	Status            TankerStatus `gorm:"size:20;default:'available'" json:"status"`
	CurrentLat        *float64     `json:"currentLat,omitempty"`
	CurrentLng        *float64     `json:"currentLng,omitempty"`
	LocationUpdatedAt *time.Time   `json:"locationUpdatedAt,omitempty"`
	DriverID          *uuid.UUID   `gorm:"type:uuid;index" json:"driverId,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`

	Driver *User `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
}

func (Tanker) TableName() string {
	return "tankers"
}

// HasLocation reports whether the tanker has a usable last known position.
func (t *Tanker) HasLocation() bool {
	return t.CurrentLat != nil && t.CurrentLng != nil
}
