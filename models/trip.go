package models

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a tanker delivery run.
type TripStatus string

const (
	TripScheduled  TripStatus = "scheduled"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

type Trip struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TankerID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"tankerId"`
	DestinationStationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"destinationStationId"`
	FuelType             FuelType   `gorm:"size:20;not null" json:"fuelType"`
	QuantityLiters       float64    `gorm:"not null" json:"quantityLiters"`
	Status               TripStatus `gorm:"size:20;default:'scheduled';index" json:"status"`
	ScheduledDeparture   *time.Time `json:"scheduledDeparture,omitempty"`
	ActualDeparture      *time.Time `json:"actualDeparture,omitempty"`
	EstimatedArrival     *time.Time `json:"estimatedArrival,omitempty"`
	ActualArrival        *time.Time `json:"actualArrival,omitempty"`
	CreatedBy            *uuid.UUID `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`

	Tanker             *Tanker  `gorm:"foreignKey:TankerID" json:"tanker,omitempty"`
	DestinationStation *Station `gorm:"foreignKey:DestinationStationID" json:"destinationStation,omitempty"`
}

func (Trip) TableName() string {
	return "trips"
}

// Delivery is created exactly once when a trip completes.
type Delivery struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TripID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"tripId"`
	StationID      uuid.UUID `gorm:"type:uuid;not null;index" json:"stationId"`
	FuelType       FuelType  `gorm:"size:20;not null" json:"fuelType"`
	QuantityLiters float64   `gorm:"not null" json:"quantityLiters"`
	DeliveredAt    time.Time `gorm:"not null" json:"deliveredAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Delivery) TableName() string {
	return "deliveries"
}
