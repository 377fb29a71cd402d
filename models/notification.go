package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Notification is a single in-app message. A null UserID means broadcast:
// the row is visible to every authenticated user.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`
	StationID *uuid.UUID `gorm:"type:uuid;index" json:"stationId,omitempty"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	IsRead    bool       `gorm:"default:false" json:"isRead"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

// MarkAsRead flags the notification as read.
func (n *Notification) MarkAsRead() {
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
}

// Subscription is a user's opt-in notification filter. Rows are soft-deleted
// via IsActive, never hard-deleted. An empty FuelTypes array matches every
// fuel type.
type Subscription struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	StationID         *uuid.UUID     `gorm:"type:uuid;index" json:"stationId,omitempty"`
	FuelTypes         pq.StringArray `gorm:"type:text[]" json:"fuelTypes,omitempty"`
	NotifyOnAvailable bool           `gorm:"default:true" json:"notifyOnAvailable"`
	NotifyOnLow       bool           `gorm:"default:false" json:"notifyOnLow"`
	NotifyOnDelivery  bool           `gorm:"default:false" json:"notifyOnDelivery"`
	IsActive          bool           `gorm:"default:true;index" json:"isActive"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// MatchesFuelType reports whether the subscription covers the given fuel type.
func (s *Subscription) MatchesFuelType(ft FuelType) bool {
	if len(s.FuelTypes) == 0 {
		return true
	}
	for _, raw := range s.FuelTypes {
		if parsed, ok := ParseFuelType(raw); ok && parsed == ft {
			return true
		}
	}
	return false
}

// ProximityAlert records that a "tanker approaching" notification was already
// fired for a (trip, station) pair. The unique index on the pair is the
// store-level guard that stops repeated ETA polls from double-firing.
type ProximityAlert struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TripID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_trip_station_alert,priority:1" json:"tripId"`
	StationID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_trip_station_alert,priority:2" json:"stationId"`
	EtaMinutes int       `gorm:"not null" json:"etaMinutes"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (ProximityAlert) TableName() string {
	return "proximity_alerts"
}
