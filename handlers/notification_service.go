package handlers

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/addisfuel/fuelwatch/models"
)

// SubscriptionEvent selects which subscriber opt-in flag a fan-out matches.
type SubscriptionEvent string

const (
	SubscriptionEventAvailable SubscriptionEvent = "available"
	SubscriptionEventLow       SubscriptionEvent = "low"
	SubscriptionEventDelivery  SubscriptionEvent = "delivery"
)

// NotificationService creates in-app notifications. Fan-outs are single
// batch inserts, not per-recipient loops; partial failure of the batch is
// surfaced to the caller, who treats delivery as best-effort.
type NotificationService struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewNotificationService(db *gorm.DB, log zerolog.Logger) *NotificationService {
	return &NotificationService{db: db, log: log}
}

// NotifyUser creates one notification for one user.
func (ns *NotificationService) NotifyUser(userID uuid.UUID, stationID *uuid.UUID, title, message string) error {
	n := models.Notification{
		UserID:    &userID,
		StationID: stationID,
		Title:     title,
		Message:   message,
	}
	if err := ns.db.Create(&n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// NotifyUsers creates one notification per recipient in a single insert.
func (ns *NotificationService) NotifyUsers(userIDs []uuid.UUID, stationID *uuid.UUID, title, message string) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		uid := id
		rows = append(rows, models.Notification{
			UserID:    &uid,
			StationID: stationID,
			Title:     title,
			Message:   message,
		})
	}
	if err := ns.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

// Broadcast creates one notification visible to every user (null user id).
func (ns *NotificationService) Broadcast(stationID *uuid.UUID, title, message string) error {
	n := models.Notification{
		StationID: stationID,
		Title:     title,
		Message:   message,
	}
	if err := ns.db.Create(&n).Error; err != nil {
		return fmt.Errorf("failed to create broadcast notification: %w", err)
	}
	return nil
}

// NotifyStationStaff fans out to every active staff member assigned to the
// station. Returns the number of recipients.
func (ns *NotificationService) NotifyStationStaff(stationID uuid.UUID, title, message string) (int, error) {
	var staffIDs []uuid.UUID
	err := ns.db.Model(&models.User{}).
		Where("assigned_station_id = ? AND LOWER(role) = ? AND is_active = ?", stationID, string(models.RoleStaff), true).
		Pluck("id", &staffIDs).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list station staff: %w", err)
	}

	if err := ns.NotifyUsers(staffIDs, &stationID, title, message); err != nil {
		return 0, err
	}
	return len(staffIDs), nil
}

// NotifySubscribers fans out to every active subscription matching the
// station, fuel type and event flag.
func (ns *NotificationService) NotifySubscribers(stationID uuid.UUID, fuelType models.FuelType, event SubscriptionEvent, title, message string) (int, error) {
	query := ns.db.Where("is_active = ?", true).
		Where("station_id IS NULL OR station_id = ?", stationID)

	switch event {
	case SubscriptionEventAvailable:
		query = query.Where("notify_on_available = ?", true)
	case SubscriptionEventLow:
		query = query.Where("notify_on_low = ?", true)
	case SubscriptionEventDelivery:
		query = query.Where("notify_on_delivery = ?", true)
	default:
		return 0, fmt.Errorf("unknown subscription event %q", event)
	}

	var subs []models.Subscription
	if err := query.Find(&subs).Error; err != nil {
		return 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	// Fuel type arrays are matched in code; an empty array means all fuels.
	seen := make(map[uuid.UUID]bool)
	var recipients []uuid.UUID
	for _, sub := range subs {
		if !sub.MatchesFuelType(fuelType) {
			continue
		}
		if seen[sub.UserID] {
			continue
		}
		seen[sub.UserID] = true
		recipients = append(recipients, sub.UserID)
	}

	if err := ns.NotifyUsers(recipients, &stationID, title, message); err != nil {
		return 0, err
	}
	return len(recipients), nil
}
