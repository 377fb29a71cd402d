package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"

	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/models"
)

type subscriptionReq struct {
	StationID         string   `json:"stationId"`
	FuelTypes         []string `json:"fuelTypes"`
	NotifyOnAvailable *bool    `json:"notifyOnAvailable"`
	NotifyOnLow       *bool    `json:"notifyOnLow"`
	NotifyOnDelivery  *bool    `json:"notifyOnDelivery"`
}

// CreateSubscription registers the caller for availability alerts. A missing
// stationId subscribes to all stations; an empty fuelTypes list matches every
// fuel type.
func (a *App) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req subscriptionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"body": "invalid json"})
		return
	}

	fields := map[string]string{}

	var stationID *uuid.UUID
	if req.StationID != "" {
		id, err := uuid.Parse(req.StationID)
		if err != nil {
			fields["stationId"] = "invalid uuid"
		} else {
			var station models.Station
			if err := a.DB.First(&station, "id = ? AND is_active = ?", id, true).Error; err != nil {
				fields["stationId"] = "station not found"
			} else {
				stationID = &id
			}
		}
	}

	fuelTypes := make(pq.StringArray, 0, len(req.FuelTypes))
	for _, raw := range req.FuelTypes {
		ft, ok := models.ParseFuelType(raw)
		if !ok {
			fields["fuelTypes"] = "unknown fuel type: " + raw
			break
		}
		fuelTypes = append(fuelTypes, string(ft))
	}

	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	sub := models.Subscription{
		UserID:            userID,
		StationID:         stationID,
		FuelTypes:         fuelTypes,
		NotifyOnAvailable: true,
		IsActive:          true,
	}
	if req.NotifyOnAvailable != nil {
		sub.NotifyOnAvailable = *req.NotifyOnAvailable
	}
	if req.NotifyOnLow != nil {
		sub.NotifyOnLow = *req.NotifyOnLow
	}
	if req.NotifyOnDelivery != nil {
		sub.NotifyOnDelivery = *req.NotifyOnDelivery
	}

	if err := a.DB.Create(&sub).Error; err != nil {
		a.Log.Error().Err(err).Msg("subscription create failed")
		http.Error(w, "failed to create subscription", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

// ListMySubscriptions returns the caller's active subscriptions.
func (a *App) ListMySubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var subs []models.Subscription
	if err := a.DB.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		http.Error(w, "failed to list subscriptions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": subs})
}

// DeactivateSubscription soft-deletes one of the caller's subscriptions.
// Already-inactive rows return 404, keeping the operation idempotent from
// the caller's point of view without leaking other users' rows.
func (a *App) DeactivateSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	subID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeFieldErrors(w, map[string]string{"id": "invalid uuid"})
		return
	}

	result := a.DB.Model(&models.Subscription{}).
		Where("id = ? AND user_id = ? AND is_active = ?", subID, userID, true).
		Update("is_active", false)
	if result.Error != nil {
		http.Error(w, "failed to deactivate subscription", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "subscription not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
