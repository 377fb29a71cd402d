package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/models"
	"github.com/addisfuel/fuelwatch/pkg/statemachine"
	"github.com/addisfuel/fuelwatch/utils"
)

// ListTrips returns trips, newest first, optionally filtered by status.
func (a *App) ListTrips(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)

	query := a.DB.Model(&models.Trip{})
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var trips []models.Trip
	if err := query.Preload("Tanker").Preload("DestinationStation").
		Order("created_at DESC").Limit(p.Limit).Offset(p.Offset()).Find(&trips).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(trips, p, total))
}

type createTripReq struct {
	TankerID             string     `json:"tankerId"`
	DestinationStationID string     `json:"destinationStationId"`
	FuelType             string     `json:"fuelType"`
	QuantityLiters       float64    `json:"quantityLiters"`
	ScheduledDeparture   *time.Time `json:"scheduledDeparture,omitempty"`
}

// CreateTrip schedules a delivery run. The tanker must be available and the
// requested quantity must fit its capacity.
func (a *App) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := map[string]string{}
	tankerID, err := uuid.Parse(req.TankerID)
	if err != nil {
		fields["tankerId"] = "invalid uuid"
	}
	stationID, err := uuid.Parse(req.DestinationStationID)
	if err != nil {
		fields["destinationStationId"] = "invalid uuid"
	}
	fuelType, ok := models.ParseFuelType(req.FuelType)
	if !ok {
		fields["fuelType"] = "unknown fuel type"
	}
	if req.QuantityLiters <= 0 {
		fields["quantityLiters"] = "must be positive"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	var tanker models.Tanker
	if err := a.DB.First(&tanker, "id = ?", tankerID).Error; err != nil {
		http.Error(w, "tanker not found", http.StatusNotFound)
		return
	}
	if tanker.Status != models.TankerAvailable {
		http.Error(w, fmt.Sprintf("tanker is %s, not available", tanker.Status), http.StatusConflict)
		return
	}
	if req.QuantityLiters > tanker.CapacityLiters {
		writeFieldErrors(w, map[string]string{"quantityLiters": "exceeds tanker capacity"})
		return
	}

	var station models.Station
	if err := a.DB.First(&station, "id = ? AND is_active = ?", stationID, true).Error; err != nil {
		http.Error(w, "destination station not found", http.StatusNotFound)
		return
	}

	creator := middleware.GetUserID(r)
	trip := models.Trip{
		TankerID:             tankerID,
		DestinationStationID: stationID,
		FuelType:             fuelType,
		QuantityLiters:       req.QuantityLiters,
		Status:               models.TripScheduled,
		ScheduledDeparture:   req.ScheduledDeparture,
		CreatedBy:            &creator,
	}
	if err := a.DB.Create(&trip).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	a.audit(r, "trip.create", "trip", trip.ID.String(), map[string]interface{}{
		"tankerId":  tankerID,
		"stationId": stationID,
		"fuelType":  fuelType,
	})
	writeJSON(w, http.StatusCreated, trip)
}

type tripTransitionReq struct {
	Event string `json:"event"` // start | complete | cancel
}

// TransitionTrip fires a lifecycle event against a trip. All side effects
// (tanker status, delivery record, subscriber fan-out) move in lock-step
// with the transition; the tanker has no independent state machine.
func (a *App) TransitionTrip(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeFieldErrors(w, map[string]string{"id": "invalid uuid"})
		return
	}

	var req tripTransitionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	event := statemachine.Event(req.Event)

	var trip models.Trip
	if err := a.DB.First(&trip, "id = ?", tripID).Error; err != nil {
		http.Error(w, "trip not found", http.StatusNotFound)
		return
	}

	nextStatus, err := statemachine.Trips.Next(trip.Status, event)
	if err != nil {
		if errors.Is(err, statemachine.ErrIllegalTransition) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	var delivery *models.Delivery
	var liveStatus *models.FuelStatus
	var previousStatus models.FuelAvailability

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": nextStatus}
		tankerStatus := models.TankerStatus("")

		switch event {
		case statemachine.EventTripStart:
			updates["actual_departure"] = now
			if eta := a.estimateArrival(trip, now); eta != nil {
				updates["estimated_arrival"] = *eta
			}
			tankerStatus = models.TankerInTransit
		case statemachine.EventTripComplete:
			updates["actual_arrival"] = now
			tankerStatus = models.TankerAvailable
			delivery = &models.Delivery{
				TripID:         trip.ID,
				StationID:      trip.DestinationStationID,
				FuelType:       trip.FuelType,
				QuantityLiters: trip.QuantityLiters,
				DeliveredAt:    now,
			}
		case statemachine.EventTripCancel:
			// The tanker only needs releasing when the trip had reached a
			// state it could still have completed from, i.e. it was en route.
			if statemachine.Trips.CanFire(trip.Status, statemachine.EventTripComplete) {
				tankerStatus = models.TankerAvailable
			}
		}

		// Concurrency guard: only one caller moves the trip out of its
		// current status.
		result := tx.Model(&models.Trip{}).
			Where("id = ? AND status = ?", trip.ID, trip.Status).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: trip was transitioned concurrently", statemachine.ErrIllegalTransition)
		}

		if tankerStatus != "" {
			if err := tx.Model(&models.Tanker{}).Where("id = ?", trip.TankerID).
				Update("status", tankerStatus).Error; err != nil {
				return err
			}
		}

		if delivery != nil {
			if err := tx.Create(delivery).Error; err != nil {
				return err
			}
			// A completed delivery replenishes the station: flip the live
			// fuel status to available and append a history row.
			actor := middleware.GetUserID(r)
			status, oldStatus, err := a.applyFuelStatusChange(tx, parsedFuelStatus{
				stationID:  trip.DestinationStationID,
				fuelType:   trip.FuelType,
				status:     models.FuelAvailable,
				queueLevel: models.QueueNone,
			}, models.SourceSystem, actor)
			if err != nil {
				return err
			}
			liveStatus = status
			previousStatus = oldStatus
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, statemachine.ErrIllegalTransition) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Delivery fan-out to subscribers, after the commit, best-effort.
	if delivery != nil {
		var station models.Station
		if err := a.DB.First(&station, "id = ?", trip.DestinationStationID).Error; err == nil {
			title := fmt.Sprintf("Fuel delivered to %s", station.Name)
			msg := fmt.Sprintf("%.0f liters of %s delivered to %s.",
				trip.QuantityLiters, trip.FuelType.Label(), station.Name)
			if _, err := a.Notifier.NotifySubscribers(station.ID, trip.FuelType, SubscriptionEventDelivery, title, msg); err != nil {
				a.Log.Warn().Err(err).Msg("delivery fan-out failed")
			}
			if liveStatus != nil {
				a.fanOutAvailabilityChange(station, liveStatus, previousStatus)
			}
		}
	}

	a.audit(r, "trip.transition", "trip", trip.ID.String(), map[string]interface{}{
		"event": req.Event,
		"from":  trip.Status,
		"to":    nextStatus,
	})

	trip.Status = nextStatus
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"tripId":  trip.ID,
		"status":  nextStatus,
	})
}

// estimateArrival projects an arrival time from the tanker's last known
// position, if it has one.
func (a *App) estimateArrival(trip models.Trip, departure time.Time) *time.Time {
	var tanker models.Tanker
	if err := a.DB.First(&tanker, "id = ?", trip.TankerID).Error; err != nil || !tanker.HasLocation() {
		return nil
	}
	var station models.Station
	if err := a.DB.First(&station, "id = ?", trip.DestinationStationID).Error; err != nil {
		return nil
	}

	km := utils.HaversineKm(*tanker.CurrentLat, *tanker.CurrentLng, station.Latitude, station.Longitude)
	eta := departure.Add(time.Duration(utils.ETAMinutes(km)) * time.Minute)
	return &eta
}
