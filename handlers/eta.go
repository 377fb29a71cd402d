package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm/clause"

	"github.com/addisfuel/fuelwatch/models"
	"github.com/addisfuel/fuelwatch/utils"
)

// proximityThresholdMinutes is the ETA at which station staff get the
// "tanker approaching" alert.
const proximityThresholdMinutes = 30

// TripETA computes the straight-line distance and naive arrival estimate for
// a trip, and fires the one-time proximity alert when the tanker is close.
func (a *App) TripETA(w http.ResponseWriter, r *http.Request) {
	tripID, err := uuid.Parse(r.URL.Query().Get("tripId"))
	if err != nil {
		writeFieldErrors(w, map[string]string{"tripId": "invalid uuid"})
		return
	}

	var trip models.Trip
	if err := a.DB.Preload("Tanker").Preload("DestinationStation").
		First(&trip, "id = ?", tripID).Error; err != nil {
		http.Error(w, "trip not found", http.StatusNotFound)
		return
	}

	if trip.Tanker == nil || !trip.Tanker.HasLocation() || trip.DestinationStation == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"eta":     nil,
			"message": "tanker location data unavailable",
		})
		return
	}

	tanker := trip.Tanker
	station := trip.DestinationStation

	distanceKm := utils.HaversineKm(*tanker.CurrentLat, *tanker.CurrentLng,
		station.Latitude, station.Longitude)
	etaMinutes := utils.ETAMinutes(distanceKm)
	estimatedArrival := time.Now().Add(time.Duration(etaMinutes) * time.Minute)

	if trip.Status == models.TripInProgress && etaMinutes <= proximityThresholdMinutes {
		a.fireProximityAlert(trip, station, etaMinutes)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tripId":           trip.ID,
		"tankerId":         trip.TankerID,
		"stationId":        station.ID,
		"currentLocation":  map[string]float64{"lat": *tanker.CurrentLat, "lng": *tanker.CurrentLng},
		"destination":      map[string]float64{"lat": station.Latitude, "lng": station.Longitude},
		"distanceKm":       distanceKm,
		"etaMinutes":       etaMinutes,
		"estimatedArrival": estimatedArrival,
	})
}

// fireProximityAlert records the alert and fans out to station staff exactly
// once per (trip, station) pair. The unique index on proximity_alerts plus
// ON CONFLICT DO NOTHING decides the winner under concurrent polls; only the
// caller whose insert landed sends notifications.
func (a *App) fireProximityAlert(trip models.Trip, station *models.Station, etaMinutes int) {
	alert := models.ProximityAlert{
		TripID:     trip.ID,
		StationID:  station.ID,
		EtaMinutes: etaMinutes,
	}

	result := a.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&alert)
	if result.Error != nil {
		// A raced unique violation surfaces as an error on some driver
		// configurations; treat it the same as a conflict skip.
		var pqErr *pq.Error
		if errors.As(result.Error, &pqErr) && pqErr.Code == "23505" {
			return
		}
		a.Log.Warn().Err(result.Error).Msg("proximity alert insert failed")
		return
	}
	if result.RowsAffected == 0 {
		// Another poller already fired this alert.
		return
	}

	title := "Tanker approaching"
	message := fmt.Sprintf("Tanker en route to %s. ETA ~%d minutes.", station.Name, etaMinutes)
	recipients, err := a.Notifier.NotifyStationStaff(station.ID, title, message)
	if err != nil {
		a.Log.Warn().Err(err).Msg("proximity fan-out failed")
		return
	}
	a.Log.Info().
		Str("tripId", trip.ID.String()).
		Str("stationId", station.ID.String()).
		Int("recipients", recipients).
		Msg("proximity alert fired")
}
