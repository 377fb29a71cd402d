package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/addisfuel/fuelwatch/models"
	"github.com/addisfuel/fuelwatch/utils"
)

// ListStations returns active stations, paginated, newest first.
func (a *App) ListStations(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)

	query := a.DB.Model(&models.Station{}).Where("is_active = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var stations []models.Station
	if err := query.Order("created_at DESC").Limit(p.Limit).Offset(p.Offset()).Find(&stations).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(stations, p, total))
}

// GetStation returns one station with its current fuel statuses.
func (a *App) GetStation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var station models.Station
	if err := a.DB.First(&station, "id = ?", id).Error; err != nil {
		http.Error(w, "station not found", http.StatusNotFound)
		return
	}

	var statuses []models.FuelStatus
	if err := a.DB.Where("station_id = ?", station.ID).Order("fuel_type").Find(&statuses).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"station":    station,
		"fuelStatus": statuses,
	})
}

type stationReq struct {
	Name      string  `json:"name"`
	Code      string  `json:"code"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	ManagerID *string `json:"managerId,omitempty"`
}

func (req *stationReq) validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(req.Code) == "" {
		fields["code"] = "required"
	}
	if err := utils.ValidateCoordinate(req.Latitude, req.Longitude); err != nil {
		fields["coordinates"] = err.Error()
	}
	return fields
}

func (a *App) CreateStation(w http.ResponseWriter, r *http.Request) {
	var req stationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	station := models.Station{
		Name:      req.Name,
		Code:      strings.ToUpper(req.Code),
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if req.ManagerID != nil {
		id, err := uuid.Parse(*req.ManagerID)
		if err != nil {
			writeFieldErrors(w, map[string]string{"managerId": "invalid uuid"})
			return
		}
		station.ManagerID = &id
	}

	if err := a.DB.Create(&station).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "station code already exists", http.StatusConflict)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	a.audit(r, "station.create", "station", station.ID.String(), nil)
	writeJSON(w, http.StatusCreated, station)
}

func (a *App) UpdateStation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var station models.Station
	if err := a.DB.First(&station, "id = ?", id).Error; err != nil {
		http.Error(w, "station not found", http.StatusNotFound)
		return
	}

	var req stationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if fields := req.validate(); len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	station.Name = req.Name
	station.Code = strings.ToUpper(req.Code)
	station.Address = req.Address
	station.Latitude = req.Latitude
	station.Longitude = req.Longitude
	if req.ManagerID != nil {
		mid, err := uuid.Parse(*req.ManagerID)
		if err != nil {
			writeFieldErrors(w, map[string]string{"managerId": "invalid uuid"})
			return
		}
		station.ManagerID = &mid
	}

	if err := a.DB.Save(&station).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	a.audit(r, "station.update", "station", station.ID.String(), nil)
	writeJSON(w, http.StatusOK, station)
}

// DeactivateStation soft-deletes a station by clearing is_active.
func (a *App) DeactivateStation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result := a.DB.Model(&models.Station{}).Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		http.Error(w, result.Error.Error(), http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "station not found", http.StatusNotFound)
		return
	}

	a.audit(r, "station.deactivate", "station", id, nil)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
