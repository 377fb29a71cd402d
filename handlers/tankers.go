package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/models"
	"github.com/addisfuel/fuelwatch/utils"
)

func (a *App) ListTankers(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)

	query := a.DB.Model(&models.Tanker{})
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var tankers []models.Tanker
	if err := query.Preload("Driver").Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset()).Find(&tankers).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(tankers, p, total))
}

type tankerReq struct {
	PlateNumber    string  `json:"plateNumber"`
	CapacityLiters float64 `json:"capacityLiters"`
	DriverID       *string `json:"driverId,omitempty"`
}

func (a *App) CreateTanker(w http.ResponseWriter, r *http.Request) {
	var req tankerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.PlateNumber) == "" {
		fields["plateNumber"] = "required"
	}
	if req.CapacityLiters <= 0 {
		fields["capacityLiters"] = "must be positive"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	tanker := models.Tanker{
		PlateNumber:    strings.ToUpper(req.PlateNumber),
		CapacityLiters: req.CapacityLiters,
		Status:         models.TankerAvailable,
	}
	if req.DriverID != nil {
		id, err := uuid.Parse(*req.DriverID)
		if err != nil {
			writeFieldErrors(w, map[string]string{"driverId": "invalid uuid"})
			return
		}
		tanker.DriverID = &id
	}

	if err := a.DB.Create(&tanker).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "plate number already registered", http.StatusConflict)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	a.audit(r, "tanker.create", "tanker", tanker.ID.String(), nil)
	writeJSON(w, http.StatusCreated, tanker)
}

type locationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateTankerLocation takes a driver's position ping. Fire-and-forget from
// the client's perspective: at-most-once, lost updates are acceptable, so
// there is no retry or conflict handling here.
func (a *App) UpdateTankerLocation(w http.ResponseWriter, r *http.Request) {
	tankerID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeFieldErrors(w, map[string]string{"id": "invalid uuid"})
		return
	}

	var req locationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateCoordinate(req.Lat, req.Lng); err != nil {
		writeFieldErrors(w, map[string]string{"coordinates": err.Error()})
		return
	}

	// Drivers may only ping for their own tanker.
	if middleware.CallerRole(r) == models.RoleDriver {
		var tanker models.Tanker
		if err := a.DB.First(&tanker, "id = ?", tankerID).Error; err != nil {
			http.Error(w, "tanker not found", http.StatusNotFound)
			return
		}
		userID := middleware.GetUserID(r)
		if tanker.DriverID == nil || *tanker.DriverID != userID {
			http.Error(w, "drivers can only update their own tanker", http.StatusForbidden)
			return
		}
	}

	result := a.DB.Model(&models.Tanker{}).Where("id = ?", tankerID).Updates(map[string]interface{}{
		"current_lat":         req.Lat,
		"current_lng":         req.Lng,
		"location_updated_at": time.Now(),
	})
	if result.Error != nil {
		http.Error(w, result.Error.Error(), http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "tanker not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
