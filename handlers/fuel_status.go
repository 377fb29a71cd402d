package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/models"
	"github.com/addisfuel/fuelwatch/utils"
)

// ListFuelStatus returns current fuel statuses, optionally filtered by
// station and fuel type. Public endpoint.
func (a *App) ListFuelStatus(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)
	q := r.URL.Query()

	query := a.DB.Model(&models.FuelStatus{})
	if station := q.Get("stationId"); station != "" {
		id, err := uuid.Parse(station)
		if err != nil {
			writeFieldErrors(w, map[string]string{"stationId": "invalid uuid"})
			return
		}
		query = query.Where("station_id = ?", id)
	}
	if fuel := q.Get("fuelType"); fuel != "" {
		ft, ok := models.ParseFuelType(fuel)
		if !ok {
			writeFieldErrors(w, map[string]string{"fuelType": "unknown fuel type"})
			return
		}
		query = query.Where("fuel_type = ?", ft)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var statuses []models.FuelStatus
	if err := query.Preload("Station").Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset()).Find(&statuses).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(statuses, p, total))
}

type fuelStatusReq struct {
	StationID     string   `json:"stationId"`
	FuelType      string   `json:"fuelType"`
	Status        string   `json:"status"`
	PricePerLiter *float64 `json:"pricePerLiter,omitempty"`
	QueueLevel    string   `json:"queueLevel,omitempty"`
}

type parsedFuelStatus struct {
	stationID  uuid.UUID
	fuelType   models.FuelType
	status     models.FuelAvailability
	price      *float64
	queueLevel models.QueueLevel
}

func (req *fuelStatusReq) parse() (parsedFuelStatus, map[string]string) {
	fields := map[string]string{}
	var out parsedFuelStatus

	id, err := uuid.Parse(req.StationID)
	if err != nil {
		fields["stationId"] = "invalid uuid"
	}
	out.stationID = id

	ft, ok := models.ParseFuelType(req.FuelType)
	if !ok {
		fields["fuelType"] = "unknown fuel type"
	}
	out.fuelType = ft

	status, ok := models.ParseFuelAvailability(req.Status)
	if !ok {
		fields["status"] = "unknown status"
	}
	out.status = status

	out.queueLevel = models.QueueNone
	if req.QueueLevel != "" {
		ql, ok := models.ParseQueueLevel(req.QueueLevel)
		if !ok {
			fields["queueLevel"] = "unknown queue level"
		}
		out.queueLevel = ql
	}

	if req.PricePerLiter != nil && *req.PricePerLiter <= 0 {
		fields["pricePerLiter"] = "must be positive"
	}
	out.price = req.PricePerLiter

	return out, fields
}

// SubmitFuelStatus takes a staff status submission and parks it as a pending
// approval for the station's manager. The live status row does not change
// until the manager approves.
func (a *App) SubmitFuelStatus(w http.ResponseWriter, r *http.Request) {
	var req fuelStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	parsed, fields := req.parse()
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	userID := middleware.GetUserID(r)
	var submitter models.User
	if err := a.DB.First(&submitter, "id = ?", userID).Error; err != nil {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}
	// Staff can only submit for their own station; managers and admins may
	// submit anywhere.
	role := submitter.NormalizedRole()
	if role == models.RoleStaff {
		if submitter.AssignedStationID == nil || *submitter.AssignedStationID != parsed.stationID {
			http.Error(w, "staff can only submit for their assigned station", http.StatusForbidden)
			return
		}
	}

	var station models.Station
	if err := a.DB.First(&station, "id = ?", parsed.stationID).Error; err != nil {
		http.Error(w, "station not found", http.StatusNotFound)
		return
	}

	status, err := ensureFuelStatus(a.DB, parsed.stationID, parsed.fuelType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	approval := models.PendingApproval{
		FuelStatusID:        status.ID,
		StationID:           parsed.stationID,
		SubmittedBy:         userID,
		SubmittedStatus:     parsed.status,
		SubmittedPrice:      parsed.price,
		SubmittedQueueLevel: parsed.queueLevel,
	}
	if err := a.DB.Create(&approval).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Secondary effects: best-effort only.
	if station.ManagerID != nil {
		title := "Fuel status submission awaiting approval"
		msg := fmt.Sprintf("%s submitted %s for %s at %s.",
			submitter.Name, parsed.status, parsed.fuelType.Label(), station.Name)
		if err := a.Notifier.NotifyUser(*station.ManagerID, &station.ID, title, msg); err != nil {
			a.Log.Warn().Err(err).Msg("manager notification failed")
		}
	}
	a.audit(r, "fuel_status.submit", "pending_approval", approval.ID.String(), map[string]interface{}{
		"stationId": parsed.stationID,
		"fuelType":  parsed.fuelType,
		"status":    parsed.status,
	})

	writeJSON(w, http.StatusCreated, approval)
}

// ensureFuelStatus returns the live row for (station, fuelType), creating a
// placeholder if none exists yet. db may be the shared handle or an open
// transaction.
func ensureFuelStatus(db *gorm.DB, stationID uuid.UUID, fuelType models.FuelType) (*models.FuelStatus, error) {
	var status models.FuelStatus
	err := db.Where(models.FuelStatus{StationID: stationID, FuelType: fuelType}).
		Attrs(models.FuelStatus{
			Status:      models.FuelOutOfStock,
			QueueLevel:  models.QueueNone,
			SourceType:  models.SourceSystem,
			TrustScore:  0.5,
			LastUpdated: time.Now(),
		}).
		FirstOrCreate(&status).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load fuel status: %w", err)
	}
	return &status, nil
}

type updateFuelStatusReq struct {
	Status        string   `json:"status"`
	PricePerLiter *float64 `json:"pricePerLiter,omitempty"`
	QueueLevel    string   `json:"queueLevel,omitempty"`
}

// UpdateFuelStatus applies a direct admin update to the fuel status row
// addressed by the path id, bypassing approval but still recording history,
// audit trail and subscriber fan-out. An omitted queue level keeps the
// stored one.
func (a *App) UpdateFuelStatus(w http.ResponseWriter, r *http.Request) {
	statusID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeFieldErrors(w, map[string]string{"id": "invalid uuid"})
		return
	}

	var req updateFuelStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := map[string]string{}
	newStatus, ok := models.ParseFuelAvailability(req.Status)
	if !ok {
		fields["status"] = "unknown status"
	}
	var queueLevel *models.QueueLevel
	if req.QueueLevel != "" {
		ql, ok := models.ParseQueueLevel(req.QueueLevel)
		if !ok {
			fields["queueLevel"] = "unknown queue level"
		} else {
			queueLevel = &ql
		}
	}
	if req.PricePerLiter != nil && *req.PricePerLiter <= 0 {
		fields["pricePerLiter"] = "must be positive"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	var live models.FuelStatus
	if err := a.DB.First(&live, "id = ?", statusID).Error; err != nil {
		http.Error(w, "fuel status not found", http.StatusNotFound)
		return
	}
	var station models.Station
	if err := a.DB.First(&station, "id = ?", live.StationID).Error; err != nil {
		http.Error(w, "station not found", http.StatusNotFound)
		return
	}

	parsed := parsedFuelStatus{
		stationID:  live.StationID,
		fuelType:   live.FuelType,
		status:     newStatus,
		price:      req.PricePerLiter,
		queueLevel: live.QueueLevel,
	}
	if queueLevel != nil {
		parsed.queueLevel = *queueLevel
	}

	userID := middleware.GetUserID(r)
	status, oldStatus, err := a.applyFuelStatusChange(a.DB, parsed, models.SourceStaff, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	a.fanOutAvailabilityChange(station, status, oldStatus)
	a.audit(r, "fuel_status.update", "fuel_status", status.ID.String(), map[string]interface{}{
		"old": oldStatus,
		"new": status.Status,
	})

	writeJSON(w, http.StatusOK, status)
}

// applyFuelStatusChange mutates the live row, recomputes the trust score and
// appends a history entry. The caller handles notifications after the write.
func (a *App) applyFuelStatusChange(db *gorm.DB, parsed parsedFuelStatus, source models.SourceType, actor uuid.UUID) (*models.FuelStatus, models.FuelAvailability, error) {
	status, err := ensureFuelStatus(db, parsed.stationID, parsed.fuelType)
	if err != nil {
		return nil, "", err
	}
	oldStatus := status.Status

	now := time.Now()
	status.Status = parsed.status
	if parsed.price != nil {
		status.PricePerLiter = parsed.price
	}
	status.QueueLevel = parsed.queueLevel
	status.SourceType = source
	status.LastUpdated = now
	status.UpdatedBy = &actor
	status.TrustScore = utils.TrustScore(now, utils.TrustInput{
		LastUpdated:       now,
		SourceType:        string(source),
		VerificationCount: status.VerificationCount,
	})

	if err := db.Save(status).Error; err != nil {
		return nil, "", fmt.Errorf("failed to update fuel status: %w", err)
	}

	history := models.FuelStatusHistory{
		StationID:     parsed.stationID,
		FuelType:      parsed.fuelType,
		OldStatus:     oldStatus,
		NewStatus:     parsed.status,
		PricePerLiter: parsed.price,
		Source:        source,
		ChangedBy:     &actor,
	}
	if err := db.Create(&history).Error; err != nil {
		a.Log.Warn().Err(err).Msg("fuel status history write failed")
	}

	return status, oldStatus, nil
}

// fanOutAvailabilityChange notifies matching subscribers when a fuel type
// becomes available or low. Best-effort.
func (a *App) fanOutAvailabilityChange(station models.Station, status *models.FuelStatus, oldStatus models.FuelAvailability) {
	if status.Status == oldStatus {
		return
	}

	var event SubscriptionEvent
	switch status.Status {
	case models.FuelAvailable:
		event = SubscriptionEventAvailable
	case models.FuelLow:
		event = SubscriptionEventLow
	default:
		return
	}

	title := fmt.Sprintf("%s update at %s", status.FuelType.Label(), station.Name)
	msg := fmt.Sprintf("%s is now %s at %s.", status.FuelType.Label(), status.Status, station.Name)
	if _, err := a.Notifier.NotifySubscribers(station.ID, status.FuelType, event, title, msg); err != nil {
		a.Log.Warn().Err(err).Msg("subscriber fan-out failed")
	}
}

// ListFuelStatusHistory returns the append-only change log for one station.
func (a *App) ListFuelStatusHistory(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)
	stationID, err := uuid.Parse(r.URL.Query().Get("stationId"))
	if err != nil {
		writeFieldErrors(w, map[string]string{"stationId": "invalid uuid"})
		return
	}

	query := a.DB.Model(&models.FuelStatusHistory{}).Where("station_id = ?", stationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var history []models.FuelStatusHistory
	if err := query.Order("created_at DESC").Limit(p.Limit).Offset(p.Offset()).Find(&history).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(history, p, total))
}

// RefreshTrustScores recomputes the trust score of every fuel status row.
// The verification count of a row is the number of resolved user reports for
// the same station and fuel type.
func (a *App) RefreshTrustScores(w http.ResponseWriter, r *http.Request) {
	var statuses []models.FuelStatus
	if err := a.DB.Find(&statuses).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	count := 0
	for i := range statuses {
		status := &statuses[i]

		var verified int64
		if err := a.DB.Model(&models.UserReport{}).
			Where("station_id = ? AND fuel_type = ? AND status = ?",
				status.StationID, status.FuelType, models.ReportResolved).
			Count(&verified).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		score := utils.TrustScore(now, utils.TrustInput{
			LastUpdated:       status.LastUpdated,
			SourceType:        string(status.SourceType),
			VerificationCount: int(verified),
		})

		if err := a.DB.Model(status).Updates(map[string]interface{}{
			"trust_score":        score,
			"verification_count": verified,
		}).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		count++
	}

	a.audit(r, "fuel_status.refresh_trust", "fuel_status", "", map[string]interface{}{"count": count})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("recalculated trust scores for %d fuel status records", count),
		"count":   count,
	})
}
