package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/models"
	"github.com/addisfuel/fuelwatch/pkg/statemachine"
)

type userReportReq struct {
	StationID          string `json:"stationId"`
	FuelType           string `json:"fuelType"`
	ReportedStatus     string `json:"reportedStatus"`
	ReportedQueueLevel string `json:"reportedQueueLevel"`
	EstimatedWaitTime  *int   `json:"estimatedWaitTime"`
	ReportType         string `json:"reportType"`
	Notes              string `json:"notes"`
}

// CreateUserReport accepts a crowd-sourced availability report. Open to any
// authenticated user; station staff get a heads-up notification.
func (a *App) CreateUserReport(w http.ResponseWriter, r *http.Request) {
	var req userReportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"body": "invalid json"})
		return
	}

	fields := map[string]string{}

	stationID, err := uuid.Parse(req.StationID)
	if err != nil {
		fields["stationId"] = "invalid uuid"
	}
	fuelType, ok := models.ParseFuelType(req.FuelType)
	if !ok {
		fields["fuelType"] = "unknown fuel type"
	}
	status, ok := models.ParseFuelAvailability(req.ReportedStatus)
	if !ok {
		fields["reportedStatus"] = "unknown availability status"
	}

	var queueLevel *models.QueueLevel
	if req.ReportedQueueLevel != "" {
		ql, ok := models.ParseQueueLevel(req.ReportedQueueLevel)
		if !ok {
			fields["reportedQueueLevel"] = "unknown queue level"
		} else {
			queueLevel = &ql
		}
	}

	reportType := models.ReportTypeAvailability
	if req.ReportType != "" {
		rt, ok := models.ParseUserReportType(req.ReportType)
		if !ok {
			fields["reportType"] = "unknown report type"
		} else {
			reportType = rt
		}
	}

	if req.EstimatedWaitTime != nil && *req.EstimatedWaitTime < 0 {
		fields["estimatedWaitTime"] = "must be non-negative"
	}

	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	var station models.Station
	if err := a.DB.First(&station, "id = ? AND is_active = ?", stationID, true).Error; err != nil {
		http.Error(w, "station not found", http.StatusNotFound)
		return
	}

	report := models.UserReport{
		StationID:          stationID,
		FuelType:           fuelType,
		ReportedStatus:     status,
		ReportedQueueLevel: queueLevel,
		EstimatedWaitTime:  req.EstimatedWaitTime,
		ReportType:         reportType,
		Status:             models.ReportOpen,
		Notes:              req.Notes,
	}
	if userID := middleware.GetUserID(r); userID != uuid.Nil {
		report.UserID = &userID
	}

	if err := a.DB.Create(&report).Error; err != nil {
		a.Log.Error().Err(err).Msg("user report create failed")
		http.Error(w, "failed to create report", http.StatusInternalServerError)
		return
	}

	title := "New user report"
	message := fmt.Sprintf("A customer reported %s as %s at %s.",
		fuelType.Label(), status, station.Name)
	if _, err := a.Notifier.NotifyStationStaff(station.ID, title, message); err != nil {
		a.Log.Warn().Err(err).Str("stationId", station.ID.String()).Msg("report fan-out failed")
	}

	writeJSON(w, http.StatusCreated, report)
}

// ListUserReports returns reports for moderation, newest first. Staff see
// their assigned station only; managers and admins can filter freely.
func (a *App) ListUserReports(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)
	q := r.URL.Query()

	query := a.DB.Model(&models.UserReport{}).Preload("Station")

	claims := middleware.GetClaims(r)
	if claims != nil {
		if role, ok := models.ParseRole(claims.Role); ok && role == models.RoleStaff {
			var user models.User
			if err := a.DB.First(&user, "id = ?", claims.UserID).Error; err != nil || user.AssignedStationID == nil {
				writeJSON(w, http.StatusOK, listEnvelope([]models.UserReport{}, p, 0))
				return
			}
			query = query.Where("station_id = ?", *user.AssignedStationID)
		}
	}

	if raw := q.Get("stationId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeFieldErrors(w, map[string]string{"stationId": "invalid uuid"})
			return
		}
		query = query.Where("station_id = ?", id)
	}
	if raw := q.Get("status"); raw != "" {
		query = query.Where("status = ?", raw)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, "failed to count reports", http.StatusInternalServerError)
		return
	}

	var reports []models.UserReport
	if err := query.Order("created_at DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&reports).Error; err != nil {
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(reports, p, total))
}

type moderateReportReq struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

// ModerateUserReport resolves or rejects an open report. The conditional
// update on the current status makes concurrent decisions lose cleanly with
// a conflict instead of double-applying.
func (a *App) ModerateUserReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeFieldErrors(w, map[string]string{"id": "invalid uuid"})
		return
	}

	var req moderateReportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"body": "invalid json"})
		return
	}

	var event statemachine.Event
	switch req.Action {
	case "resolve", "verify":
		event = statemachine.EventReportResolve
	case "reject":
		event = statemachine.EventReportReject
	default:
		writeFieldErrors(w, map[string]string{"action": "must be resolve or reject"})
		return
	}

	var report models.UserReport
	if err := a.DB.First(&report, "id = ?", reportID).Error; err != nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}

	next, err := statemachine.UserReports.Next(report.Status, event)
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":  "illegal transition",
			"status": report.Status,
			"action": req.Action,
		})
		return
	}

	reviewerID := middleware.GetUserID(r)
	now := time.Now()

	updates := map[string]interface{}{
		"status":      next,
		"resolved_by": reviewerID,
		"resolved_at": now,
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	result := a.DB.Model(&models.UserReport{}).
		Where("id = ? AND status = ?", report.ID, report.Status).
		Updates(updates)
	if result.Error != nil {
		a.Log.Error().Err(result.Error).Msg("report moderation failed")
		http.Error(w, "failed to update report", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error": "report already moderated",
		})
		return
	}

	if report.UserID != nil {
		title := "Your report was reviewed"
		var message string
		if next == models.ReportResolved {
			message = "Thanks! Your fuel availability report was verified."
		} else {
			message = "Your fuel availability report was reviewed and could not be verified."
		}
		if err := a.Notifier.NotifyUser(*report.UserID, &report.StationID, title, message); err != nil {
			a.Log.Warn().Err(err).Msg("reporter notification failed")
		}
	}

	a.audit(r, "user_report."+string(event), "user_report", report.ID.String(), map[string]interface{}{
		"from": report.Status,
		"to":   next,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"reportId": report.ID,
		"status":   next,
	})
}
