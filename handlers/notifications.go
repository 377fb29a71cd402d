package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/models"
)

type announcementReq struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	StationID string `json:"stationId,omitempty"`
}

// BroadcastAnnouncement publishes an admin announcement as a broadcast
// notification every user sees. An optional stationId scopes it to one
// station's context without restricting the audience.
func (a *App) BroadcastAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req announcementReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := map[string]string{}
	if req.Title == "" {
		fields["title"] = "required"
	}
	if req.Message == "" {
		fields["message"] = "required"
	}
	var stationID *uuid.UUID
	if req.StationID != "" {
		id, err := uuid.Parse(req.StationID)
		if err != nil {
			fields["stationId"] = "invalid uuid"
		} else {
			stationID = &id
		}
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	if stationID != nil {
		var station models.Station
		if err := a.DB.First(&station, "id = ?", *stationID).Error; err != nil {
			http.Error(w, "station not found", http.StatusNotFound)
			return
		}
	}

	if err := a.Notifier.Broadcast(stationID, req.Title, req.Message); err != nil {
		http.Error(w, "failed to publish announcement", http.StatusInternalServerError)
		return
	}

	a.audit(r, "announcement.broadcast", "notification", "", map[string]interface{}{
		"title": req.Title,
	})
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"title":   req.Title,
	})
}

// ListNotifications returns the caller's notifications plus broadcasts,
// newest first. unreadOnly=true narrows to unread rows.
func (a *App) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	p := pageParams(r)

	query := a.DB.Model(&models.Notification{}).
		Where("user_id = ? OR user_id IS NULL", userID)
	if r.URL.Query().Get("unreadOnly") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, "failed to count notifications", http.StatusInternalServerError)
		return
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&notifications).Error; err != nil {
		http.Error(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(notifications, p, total))
}

// MarkNotificationRead flags one of the caller's notifications as read.
// Broadcast rows are shared, so they cannot be marked per-user and are
// rejected here.
func (a *App) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	notifID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeFieldErrors(w, map[string]string{"id": "invalid uuid"})
		return
	}

	var notification models.Notification
	if err := a.DB.First(&notification, "id = ? AND user_id = ?", notifID, userID).Error; err != nil {
		http.Error(w, "notification not found", http.StatusNotFound)
		return
	}

	if !notification.IsRead {
		notification.MarkAsRead()
		if err := a.DB.Model(&notification).
			Updates(map[string]interface{}{"is_read": true, "read_at": notification.ReadAt}).Error; err != nil {
			http.Error(w, "failed to update notification", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, notification)
}

// MarkAllNotificationsRead flags every unread notification owned by the
// caller. Returns the number of rows touched.
func (a *App) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	result := a.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		http.Error(w, "failed to update notifications", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": result.RowsAffected,
	})
}
