package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/addisfuel/fuelwatch/models"
)

// ListSystemLogs returns operational log rows, newest first. Admin and IT
// support only (enforced at the route).
func (a *App) ListSystemLogs(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)
	q := r.URL.Query()

	query := a.DB.Model(&models.SystemLog{})
	if level := q.Get("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if source := q.Get("source"); source != "" {
		query = query.Where("source = ?", source)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, "failed to count system logs", http.StatusInternalServerError)
		return
	}

	var logs []models.SystemLog
	if err := query.Order("created_at DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&logs).Error; err != nil {
		http.Error(w, "failed to list system logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(logs, p, total))
}

// ListAuditLogs returns the audit trail, newest first, with optional filters
// on actor, action and entity type.
func (a *App) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)
	q := r.URL.Query()

	query := a.DB.Model(&models.AuditLog{})
	if raw := q.Get("actorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeFieldErrors(w, map[string]string{"actorId": "invalid uuid"})
			return
		}
		query = query.Where("actor_id = ?", id)
	}
	if action := q.Get("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if entityType := q.Get("entityType"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, "failed to count audit logs", http.StatusInternalServerError)
		return
	}

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&logs).Error; err != nil {
		http.Error(w, "failed to list audit logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(logs, p, total))
}
