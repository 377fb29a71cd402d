package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/addisfuel/fuelwatch/middleware"
	"github.com/addisfuel/fuelwatch/models"
	"github.com/addisfuel/fuelwatch/utils"
)

// App bundles the handler set's dependencies. The DB handle is constructed
// once in main and injected here; no package keeps a global client.
type App struct {
	DB       *gorm.DB
	Log      zerolog.Logger
	Tokens   *middleware.TokenManager
	Notifier *NotificationService
}

func NewApp(db *gorm.DB, log zerolog.Logger, tokens *middleware.TokenManager) *App {
	return &App{
		DB:       db,
		Log:      log,
		Tokens:   tokens,
		Notifier: NewNotificationService(db, log),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeFieldErrors rejects malformed input with a structured list of field
// errors, before any store access.
func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"fields": fields,
	})
}

// listEnvelope is the pagination envelope shared by all list endpoints.
func listEnvelope(data interface{}, p utils.PageParams, total int64) map[string]interface{} {
	return map[string]interface{}{
		"data":  data,
		"page":  p.Page,
		"limit": p.Limit,
		"total": total,
	}
}

func pageParams(r *http.Request) utils.PageParams {
	q := r.URL.Query()
	return utils.ValidatePagination(q.Get("page"), q.Get("limit"))
}

// audit records an audit trail row. Best-effort: a failed audit write is
// logged and swallowed, it never fails the primary mutation.
func (a *App) audit(r *http.Request, action, entityType, entityID string, details map[string]interface{}) {
	var actor *uuid.UUID
	if id := middleware.GetUserID(r); id != uuid.Nil {
		actor = &id
	}

	var payload datatypes.JSON
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = raw
		}
	}

	entry := models.AuditLog{
		ActorID:    actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    payload,
	}
	if err := a.DB.Create(&entry).Error; err != nil {
		a.Log.Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}

// systemLog writes a best-effort operational log row, same swallowing rule
// as audit.
func (a *App) systemLog(level, source, message string) {
	entry := models.SystemLog{Level: level, Source: source, Message: message}
	if err := a.DB.Create(&entry).Error; err != nil {
		a.Log.Warn().Err(err).Str("source", source).Msg("system log write failed")
	}
}
