package handlers

import (
	"net/http"
	"time"
)

// Health reports process liveness and store reachability. The system-log row
// is best-effort; a failed write never degrades the health answer.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "ok"

	sqlDB, err := a.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		status = "degraded"
		dbStatus = "unreachable"
		a.Log.Error().Err(err).Msg("health check db ping failed")
	}

	a.systemLog("info", "health", "health check: "+status)

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC(),
	})
}
