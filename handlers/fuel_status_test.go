package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addisfuel/fuelwatch/models"
)

func updateFuelStatusRequest(t *testing.T, statusID uuid.UUID, body map[string]interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/fuel-status/"+statusID.String(), bytes.NewReader(raw))
	return mux.SetURLVars(req, map[string]string{"id": statusID.String()})
}

func fuelStatusRows(statusID, stationID uuid.UUID, status models.FuelAvailability) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "station_id", "fuel_type", "status", "queue_level",
		"trust_score", "source_type", "verification_count",
	}).AddRow(statusID, stationID, string(models.FuelDiesel), string(status),
		string(models.QueueNone), 0.5, string(models.SourceStaff), 0)
}

// The update addresses the row by the path id alone; the body carries only
// the new values, never a station or fuel type.
func TestUpdateFuelStatusAddressedByPathID(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	statusID := uuid.New()
	stationID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "fuel_statuses"`).
		WillReturnRows(fuelStatusRows(statusID, stationID, models.FuelAvailable))
	mock.ExpectQuery(`SELECT \* FROM "stations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "latitude", "longitude", "is_active"}).
			AddRow(stationID, "Bole Station", "BOLE-01", 9.0108, 38.7613, true))
	mock.ExpectQuery(`SELECT \* FROM "fuel_statuses"`).
		WillReturnRows(fuelStatusRows(statusID, stationID, models.FuelAvailable))
	mock.ExpectExec(`UPDATE "fuel_statuses" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "fuel_status_history"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	// Same availability as the stored row, so no subscriber fan-out runs.
	w := httptest.NewRecorder()
	app.UpdateFuelStatus(w, updateFuelStatusRequest(t, statusID, map[string]interface{}{
		"status": "available",
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, statusID.String(), resp["id"])
	assert.Equal(t, stationID.String(), resp["stationId"])
}

func TestUpdateFuelStatusUnknownID(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	statusID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "fuel_statuses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	app.UpdateFuelStatus(w, updateFuelStatusRequest(t, statusID, map[string]interface{}{
		"status": "low",
	}))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFuelStatusBadPathID(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/fuel-status/not-a-uuid", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "not-a-uuid"})

	w := httptest.NewRecorder()
	app.UpdateFuelStatus(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
