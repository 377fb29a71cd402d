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

func tripTransitionRequest(t *testing.T, tripID uuid.UUID, event string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{"event": event})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/trips/"+tripID.String()+"/transition", bytes.NewReader(body))
	return mux.SetURLVars(req, map[string]string{"id": tripID.String()})
}

// Cancelling a trip the tanker had already departed on releases the tanker.
func TestTransitionTripCancelReleasesTankerInTransit(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	tripID := uuid.New()
	tankerID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "trips"`).
		WillReturnRows(etaTripRows(tripID, tankerID, uuid.New(), models.TripInProgress))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "trips" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "tankers" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	w := httptest.NewRecorder()
	app.TransitionTrip(w, tripTransitionRequest(t, tripID, "cancel"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(models.TripCancelled), resp["status"])
}

// Cancelling before departure leaves the tanker row alone: no tankers update
// is registered, so issuing one would fail the mock.
func TestTransitionTripCancelScheduledLeavesTanker(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	tripID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "trips"`).
		WillReturnRows(etaTripRows(tripID, uuid.New(), uuid.New(), models.TripScheduled))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "trips" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	w := httptest.NewRecorder()
	app.TransitionTrip(w, tripTransitionRequest(t, tripID, "cancel"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTripIllegalEvent(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	tripID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "trips"`).
		WillReturnRows(etaTripRows(tripID, uuid.New(), uuid.New(), models.TripCompleted))

	w := httptest.NewRecorder()
	app.TransitionTrip(w, tripTransitionRequest(t, tripID, "cancel"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
