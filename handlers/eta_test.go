package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addisfuel/fuelwatch/models"
)

func tripETARequest(tripID uuid.UUID) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/api/v1/trips/eta?tripId="+tripID.String(), nil)
}

func etaTripRows(tripID, tankerID, stationID uuid.UUID, status models.TripStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tanker_id", "destination_station_id", "fuel_type", "quantity_liters", "status",
	}).AddRow(tripID, tankerID, stationID, string(models.FuelDiesel), 20000.0, string(status))
}

func etaTankerRows(tankerID uuid.UUID, lat, lng *float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "plate_number", "capacity_liters", "status", "current_lat", "current_lng",
	}).AddRow(tankerID, "AA-12345", 30000.0, string(models.TankerInTransit), lat, lng)
}

func etaStationRows(stationID uuid.UUID, lat, lng float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "code", "latitude", "longitude", "is_active",
	}).AddRow(stationID, "Bole Station", "BOLE-01", lat, lng, true)
}

// expectTripLookup registers the trip select plus both association loads.
// Ordering between the association loads is not pinned down, so callers run
// the mock unordered.
func expectTripLookup(mock sqlmock.Sqlmock, trip, tanker, station *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT \* FROM "trips"`).WillReturnRows(trip)
	mock.ExpectQuery(`SELECT \* FROM "tankers"`).WillReturnRows(tanker)
	mock.ExpectQuery(`SELECT \* FROM "stations"`).WillReturnRows(station)
}

func TestTripETAProximityFanOutOnce(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	tripID := uuid.New()
	tankerID := uuid.New()
	stationID := uuid.New()
	lat, lng := 9.0108, 38.7613

	// Tanker parked at the destination: zero distance, zero minutes, well
	// inside the alert threshold.
	expectTripLookup(mock,
		etaTripRows(tripID, tankerID, stationID, models.TripInProgress),
		etaTankerRows(tankerID, &lat, &lng),
		etaStationRows(stationID, lat, lng))

	mock.ExpectQuery(`INSERT INTO "proximity_alerts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(`SELECT "id" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(uuid.New()).AddRow(uuid.New()))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(uuid.New()).AddRow(uuid.New()))

	w := httptest.NewRecorder()
	app.TripETA(w, tripETARequest(tripID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, tripID.String(), resp["tripId"])
	assert.Equal(t, float64(0), resp["etaMinutes"])
}

// A second poll for the same (trip, station) pair hits the unique index and
// the insert lands zero rows: the handler still answers 200 but must not
// notify anyone again. No staff lookup or notification insert is registered;
// issuing either would fail the mock.
func TestTripETAProximityAlertFiresOnlyOnce(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	tripID := uuid.New()
	tankerID := uuid.New()
	stationID := uuid.New()
	lat, lng := 9.0108, 38.7613

	expectTripLookup(mock,
		etaTripRows(tripID, tankerID, stationID, models.TripInProgress),
		etaTankerRows(tankerID, &lat, &lng),
		etaStationRows(stationID, lat, lng))

	mock.ExpectQuery(`INSERT INTO "proximity_alerts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	app.TripETA(w, tripETARequest(tripID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A scheduled trip never alerts, however close the tanker is.
func TestTripETANoAlertBeforeDeparture(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	tripID := uuid.New()
	tankerID := uuid.New()
	stationID := uuid.New()
	lat, lng := 9.0108, 38.7613

	expectTripLookup(mock,
		etaTripRows(tripID, tankerID, stationID, models.TripScheduled),
		etaTankerRows(tankerID, &lat, &lng),
		etaStationRows(stationID, lat, lng))

	w := httptest.NewRecorder()
	app.TripETA(w, tripETARequest(tripID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripETANoTankerLocation(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()
	mock.MatchExpectationsInOrder(false)

	tripID := uuid.New()
	tankerID := uuid.New()
	stationID := uuid.New()

	expectTripLookup(mock,
		etaTripRows(tripID, tankerID, stationID, models.TripInProgress),
		etaTankerRows(tankerID, nil, nil),
		etaStationRows(stationID, 9.0108, 38.7613))

	w := httptest.NewRecorder()
	app.TripETA(w, tripETARequest(tripID))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp["eta"])
}
