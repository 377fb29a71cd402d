package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyUsersBatchInsert(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	recipients := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	stationID := uuid.New()

	// One INSERT for the whole batch, not one per recipient.
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(uuid.New()).AddRow(uuid.New()).AddRow(uuid.New()))

	err := app.Notifier.NotifyUsers(recipients, &stationID, "Fuel available", "Diesel is back")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyUsersEmptyIsNoOp(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	err := app.Notifier.NotifyUsers(nil, nil, "title", "message")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyStationStaffNoStaff(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	stationID := uuid.New()

	mock.ExpectQuery(`SELECT "id" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	count, err := app.Notifier.NotifyStationStaff(stationID, "title", "message")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyStationStaffFansOut(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	stationID := uuid.New()

	mock.ExpectQuery(`SELECT "id" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(uuid.New()).AddRow(uuid.New()))
	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(uuid.New()).AddRow(uuid.New()))

	count, err := app.Notifier.NotifyStationStaff(stationID, "Tanker approaching", "ETA ~20 minutes")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func broadcastRequest(t *testing.T, body map[string]string) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/v1/admin/announcements", bytes.NewReader(raw))
}

// An announcement is one broadcast row with no user id, plus the audit entry.
func TestBroadcastAnnouncement(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	w := httptest.NewRecorder()
	app.BroadcastAnnouncement(w, broadcastRequest(t, map[string]string{
		"title":   "Planned maintenance",
		"message": "The portal is read-only tonight from 22:00 to 23:00.",
	}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBroadcastAnnouncementMissingFields(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	w := httptest.NewRecorder()
	app.BroadcastAnnouncement(w, broadcastRequest(t, map[string]string{"title": "no message"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
