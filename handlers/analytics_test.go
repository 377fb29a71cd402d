package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeTooLarge(t *testing.T) {
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		days int
		want bool
	}{
		{"one week", 7, false},
		{"exactly 31 days", 31, false},
		{"32 days", 32, true},
		{"90 days", 90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := end.AddDate(0, 0, -tt.days)
			if got := rangeTooLarge(start, end); got != tt.want {
				t.Errorf("rangeTooLarge(%d days) = %v, want %v", tt.days, got, tt.want)
			}
		})
	}
}

func TestRangeTooLargeSubDayPrecision(t *testing.T) {
	end := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	start := end.Add(-31*24*time.Hour - time.Minute)
	if !rangeTooLarge(start, end) {
		t.Error("expected a range one minute past 31 days to be deferred")
	}
}

func TestParseReportDate(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"2026-08-01", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), false},
		{"2026-08-01T09:30:00Z", time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC), false},
		{"01/08/2026", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		got, err := parseReportDate(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseReportDate(%q): expected error, got %v", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseReportDate(%q): %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseReportDate(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func generateReportRequest(t *testing.T, reportType, start, end string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"reportType":     reportType,
		"dateRangeStart": start,
		"dateRangeEnd":   end,
	})
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/v1/reports/generate", bytes.NewReader(body))
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func expectUserActivityCounts(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).WillReturnRows(countRows(12))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_reports"`).WillReturnRows(countRows(4))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "subscriptions"`).WillReturnRows(countRows(7))
}

func TestGenerateReportCompleted(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	expectUserActivityCounts(mock)
	mock.ExpectQuery(`INSERT INTO "analytics_reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	w := httptest.NewRecorder()
	app.GenerateReport(w, generateReportRequest(t, "USER_ACTIVITY", "2026-08-01", "2026-08-08"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["reportId"])
	assert.Equal(t, "USER_ACTIVITY", resp["reportType"])
	assert.Nil(t, resp["timeout"])
}

// A range past 31 days defers before the aggregation runs: the only store
// access is the deferred snapshot row.
func TestGenerateReportDeferredOnWideRange(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	mock.ExpectQuery(`INSERT INTO "analytics_reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	w := httptest.NewRecorder()
	app.GenerateReport(w, generateReportRequest(t, "USER_ACTIVITY", "2026-06-01", "2026-08-01"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["timeout"])
	assert.Equal(t, deferredReportMessage, resp["message"])
}

// An aggregation that blows the wall-clock budget still runs to completion,
// but the result is recorded as deferred and the caller gets the timeout
// contract instead of the data.
func TestGenerateReportDeferredOnSlowAggregation(t *testing.T) {
	app, mock, cleanup := newTestApp(t)
	defer cleanup()

	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	calls := 0
	timeNow = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(9 * time.Second)
	}
	defer func() { timeNow = time.Now }()

	expectUserActivityCounts(mock)
	mock.ExpectQuery(`INSERT INTO "analytics_reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	w := httptest.NewRecorder()
	app.GenerateReport(w, generateReportRequest(t, "USER_ACTIVITY", "2026-08-01", "2026-08-08"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["timeout"])
	assert.Equal(t, deferredReportMessage, resp["message"])
}
