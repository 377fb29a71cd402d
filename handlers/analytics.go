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

const (
	// maxReportRangeDays is the largest synchronous date range. Anything
	// larger is deferred immediately, before the aggregation runs.
	maxReportRangeDays = 31

	// reportBudget is the soft wall-clock deadline for synchronous report
	// generation. It is checked at checkpoints, not enforced preemptively:
	// a slow aggregation runs to completion and its result is then deferred.
	reportBudget = 8000 * time.Millisecond

	deferredReportMessage = "Report will be emailed to you"
)

// timeNow is swapped out in tests to drive the report budget checkpoint.
var timeNow = time.Now

// rangeTooLarge reports whether the range exceeds the synchronous budget.
// The boundary is exclusive: exactly 31 days still runs inline.
func rangeTooLarge(start, end time.Time) bool {
	return end.Sub(start) > maxReportRangeDays*24*time.Hour
}

type generateReportReq struct {
	ReportType     string `json:"reportType"`
	DateRangeStart string `json:"dateRangeStart"`
	DateRangeEnd   string `json:"dateRangeEnd"`
}

func parseReportDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// GenerateReport synchronously computes one of the aggregate reports and
// persists the snapshot. Ranges over 31 days, or aggregations that blow the
// wall-clock budget, are recorded as deferred and answered with the timeout
// contract instead. Deferred delivery itself is a named contract only; there
// is no mailer behind it.
func (a *App) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req generateReportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFieldErrors(w, map[string]string{"body": "invalid json"})
		return
	}

	fields := map[string]string{}

	reportType, ok := models.ParseAnalyticsReportType(req.ReportType)
	if !ok {
		fields["reportType"] = "must be FUEL_TRENDS, USER_ACTIVITY or REPORT_STATS"
	}

	end := time.Now()
	if req.DateRangeEnd != "" {
		t, err := parseReportDate(req.DateRangeEnd)
		if err != nil {
			fields["dateRangeEnd"] = "invalid date"
		} else {
			end = t
		}
	}
	start := end.AddDate(0, 0, -7)
	if req.DateRangeStart != "" {
		t, err := parseReportDate(req.DateRangeStart)
		if err != nil {
			fields["dateRangeStart"] = "invalid date"
		} else {
			start = t
		}
	}
	if len(fields) == 0 && !start.Before(end) {
		fields["dateRangeStart"] = "must be before dateRangeEnd"
	}

	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	generatedBy := middleware.GetUserID(r)

	// Checkpoint one: the range heuristic, before any store access.
	if rangeTooLarge(start, end) {
		a.deferReport(w, reportType, start, end, generatedBy)
		return
	}

	startedAt := timeNow()
	data, err := a.aggregate(reportType, start, end)
	if err != nil {
		a.Log.Error().Err(err).Str("reportType", string(reportType)).Msg("report aggregation failed")
		http.Error(w, "failed to generate report", http.StatusInternalServerError)
		return
	}

	// Checkpoint two: wall clock after the query. The work is done either
	// way; over budget just changes how the result is delivered.
	if timeNow().Sub(startedAt) > reportBudget {
		a.deferReport(w, reportType, start, end, generatedBy)
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "failed to encode report", http.StatusInternalServerError)
		return
	}

	report := models.AnalyticsReport{
		ReportType:     reportType,
		Status:         models.AnalyticsCompleted,
		DateRangeStart: start,
		DateRangeEnd:   end,
		GeneratedBy:    generatedBy,
		Data:           payload,
		GeneratedAt:    time.Now(),
	}
	if err := a.DB.Create(&report).Error; err != nil {
		a.Log.Error().Err(err).Msg("report persist failed")
		http.Error(w, "failed to persist report", http.StatusInternalServerError)
		return
	}

	a.audit(r, "report.generate", "analytics_report", report.ID.String(), map[string]interface{}{
		"reportType": reportType,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reportId":    report.ID,
		"reportType":  report.ReportType,
		"generatedAt": report.GeneratedAt,
		"data":        data,
	})
}

// deferReport records a deferred row and answers with the timeout contract.
func (a *App) deferReport(w http.ResponseWriter, reportType models.AnalyticsReportType, start, end time.Time, generatedBy uuid.UUID) {
	report := models.AnalyticsReport{
		ReportType:     reportType,
		Status:         models.AnalyticsDeferred,
		DateRangeStart: start,
		DateRangeEnd:   end,
		GeneratedBy:    generatedBy,
		GeneratedAt:    time.Now(),
	}
	if err := a.DB.Create(&report).Error; err != nil {
		a.Log.Warn().Err(err).Msg("deferred report persist failed")
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timeout": true,
		"message": deferredReportMessage,
	})
}

type fuelTrendRow struct {
	FuelType models.FuelType         `json:"fuelType"`
	Status   models.FuelAvailability `json:"status"`
	Count    int64                   `json:"count"`
	AvgPrice *float64                `json:"avgPrice,omitempty"`
}

type statusCountRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (a *App) aggregate(reportType models.AnalyticsReportType, start, end time.Time) (interface{}, error) {
	switch reportType {
	case models.ReportFuelTrends:
		return a.aggregateFuelTrends(start, end)
	case models.ReportUserActivity:
		return a.aggregateUserActivity(start, end)
	default:
		return a.aggregateReportStats(start, end)
	}
}

// aggregateFuelTrends summarizes fuel status changes per fuel type and
// availability over the range.
func (a *App) aggregateFuelTrends(start, end time.Time) (interface{}, error) {
	var rows []fuelTrendRow
	err := a.DB.Model(&models.FuelStatusHistory{}).
		Select("fuel_type, new_status AS status, COUNT(*) AS count, AVG(price_per_liter) AS avg_price").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("fuel_type, new_status").
		Order("fuel_type, new_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"trends": rows}, nil
}

// aggregateUserActivity counts registrations and report submissions.
func (a *App) aggregateUserActivity(start, end time.Time) (interface{}, error) {
	var newUsers int64
	if err := a.DB.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&newUsers).Error; err != nil {
		return nil, err
	}

	var reportsSubmitted int64
	if err := a.DB.Model(&models.UserReport{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&reportsSubmitted).Error; err != nil {
		return nil, err
	}

	var subscriptions int64
	if err := a.DB.Model(&models.Subscription{}).
		Where("created_at >= ? AND created_at < ? AND is_active = ?", start, end, true).
		Count(&subscriptions).Error; err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"newUsers":         newUsers,
		"reportsSubmitted": reportsSubmitted,
		"newSubscriptions": subscriptions,
	}, nil
}

// aggregateReportStats breaks user reports down by moderation outcome and
// fuel type.
func (a *App) aggregateReportStats(start, end time.Time) (interface{}, error) {
	var byStatus []statusCountRow
	err := a.DB.Model(&models.UserReport{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}

	var byFuelType []statusCountRow
	err = a.DB.Model(&models.UserReport{}).
		Select("fuel_type AS status, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("fuel_type").
		Scan(&byFuelType).Error
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"byStatus":   byStatus,
		"byFuelType": byFuelType,
	}, nil
}

// GetReport returns one persisted report snapshot.
func (a *App) GetReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeFieldErrors(w, map[string]string{"id": "invalid uuid"})
		return
	}

	var report models.AnalyticsReport
	if err := a.DB.First(&report, "id = ?", reportID).Error; err != nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ListReports returns persisted reports, newest first.
func (a *App) ListReports(w http.ResponseWriter, r *http.Request) {
	p := pageParams(r)

	query := a.DB.Model(&models.AnalyticsReport{})
	if raw := r.URL.Query().Get("reportType"); raw != "" {
		rt, ok := models.ParseAnalyticsReportType(raw)
		if !ok {
			writeFieldErrors(w, map[string]string{"reportType": "unknown report type"})
			return
		}
		query = query.Where("report_type = ?", rt)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		http.Error(w, "failed to count reports", http.StatusInternalServerError)
		return
	}

	var reports []models.AnalyticsReport
	if err := query.Order("generated_at DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&reports).Error; err != nil {
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope(reports, p, total))
}
