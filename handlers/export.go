package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"github.com/addisfuel/fuelwatch/models"
)

// ExportReportToExcel downloads a persisted analytics report as an XLSX
// workbook. Deferred reports have no payload and cannot be exported.
func (a *App) ExportReportToExcel(w http.ResponseWriter, r *http.Request) {
	report, ok := a.exportableReport(w, r)
	if !ok {
		return
	}

	sections, err := reportSections(report.Data)
	if err != nil {
		http.Error(w, "failed to decode report data", http.StatusInternalServerError)
		return
	}

	f, err := buildReportWorkbook(report, sections)
	if err != nil {
		http.Error(w, "failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		http.Error(w, "failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx",
		strings.ToLower(string(report.ReportType)),
		report.GeneratedAt.Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

// ExportReportToCSV downloads a persisted analytics report as CSV.
func (a *App) ExportReportToCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := a.exportableReport(w, r)
	if !ok {
		return
	}

	sections, err := reportSections(report.Data)
	if err != nil {
		http.Error(w, "failed to decode report data", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, section := range sections {
		writer.Write([]string{section.Name})
		writer.Write(section.Headers)
		for _, row := range section.Rows {
			writer.Write(row)
		}
		writer.Write([]string{})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		http.Error(w, "failed to generate CSV file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s.csv",
		strings.ToLower(string(report.ReportType)),
		report.GeneratedAt.Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (a *App) exportableReport(w http.ResponseWriter, r *http.Request) (*models.AnalyticsReport, bool) {
	reportID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeFieldErrors(w, map[string]string{"id": "invalid uuid"})
		return nil, false
	}

	var report models.AnalyticsReport
	if err := a.DB.First(&report, "id = ?", reportID).Error; err != nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return nil, false
	}
	if report.Status != models.AnalyticsCompleted || len(report.Data) == 0 {
		http.Error(w, "report has no exportable data", http.StatusConflict)
		return nil, false
	}
	return &report, true
}

// exportSection is one flattened table of a report payload.
type exportSection struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// reportSections flattens the stored JSON payload generically: list-valued
// keys become tabular sections, scalar keys are collected into a Summary
// section. Key order is sorted so exports are stable across runs.
func reportSections(raw []byte) ([]exportSection, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sections []exportSection
	summary := exportSection{Name: "Summary", Headers: []string{"Metric", "Value"}}

	for _, key := range keys {
		switch value := payload[key].(type) {
		case []interface{}:
			sections = append(sections, listSection(key, value))
		default:
			summary.Rows = append(summary.Rows, []string{key, formatCellValue(value)})
		}
	}

	if len(summary.Rows) > 0 {
		sections = append(sections, summary)
	}
	return sections, nil
}

func listSection(name string, items []interface{}) exportSection {
	section := exportSection{Name: name}

	headerSet := map[string]bool{}
	for _, item := range items {
		row, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		for k := range row {
			headerSet[k] = true
		}
	}
	for k := range headerSet {
		section.Headers = append(section.Headers, k)
	}
	sort.Strings(section.Headers)

	for _, item := range items {
		row, ok := item.(map[string]interface{})
		if !ok {
			section.Rows = append(section.Rows, []string{formatCellValue(item)})
			continue
		}
		record := make([]string, 0, len(section.Headers))
		for _, h := range section.Headers {
			record = append(record, formatCellValue(row[h]))
		}
		section.Rows = append(section.Rows, record)
	}
	return section
}

func formatCellValue(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case float64:
		// JSON numbers decode as float64; keep integers clean.
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%.2f", value)
	case string:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}

func buildReportWorkbook(report *models.AnalyticsReport, sections []exportSection) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Report"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	f.SetCellValue(sheetName, "A1", string(report.ReportType))
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)

	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Range: %s to %s",
		report.DateRangeStart.Format("2006-01-02"),
		report.DateRangeEnd.Format("2006-01-02")))
	f.SetCellValue(sheetName, "A3", fmt.Sprintf("Generated: %s",
		report.GeneratedAt.Format(time.DateTime)))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	sectionStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
	})

	rowIdx := 5
	for _, section := range sections {
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx)
		f.SetCellValue(sheetName, cell, section.Name)
		f.SetCellStyle(sheetName, cell, cell, sectionStyle)
		rowIdx++

		for colIdx, header := range section.Headers {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			f.SetCellValue(sheetName, cell, header)
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
			col, _ := excelize.ColumnNumberToName(colIdx + 1)
			f.SetColWidth(sheetName, col, col, 20)
		}
		rowIdx++

		for _, row := range section.Rows {
			for colIdx, value := range row {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
				f.SetCellValue(sheetName, cell, value)
			}
			rowIdx++
		}
		rowIdx++
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}
