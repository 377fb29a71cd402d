package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportSections(t *testing.T) {
	raw := []byte(`{
		"trends": [
			{"fuelType": "diesel", "status": "available", "count": 12},
			{"fuelType": "benzene_95", "status": "low", "count": 3, "avgPrice": 112.5}
		],
		"newUsers": 40,
		"reportsSubmitted": 7
	}`)

	sections, err := reportSections(raw)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	trends := sections[0]
	assert.Equal(t, "trends", trends.Name)
	assert.Equal(t, []string{"avgPrice", "count", "fuelType", "status"}, trends.Headers)
	require.Len(t, trends.Rows, 2)
	assert.Equal(t, []string{"", "12", "diesel", "available"}, trends.Rows[0])
	assert.Equal(t, []string{"112.50", "3", "benzene_95", "low"}, trends.Rows[1])

	summary := sections[1]
	assert.Equal(t, "Summary", summary.Name)
	assert.Equal(t, [][]string{
		{"newUsers", "40"},
		{"reportsSubmitted", "7"},
	}, summary.Rows)
}

func TestReportSectionsInvalidJSON(t *testing.T) {
	_, err := reportSections([]byte("not json"))
	assert.Error(t, err)
}

func TestFormatCellValue(t *testing.T) {
	assert.Equal(t, "", formatCellValue(nil))
	assert.Equal(t, "42", formatCellValue(float64(42)))
	assert.Equal(t, "3.14", formatCellValue(3.1415))
	assert.Equal(t, "diesel", formatCellValue("diesel"))
	assert.Equal(t, "true", formatCellValue(true))
}
