package utils

import "testing"

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name          string
		page, limit   string
		expectedPage  int
		expectedLimit int
	}{
		{"defaults on empty", "", "", 1, 20},
		{"defaults on garbage", "abc", "xyz", 1, 20},
		{"clamps page 0 and oversized limit", "0", "9999", 1, 100},
		{"passes through valid values", "3", "50", 3, 50},
		{"negative page defaults", "-2", "10", 1, 10},
		{"zero limit defaults", "2", "0", 2, 20},
		{"limit at max", "1", "100", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePagination(tt.page, tt.limit)
			if got.Page != tt.expectedPage || got.Limit != tt.expectedLimit {
				t.Errorf("ValidatePagination(%q, %q) = %+v, expected page=%d limit=%d",
					tt.page, tt.limit, got, tt.expectedPage, tt.expectedLimit)
			}
		})
	}
}

func TestPageParamsOffset(t *testing.T) {
	tests := []struct {
		page, limit, expected int
	}{
		{1, 20, 0},
		{2, 20, 20},
		{5, 10, 40},
	}
	for _, tt := range tests {
		p := PageParams{Page: tt.page, Limit: tt.limit}
		if got := p.Offset(); got != tt.expected {
			t.Errorf("Offset() for page=%d limit=%d = %d, expected %d", tt.page, tt.limit, got, tt.expected)
		}
	}
}
