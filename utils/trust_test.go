package utils

import (
	"testing"
	"time"
)

func TestTrustScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    TrustInput
		expected float64
	}{
		{
			"fresh staff update scores full",
			TrustInput{LastUpdated: now, SourceType: "STAFF", VerificationCount: 0},
			1.0,
		},
		{
			"30h old user report with 4 verifications clamps to 1",
			TrustInput{LastUpdated: now.Add(-30 * time.Hour), SourceType: "USER_REPORT", VerificationCount: 4},
			1.0, // 0.5 + 0.6*0.3 + 0.7*0.2 + 0.2 = 1.02 -> clamped
		},
		{
			"verification bonus capped at 0.2",
			TrustInput{LastUpdated: now.Add(-72 * time.Hour), SourceType: "USER_REPORT", VerificationCount: 100},
			0.99, // 0.5 + 0.5*0.3 + 0.7*0.2 + 0.2
		},
		{
			"stale unknown source with no verifications",
			TrustInput{LastUpdated: now.Add(-72 * time.Hour), SourceType: "SCRAPER", VerificationCount: 0},
			0.75, // 0.5 + 0.5*0.3 + 0.5*0.2
		},
		{
			"system source within 6h",
			TrustInput{LastUpdated: now.Add(-3 * time.Hour), SourceType: "SYSTEM", VerificationCount: 1},
			1.0, // 0.5 + 0.9*0.3 + 0.9*0.2 + 0.05
		},
		{
			"recency bucket boundary at exactly 24h",
			TrustInput{LastUpdated: now.Add(-24 * time.Hour), SourceType: "USER_REPORT", VerificationCount: 0},
			0.85, // 0.5 + 0.7*0.3 + 0.7*0.2
		},
		{
			"just past 24h falls into 48h bucket",
			TrustInput{LastUpdated: now.Add(-25 * time.Hour), SourceType: "USER_REPORT", VerificationCount: 0},
			0.82, // 0.5 + 0.6*0.3 + 0.7*0.2
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrustScore(now, tt.input)
			if got != tt.expected {
				t.Errorf("TrustScore(%+v) = %v, expected %v", tt.input, got, tt.expected)
			}
			if got < 0 || got > 1 {
				t.Errorf("TrustScore(%+v) = %v, outside [0,1]", tt.input, got)
			}
		})
	}
}

func TestTrustScoreDeterministic(t *testing.T) {
	now := time.Now()
	in := TrustInput{LastUpdated: now.Add(-9 * time.Hour), SourceType: "STAFF", VerificationCount: 2}
	first := TrustScore(now, in)
	for i := 0; i < 10; i++ {
		if got := TrustScore(now, in); got != first {
			t.Fatalf("TrustScore not deterministic: %v != %v", got, first)
		}
	}
}
