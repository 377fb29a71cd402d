package utils

import (
	"math"
	"time"
)

// TrustInput describes how a fuel status row was sourced.
type TrustInput struct {
	LastUpdated       time.Time
	SourceType        string // STAFF, USER_REPORT or SYSTEM
	VerificationCount int
}

// TrustScore computes the confidence score for a fuel status record as a
// weighted sum of recency, source quality and verification count, rounded to
// 2 decimals and clamped to [0, 1].
func TrustScore(now time.Time, in TrustInput) float64 {
	const baseScore = 0.5

	hoursOld := now.Sub(in.LastUpdated).Hours()

	var recencyScore float64
	switch {
	case hoursOld <= 1:
		recencyScore = 1.0
	case hoursOld <= 6:
		recencyScore = 0.9
	case hoursOld <= 12:
		recencyScore = 0.8
	case hoursOld <= 24:
		recencyScore = 0.7
	case hoursOld <= 48:
		recencyScore = 0.6
	default:
		recencyScore = 0.5
	}

	var sourceScore float64
	switch in.SourceType {
	case "STAFF":
		sourceScore = 1.0
	case "SYSTEM":
		sourceScore = 0.9
	case "USER_REPORT":
		sourceScore = 0.7
	default:
		sourceScore = 0.5
	}

	verificationBonus := math.Min(float64(in.VerificationCount)*0.05, 0.2)

	final := baseScore + recencyScore*0.3 + sourceScore*0.2 + verificationBonus
	final = math.Round(final*100) / 100

	if final > 1 {
		return 1
	}
	if final < 0 {
		return 0
	}
	return final
}
