package utils

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	// Meskel Square, Addis Ababa
	lat, lng := 9.0054, 38.7636

	if d := HaversineKm(lat, lng, lat, lng); d != 0 {
		t.Errorf("distance from a point to itself = %v, expected 0", d)
	}

	// Symmetric
	d1 := HaversineKm(9.0054, 38.7636, 8.9806, 38.7578)
	d2 := HaversineKm(8.9806, 38.7578, 9.0054, 38.7636)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}

	// Addis Ababa to Adama is roughly 75-80 km straight line.
	d := HaversineKm(9.0054, 38.7636, 8.5400, 39.2700)
	if d < 70 || d < 0 || d > 90 {
		t.Errorf("Addis-Adama distance = %v km, expected roughly 75-80", d)
	}
}

func TestETAMinutes(t *testing.T) {
	tests := []struct {
		km       float64
		expected int
	}{
		{0, 0},
		{40, 60},
		{20, 30},
		{10, 15},
		{1, 2},   // 1.5 rounds to 2
		{0.5, 1}, // 0.75 rounds to 1
	}
	for _, tt := range tests {
		if got := ETAMinutes(tt.km); got != tt.expected {
			t.Errorf("ETAMinutes(%v) = %v, expected %v", tt.km, got, tt.expected)
		}
	}

	// Monotonic in distance at fixed speed: doubling the distance doubles
	// the estimate (within rounding).
	for _, km := range []float64{2, 7.5, 13, 60} {
		single := ETAMinutes(km)
		double := ETAMinutes(2 * km)
		if math.Abs(float64(double-2*single)) > 1 {
			t.Errorf("ETAMinutes(%v)=%d vs ETAMinutes(%v)=%d: not ~2x", km, single, 2*km, double)
		}
	}
}

func TestValidateCoordinate(t *testing.T) {
	if err := ValidateCoordinate(9.0054, 38.7636); err != nil {
		t.Errorf("valid coordinate rejected: %v", err)
	}
	if err := ValidateCoordinate(91, 0); err == nil {
		t.Error("latitude 91 accepted")
	}
	if err := ValidateCoordinate(0, -181); err == nil {
		t.Error("longitude -181 accepted")
	}
}
