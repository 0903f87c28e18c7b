package geo

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantMeters             float64
		tolerance              float64 // allowed error in meters
	}{
		{
			name: "Howrah to Esplanade (~3 km)",
			lat1: 22.585, lon1: 88.329,
			lat2: 22.567, lon2: 88.353,
			wantMeters: 3_175,
			tolerance:  50,
		},
		{
			name: "same point returns zero",
			lat1: 22.585, lon1: 88.329,
			lat2: 22.585, lon2: 88.329,
			wantMeters: 0,
			tolerance:  0.001,
		},
		{
			name: "north pole to south pole",
			lat1: 90, lon1: 0,
			lat2: -90, lon2: 0,
			wantMeters: math.Pi * earthRadiusMeters,
			tolerance:  1,
		},
		{
			name: "equator quarter circumference",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 90,
			wantMeters: math.Pi / 2 * earthRadiusMeters,
			tolerance:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantMeters) > tt.tolerance {
				t.Errorf("Haversine() = %.1f m, want %.1f m (±%.0f)", got, tt.wantMeters, tt.tolerance)
			}
		})
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	a := Haversine(22.585, 88.329, 22.498, 88.370)
	b := Haversine(22.498, 88.370, 22.585, 88.329)
	if a != b {
		t.Errorf("Haversine not symmetric: %f != %f", a, b)
	}
}

func TestPathLength(t *testing.T) {
	a := []float64{22.585, 88.329}
	b := []float64{22.567, 88.353}
	c := []float64{22.553, 88.352}

	want := Haversine(a[0], a[1], b[0], b[1]) + Haversine(b[0], b[1], c[0], c[1])
	if got := PathLength([][]float64{a, b, c}); math.Abs(got-want) > 1e-6 {
		t.Errorf("PathLength() = %f, want %f", got, want)
	}

	if got := PathLength([][]float64{a, {1}, b}); math.Abs(got-Haversine(a[0], a[1], b[0], b[1])) > 1e-6 {
		t.Errorf("PathLength() with malformed point = %f", got)
	}
	if got := PathLength(nil); got != 0 {
		t.Errorf("PathLength(nil) = %f, want 0", got)
	}
	if got := PathLength([][]float64{a}); got != 0 {
		t.Errorf("PathLength(single) = %f, want 0", got)
	}
}

func TestMetersToKm(t *testing.T) {
	if got := MetersToKm(2500); got != 2.5 {
		t.Errorf("MetersToKm(2500) = %f, want 2.5", got)
	}
}
