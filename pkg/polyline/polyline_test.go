package polyline

import (
	"math"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	coords := []Coordinate{
		{Lat: 40.75800, Lon: -73.98550},
		{Lat: 40.75310, Lon: -73.98220},
		{Lat: 40.74840, Lon: -73.98540},
	}

	encoded := Encode(coords)
	if encoded == "" {
		t.Fatal("expected non-empty encoding")
	}

	decoded := Decode(encoded)
	if len(decoded) != len(coords) {
		t.Fatalf("expected %d coordinates, got %d", len(coords), len(decoded))
	}

	for i := range coords {
		if math.Abs(decoded[i].Lat-coords[i].Lat) > 1e-5 {
			t.Errorf("coord %d: lat %f != %f", i, decoded[i].Lat, coords[i].Lat)
		}
		if math.Abs(decoded[i].Lon-coords[i].Lon) > 1e-5 {
			t.Errorf("coord %d: lon %f != %f", i, decoded[i].Lon, coords[i].Lon)
		}
	}
}

func TestDecodeKnownPolyline(t *testing.T) {
	// Reference example from the Google polyline documentation.
	decoded := Decode("_p~iF~ps|U_ulLnnqC_mqNvxq`@")

	if len(decoded) != 3 {
		t.Fatalf("expected 3 coordinates, got %d", len(decoded))
	}

	want := []Coordinate{
		{Lat: 38.5, Lon: -120.2},
		{Lat: 40.7, Lon: -120.95},
		{Lat: 43.252, Lon: -126.453},
	}

	for i := range want {
		if math.Abs(decoded[i].Lat-want[i].Lat) > 1e-5 || math.Abs(decoded[i].Lon-want[i].Lon) > 1e-5 {
			t.Errorf("coord %d: got (%f, %f), want (%f, %f)",
				i, decoded[i].Lat, decoded[i].Lon, want[i].Lat, want[i].Lon)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	if got := Decode(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := Encode(nil); got != "" {
		t.Errorf("expected empty string for nil input, got %q", got)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Coordinate
		wantM   float64
		within  float64
	}{
		{
			name:   "same point",
			a:      Coordinate{Lat: 40.758, Lon: -73.985},
			b:      Coordinate{Lat: 40.758, Lon: -73.985},
			wantM:  0,
			within: 0.001,
		},
		{
			name: "one degree latitude",
			a:    Coordinate{Lat: 40, Lon: -73},
			b:    Coordinate{Lat: 41, Lon: -73},
			// One degree of latitude is ~111.2 km.
			wantM:  111195,
			within: 100,
		},
		{
			name: "two meters north",
			a:    Coordinate{Lat: 40.758000, Lon: -73.985000},
			b:    Coordinate{Lat: 40.758018, Lon: -73.985000},
			// 0.000018 degrees latitude is ~2.0 m.
			wantM:  2.0,
			within: 0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.wantM) > tt.within {
				t.Errorf("Distance() = %f, want %f +/- %f", got, tt.wantM, tt.within)
			}
		})
	}
}

func TestLength(t *testing.T) {
	coords := []Coordinate{
		{Lat: 40, Lon: -73},
		{Lat: 40.5, Lon: -73},
		{Lat: 41, Lon: -73},
	}

	total := Length(coords)
	direct := Distance(coords[0], coords[2])

	// Collinear points: sum of segments equals the direct distance.
	if math.Abs(total-direct) > 1 {
		t.Errorf("Length() = %f, direct = %f", total, direct)
	}

	if Length(coords[:1]) != 0 {
		t.Error("expected 0 length for single point")
	}
}

func TestDistanceToPath(t *testing.T) {
	// North-south path along -73.985.
	path := []Coordinate{
		{Lat: 40.750, Lon: -73.985},
		{Lat: 40.760, Lon: -73.985},
	}

	// Point due east of the path midpoint, ~84m at this latitude.
	p := Coordinate{Lat: 40.755, Lon: -73.984}
	got := DistanceToPath(p, path)
	if math.Abs(got-84.3) > 2 {
		t.Errorf("DistanceToPath() = %f, want ~84.3", got)
	}

	// Point on the path itself.
	on := Coordinate{Lat: 40.755, Lon: -73.985}
	if d := DistanceToPath(on, path); d > 0.5 {
		t.Errorf("expected near-zero distance for a point on the path, got %f", d)
	}

	// Point beyond the path end is measured to the endpoint, not the
	// infinite line.
	beyond := Coordinate{Lat: 40.770, Lon: -73.985}
	endDist := Distance(beyond, path[1])
	if d := DistanceToPath(beyond, path); math.Abs(d-endDist) > 0.5 {
		t.Errorf("DistanceToPath() = %f, want %f", d, endDist)
	}

	if !math.IsInf(DistanceToPath(p, nil), 1) {
		t.Error("expected +Inf for empty path")
	}
}
