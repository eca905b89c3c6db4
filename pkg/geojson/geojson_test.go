package geojson

import (
	"math"
	"testing"
)

func TestNewPolygon(t *testing.T) {
	tests := []struct {
		name        string
		ring        [][]float64
		wantLen     int
		expectError bool
	}{
		{
			name: "open ring is closed",
			ring: [][]float64{
				{10.0, 45.0, 100.0},
				{10.1, 45.0, 101.0},
				{10.1, 45.1, 102.0},
				{10.0, 45.1, 103.0},
			},
			wantLen: 5,
		},
		{
			name: "closed ring stays as is",
			ring: [][]float64{
				{10.0, 45.0},
				{10.1, 45.0},
				{10.1, 45.1},
				{10.0, 45.0},
			},
			wantLen: 4,
		},
		{
			name:        "too few positions",
			ring:        [][]float64{{10, 45}, {11, 45}},
			expectError: true,
		},
		{
			name:        "invalid position",
			ring:        [][]float64{{10}, {11, 45}, {12, 46}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewPolygon(tt.ring)

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			rings, err := g.Polygon()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(rings) != 1 {
				t.Fatalf("Expected 1 ring, got %d", len(rings))
			}
			if len(rings[0]) != tt.wantLen {
				t.Errorf("Expected %d positions, got %d", tt.wantLen, len(rings[0]))
			}
			first, last := rings[0][0], rings[0][len(rings[0])-1]
			if !positionsEqual(first, last) {
				t.Error("Ring must be closed")
			}
		})
	}
}

func TestComputeBBox(t *testing.T) {
	g, err := NewPolygon([][]float64{
		{10.0, 45.0, 100.0},
		{10.2, 45.0, 100.0},
		{10.2, 45.3, 100.0},
		{10.0, 45.3, 100.0},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	bbox, err := ComputeBBox(g)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []float64{10.0, 45.0, 10.2, 45.3}
	for i := range want {
		if bbox[i] != want[i] {
			t.Errorf("bbox[%d]: expected %v, got %v", i, want[i], bbox[i])
		}
	}
}

func TestNewPolygonRejectsNaN(t *testing.T) {
	_, err := NewPolygon([][]float64{
		{10.0, 45.0},
		{math.NaN(), math.NaN()},
		{10.2, 45.3},
	})
	if err == nil {
		t.Fatal("Expected error for NaN coordinate, got nil")
	}
}

func TestToWKT(t *testing.T) {
	g2d, _ := NewPolygon([][]float64{{0, 0}, {1, 0}, {1, 1}})
	g3d, _ := NewPolygon([][]float64{{0, 0, 5}, {1, 0, 5}, {1, 1, 5}})

	wkt2d, err := ToWKT(g2d)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if wkt2d != "POLYGON((0 0,1 0,1 1,0 0))" {
		t.Errorf("Unexpected WKT: %s", wkt2d)
	}

	wkt3d, err := ToWKT(g3d)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if wkt3d != "POLYGON Z((0 0 5,1 0 5,1 1 5,0 0 5))" {
		t.Errorf("Unexpected WKT: %s", wkt3d)
	}
}

func TestMultiPolygon(t *testing.T) {
	a, _ := NewPolygon([][]float64{{0, 0}, {1, 0}, {1, 1}})
	b, _ := NewPolygon([][]float64{{2, 2}, {3, 2}, {3, 3}})

	mp, err := NewMultiPolygon([]*Geometry{a, b})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	coords, err := mp.MultiPolygon()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(coords) != 2 {
		t.Errorf("Expected 2 polygons, got %d", len(coords))
	}

	bbox, err := mp.BBox()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []float64{0, 0, 3, 3}
	for i := range want {
		if bbox[i] != want[i] {
			t.Errorf("bbox[%d]: expected %v, got %v", i, want[i], bbox[i])
		}
	}
}

func TestTypeMismatch(t *testing.T) {
	g, _ := NewPolygon([][]float64{{0, 0}, {1, 0}, {1, 1}})

	if _, err := g.Point(); err == nil {
		t.Error("Expected error reading Polygon as Point")
	}
	if _, err := g.MultiPolygon(); err == nil {
		t.Error("Expected error reading Polygon as MultiPolygon")
	}
}
