// Package geojson provides GeoJSON geometry types and utilities.
//
// ETAD burst footprints carry a height above the WGS84 ellipsoid, so
// positions in this package are (lon, lat) or (lon, lat, height).
package geojson

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Geometry represents a GeoJSON geometry object.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"` // "Feature"
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection represents a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string     `json:"type"` // "FeatureCollection"
	Features []*Feature `json:"features"`
}

// NewFeature creates a feature wrapping the given geometry.
func NewFeature(g *Geometry, properties map[string]any) *Feature {
	if properties == nil {
		properties = make(map[string]any)
	}
	return &Feature{Type: "Feature", Geometry: g, Properties: properties}
}

// NewFeatureCollection creates a feature collection from the given features.
func NewFeatureCollection(features []*Feature) *FeatureCollection {
	if features == nil {
		features = make([]*Feature, 0)
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}

// NewPolygon creates a polygon geometry from a single exterior ring of
// positions. The ring is closed automatically when the last position does
// not repeat the first.
func NewPolygon(ring [][]float64) (*Geometry, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("polygon ring needs at least 3 positions, got %d", len(ring))
	}
	for i, pos := range ring {
		if len(pos) < 2 || len(pos) > 3 {
			return nil, fmt.Errorf("invalid position at index %d: expected 2 or 3 coordinates, got %d", i, len(pos))
		}
		for _, v := range pos {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("invalid position at index %d: coordinate is NaN", i)
			}
		}
	}

	if !positionsEqual(ring[0], ring[len(ring)-1]) {
		closed := make([][]float64, len(ring)+1)
		copy(closed, ring)
		closed[len(ring)] = ring[0]
		ring = closed
	}

	coordsJSON, err := json.Marshal([][][]float64{ring})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal polygon coordinates: %w", err)
	}

	return &Geometry{Type: "Polygon", Coordinates: coordsJSON}, nil
}

// NewMultiPolygon creates a multipolygon geometry from polygons.
func NewMultiPolygon(polygons []*Geometry) (*Geometry, error) {
	coords := make([][][][]float64, 0, len(polygons))
	for i, p := range polygons {
		rings, err := p.Polygon()
		if err != nil {
			return nil, fmt.Errorf("invalid polygon at index %d: %w", i, err)
		}
		coords = append(coords, rings)
	}

	coordsJSON, err := json.Marshal(coords)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal multipolygon coordinates: %w", err)
	}

	return &Geometry{Type: "MultiPolygon", Coordinates: coordsJSON}, nil
}

// Point returns the coordinates as a Point [lon, lat(, height)].
// Returns error if geometry is not a Point.
func (g *Geometry) Point() ([]float64, error) {
	if g.Type != "Point" {
		return nil, fmt.Errorf("geometry is not a Point, got %s", g.Type)
	}
	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Point coordinates: %w", err)
	}
	if len(coords) < 2 {
		return nil, fmt.Errorf("invalid Point coordinates: expected at least 2 values, got %d", len(coords))
	}
	return coords, nil
}

// Polygon returns the coordinates as a Polygon [][][lon, lat(, height)].
// Returns error if geometry is not a Polygon.
func (g *Geometry) Polygon() ([][][]float64, error) {
	if g.Type != "Polygon" {
		return nil, fmt.Errorf("geometry is not a Polygon, got %s", g.Type)
	}
	var coords [][][]float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Polygon coordinates: %w", err)
	}
	return coords, nil
}

// MultiPolygon returns the coordinates as a MultiPolygon.
// Returns error if geometry is not a MultiPolygon.
func (g *Geometry) MultiPolygon() ([][][][]float64, error) {
	if g.Type != "MultiPolygon" {
		return nil, fmt.Errorf("geometry is not a MultiPolygon, got %s", g.Type)
	}
	var coords [][][][]float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal MultiPolygon coordinates: %w", err)
	}
	return coords, nil
}

// BBox computes the bounding box of the geometry.
// Returns [west, south, east, north]; heights are ignored.
func (g *Geometry) BBox() ([]float64, error) {
	return ComputeBBox(g)
}

// ComputeBBox computes the bounding box of a geometry.
// Returns [west, south, east, north].
func ComputeBBox(g *Geometry) ([]float64, error) {
	if g == nil {
		return nil, fmt.Errorf("geometry is nil")
	}

	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)

	accumulate := func(point []float64) {
		if len(point) < 2 || math.IsNaN(point[0]) || math.IsNaN(point[1]) {
			return
		}
		minLon = math.Min(minLon, point[0])
		maxLon = math.Max(maxLon, point[0])
		minLat = math.Min(minLat, point[1])
		maxLat = math.Max(maxLat, point[1])
	}

	switch g.Type {
	case "Point":
		coords, err := g.Point()
		if err != nil {
			return nil, err
		}
		return []float64{coords[0], coords[1], coords[0], coords[1]}, nil

	case "Polygon":
		coords, err := g.Polygon()
		if err != nil {
			return nil, err
		}
		for _, ring := range coords {
			for _, point := range ring {
				accumulate(point)
			}
		}

	case "MultiPolygon":
		coords, err := g.MultiPolygon()
		if err != nil {
			return nil, err
		}
		for _, polygon := range coords {
			for _, ring := range polygon {
				for _, point := range ring {
					accumulate(point)
				}
			}
		}

	default:
		return nil, fmt.Errorf("unsupported geometry type: %s", g.Type)
	}

	if math.IsInf(minLon, 0) || math.IsInf(minLat, 0) {
		return nil, fmt.Errorf("failed to compute bounding box: no valid coordinates found")
	}

	return []float64{minLon, minLat, maxLon, maxLat}, nil
}

// ToWKT converts a GeoJSON geometry to WKT format. Polygons with 3-D
// positions are emitted as "POLYGON Z".
func ToWKT(g *Geometry) (string, error) {
	if g == nil {
		return "", fmt.Errorf("geometry is nil")
	}

	switch g.Type {
	case "Point":
		coords, err := g.Point()
		if err != nil {
			return "", err
		}
		return "POINT(" + formatPosition(coords) + ")", nil
	case "Polygon":
		coords, err := g.Polygon()
		if err != nil {
			return "", err
		}
		body, threeD, err := ringsToWKT(coords)
		if err != nil {
			return "", err
		}
		if threeD {
			return "POLYGON Z" + body, nil
		}
		return "POLYGON" + body, nil
	case "MultiPolygon":
		coords, err := g.MultiPolygon()
		if err != nil {
			return "", err
		}
		var polygons []string
		threeD := false
		for _, polygon := range coords {
			body, z, err := ringsToWKT(polygon)
			if err != nil {
				return "", err
			}
			threeD = threeD || z
			polygons = append(polygons, body)
		}
		if threeD {
			return "MULTIPOLYGON Z(" + strings.Join(polygons, ",") + ")", nil
		}
		return "MULTIPOLYGON(" + strings.Join(polygons, ",") + ")", nil
	default:
		return "", fmt.Errorf("unsupported geometry type for WKT conversion: %s", g.Type)
	}
}

func ringsToWKT(rings [][][]float64) (string, bool, error) {
	threeD := false
	var parts []string
	for _, ring := range rings {
		points := make([]string, len(ring))
		for i, point := range ring {
			if len(point) < 2 {
				return "", false, fmt.Errorf("invalid point in polygon ring: expected at least 2 coordinates")
			}
			if len(point) >= 3 {
				threeD = true
			}
			points[i] = formatPosition(point)
		}
		parts = append(parts, "("+strings.Join(points, ",")+")")
	}
	return "(" + strings.Join(parts, ",") + ")", threeD, nil
}

func formatPosition(point []float64) string {
	parts := make([]string, len(point))
	for i, v := range point {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

func positionsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
