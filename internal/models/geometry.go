package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// SquareFeetPerSquareMeter is the fixed area conversion factor.
const SquareFeetPerSquareMeter = 10.7639

// SRIDWebMercator is the projected (meters) reference system parcel
// geometry is requested in so that planar area is meaningful.
const SRIDWebMercator = 3857

// Ring is one closed loop of a polygon boundary as [x, y] pairs.
// The first point is logically equal to the last.
type Ring [][2]float64

// Polygon is a set of rings in a projected coordinate system.
// Rings are not classified as outer boundaries or holes.
type Polygon struct {
	Rings []Ring
	SRID  int
}

// RingArea returns the signed shoelace area of a ring.
// Counter-clockwise rings are positive, clockwise rings negative.
//
// For closed rings (last point equal to the first, as ArcGIS and PostGIS
// return them) this equals summing x1*y2 - x2*y1 over consecutive pairs.
// It differs from that plain sum on open rings: the sum is taken relative
// to the first vertex, which closes an open ring implicitly and makes the
// result independent of where the ring sits. An open unit square at
// (10, 10) has area 1 here, where the plain pairwise sum gives 6.
// Rings with fewer than 3 points have zero area.
func RingArea(ring Ring) float64 {
	if len(ring) < 3 {
		return 0
	}

	// Shifting to the first vertex keeps large projected coordinates from
	// swamping the cross products. With the first vertex at the origin the
	// closing pair contributes nothing, so open rings need no extra term.
	ox, oy := ring[0][0], ring[0][1]

	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		x1, y1 := ring[i][0]-ox, ring[i][1]-oy
		x2, y2 := ring[i+1][0]-ox, ring[i+1][1]-oy
		sum += x1*y2 - x2*y1
	}

	return sum / 2
}

// PolygonArea sums the absolute area of every ring.
// Holes are not subtracted: a parcel with interior rings is overstated.
func PolygonArea(rings []Ring) float64 {
	var total float64
	for _, ring := range rings {
		total += math.Abs(RingArea(ring))
	}
	return total
}

// Area returns the polygon's area in the units of its coordinate system.
func (p Polygon) Area() float64 {
	return PolygonArea(p.Rings)
}

// MetersToSquareFeet converts square meters to square feet.
func MetersToSquareFeet(sqMeters float64) float64 {
	return sqMeters * SquareFeetPerSquareMeter
}

// Scan implements sql.Scanner for ST_AsGeoJSON output.
// Both Polygon and MultiPolygon geometries are accepted; MultiPolygon
// parts are flattened into a single ring list.
func (p *Polygon) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to scan Polygon: expected []byte, got %T", value)
	}

	return p.UnmarshalJSON(data)
}

// UnmarshalJSON parses a GeoJSON Polygon or MultiPolygon geometry.
func (p *Polygon) UnmarshalJSON(data []byte) error {
	var geom struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}

	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal polygon geometry: %w", err)
	}

	switch geom.Type {
	case "Polygon":
		var rings []Ring
		if err := json.Unmarshal(geom.Coordinates, &rings); err != nil {
			return fmt.Errorf("failed to unmarshal polygon coordinates: %w", err)
		}
		p.Rings = rings
	case "MultiPolygon":
		var parts [][]Ring
		if err := json.Unmarshal(geom.Coordinates, &parts); err != nil {
			return fmt.Errorf("failed to unmarshal multipolygon coordinates: %w", err)
		}
		p.Rings = nil
		for _, part := range parts {
			p.Rings = append(p.Rings, part...)
		}
	default:
		return fmt.Errorf("expected Polygon or MultiPolygon type, got %s", geom.Type)
	}

	if p.SRID == 0 {
		p.SRID = SRIDWebMercator
	}

	return nil
}
