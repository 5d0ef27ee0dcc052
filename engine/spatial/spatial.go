// Package spatial answers the position questions the Avodah machine asks:
// where the player stands, whether that is inside the north zone, and how
// far it is from the altar. Field is the reference movement model used by
// the terminal front-ends.
package spatial

import (
	"math"
)

// Position is a point on the courtyard floor. North is negative Z.
type Position struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Query is the read-only view the core consumes.
type Query interface {
	Position() Position
	InNorthZone() bool
	DistanceToAltar() float64
}

// Rect is an axis-aligned area on the floor.
type Rect struct {
	MinX, MinZ, MaxX, MaxZ float64
}

// Contains reports whether p lies strictly inside the rectangle.
func (r Rect) Contains(p Position) bool {
	return p.X > r.MinX && p.X < r.MaxX && p.Z > r.MinZ && p.Z < r.MaxZ
}

// Grow returns the rectangle expanded by m on every side.
func (r Rect) Grow(m float64) Rect {
	return Rect{MinX: r.MinX - m, MinZ: r.MinZ - m, MaxX: r.MaxX + m, MaxZ: r.MaxZ + m}
}

// Clamp returns the point of the rectangle closest to p.
func (r Rect) Clamp(p Position) Position {
	return Position{X: clamp(p.X, r.MinX, r.MaxX), Z: clamp(p.Z, r.MinZ, r.MaxZ)}
}

// Footprint builds a rectangle of width w and depth d centered on (x, z).
func Footprint(x, z, w, d float64) Rect {
	return Rect{MinX: x - w/2, MinZ: z - d/2, MaxX: x + w/2, MaxZ: z + d/2}
}

// Zones describes the fixed geometry of the courtyard.
type Zones struct {
	NorthZoneZ     float64 // inside the north zone when z < NorthZoneZ
	Altar          Position
	AltarRadius    float64
	InteractRadius float64
	Bounds         Rect
}

// DefaultZones returns the standard Azara layout.
func DefaultZones() Zones {
	return Zones{
		NorthZoneZ:     -8,
		Altar:          Position{X: 0, Z: 0},
		AltarRadius:    12,
		InteractRadius: 4,
		Bounds:         Rect{MinX: -18, MinZ: -18, MaxX: 18, MaxZ: 18},
	}
}

// InNorth is the north-zone predicate: a single threshold on Z.
func (z Zones) InNorth(p Position) bool {
	return p.Z < z.NorthZoneZ
}

// DistanceToAltar is the Euclidean distance from p to the altar landmark.
func (z Zones) DistanceToAltar(p Position) float64 {
	return Distance(p, z.Altar)
}

// NearAltar reports whether d is within the altar radius.
func (z Zones) NearAltar(d float64) bool {
	return d <= z.AltarRadius
}

// Distance is the Euclidean distance between two floor points.
func Distance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

// Point is a fixed position that satisfies Query.
type Point struct {
	Zones Zones
	At    Position
}

func (p Point) Position() Position       { return p.At }
func (p Point) InNorthZone() bool        { return p.Zones.InNorth(p.At) }
func (p Point) DistanceToAltar() float64 { return p.Zones.DistanceToAltar(p.At) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
