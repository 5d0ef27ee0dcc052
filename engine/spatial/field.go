package spatial

import (
	"math"
)

// stepSize is the sub-step used for collision checks while walking.
const stepSize = 0.25

// approachMargin keeps the player this far outside a solid footprint.
const approachMargin = 0.5

var directions = map[string]Position{
	"north":     {X: 0, Z: -1},
	"south":     {X: 0, Z: 1},
	"east":      {X: 1, Z: 0},
	"west":      {X: -1, Z: 0},
	"northeast": {X: math.Sqrt2 / 2, Z: -math.Sqrt2 / 2},
	"northwest": {X: -math.Sqrt2 / 2, Z: -math.Sqrt2 / 2},
	"southeast": {X: math.Sqrt2 / 2, Z: math.Sqrt2 / 2},
	"southwest": {X: -math.Sqrt2 / 2, Z: math.Sqrt2 / 2},
}

// Direction returns the unit vector for a compass direction.
func Direction(name string) (Position, bool) {
	d, ok := directions[name]
	return d, ok
}

// Field tracks the player's position inside the courtyard bounds and
// stops movement at solid obstacles.
type Field struct {
	zones     Zones
	pos       Position
	obstacles []Rect
}

// NewField places the player at start. A start inside an obstacle or out
// of bounds is clamped to the bounds only; callers pick sane spawn points.
func NewField(zones Zones, start Position, obstacles []Rect) *Field {
	return &Field{
		zones:     zones,
		pos:       zones.Bounds.Clamp(start),
		obstacles: obstacles,
	}
}

func (f *Field) Position() Position       { return f.pos }
func (f *Field) InNorthZone() bool        { return f.zones.InNorth(f.pos) }
func (f *Field) DistanceToAltar() float64 { return f.zones.DistanceToAltar(f.pos) }

// Zones returns the geometry the field was built with.
func (f *Field) Zones() Zones { return f.zones }

// Place moves the player directly, ignoring obstacles (used on load).
func (f *Field) Place(p Position) {
	f.pos = f.zones.Bounds.Clamp(p)
}

// Move walks by (dx, dz). Returns the distance covered and whether the
// walk was cut short by an obstacle.
func (f *Field) Move(dx, dz float64) (float64, bool) {
	target := Position{X: f.pos.X + dx, Z: f.pos.Z + dz}
	return f.walkSegment(target)
}

// WalkTo walks toward target. If the straight line is blocked it tries
// the two L-shaped detours; if every route is blocked it walks straight
// until it hits something. A target inside a solid footprint is replaced
// by the nearest point just outside it.
func (f *Field) WalkTo(target Position) (float64, bool) {
	target = f.approach(f.zones.Bounds.Clamp(target))
	routes := [][]Position{
		{target},
		{{X: target.X, Z: f.pos.Z}, target},
		{{X: f.pos.X, Z: target.Z}, target},
	}
	for _, route := range routes {
		if f.routeClear(f.pos, route) {
			var total float64
			for _, wp := range route {
				d, _ := f.walkSegment(wp)
				total += d
			}
			return total, false
		}
	}
	return f.walkSegment(target)
}

// Guide returns the compass direction and distance from the player to
// target. The direction is "here" when the player is already within one
// unit.
func (f *Field) Guide(target Position) (string, float64) {
	dist := Distance(f.pos, target)
	if dist < 1 {
		return "here", dist
	}
	return Compass(target.X-f.pos.X, target.Z-f.pos.Z), dist
}

// Compass names the 8-way direction of the vector (dx, dz).
func Compass(dx, dz float64) string {
	// Angle measured from north (negative Z), clockwise toward east.
	angle := math.Atan2(dx, -dz) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}
	names := []string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}
	idx := int(math.Floor((angle+22.5)/45)) % 8
	return names[idx]
}

func (f *Field) walkSegment(target Position) (float64, bool) {
	target = f.zones.Bounds.Clamp(target)
	start := f.pos
	dist := Distance(start, target)
	if dist == 0 {
		return 0, false
	}
	steps := int(math.Ceil(dist / stepSize))
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		next := Position{X: start.X + (target.X-start.X)*t, Z: start.Z + (target.Z-start.Z)*t}
		if f.blocked(next) {
			return Distance(start, f.pos), true
		}
		f.pos = next
	}
	return dist, false
}

func (f *Field) routeClear(from Position, route []Position) bool {
	cur := from
	for _, wp := range route {
		dist := Distance(cur, wp)
		steps := int(math.Ceil(dist / stepSize))
		for i := 1; i <= steps; i++ {
			t := float64(i) / float64(steps)
			p := Position{X: cur.X + (wp.X-cur.X)*t, Z: cur.Z + (wp.Z-cur.Z)*t}
			if f.blocked(p) {
				return false
			}
		}
		cur = wp
	}
	return true
}

func (f *Field) blocked(p Position) bool {
	for _, r := range f.obstacles {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// approach swaps a target inside an obstacle for the nearest point just
// outside it, seen from the player.
func (f *Field) approach(target Position) Position {
	for _, r := range f.obstacles {
		if !r.Contains(target) {
			continue
		}
		grown := r.Grow(approachMargin)
		p := grown.Clamp(f.pos)
		if grown.Contains(p) {
			// Player is inside the margin band already; stay put.
			return f.pos
		}
		return p
	}
	return target
}

// Anchor is a named point of interest. Solid anchors are measured to the
// edge of their footprint rather than their center.
type Anchor struct {
	ID    string
	At    Position
	Area  Rect
	Solid bool
}

// DistanceFrom returns the distance from p to the anchor.
func (a Anchor) DistanceFrom(p Position) float64 {
	if !a.Solid {
		return Distance(p, a.At)
	}
	return Distance(p, a.Area.Clamp(p))
}

// Nearest returns the closest anchor within the interact radius. Ties go
// to the earlier anchor.
func (f *Field) Nearest(anchors []Anchor) (Anchor, float64, bool) {
	var (
		best     Anchor
		bestDist = math.Inf(1)
		found    bool
	)
	for _, a := range anchors {
		d := a.DistanceFrom(f.pos)
		if d <= f.zones.InteractRadius && d < bestDist {
			best, bestDist, found = a, d, true
		}
	}
	return best, bestDist, found
}
