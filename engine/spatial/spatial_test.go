package spatial

import (
	"math"
	"testing"
)

var (
	_ Query = Point{}
	_ Query = (*Field)(nil)
)

func altarRect() Rect { return Footprint(0, 0, 8, 8) }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestInNorth_Threshold(t *testing.T) {
	z := DefaultZones()
	tests := []struct {
		p    Position
		want bool
	}{
		{Position{Z: -12}, true},
		{Position{Z: -8.01}, true},
		{Position{Z: -8}, false},
		{Position{X: 15, Z: 0}, false},
		{Position{X: -15, Z: -9}, true},
	}
	for _, tt := range tests {
		if got := z.InNorth(tt.p); got != tt.want {
			t.Errorf("InNorth(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestDistanceToAltar(t *testing.T) {
	z := DefaultZones()
	if d := z.DistanceToAltar(Position{X: 3, Z: 4}); !near(d, 5) {
		t.Errorf("distance = %v, want 5", d)
	}
	if !z.NearAltar(12) {
		t.Error("12 should be within the altar radius")
	}
	if z.NearAltar(12.01) {
		t.Error("12.01 should be outside the altar radius")
	}
}

func TestPoint(t *testing.T) {
	p := Point{Zones: DefaultZones(), At: Position{X: 0, Z: -12}}
	if !p.InNorthZone() {
		t.Error("expected north")
	}
	if !near(p.DistanceToAltar(), 12) {
		t.Errorf("distance = %v", p.DistanceToAltar())
	}
}

func TestFootprintAndClamp(t *testing.T) {
	r := altarRect()
	if r.MinX != -4 || r.MaxZ != 4 {
		t.Errorf("footprint = %+v", r)
	}
	if r.Contains(Position{X: 4, Z: 0}) {
		t.Error("edge should not count as inside")
	}
	if got := r.Clamp(Position{X: 10, Z: -10}); got != (Position{X: 4, Z: -4}) {
		t.Errorf("clamp = %v", got)
	}
}

func TestCompass(t *testing.T) {
	tests := []struct {
		dx, dz float64
		want   string
	}{
		{0, -1, "north"},
		{1, 0, "east"},
		{0, 1, "south"},
		{-1, 0, "west"},
		{1, -1, "northeast"},
		{-1, 1, "southwest"},
		{0.2, -5, "north"},
	}
	for _, tt := range tests {
		if got := Compass(tt.dx, tt.dz); got != tt.want {
			t.Errorf("Compass(%v, %v) = %q, want %q", tt.dx, tt.dz, got, tt.want)
		}
	}
}

func TestDirection(t *testing.T) {
	d, ok := Direction("northeast")
	if !ok || !near(math.Hypot(d.X, d.Z), 1) || d.Z >= 0 {
		t.Errorf("northeast = %v, %v", d, ok)
	}
	if _, ok := Direction("up"); ok {
		t.Error("up is not a direction")
	}
}

func TestField_MoveStopsAtObstacle(t *testing.T) {
	f := NewField(DefaultZones(), Position{X: 0, Z: -12}, []Rect{altarRect()})
	dist, blocked := f.Move(0, 10)
	if !blocked {
		t.Fatal("expected the altar to block the walk")
	}
	if z := f.Position().Z; z > -4 || z < -4.5 {
		t.Errorf("stopped at z=%v, want just outside the altar", z)
	}
	if dist < 7.5 || dist > 8 {
		t.Errorf("distance = %v", dist)
	}
}

func TestField_MoveClampedToBounds(t *testing.T) {
	f := NewField(DefaultZones(), Position{X: 0, Z: -12}, nil)
	dist, blocked := f.Move(0, -100)
	if blocked {
		t.Error("bounds should clamp, not block")
	}
	if f.Position().Z != -18 || !near(dist, 6) {
		t.Errorf("pos = %v dist = %v", f.Position(), dist)
	}
}

func TestNewField_ClampsStart(t *testing.T) {
	f := NewField(DefaultZones(), Position{X: 30, Z: -30}, nil)
	if f.Position() != (Position{X: 18, Z: -18}) {
		t.Errorf("start = %v", f.Position())
	}
}

func TestField_WalkToDetoursAroundAltar(t *testing.T) {
	f := NewField(DefaultZones(), Position{X: -10, Z: -12}, []Rect{altarRect()})
	dist, blocked := f.WalkTo(Position{X: 10, Z: 12})
	if blocked {
		t.Fatal("expected an L-shaped detour")
	}
	if got := f.Position(); !near(got.X, 10) || !near(got.Z, 12) {
		t.Errorf("arrived at %v", got)
	}
	if !near(dist, 44) {
		t.Errorf("distance = %v, want 44", dist)
	}
}

func TestField_WalkToSolidTargetStopsOutside(t *testing.T) {
	f := NewField(DefaultZones(), Position{X: 0, Z: -12}, []Rect{altarRect()})
	_, blocked := f.WalkTo(Position{X: 0, Z: 0})
	if blocked {
		t.Fatal("approach should not be blocked")
	}
	got := f.Position()
	if !near(got.X, 0) || !near(got.Z, -4.5) {
		t.Errorf("arrived at %v, want (0, -4.5)", got)
	}
	if !f.Zones().NearAltar(f.DistanceToAltar()) {
		t.Error("should be within the altar radius")
	}
}

func TestField_Guide(t *testing.T) {
	f := NewField(DefaultZones(), Position{X: 0, Z: 0}, nil)
	dir, dist := f.Guide(Position{X: 0, Z: -12})
	if dir != "north" || !near(dist, 12) {
		t.Errorf("guide = %s %v", dir, dist)
	}
	if dir, _ := f.Guide(Position{X: 0.5, Z: 0}); dir != "here" {
		t.Errorf("guide = %s, want here", dir)
	}
}

func TestField_Place(t *testing.T) {
	f := NewField(DefaultZones(), Position{}, []Rect{altarRect()})
	f.Place(Position{X: 0, Z: -20})
	if f.Position() != (Position{X: 0, Z: -18}) {
		t.Errorf("placed at %v", f.Position())
	}
}

func TestNearest(t *testing.T) {
	anchors := []Anchor{
		{ID: "altar", At: Position{}, Area: altarRect(), Solid: true},
		{ID: "slaughter", At: Position{X: 0, Z: -12}},
	}
	tests := []struct {
		at   Position
		want string
		ok   bool
	}{
		{Position{X: 0, Z: -6}, "altar", true},
		{Position{X: 0, Z: -10}, "slaughter", true},
		{Position{X: 15, Z: 15}, "", false},
	}
	for _, tt := range tests {
		f := NewField(DefaultZones(), tt.at, nil)
		a, d, ok := f.Nearest(anchors)
		if ok != tt.ok || a.ID != tt.want {
			t.Errorf("Nearest at %v = %q (%v), want %q", tt.at, a.ID, ok, tt.want)
		}
		if ok && !near(d, 2) {
			t.Errorf("distance = %v, want 2", d)
		}
	}
}
