package scene

import (
	"math"
	"testing"
)

func TestRayThroughCenterHitsQuad(t *testing.T) {
	cam := DefaultCamera(16.0 / 9.0)
	r := cam.Ray(0, 0)
	if math.Abs(r.Dir.Z+1) > 1e-12 {
		t.Fatalf("center ray should look down -Z, got %+v", r.Dir)
	}

	q := Quad{Center: V3(0, 0, -10), Width: 2, Height: 2}
	dist, ok := q.Intersect(r)
	if !ok || math.Abs(dist-10) > 1e-9 {
		t.Errorf("Expected hit at 10, got %f (%v)", dist, ok)
	}

	behind := Quad{Center: V3(0, 0, 5), Width: 2, Height: 2}
	if _, ok := behind.Intersect(r); ok {
		t.Error("Quad behind the camera must not be hit")
	}

	aside := Quad{Center: V3(5, 0, -10), Width: 2, Height: 2}
	if _, ok := aside.Intersect(r); ok {
		t.Error("Quad off the ray must not be hit")
	}
}

func TestNearest(t *testing.T) {
	r := DefaultCamera(1).Ray(0, 0)
	quads := []Quad{
		{Center: V3(0, 0, -20), Width: 2, Height: 2},
		{Center: V3(0, 0, -5), Width: 2, Height: 2},
		{Center: V3(0, 0, 3), Width: 2, Height: 2},
		{Center: V3(9, 9, -1), Width: 2, Height: 2},
	}
	if got := Nearest(r, quads); got != 1 {
		t.Errorf("Expected nearest quad 1, got %d", got)
	}
	if got := Nearest(r, nil); got != -1 {
		t.Errorf("Expected -1 without quads, got %d", got)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	cam := DefaultCamera(2)
	x, y, ok := cam.Project(V3(0, 0, -10), 800, 400)
	if !ok || x != 400 || y != 200 {
		t.Errorf("Expected center 400,200 got %f,%f (%v)", x, y, ok)
	}

	// A point that projects to the pointer must lie on the pointer ray.
	p := V3(1.5, -0.75, -6)
	px, py, _ := cam.Project(p, 800, 400)
	nx, ny := PointerNDC(px, py, 800, 400)
	r := cam.Ray(nx, ny)
	onRay := r.Dir.Mul(6 / -r.Dir.Z)
	if onRay.Sub(p).Len() > 1e-9 {
		t.Errorf("Ray misses projected point: %+v vs %+v", onRay, p)
	}

	if _, _, ok := cam.Project(V3(0, 0, 1), 800, 400); ok {
		t.Error("Point behind the camera must not project")
	}
}

func TestPlaneSize(t *testing.T) {
	tests := []struct {
		aspect float64
		w, h   float64
	}{
		{2, 4, 2},
		{0.5, 2, 4},
		{1, 2, 2},
		{0, 1, 1},
	}
	for _, tt := range tests {
		w, h := PlaneSize(tt.aspect)
		if w != tt.w || h != tt.h {
			t.Errorf("aspect %.2f: expected %.1fx%.1f, got %.1fx%.1f", tt.aspect, tt.w, tt.h, w, h)
		}
	}
}

func TestGrid(t *testing.T) {
	g := NewGrid(GridSegments)
	if len(g.Local) != 33*33 {
		t.Errorf("Expected %d vertices, got %d", 33*33, len(g.Local))
	}
	if len(g.Indices) != 32*32*6 {
		t.Errorf("Expected %d indices, got %d", 32*32*6, len(g.Indices))
	}
	for _, i := range g.Indices {
		if int(i) >= len(g.Local) {
			t.Fatalf("index %d out of range", i)
		}
	}
	if g.Local[0] != V3(-0.5, 0.5, 0) || g.UV[0] != [2]float64{0, 0} {
		t.Errorf("Unexpected first vertex %+v uv %v", g.Local[0], g.UV[0])
	}
}

func TestDisplacement(t *testing.T) {
	still := Displacement{}
	if still.Offset(V3(0.4, 0.3, 0)) != 0 {
		t.Error("No force and no hover must not displace")
	}

	pushed := Displacement{ScrollForce: 1}
	if pushed.Offset(V3(0.5, 0.5, 0)) <= pushed.Offset(V3(0.1, 0.1, 0)) {
		t.Error("Curve must grow towards the edges")
	}

	hovered := Displacement{Hovered: true, Time: 0.3}
	if hovered.Offset(V3(-0.5, 0, 0)) != 0 {
		t.Error("Flag wave must be anchored at the left edge")
	}
}

func TestProjectGrid(t *testing.T) {
	cam := DefaultCamera(1)
	g := NewGrid(4)
	q := Quad{Center: V3(0, 0, -10), Width: 2, Height: 2}

	pts, ok := cam.ProjectGrid(g, q, Displacement{}, 100, 100, nil)
	if !ok || len(pts) != len(g.Local) {
		t.Fatalf("Expected %d projected points, got %d (%v)", len(g.Local), len(pts), ok)
	}
	center := pts[len(pts)/2]
	if math.Abs(float64(center[0])-50) > 1e-3 || math.Abs(float64(center[1])-50) > 1e-3 {
		t.Errorf("Grid center should land on the screen center, got %v", center)
	}
	if pts[0][0] >= center[0] || pts[0][1] >= center[1] {
		t.Errorf("First vertex should be top-left of the center, got %v", pts[0])
	}

	near := Quad{Center: V3(0, 0, -0.05), Width: 2, Height: 2}
	if _, ok := cam.ProjectGrid(g, near, Displacement{}, 100, 100, pts); ok {
		t.Error("Plane closer than the near plane must not project")
	}
}
