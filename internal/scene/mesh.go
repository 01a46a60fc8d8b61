package scene

import "math"

// GridSegments is the subdivision of every gallery plane.
const GridSegments = 32

// Grid is a unit plane in [-0.5, 0.5]² split into segments×segments cells.
type Grid struct {
	Segments int
	Local    []Vec3 // z = 0
	UV       [][2]float64
	Indices  []uint16
}

func NewGrid(segments int) *Grid {
	if segments < 1 {
		segments = 1
	}
	n := segments + 1
	g := &Grid{
		Segments: segments,
		Local:    make([]Vec3, 0, n*n),
		UV:       make([][2]float64, 0, n*n),
		Indices:  make([]uint16, 0, segments*segments*6),
	}

	for iy := 0; iy < n; iy++ {
		v := float64(iy) / float64(segments)
		for ix := 0; ix < n; ix++ {
			u := float64(ix) / float64(segments)
			g.Local = append(g.Local, V3(u-0.5, 0.5-v, 0))
			g.UV = append(g.UV, [2]float64{u, v})
		}
	}

	for iy := 0; iy < segments; iy++ {
		for ix := 0; ix < segments; ix++ {
			a := uint16(iy*n + ix)
			b := a + 1
			c := a + uint16(n)
			d := c + 1
			g.Indices = append(g.Indices, a, c, b, b, c, d)
		}
	}
	return g
}

// Displacement drives the surface deformation of one plane.
type Displacement struct {
	ScrollForce float64
	Time        float64
	Hovered     bool
}

// Offset returns how far a local grid point is pushed away from the camera:
// a bowl that deepens with scroll force, cloth ripples on top of it, and a
// flag wave anchored at the left edge while the plane is hovered.
func (d Displacement) Offset(p Vec3) float64 {
	curveIntensity := d.ScrollForce * 0.3
	distanceFromCenter := math.Hypot(p.X, p.Y)
	curve := distanceFromCenter * distanceFromCenter * curveIntensity

	ripple1 := math.Sin(p.X*2+d.ScrollForce*3) * 0.02
	ripple2 := math.Sin(p.Y*2.5+d.ScrollForce*2) * 0.015
	cloth := (ripple1 + ripple2) * math.Abs(curveIntensity) * 2

	wave := 0.0
	if d.Hovered {
		dampening := smoothstep(-0.5, 0.5, p.X)
		wave = math.Sin(p.X*3+d.Time*8) * 0.1 * dampening
		wave += math.Sin(p.X*5+d.Time*12) * 0.03 * dampening
	}

	return curve + cloth + wave
}

// World places a local grid point of the quad q in world space.
func (d Displacement) World(q Quad, p Vec3) Vec3 {
	return V3(
		q.Center.X+p.X*q.Width,
		q.Center.Y+p.Y*q.Height,
		q.Center.Z+p.Z-d.Offset(p),
	)
}

// ProjectGrid projects every displaced vertex of g placed on q onto a w×h
// target, reusing dst. ok is false when any vertex leaves the view range;
// such a plane is not drawn.
func (c Camera) ProjectGrid(g *Grid, q Quad, d Displacement, w, h int, dst [][2]float32) ([][2]float32, bool) {
	dst = dst[:0]
	for _, p := range g.Local {
		x, y, ok := c.Project(d.World(q, p), w, h)
		if !ok {
			return dst, false
		}
		dst = append(dst, [2]float32{float32(x), float32(y)})
	}
	return dst, true
}
