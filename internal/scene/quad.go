package scene

import "math"

// Quad is an axis-aligned plane facing the camera.
type Quad struct {
	Center        Vec3
	Width, Height float64
}

// PlaneSize returns the quad size for a texture of the given aspect ratio:
// the short side is 2 world units.
func PlaneSize(aspect float64) (w, h float64) {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return 1, 1
	}
	if aspect > 1 {
		return 2 * aspect, 2
	}
	return 2, 2 / aspect
}

// Intersect returns the ray distance to q, if the ray hits it in front of
// the origin.
func (q Quad) Intersect(r Ray) (float64, bool) {
	if r.Dir.Z == 0 {
		return 0, false
	}
	t := (q.Center.Z - r.Origin.Z) / r.Dir.Z
	if t <= 0 {
		return 0, false
	}
	p := r.Origin.Add(r.Dir.Mul(t))
	if math.Abs(p.X-q.Center.X) > q.Width/2 || math.Abs(p.Y-q.Center.Y) > q.Height/2 {
		return 0, false
	}
	return t, true
}

// Nearest returns the index of the closest quad hit by r, or -1.
func Nearest(r Ray, quads []Quad) int {
	best := -1
	bestT := math.Inf(1)
	for i, q := range quads {
		if t, ok := q.Intersect(r); ok && t < bestT {
			best, bestT = i, t
		}
	}
	return best
}
