package scene

import "math"

// Camera is a perspective camera at the origin looking down -Z.
type Camera struct {
	FOVYDeg float64
	Aspect  float64
	Near    float64
	Far     float64
}

func DefaultCamera(aspect float64) Camera {
	if aspect <= 0 {
		aspect = 1
	}
	return Camera{FOVYDeg: 55, Aspect: aspect, Near: 0.1, Far: 1000}
}

func (c Camera) tanHalf() float64 {
	return math.Tan(c.FOVYDeg * math.Pi / 180 / 2)
}

// Ray is a half line from Origin along the unit vector Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// Ray returns the ray through a point in normalized device coordinates,
// x and y in [-1, 1] with +y up.
func (c Camera) Ray(ndcX, ndcY float64) Ray {
	th := c.tanHalf()
	dir := V3(ndcX*th*c.Aspect, ndcY*th, -1).Normalize()
	return Ray{Dir: dir}
}

// Project maps a world point to pixel coordinates of a w×h target. ok is
// false for points outside the near/far range.
func (c Camera) Project(p Vec3, w, h int) (x, y float64, ok bool) {
	dist := -p.Z
	if dist < c.Near || dist > c.Far {
		return 0, 0, false
	}
	th := c.tanHalf()
	ndcX := p.X / (dist * th * c.Aspect)
	ndcY := p.Y / (dist * th)
	x = (ndcX + 1) / 2 * float64(w)
	y = (1 - ndcY) / 2 * float64(h)
	return x, y, true
}

// PointerNDC converts a pixel position on a w×h surface into NDC.
func PointerNDC(px, py float64, w, h int) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return px/float64(w)*2 - 1, -(py/float64(h)*2 - 1)
}
