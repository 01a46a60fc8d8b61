package gallery

import "math"

// TimeScale converts velocity·seconds into depth units.
const TimeScale = 10.0

// Cycler moves slots along the depth axis and swaps their images on wraps.
type Cycler struct {
	DepthRange   float64
	TimeScale    float64
	VisibleCount int
	TotalImages  int
}

func NewCycler(depthRange float64, visibleCount, totalImages int) Cycler {
	return Cycler{
		DepthRange:   depthRange,
		TimeScale:    TimeScale,
		VisibleCount: visibleCount,
		TotalImages:  totalImages,
	}
}

// ImageAdvance is how many images a slot skips per forward wrap.
// When visibleCount is a multiple of totalImages the fallback is a full
// cycle, which leaves the image unchanged.
func (c Cycler) ImageAdvance() int {
	if c.TotalImages <= 0 {
		return 0
	}
	advance := c.VisibleCount % c.TotalImages
	if advance == 0 {
		advance = c.TotalImages
	}
	return advance
}

// Wraps counts how many times a slot crossed the depth range in one step.
type Wraps struct {
	Forward  float64
	Backward float64
}

// Advance applies one frame of movement to s.
func (c Cycler) Advance(s *Slot, velocity, dt float64) Wraps {
	var w Wraps
	r := c.DepthRange
	if r <= 0 {
		return w
	}

	raw := s.Depth + velocity*dt*c.TimeScale
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		raw = s.Depth
	}

	if raw >= r {
		w.Forward = math.Floor(raw / r)
		raw -= r * w.Forward
	} else if raw < 0 {
		w.Backward = math.Ceil(-raw / r)
		raw += r * w.Backward
	}

	total := c.TotalImages
	advance := c.ImageAdvance()
	if total > 0 && advance > 0 {
		if w.Forward > 0 {
			s.ImageIndex = wrapIndex(s.ImageIndex, shift(w.Forward, advance, total), total)
		}
		if w.Backward > 0 {
			s.ImageIndex = wrapIndex(s.ImageIndex, -shift(w.Backward, advance, total), total)
		}
	}

	s.Depth = normalizeDepth(raw, r)
	return w
}

// shift reduces wraps·advance modulo total without overflowing int for
// very large wrap counts.
func shift(wraps float64, advance, total int) int {
	n := float64(total)
	return int(math.Mod(math.Mod(wraps, n)*float64(advance), n))
}

func wrapIndex(index, delta, total int) int {
	return ((index+delta)%total + total) % total
}

func normalizeDepth(d, r float64) float64 {
	if d >= 0 && d < r {
		return d
	}
	d = math.Mod(math.Mod(d, r)+r, r)
	if d >= r || math.IsNaN(d) {
		return 0
	}
	return d
}
