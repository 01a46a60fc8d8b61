package gallery

import "github.com/ivlev/gallery3d/internal/config"

// Mapper turns normalized depth into opacity and blur, a cheap fog and
// focus cue for slots entering and leaving the visible depth window.
type Mapper struct {
	Fade config.FadeSettings
	Blur config.BlurSettings
}

func NewMapper(cfg config.Config) Mapper {
	return Mapper{Fade: cfg.FadeSettings, Blur: cfg.BlurSettings}
}

// Opacity is 0 outside the fade curves, 1 between them and linear on the ramps.
func (m Mapper) Opacity(nd float64) float64 {
	in, out := m.Fade.FadeIn, m.Fade.FadeOut
	opacity := 1.0

	switch {
	case inside(in, nd):
		opacity = progress(in, nd)
	case nd < in.Start:
		opacity = 0
	case inside(out, nd):
		opacity = 1 - progress(out, nd)
	case nd > out.End:
		opacity = 0
	}

	return clamp(opacity, 0, 1)
}

// BlurAmount is the inverse shape of Opacity scaled by MaxBlur: full blur at
// the edges of the range, none in the focus band.
func (m Mapper) BlurAmount(nd float64) float64 {
	in, out := m.Blur.BlurIn, m.Blur.BlurOut
	maxBlur := m.Blur.MaxBlur
	if maxBlur < 0 {
		maxBlur = 0
	}
	blur := 0.0

	switch {
	case inside(in, nd):
		blur = maxBlur * (1 - progress(in, nd))
	case nd < in.Start:
		blur = maxBlur
	case inside(out, nd):
		blur = maxBlur * progress(out, nd)
	case nd > out.End:
		blur = maxBlur
	}

	return clamp(blur, 0, maxBlur)
}

// Map returns (opacity, blur) for a depth inside [0, depthRange).
func (m Mapper) Map(depth, depthRange float64) (float64, float64) {
	nd := 0.0
	if depthRange > 0 {
		nd = depth / depthRange
	}
	return m.Opacity(nd), m.BlurAmount(nd)
}

func inside(c config.Curve, nd float64) bool {
	return nd >= c.Start && nd <= c.End
}

// progress is the position of nd on the ramp. A zero-width ramp is a step.
func progress(c config.Curve, nd float64) float64 {
	width := c.End - c.Start
	if width == 0 {
		return 1
	}
	return (nd - c.Start) / width
}

func clamp(v, lo, hi float64) float64 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
