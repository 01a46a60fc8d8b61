package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"sort"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/gallery3d/internal/engine"
	"github.com/ivlev/gallery3d/internal/scene"
	"github.com/ivlev/gallery3d/internal/system"
)

// Headless composites frames in software, planes flat at their center depth.
type Headless struct {
	Width, Height int
	Background    color.RGBA
	Sink          func(img *image.RGBA) error // frame is recycled after the call
	SnapshotPath  string                      // PNG of the last frame, written on Close
	Pool          *system.ImagePool

	frame *image.RGBA
	order []int
	drawn int
}

func NewHeadless(width, height int) *Headless {
	return &Headless{
		Width:      width,
		Height:     height,
		Background: color.RGBA{R: 10, G: 10, B: 10, A: 255},
		Pool:       system.SharedPool(),
	}
}

func (h *Headless) pool() *system.ImagePool {
	if h.Pool == nil {
		return system.SharedPool()
	}
	return h.Pool
}

// Frame returns the last composed frame, nil before the first Draw.
func (h *Headless) Frame() *image.RGBA {
	return h.frame
}

// Drawn is the number of planes composited in the last frame.
func (h *Headless) Drawn() int {
	return h.drawn
}

func (h *Headless) Draw(f *engine.Frame) error {
	if h.Width <= 0 || h.Height <= 0 {
		return engine.ErrNoSurface
	}
	pool := h.pool()
	if h.frame != nil {
		pool.Put(h.frame)
	}
	h.frame = pool.Get(image.Rect(0, 0, h.Width, h.Height))
	xdraw.Draw(h.frame, h.frame.Rect, &image.Uniform{C: h.Background}, image.Point{}, xdraw.Src)

	// Back to front: the most negative z is the farthest plane.
	h.order = h.order[:0]
	for i := range f.Surfaces {
		h.order = append(h.order, i)
	}
	sort.SliceStable(h.order, func(a, b int) bool {
		return f.Surfaces[h.order[a]].Center.Z < f.Surfaces[h.order[b]].Center.Z
	})

	h.drawn = 0
	for _, i := range h.order {
		if h.drawSurface(f, &f.Surfaces[i]) {
			h.drawn++
		}
	}

	if h.Sink != nil {
		if err := h.Sink(h.frame); err != nil {
			return fmt.Errorf("frame sink: %w", err)
		}
	}
	return nil
}

func (h *Headless) drawSurface(f *engine.Frame, s *engine.Surface) bool {
	if s.Opacity <= 0 || s.Texture == nil || s.Texture.Image == nil {
		return false
	}

	q := s.Quad()
	tl := q.Center.Add(scene.V3(-q.Width/2, q.Height/2, 0))
	br := q.Center.Add(scene.V3(q.Width/2, -q.Height/2, 0))
	x0, y0, ok0 := f.Camera.Project(tl, h.Width, h.Height)
	x1, y1, ok1 := f.Camera.Project(br, h.Width, h.Height)
	if !ok0 || !ok1 {
		return false
	}

	dr := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	clip := dr.Intersect(h.frame.Rect)
	if clip.Empty() {
		return false
	}

	pool := h.pool()
	tmp := pool.Get(image.Rect(0, 0, clip.Dx(), clip.Dy()))
	defer pool.Put(tmp)
	clear(tmp.Pix)

	src := s.Texture.Image
	xdraw.ApproxBiLinear.Scale(tmp, dr.Sub(clip.Min), src, src.Bounds(), xdraw.Src, nil)
	blur(tmp, BlurSigma(s.BlurAmount, dr.Dx()))

	lift := math.Abs(s.ScrollForce) * 0.005
	if s.IsHovered {
		lift += 0.04
	}
	brighten(tmp, lift)

	alpha := uint8(math.Round(clamp01(s.Opacity) * 255))
	xdraw.DrawMask(h.frame, clip, tmp, image.Point{}, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, xdraw.Over)
	return true
}

// brighten adds v of full scale to the premultiplied color channels, never
// past alpha.
func brighten(img *image.RGBA, v float64) {
	if v <= 0 {
		return
	}
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := float64(img.Pix[i+3])
		add := v * a
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = uint8(math.Min(a, float64(img.Pix[i+c])+add))
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Close writes the snapshot and returns the frame buffer to the pool.
func (h *Headless) Close() error {
	if h.frame == nil {
		return nil
	}
	defer func() {
		h.pool().Put(h.frame)
		h.frame = nil
	}()

	if h.SnapshotPath == "" {
		return nil
	}
	out, err := os.Create(h.SnapshotPath)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := png.Encode(out, h.frame); err != nil {
		out.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return out.Close()
}
