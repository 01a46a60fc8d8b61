package renderer

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/gallery3d/internal/engine"
	"github.com/ivlev/gallery3d/internal/loader"
	"github.com/ivlev/gallery3d/internal/scene"
	"github.com/ivlev/gallery3d/internal/system"
)

func solidTexture(c color.RGBA) *loader.Texture {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return &loader.Texture{Image: img, Width: 4, Height: 4}
}

func surface(tex *loader.Texture, z, opacity float64) engine.Surface {
	s := engine.Surface{Texture: tex, Center: scene.V3(0, 0, z), Width: 2, Height: 2}
	s.Opacity = opacity
	return s
}

func testFrame(surfaces ...engine.Surface) *engine.Frame {
	return &engine.Frame{Camera: scene.DefaultCamera(1), Surfaces: surfaces}
}

func TestHeadlessDrawsCenter(t *testing.T) {
	h := NewHeadless(64, 64)
	red := color.RGBA{R: 255, A: 255}

	if err := h.Draw(testFrame(surface(solidTexture(red), -10, 1))); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if h.Drawn() != 1 {
		t.Fatalf("Expected 1 plane drawn, got %d", h.Drawn())
	}
	if got := h.Frame().RGBAAt(32, 32); got != red {
		t.Errorf("Center pixel: expected %v, got %v", red, got)
	}
	if got := h.Frame().RGBAAt(0, 0); got != h.Background {
		t.Errorf("Corner pixel: expected background, got %v", got)
	}
}

func TestHeadlessSkipsInvisible(t *testing.T) {
	h := NewHeadless(64, 64)
	tex := solidTexture(color.RGBA{G: 255, A: 255})

	frame := testFrame(
		surface(tex, -10, 0),
		surface(tex, 5, 1),
		surface(nil, -10, 1),
	)
	if err := h.Draw(frame); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if h.Drawn() != 0 {
		t.Errorf("Expected nothing drawn, got %d planes", h.Drawn())
	}
}

func TestHeadlessBackToFront(t *testing.T) {
	h := NewHeadless(64, 64)
	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}

	// The near plane comes first in the slice but must end up on top.
	frame := testFrame(
		surface(solidTexture(blue), -5, 1),
		surface(solidTexture(red), -20, 1),
	)
	if err := h.Draw(frame); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if got := h.Frame().RGBAAt(32, 32); got != blue {
		t.Errorf("Expected the near plane on top, got %v", got)
	}
}

func TestHeadlessOpacity(t *testing.T) {
	h := NewHeadless(64, 64)
	h.Background = color.RGBA{A: 255}

	if err := h.Draw(testFrame(surface(solidTexture(color.RGBA{R: 255, G: 255, B: 255, A: 255}), -10, 0.5))); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	got := h.Frame().RGBAAt(32, 32)
	if got.R < 120 || got.R > 135 {
		t.Errorf("Expected half white over black, got %v", got)
	}
}

func TestHeadlessSinkAndSnapshot(t *testing.T) {
	h := NewHeadless(32, 16)
	h.SnapshotPath = filepath.Join(t.TempDir(), "last.png")
	frames := 0
	h.Sink = func(img *image.RGBA) error {
		frames++
		if img.Rect.Dx() != 32 || img.Rect.Dy() != 16 {
			t.Errorf("Unexpected frame bounds %v", img.Rect)
		}
		return nil
	}

	for i := 0; i < 3; i++ {
		if err := h.Draw(testFrame()); err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
	}
	if frames != 3 {
		t.Errorf("Expected 3 frames in the sink, got %d", frames)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(h.SnapshotPath)
	if err != nil {
		t.Fatalf("Snapshot missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Snapshot is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("Snapshot has bounds %v", img.Bounds())
	}
}

func TestHeadlessNoSurface(t *testing.T) {
	if err := NewHeadless(0, 0).Draw(testFrame()); err != engine.ErrNoSurface {
		t.Errorf("Expected ErrNoSurface, got %v", err)
	}
}

func TestBlur(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 9, 9))
	img.SetRGBA(4, 4, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	blur(img, BlurSigma(4, 256))

	center := img.RGBAAt(4, 4)
	if center.A == 0 || center.A == 255 {
		t.Errorf("Center should be spread out, got %v", center)
	}
	if img.RGBAAt(3, 3).A == 0 {
		t.Error("Diagonal neighbour should receive part of the point")
	}

	flat := image.NewRGBA(image.Rect(0, 0, 5, 5))
	for i := 0; i < len(flat.Pix); i += 4 {
		flat.Pix[i], flat.Pix[i+1], flat.Pix[i+2], flat.Pix[i+3] = 200, 100, 50, 255
	}
	blur(flat, 2)
	for _, p := range []image.Point{{0, 0}, {4, 2}, {2, 2}} {
		got := flat.RGBAAt(p.X, p.Y)
		if absDiff(got.R, 200) > 1 || absDiff(got.G, 100) > 1 || absDiff(got.B, 50) > 1 || got.A != 255 {
			t.Errorf("Uniform image must stay uniform at %v, got %v", p, got)
		}
	}
}

func TestBlurZeroSigmaKeepsPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	img.SetRGBA(1, 1, color.RGBA{R: 255, A: 255})
	blur(img, 0)
	if img.RGBAAt(1, 1).R != 255 || img.RGBAAt(0, 0).A != 0 {
		t.Errorf("Zero sigma must leave the image alone, got %v", img.RGBAAt(1, 1))
	}
}

func TestHeadlessBlurChangesOutput(t *testing.T) {
	checker := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := color.RGBA{A: 255}
			if (x+y)%2 == 0 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			checker.SetRGBA(x, y, c)
		}
	}
	tex := &loader.Texture{Image: checker, Width: 8, Height: 8}

	render := func(amount float64) *image.RGBA {
		h := NewHeadless(64, 64)
		// Close enough for a plane about 40px wide, so amount 8 is a radius 1 blur.
		s := surface(tex, -3, 1)
		s.BlurAmount = amount
		if err := h.Draw(testFrame(s)); err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		out := image.NewRGBA(h.Frame().Rect)
		copy(out.Pix, h.Frame().Pix)
		return out
	}

	sharp, blurred := render(0), render(8)
	diff := 0
	for i := range sharp.Pix {
		if sharp.Pix[i] != blurred.Pix[i] {
			diff++
		}
	}
	if diff == 0 {
		t.Error("Blurred plane is identical to the sharp one")
	}
}

func TestHeadlessReusesPooledBuffers(t *testing.T) {
	h := NewHeadless(64, 64)
	h.Pool = system.NewImagePool()
	tex := solidTexture(color.RGBA{R: 255, A: 255})

	for i := 0; i < 20; i++ {
		if err := h.Draw(testFrame(surface(tex, -10, 1))); err != nil {
			t.Fatalf("Draw %d failed: %v", i, err)
		}
	}
	allocs, reuses := h.Pool.Stats()
	t.Logf("pool: %d allocs, %d reuses", allocs, reuses)
	if reuses == 0 {
		t.Error("Expected frame and plane buffers to be reused across draws")
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestBlurRadius(t *testing.T) {
	tests := []struct {
		amount float64
		w      int
		want   int
	}{
		{0, 512, 0},
		{8, 512, 16},
		{4, 256, 4},
		{-1, 512, 0},
	}
	for _, tt := range tests {
		if got := BlurRadius(tt.amount, tt.w); got != tt.want {
			t.Errorf("BlurRadius(%.1f, %d) = %d, want %d", tt.amount, tt.w, got, tt.want)
		}
	}
}

func TestBlurSigma(t *testing.T) {
	tests := []struct {
		amount float64
		w      int
		want   float64
	}{
		{0, 512, 0},
		{-1, 512, 0},
		{0.25, 512, 0.8165}, // r = 1
		{4, 256, 2.5820},    // r = 4
		{8, 512, 9.5219},    // r = 16
	}
	for _, tt := range tests {
		if got := BlurSigma(tt.amount, tt.w); math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("BlurSigma(%.2f, %d) = %.4f, want %.4f", tt.amount, tt.w, got, tt.want)
		}
	}
}
