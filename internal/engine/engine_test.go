package engine

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/ivlev/gallery3d/internal/config"
	"github.com/ivlev/gallery3d/internal/gallery"
	"github.com/ivlev/gallery3d/internal/loader"
	"github.com/ivlev/gallery3d/internal/scene"
)

type recordingRenderer struct {
	frames [][]Surface
	closed int
	err    error
}

func (r *recordingRenderer) Draw(f *Frame) error {
	r.frames = append(r.frames, append([]Surface(nil), f.Surfaces...))
	return r.err
}

func (r *recordingRenderer) Close() error {
	r.closed++
	return nil
}

type inputFunc func(g *Gallery)

func (f inputFunc) Poll(g *Gallery) { f(g) }

func testTextures(n int) []loader.Texture {
	textures := make([]loader.Texture, n)
	for i := range textures {
		w := 100 + 50*(i%3)
		img := image.NewRGBA(image.Rect(0, 0, w, 100))
		textures[i] = loader.Texture{Ref: "test", Image: img, Width: w, Height: 100}
	}
	return textures
}

func newTestGallery(t *testing.T, images int) (*Gallery, *recordingRenderer, *gallery.ManualClock) {
	t.Helper()
	r := &recordingRenderer{}
	clock := gallery.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	g, err := New(testTextures(images), config.Default(), r, clock)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return g, r, clock
}

func TestNewWithoutRenderer(t *testing.T) {
	_, err := New(testTextures(3), config.Default(), nil, nil)
	if !errors.Is(err, ErrNoSurface) {
		t.Fatalf("Expected ErrNoSurface, got %v", err)
	}
}

func TestTickWithoutImages(t *testing.T) {
	g, r, _ := newTestGallery(t, 0)
	for i := 0; i < 3; i++ {
		if err := g.Tick(); err != nil {
			t.Fatalf("Tick %d failed: %v", i, err)
		}
	}
	if len(r.frames) != 3 {
		t.Fatalf("Expected 3 drawn frames, got %d", len(r.frames))
	}
	if len(r.frames[2]) != 0 {
		t.Errorf("Expected empty frame, got %d surfaces", len(r.frames[2]))
	}
}

func TestVisibleCountClampedToImages(t *testing.T) {
	g, _, _ := newTestGallery(t, 5)
	if got := len(g.Snapshot()); got != 5 {
		t.Errorf("Expected 5 slots for 5 images, got %d", got)
	}
}

func TestTickWritesUniforms(t *testing.T) {
	g, r, clock := newTestGallery(t, 20)
	clock.Advance(500 * time.Millisecond)
	if err := g.Tick(); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}

	mapper := gallery.NewMapper(g.Config())
	velocity := g.Controller().State().Velocity
	frame := r.frames[0]
	if len(frame) != 12 {
		t.Fatalf("Expected 12 surfaces, got %d", len(frame))
	}

	for i, s := range frame {
		if s.Time != 0.5 {
			t.Errorf("Surface %d: expected time 0.5, got %f", i, s.Time)
		}
		if s.ScrollForce != velocity {
			t.Errorf("Surface %d: scroll force %f != velocity %f", i, s.ScrollForce, velocity)
		}
		opacity, blur := mapper.Map(s.Slot.Depth, g.Config().DepthRange)
		if s.Opacity != opacity || s.BlurAmount != blur {
			t.Errorf("Surface %d: got (%f, %f), mapper says (%f, %f)", i, s.Opacity, s.BlurAmount, opacity, blur)
		}
		if s.Texture == nil || s.TextureIndex != s.Slot.ImageIndex {
			t.Errorf("Surface %d: texture not bound to image %d", i, s.Slot.ImageIndex)
			continue
		}
		w, h := scene.PlaneSize(s.Texture.Aspect())
		if s.Width != w || s.Height != h {
			t.Errorf("Surface %d: size %fx%f, expected %fx%f", i, s.Width, s.Height, w, h)
		}
		if s.Center.Z != s.Slot.WorldZ(g.Config().DepthRange) {
			t.Errorf("Surface %d: center z %f does not follow depth", i, s.Center.Z)
		}
	}
}

func TestHoverPicksNearest(t *testing.T) {
	g, r, _ := newTestGallery(t, 12)
	if err := g.Tick(); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}

	prev := r.frames[0]
	target := -1
	for i, s := range prev {
		if s.Center.Z < -5 {
			target = i
			break
		}
	}
	if target < 0 {
		t.Fatal("No surface in front of the camera")
	}

	cam := scene.DefaultCamera(1)
	px, py, ok := cam.Project(prev[target].Center, 100, 100)
	if !ok {
		t.Fatal("Target does not project")
	}
	nx, ny := scene.PointerNDC(px, py, 100, 100)
	g.SetPointer(nx, ny)

	quads := make([]scene.Quad, len(prev))
	for i := range prev {
		quads[i] = prev[i].Quad()
	}
	want := scene.Nearest(cam.Ray(nx, ny), quads)

	if err := g.Tick(); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	hovered := 0
	for i, s := range r.frames[1] {
		if s.IsHovered {
			hovered++
			if i != want {
				t.Errorf("Hovered surface %d, nearest is %d", i, want)
			}
		}
	}
	if hovered != 1 {
		t.Errorf("Expected exactly one hovered surface, got %d", hovered)
	}

	g.ClearPointer()
	if err := g.Tick(); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	for i, s := range r.frames[2] {
		if s.IsHovered {
			t.Errorf("Surface %d hovered without a pointer", i)
		}
	}
}

func TestCloseStopsTicks(t *testing.T) {
	g, r, _ := newTestGallery(t, 4)
	if err := g.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}
	if r.closed != 1 {
		t.Errorf("Renderer closed %d times", r.closed)
	}
	if err := g.Tick(); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if len(r.frames) != 0 {
		t.Errorf("Closed gallery drew %d frames", len(r.frames))
	}
}

func TestDrawErrorIsReturned(t *testing.T) {
	g, r, _ := newTestGallery(t, 4)
	r.err = errors.New("lost device")
	if err := g.Tick(); !errors.Is(err, r.err) {
		t.Errorf("Expected wrapped draw error, got %v", err)
	}
}

func TestRunWithStepScheduler(t *testing.T) {
	g, r, clock := newTestGallery(t, 12)
	sched := StepScheduler{Clock: clock, Step: 16 * time.Millisecond, Frames: 30}

	if err := g.Run(context.Background(), sched); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if g.FrameCount() != 30 || len(r.frames) != 30 {
		t.Errorf("Expected 30 frames, got %d (%d drawn)", g.FrameCount(), len(r.frames))
	}
	if g.Elapsed() != 30*16*time.Millisecond {
		t.Errorf("Unexpected elapsed time %v", g.Elapsed())
	}

	// Autoplay keeps the gallery moving without any input.
	if g.Controller().State().Velocity <= 0 {
		t.Error("Velocity should be positive under autoplay")
	}
}

func TestRunStopsOnClose(t *testing.T) {
	g, r, clock := newTestGallery(t, 6)
	g.AddInput(inputFunc(func(g *Gallery) {
		if len(r.frames) == 3 {
			g.Close()
		}
	}))

	err := g.Run(context.Background(), StepScheduler{Clock: clock, Frames: 100})
	if err != nil {
		t.Fatalf("Run should end cleanly on close, got %v", err)
	}
	if len(r.frames) != 3 {
		t.Errorf("Expected 3 frames before close, got %d", len(r.frames))
	}
}

func TestRunCancelled(t *testing.T) {
	g, _, clock := newTestGallery(t, 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx, StepScheduler{Clock: clock}); err != nil {
		t.Errorf("Cancelled run should not fail, got %v", err)
	}
	if g.FrameCount() != 0 {
		t.Errorf("Cancelled run drew %d frames", g.FrameCount())
	}
}

func TestInputReachesController(t *testing.T) {
	g, _, _ := newTestGallery(t, 6)
	g.AddInput(inputFunc(func(g *Gallery) {
		g.Controller().Wheel(100)
	}))
	if err := g.Tick(); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	st := g.Controller().State()
	if st.Autoplay {
		t.Error("Wheel input should stop autoplay")
	}
	if st.Velocity <= 0.9 {
		t.Errorf("Expected damped wheel velocity near 0.95, got %f", st.Velocity)
	}
}

func TestTickerScheduler(t *testing.T) {
	ticks := 0
	sched := TickerScheduler{FPS: 500, Frames: 4}
	if err := sched.Run(context.Background(), func() error { ticks++; return nil }); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ticks != 4 {
		t.Errorf("Expected 4 ticks, got %d", ticks)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ticks = 0
	err := TickerScheduler{FPS: 1}.Run(ctx, func() error { ticks++; return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if ticks != 0 {
		t.Errorf("Cancelled scheduler ticked %d times", ticks)
	}

	stop := errors.New("stop")
	ticks = 0
	err = TickerScheduler{FPS: 500}.Run(context.Background(), func() error {
		ticks++
		if ticks == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || ticks != 2 {
		t.Errorf("Expected the tick error after 2 ticks, got %v after %d", err, ticks)
	}
}
