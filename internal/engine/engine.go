package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ivlev/gallery3d/internal/config"
	"github.com/ivlev/gallery3d/internal/gallery"
	"github.com/ivlev/gallery3d/internal/loader"
	"github.com/ivlev/gallery3d/internal/scene"
)

var (
	// ErrNoSurface is returned when the gallery has nowhere to draw.
	ErrNoSurface = errors.New("engine: no rendering surface")
	// ErrClosed is returned by Tick after Close.
	ErrClosed = errors.New("engine: gallery closed")
)

// Renderer draws frames onto a surface.
type Renderer interface {
	Draw(f *Frame) error
	Close() error
}

// Scheduler calls tick once per frame until ctx is done, tick fails or the
// surface goes away.
type Scheduler interface {
	Run(ctx context.Context, tick func() error) error
}

// InputSource feeds pending input into the gallery at the start of a tick.
type InputSource interface {
	Poll(g *Gallery)
}

// Gallery is the per-frame render pipeline: input, velocity, depth, visual
// parameters, hover and draw.
type Gallery struct {
	mu sync.Mutex

	cfg      config.Config
	textures []loader.Texture
	slots    []gallery.Slot
	cycler   gallery.Cycler
	mapper   gallery.Mapper
	ctrl     *gallery.Controller
	clock    gallery.Clock
	start    time.Time
	renderer Renderer
	inputs   []InputSource

	camera        scene.Camera
	pointerX      float64
	pointerY      float64
	pointerActive bool

	frame  Frame
	quads  []scene.Quad
	closed bool
}

// New builds a gallery over the loaded textures. cfg is normalized against
// the texture count, so visibleCount never exceeds it. An empty texture
// list is valid and renders empty frames.
func New(textures []loader.Texture, cfg config.Config, r Renderer, clock gallery.Clock) (*Gallery, error) {
	if r == nil {
		return nil, ErrNoSurface
	}
	if clock == nil {
		clock = gallery.SystemClock{}
	}

	cfg = cfg.Normalize(len(textures))
	slots := gallery.NewSlots(cfg.VisibleCount, len(textures), cfg.DepthRange)

	g := &Gallery{
		cfg:           cfg,
		textures:      textures,
		slots:         slots,
		cycler:        gallery.NewCycler(cfg.DepthRange, len(slots), len(textures)),
		mapper:        gallery.NewMapper(cfg),
		ctrl:          gallery.NewController(cfg.Speed, cfg.MaxVelocity, clock),
		clock:         clock,
		start:         clock.Now(),
		renderer:      r,
		camera:        scene.DefaultCamera(1),
		pointerActive: true,
		frame:         Frame{Surfaces: make([]Surface, len(slots))},
		quads:         make([]scene.Quad, len(slots)),
	}

	for i := range g.frame.Surfaces {
		g.frame.Surfaces[i].Slot = slots[i]
		g.placeSurface(i)
	}

	Logger().Info("gallery created", "images", len(textures), "slots", len(slots), "depthRange", cfg.DepthRange)
	return g, nil
}

// Controller exposes the interaction controller to input sources.
func (g *Gallery) Controller() *gallery.Controller {
	return g.ctrl
}

// Config returns the normalized configuration.
func (g *Gallery) Config() config.Config {
	return g.cfg
}

// SetPointer moves the hover pointer, in NDC with +y up.
func (g *Gallery) SetPointer(ndcX, ndcY float64) {
	g.mu.Lock()
	g.pointerX, g.pointerY = ndcX, ndcY
	g.pointerActive = true
	g.mu.Unlock()
}

// ClearPointer disables hover until the next SetPointer.
func (g *Gallery) ClearPointer() {
	g.mu.Lock()
	g.pointerActive = false
	g.mu.Unlock()
}

// SetAspect updates the camera on surface resize.
func (g *Gallery) SetAspect(aspect float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if aspect <= 0 || aspect == g.camera.Aspect {
		return
	}
	g.camera = scene.DefaultCamera(aspect)
	Logger().Info("surface resized", "aspect", aspect)
}

// AddInput registers an input source polled at the start of every tick.
func (g *Gallery) AddInput(in InputSource) {
	g.mu.Lock()
	g.inputs = append(g.inputs, in)
	g.mu.Unlock()
}

// Elapsed is the time since the gallery was created, per its clock.
func (g *Gallery) Elapsed() time.Duration {
	return g.clock.Now().Sub(g.start)
}

// FrameCount is the number of frames drawn so far.
func (g *Gallery) FrameCount() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frame.Number
}

// Snapshot returns a copy of the slots after the last tick.
func (g *Gallery) Snapshot() []gallery.Slot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gallery.Slot(nil), g.slots...)
}

// Tick runs one frame: (a) velocity, (b) shared uniforms, (c) hover,
// (d) depth cycling and visual mapping, (e) draw.
func (g *Gallery) Tick() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	inputs := g.inputs
	g.mu.Unlock()

	// Inputs call back into SetPointer and the controller.
	for _, in := range inputs {
		in.Poll(g)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}

	dt := g.cfg.FrameDelta

	// (a)
	g.ctrl.Poll()
	g.ctrl.Step(dt)
	velocity := g.ctrl.State().Velocity

	// (b)
	elapsed := g.clock.Now().Sub(g.start)
	seconds := elapsed.Seconds()
	surfaces := g.frame.Surfaces
	for i := range surfaces {
		surfaces[i].Time = seconds
		surfaces[i].ScrollForce = velocity
	}

	// (c) against the placement of the previous frame
	hovered := -1
	if g.pointerActive && len(surfaces) > 0 {
		for i := range surfaces {
			g.quads[i] = surfaces[i].Quad()
		}
		hovered = scene.Nearest(g.camera.Ray(g.pointerX, g.pointerY), g.quads)
	}

	// (d)
	for i := range g.slots {
		s := &g.slots[i]
		g.cycler.Advance(s, velocity, dt)
		s.Hovered = i == hovered

		surfaces[i].Slot = *s
		surfaces[i].IsHovered = s.Hovered
		surfaces[i].Opacity, surfaces[i].BlurAmount = g.mapper.Map(s.Depth, g.cfg.DepthRange)
		g.placeSurface(i)
	}

	// (e)
	g.frame.Number++
	g.frame.Elapsed = elapsed
	g.frame.Camera = g.camera
	if err := g.renderer.Draw(&g.frame); err != nil {
		return fmt.Errorf("draw frame %d: %w", g.frame.Number, err)
	}
	return nil
}

// placeSurface binds the slot's current image and sizes the plane after it.
func (g *Gallery) placeSurface(i int) {
	surf := &g.frame.Surfaces[i]
	s := g.slots[i]

	surf.TextureIndex = s.ImageIndex
	surf.Texture = nil
	aspect := 0.0
	if s.ImageIndex >= 0 && s.ImageIndex < len(g.textures) {
		surf.Texture = &g.textures[s.ImageIndex]
		aspect = surf.Texture.Aspect()
	}
	surf.Width, surf.Height = scene.PlaneSize(aspect)
	surf.Center = scene.V3(s.Offset.X, s.Offset.Y, s.WorldZ(g.cfg.DepthRange))
}

// Run drives the gallery with sched until ctx is done or the gallery is
// closed. Neither counts as an error.
func (g *Gallery) Run(ctx context.Context, sched Scheduler) error {
	if sched == nil {
		return ErrNoSurface
	}
	Logger().Info("gallery started", "slots", len(g.slots))
	err := sched.Run(ctx, g.Tick)
	if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops the gallery and releases the renderer. It is safe to call more
// than once.
func (g *Gallery) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	frames := g.frame.Number
	g.mu.Unlock()

	Logger().Info("gallery closed", "frames", frames)
	return g.renderer.Close()
}
