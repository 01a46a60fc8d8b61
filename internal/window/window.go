// Package window shows the gallery in a desktop window. It is the renderer,
// the scheduler and an input source of the gallery at once.
package window

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ivlev/gallery3d/internal/engine"
	"github.com/ivlev/gallery3d/internal/loader"
	"github.com/ivlev/gallery3d/internal/scene"
)

//go:embed surface.kage
var surfaceKage []byte

// Window is an ebiten game that draws the gallery frames.
type Window struct {
	Title         string
	Width, Height int
	FPS           int

	mu       sync.Mutex
	surfaces []engine.Surface
	camera   scene.Camera

	shader   *ebiten.Shader
	images   map[*loader.Texture]*ebiten.Image
	grid     *scene.Grid
	points   [][2]float32
	vertices []ebiten.Vertex
	order    []int

	ctx    context.Context
	tick   func() error
	input  input
	screen struct{ w, h int }
	closed bool
}

func New(title string, width, height, fps int) *Window {
	return &Window{
		Title:  title,
		Width:  width,
		Height: height,
		FPS:    fps,
		images: make(map[*loader.Texture]*ebiten.Image),
		grid:   scene.NewGrid(scene.GridSegments),
		camera: scene.DefaultCamera(float64(width) / float64(max(height, 1))),
	}
}

// Draw keeps a copy of the frame for the next screen refresh.
func (w *Window) Draw(f *engine.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return engine.ErrNoSurface
	}
	w.surfaces = append(w.surfaces[:0], f.Surfaces...)
	w.camera = f.Camera
	return nil
}

// Run opens the window and ticks once per ebiten update. It blocks until
// the window is closed or ctx is done.
func (w *Window) Run(ctx context.Context, tick func() error) error {
	shader, err := ebiten.NewShader(surfaceKage)
	if err != nil {
		return fmt.Errorf("compile surface shader: %w", err)
	}
	w.shader = shader
	w.ctx = ctx
	w.tick = tick

	fps := w.FPS
	if fps <= 0 {
		fps = 60
	}
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowSize(w.Width, w.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(fps)

	err = ebiten.RunGame(&game{w: w})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	for tex, img := range w.images {
		img.Deallocate()
		delete(w.images, tex)
	}
	if w.shader != nil {
		w.shader.Deallocate()
		w.shader = nil
	}
	return nil
}

func (w *Window) textureImage(t *loader.Texture) *ebiten.Image {
	if img, ok := w.images[t]; ok {
		return img
	}
	img := ebiten.NewImageFromImage(t.Image)
	w.images[t] = img
	return img
}

type game struct {
	w *Window
}

func (g *game) Update() error {
	if err := g.w.ctx.Err(); err != nil {
		return ebiten.Termination
	}
	if g.w.input.quit() {
		return ebiten.Termination
	}
	return g.w.tick()
}

func (g *game) Draw(screen *ebiten.Image) {
	w := g.w
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.shader == nil {
		return
	}

	bw, bh := screen.Bounds().Dx(), screen.Bounds().Dy()

	// No depth buffer: back to front.
	w.order = w.order[:0]
	for i := range w.surfaces {
		w.order = append(w.order, i)
	}
	sort.SliceStable(w.order, func(a, b int) bool {
		return w.surfaces[w.order[a]].Center.Z < w.surfaces[w.order[b]].Center.Z
	})

	for _, i := range w.order {
		w.drawSurface(screen, &w.surfaces[i], bw, bh)
	}
}

func (w *Window) drawSurface(screen *ebiten.Image, s *engine.Surface, bw, bh int) {
	if s.Opacity <= 0 || s.Texture == nil || s.Texture.Image == nil {
		return
	}

	var ok bool
	w.points, ok = w.camera.ProjectGrid(w.grid, s.Quad(), s.Displacement(), bw, bh, w.points)
	if !ok {
		return
	}

	img := w.textureImage(s.Texture)
	tw, th := float32(img.Bounds().Dx()), float32(img.Bounds().Dy())

	w.vertices = w.vertices[:0]
	for k, p := range w.points {
		uv := w.grid.UV[k]
		w.vertices = append(w.vertices, ebiten.Vertex{
			DstX:   p[0],
			DstY:   p[1],
			SrcX:   float32(uv[0]) * tw,
			SrcY:   float32(uv[1]) * th,
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		})
	}

	op := &ebiten.DrawTrianglesShaderOptions{}
	op.Images[0] = img
	op.Uniforms = map[string]any{
		"Opacity":     float32(s.Opacity),
		"BlurAmount":  float32(s.BlurAmount),
		"ScrollForce": float32(s.ScrollForce),
	}
	screen.DrawTrianglesShader(w.vertices, w.grid.Indices, w.shader, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.w.mu.Lock()
	g.w.screen.w, g.w.screen.h = outsideWidth, outsideHeight
	g.w.mu.Unlock()
	return outsideWidth, outsideHeight
}
