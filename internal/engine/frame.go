package engine

import (
	"time"

	"github.com/ivlev/gallery3d/internal/gallery"
	"github.com/ivlev/gallery3d/internal/loader"
	"github.com/ivlev/gallery3d/internal/scene"
)

// Uniforms are the per-surface inputs of the surface program.
type Uniforms struct {
	TextureIndex int
	Opacity      float64
	BlurAmount   float64
	ScrollForce  float64
	Time         float64 // seconds since the gallery started
	IsHovered    bool
}

// Surface is one slot as it is drawn in the current frame.
type Surface struct {
	Slot    gallery.Slot
	Texture *loader.Texture // nil when the gallery has no image for the slot
	Center  scene.Vec3
	Width   float64
	Height  float64
	Uniforms
}

func (s *Surface) Quad() scene.Quad {
	return scene.Quad{Center: s.Center, Width: s.Width, Height: s.Height}
}

func (s *Surface) Displacement() scene.Displacement {
	return scene.Displacement{ScrollForce: s.ScrollForce, Time: s.Time, Hovered: s.IsHovered}
}

// Frame is the render input of one tick. The gallery reuses it; a renderer
// must not keep it past Draw.
type Frame struct {
	Number   uint64
	Elapsed  time.Duration
	Camera   scene.Camera
	Surfaces []Surface
}
