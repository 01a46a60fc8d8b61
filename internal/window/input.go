package window

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ivlev/gallery3d/internal/engine"
	"github.com/ivlev/gallery3d/internal/gallery"
	"github.com/ivlev/gallery3d/internal/scene"
)

// wheelLine converts ebiten wheel offsets into browser wheel delta units.
const wheelLine = 100

var arrowKeys = []struct {
	key ebiten.Key
	k   gallery.Key
}{
	{ebiten.KeyArrowUp, gallery.KeyUp},
	{ebiten.KeyArrowDown, gallery.KeyDown},
	{ebiten.KeyArrowLeft, gallery.KeyLeft},
	{ebiten.KeyArrowRight, gallery.KeyRight},
}

type input struct {
	touchID   ebiten.TouchID
	touching  bool
	touchY    int
	cursorX   int
	cursorY   int
	hasCursor bool
	lastW     int
	lastH     int
	touches   []ebiten.TouchID
}

func (in *input) quit() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}

// Poll forwards the input of the current ebiten update to the gallery.
func (w *Window) Poll(g *engine.Gallery) {
	w.mu.Lock()
	sw, sh := w.screen.w, w.screen.h
	w.mu.Unlock()
	in := &w.input
	ctrl := g.Controller()

	if sw > 0 && sh > 0 && (sw != in.lastW || sh != in.lastH) {
		in.lastW, in.lastH = sw, sh
		g.SetAspect(float64(sw) / float64(sh))
	}

	// Wheel down scrolls forward, as a positive browser deltaY does.
	if _, yoff := ebiten.Wheel(); yoff != 0 {
		ctrl.Wheel(-yoff * wheelLine)
	}

	for _, a := range arrowKeys {
		if inpututil.IsKeyJustPressed(a.key) {
			ctrl.Key(a.k)
		}
	}

	in.pollTouch(ctrl)

	x, y := ebiten.CursorPosition()
	if !in.hasCursor || x != in.cursorX || y != in.cursorY {
		in.cursorX, in.cursorY, in.hasCursor = x, y, true
		if x < 0 || y < 0 || x >= sw || y >= sh {
			g.ClearPointer()
		} else {
			g.SetPointer(scene.PointerNDC(float64(x), float64(y), sw, sh))
		}
	}
}

// pollTouch follows the first finger only.
func (in *input) pollTouch(ctrl *gallery.Controller) {
	if in.touching && inpututil.IsTouchJustReleased(in.touchID) {
		in.touching = false
		ctrl.TouchEnd()
	}

	if !in.touching {
		in.touches = inpututil.AppendJustPressedTouchIDs(in.touches[:0])
		if len(in.touches) > 0 {
			in.touchID = in.touches[0]
			in.touching = true
			_, y := ebiten.TouchPosition(in.touchID)
			in.touchY = y
			ctrl.TouchStart(float64(y))
		}
		return
	}

	in.touches = ebiten.AppendTouchIDs(in.touches[:0])
	for _, id := range in.touches {
		if id != in.touchID {
			continue
		}
		if _, y := ebiten.TouchPosition(id); y != in.touchY {
			in.touchY = y
			ctrl.TouchMove(float64(y))
		}
		return
	}
}
