package director

import (
	"github.com/ivlev/gallery3d/internal/engine"
	"github.com/ivlev/gallery3d/internal/gallery"
)

var keyNames = map[string]gallery.Key{
	"up":    gallery.KeyUp,
	"down":  gallery.KeyDown,
	"left":  gallery.KeyLeft,
	"right": gallery.KeyRight,
}

// Player replays a script as a gallery input source. Every event whose time
// has come is delivered at the start of the next tick.
type Player struct {
	script *Script
	next   int
}

func NewPlayer(script *Script) *Player {
	if script == nil {
		script = &Script{}
	}
	return &Player{script: script}
}

// Done reports whether every event has been delivered.
func (p *Player) Done() bool {
	return p.next >= len(p.script.Events)
}

func (p *Player) Poll(g *engine.Gallery) {
	now := g.Elapsed().Seconds()
	ctrl := g.Controller()

	for ; p.next < len(p.script.Events); p.next++ {
		ev := p.script.Events[p.next]
		if ev.Time > now {
			return
		}

		switch ev.Type {
		case EventWheel:
			ctrl.Wheel(ev.DeltaY)
		case EventKey:
			if k, ok := keyNames[ev.Key]; ok {
				ctrl.Key(k)
			}
		case EventTouchStart:
			ctrl.TouchStart(ev.Y)
		case EventTouchMove:
			ctrl.TouchMove(ev.Y)
		case EventTouchEnd:
			ctrl.TouchEnd()
		case EventPointer:
			g.SetPointer(ev.X, ev.Y)
		case EventPointerLeave:
			g.ClearPointer()
		}
	}
}
