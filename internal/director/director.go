package director

import (
	"fmt"
	"math"
)

// Director generates demo input scripts: a sequence of gestures separated by
// idle pauses, ending idle long enough for autoplay to take over again.
type Director struct {
	ViewportWidth  int
	ViewportHeight int
	MinDwell       float64 // Minimum time per gesture (seconds)
	MaxDwell       float64 // Maximum time per gesture (seconds)
	// PointerSteps is the number of pointer events per pointer path.
	PointerSteps int
}

// NewDirector creates a new Director with default settings
func NewDirector(viewportWidth, viewportHeight int) *Director {
	return &Director{
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
		MinDwell:       1.0,
		MaxDwell:       3.0,
		PointerSteps:   24,
	}
}

type gesture func(d *Director, start, dwell float64) []Event

// gestures cycle in this order.
var gestures = []gesture{
	(*Director).wheelBurst,
	(*Director).pointerSweep,
	(*Director).swipe,
	(*Director).keyTaps,
	(*Director).reverseWheel,
}

// autoplayResume leaves the last gesture idle for longer than the autoplay
// timeout.
const autoplayResume = 3.5

// Generate builds a script of totalDuration seconds.
func (d *Director) Generate(totalDuration float64) (*Script, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("invalid script duration %f", totalDuration)
	}

	// 1s intro under autoplay, idle outro for autoplay to resume
	intro := 1.0
	available := totalDuration - intro - autoplayResume
	count := 0
	dwell := 0.0
	if available > 0 {
		count = int(available / d.MaxDwell)
		if count < 1 {
			count = 1
		}
		dwell = d.calculateDwellTime(available, count)
	}

	script := &Script{Version: "1.0", Duration: totalDuration}
	current := intro
	for i := 0; i < count; i++ {
		script.Events = append(script.Events, gestures[i%len(gestures)](d, current, dwell)...)
		current += dwell
	}
	script.Events = append(script.Events, Event{Time: math.Min(current, totalDuration), Type: EventPointerLeave})

	return script, nil
}

// calculateDwellTime determines how long each gesture lasts
func (d *Director) calculateDwellTime(available float64, count int) float64 {
	dwellTime := available / float64(count)

	// Clamp to min/max
	if dwellTime < d.MinDwell {
		dwellTime = d.MinDwell
	}
	if dwellTime > d.MaxDwell {
		dwellTime = d.MaxDwell
	}
	return dwellTime
}

func (d *Director) wheelBurst(start, dwell float64) []Event {
	var events []Event
	for i := 0; i < 5; i++ {
		events = append(events, Event{Time: start + float64(i)*dwell/10, Type: EventWheel, DeltaY: 120})
	}
	return events
}

func (d *Director) reverseWheel(start, dwell float64) []Event {
	events := d.wheelBurst(start, dwell)
	for i := range events {
		events[i].DeltaY = -events[i].DeltaY
	}
	return events
}

func (d *Director) keyTaps(start, dwell float64) []Event {
	keys := []string{"down", "down", "right", "up"}
	events := make([]Event, len(keys))
	for i, k := range keys {
		events[i] = Event{Time: start + float64(i)*dwell/float64(len(keys)+1), Type: EventKey, Key: k}
	}
	return events
}

// swipe drags a finger up over half of the viewport height.
func (d *Director) swipe(start, dwell float64) []Event {
	h := float64(d.ViewportHeight)
	from, to := h*0.75, h*0.25
	steps := 10
	span := dwell / 2

	events := []Event{{Time: start, Type: EventTouchStart, Y: from}}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		events = append(events, Event{
			Time: start + span*t,
			Type: EventTouchMove,
			Y:    math.Round(lerp(from, to, easeInOutCubic(t))),
		})
	}
	return append(events, Event{Time: start + span, Type: EventTouchEnd})
}

// pointerSweep moves the pointer across the center to hover the planes
// there, then lets go.
func (d *Director) pointerSweep(start, dwell float64) []Event {
	steps := d.PointerSteps
	if steps < 2 {
		steps = 2
	}

	type point struct{ x, y float64 }
	path := []point{{-0.6, 0.3}, {0, 0}, {0.5, -0.2}}

	var events []Event
	segDur := dwell / float64(len(path)-1)
	perSeg := steps / (len(path) - 1)
	for s := 0; s < len(path)-1; s++ {
		a, b := path[s], path[s+1]
		for i := 0; i < perSeg; i++ {
			t := float64(i) / float64(perSeg)
			e := easeInOutCubic(t)
			events = append(events, Event{
				Time: start + segDur*(float64(s)+t),
				Type: EventPointer,
				X:    lerp(a.x, b.x, e),
				Y:    lerp(a.y, b.y, e),
			})
		}
	}
	last := path[len(path)-1]
	return append(events, Event{Time: start + dwell*0.99, Type: EventPointer, X: last.x, Y: last.y})
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
