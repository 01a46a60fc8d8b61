package director

// EventType names an input gesture.
type EventType string

const (
	EventWheel        EventType = "wheel"
	EventKey          EventType = "key"
	EventTouchStart   EventType = "touchstart"
	EventTouchMove    EventType = "touchmove"
	EventTouchEnd     EventType = "touchend"
	EventPointer      EventType = "pointer"
	EventPointerLeave EventType = "pointerleave"
)

// Script is a timed list of input events replayed against the gallery.
type Script struct {
	Version  string  `yaml:"version"`
	Duration float64 `yaml:"duration"` // seconds
	Events   []Event `yaml:"events"`
}

// Event is one input at Time seconds after the start.
//
// Wheel events use DeltaY in wheel units, key events name an arrow key (up,
// down, left, right), touch events carry the finger Y in pixels and pointer
// events carry X and Y in normalized device coordinates.
type Event struct {
	Time   float64   `yaml:"time"`
	Type   EventType `yaml:"type"`
	DeltaY float64   `yaml:"deltaY,omitempty"`
	Key    string    `yaml:"key,omitempty"`
	X      float64   `yaml:"x,omitempty"`
	Y      float64   `yaml:"y,omitempty"`
}
