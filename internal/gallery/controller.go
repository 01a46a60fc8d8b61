package gallery

import "time"

const (
	IdleTimeout       = 3000 * time.Millisecond
	IdleCheckInterval = time.Second

	Damping       = 0.95
	AutoplayDrift = 0.3

	wheelFactor = 0.01
	touchFactor = 0.02
	keyStep     = 2.0
)

// Key is a directional key understood by the controller.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
)

// State is the mutable motion state of one gallery.
type State struct {
	Velocity        float64
	Autoplay        bool
	LastInteraction time.Time
}

// Controller accumulates scroll velocity from user input and drifts it
// while the user is idle.
type Controller struct {
	state       State
	speed       float64
	maxVelocity float64
	clock       Clock

	touchY    float64
	touching  bool
	lastCheck time.Time
}

func NewController(speed, maxVelocity float64, clock Clock) *Controller {
	if clock == nil {
		clock = SystemClock{}
	}
	now := clock.Now()
	return &Controller{
		state:       State{Autoplay: true, LastInteraction: now},
		speed:       speed,
		maxVelocity: maxVelocity,
		clock:       clock,
		lastCheck:   now,
	}
}

func (c *Controller) State() State { return c.state }

// Wheel handles a wheel event; positive deltaY scrolls forward.
func (c *Controller) Wheel(deltaY float64) {
	c.push(deltaY * wheelFactor * c.speed)
}

// Key handles a key press and reports whether the key moves the gallery.
func (c *Controller) Key(k Key) bool {
	switch k {
	case KeyUp, KeyLeft:
		c.push(-keyStep * c.speed)
	case KeyDown, KeyRight:
		c.push(keyStep * c.speed)
	default:
		return false
	}
	return true
}

// TouchStart records where a drag begins. It does not count as interaction.
func (c *Controller) TouchStart(y float64) {
	c.touchY = y
	c.touching = true
}

// TouchMove converts the drag distance since the previous move into velocity.
func (c *Controller) TouchMove(y float64) {
	if !c.touching {
		c.TouchStart(y)
	}
	delta := c.touchY - y
	c.touchY = y
	c.push(delta * touchFactor * c.speed)
}

func (c *Controller) TouchEnd() {
	c.touching = false
}

func (c *Controller) push(dv float64) {
	c.state.Velocity += dv
	c.state.Autoplay = false
	c.state.LastInteraction = c.clock.Now()
}

// CheckIdle resumes autoplay once the user has been idle longer than IdleTimeout.
func (c *Controller) CheckIdle() {
	if c.clock.Now().Sub(c.state.LastInteraction) > IdleTimeout {
		c.state.Autoplay = true
	}
}

// Poll runs CheckIdle on a fixed IdleCheckInterval cadence. Call it every frame.
func (c *Controller) Poll() {
	now := c.clock.Now()
	if now.Sub(c.lastCheck) < IdleCheckInterval {
		return
	}
	c.lastCheck = now
	c.CheckIdle()
}

// Step applies autoplay drift and damping for one frame of dt seconds.
func (c *Controller) Step(dt float64) {
	if c.state.Autoplay {
		c.state.Velocity += AutoplayDrift * dt
	}
	c.state.Velocity *= Damping

	if m := c.maxVelocity; m > 0 {
		if c.state.Velocity > m {
			c.state.Velocity = m
		} else if c.state.Velocity < -m {
			c.state.Velocity = -m
		}
	}
}
