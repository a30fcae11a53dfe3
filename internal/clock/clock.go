package clock

import (
	"fmt"

	"github.com/park285/cheese-web/internal/domain"
)

// Levels used by the UI to colour a counter.
const (
	LevelNormal   = "normal"
	LevelWarning  = "warning"
	LevelCritical = "critical"

	warningSeconds  = 60
	criticalSeconds = 30
)

// Clock holds two countdowns in whole seconds. Only the side to move is charged, and no
// counter goes below zero. It is not safe for concurrent use; the owner serializes access.
type Clock struct {
	initial int
	white   int
	black   int
	active  bool
	side    domain.Side
}

// State is a read-only copy of a Clock.
type State struct {
	White   int         `json:"white"`
	Black   int         `json:"black"`
	Active  bool        `json:"active"`
	Side    domain.Side `json:"side"`
	Initial int         `json:"initial"`
}

func New(initialSeconds int) *Clock {
	if initialSeconds < 0 {
		initialSeconds = 0
	}
	c := &Clock{initial: initialSeconds}
	c.Reset()
	return c
}

// Reset restores both counters, stops the clock and gives the move to white.
func (c *Clock) Reset() {
	c.white = c.initial
	c.black = c.initial
	c.active = false
	c.side = domain.White
}

func (c *Clock) Start() { c.active = true }

func (c *Clock) Stop() { c.active = false }

func (c *Clock) Active() bool { return c.active }

// SetSide redirects future ticks.
func (c *Clock) SetSide(side domain.Side) { c.side = side }

func (c *Clock) Side() domain.Side { return c.side }

func (c *Clock) Remaining(side domain.Side) int {
	if side == domain.Black {
		return c.black
	}
	return c.white
}

// Tick charges one second to the side to move. It returns true when that side's counter
// has just reached zero; the clock is stopped at that point.
func (c *Clock) Tick() bool {
	if !c.active {
		return false
	}
	counter := &c.white
	if c.side == domain.Black {
		counter = &c.black
	}
	if *counter > 0 {
		*counter--
	}
	if *counter == 0 {
		c.active = false
		return true
	}
	return false
}

func (c *Clock) Snapshot() State {
	return State{White: c.white, Black: c.black, Active: c.active, Side: c.side, Initial: c.initial}
}

// Format renders seconds as m:ss.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Level classifies remaining time for display.
func Level(seconds int) string {
	switch {
	case seconds <= criticalSeconds:
		return LevelCritical
	case seconds <= warningSeconds:
		return LevelWarning
	default:
		return LevelNormal
	}
}
