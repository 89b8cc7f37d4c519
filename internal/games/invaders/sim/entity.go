package sim

import (
	"fmt"

	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sprite"
)

// Direction is the vertical travel direction of a laser.
type Direction uint8

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d > Down {
		return nil, fmt.Errorf("sim: invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "up":
		*d = Up
	case "down":
		*d = Down
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrMalformedState, text)
	}
	return nil
}

// Orientation is the idle animation frame of an enemy.
type Orientation uint8

const (
	OrientationInit Orientation = iota
	OrientationFlip
)

func (o Orientation) String() string {
	switch o {
	case OrientationInit:
		return "init"
	case OrientationFlip:
		return "flip"
	default:
		return fmt.Sprintf("Orientation(%d)", uint8(o))
	}
}

// Toggle returns the other idle frame.
func (o Orientation) Toggle() Orientation {
	if o == OrientationInit {
		return OrientationFlip
	}
	return OrientationInit
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	if o > OrientationFlip {
		return nil, fmt.Errorf("sim: invalid orientation %d", uint8(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Orientation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "init":
		*o = OrientationInit
	case "flip":
		*o = OrientationFlip
	default:
		return fmt.Errorf("%w: unknown orientation %q", ErrMalformedState, text)
	}
	return nil
}

// Player is the ship. It is moved only by input and is never destroyed.
type Player struct {
	X, Y  int
	W, H  int
	Speed int // Pixels per frame
	Color core.Color
}

// Rect returns the ship's bounding box.
func (p *Player) Rect() core.Rect {
	return core.NewRect(p.X, p.Y, p.W, p.H)
}

// Laser is a projectile of either side.
type Laser struct {
	X, Y     int
	W, H     int
	T        int // Frames since spawn, drives the blink
	Movement Direction
	Speed    int // One-pixel sub-steps per frame
	Color    core.Color
}

// Visible reports whether the laser is in the lit half of its 2-on/2-off blink.
func (l *Laser) Visible() bool {
	return l.T%4 < 2
}

// Rect returns the laser's bounding box.
func (l *Laser) Rect() core.Rect {
	return core.NewRect(l.X, l.Y, l.W, l.H)
}

// Enemy is one member of the formation. ID is its roster index; Row and Col
// are fixed at creation.
type Enemy struct {
	X, Y         int
	Row, Col     int
	ID           int
	Alive        bool
	DeathCounter int // Frames left in the death animation, 0 when not dying
	MoveCounter  int
	MoveRight    bool
	Orientation  Orientation
}

// Dying reports whether the death animation is running.
func (e *Enemy) Dying() bool {
	return e.DeathCounter > 0
}

// Shield is a destructible bitmap anchored at (X, Y).
type Shield struct {
	X, Y   int
	Bitmap *sprite.Bitmap
}

// Rect returns the shield's bounding box.
func (s *Shield) Rect() core.Rect {
	return s.Bitmap.Bounds(s.X, s.Y)
}

// Input is one frame of player controls.
type Input struct {
	Left  bool
	Right bool
	Fire  bool
}
