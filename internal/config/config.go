// Package config provides the YAML-based layout and timing table of the
// invaders game. The table is read once at construction time and is never
// changed while a game runs.
package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

// MaxEnemyRows is the number of distinct invader rows the art set provides.
const MaxEnemyRows = 6

// ShieldCount is the number of shields on the playfield.
const ShieldCount = 3

// InvadersConfig contains every layout, timing and color constant of the game.
type InvadersConfig struct {
	Screen   ScreenConfig   `yaml:"screen"`
	Markers  MarkerConfig   `yaml:"markers"`
	Score    ScoreConfig    `yaml:"score"`
	Ship     ShipConfig     `yaml:"ship"`
	Shields  ShieldConfig   `yaml:"shields"`
	Enemies  EnemyConfig    `yaml:"enemies"`
	Death    DeathConfig    `yaml:"death"`
	Lasers   LaserConfig    `yaml:"lasers"`
	Colors   ColorConfig    `yaml:"colors"`
	Gameplay GameplayConfig `yaml:"gameplay"`
}

// ScreenConfig defines the playfield in pixels.
type ScreenConfig struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	SkyToGround int `yaml:"sky_to_ground"` // Y where the ground strip starts
}

// MarkerConfig defines the two ground dots that bound the ship corridor.
type MarkerConfig struct {
	LeftX  int `yaml:"left_x"`
	RightX int `yaml:"right_x"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ScoreConfig defines where the score digits go and what a kill is worth.
type ScoreConfig struct {
	LeftX        int `yaml:"left_x"`
	RightX       int `yaml:"right_x"`
	Y            int `yaml:"y"`
	DigitSpacing int `yaml:"digit_spacing"`
	Award        int `yaml:"award"`
}

// ShipConfig defines the player ship.
type ShipConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Speed  int `yaml:"speed"` // Pixels per frame
}

// Point is a pixel position.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// ShieldConfig defines shield size and anchors.
type ShieldConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Positions []Point `yaml:"positions"`
}

// EnemyConfig defines the formation grid and its patrol.
type EnemyConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	StartX int `yaml:"start_x"` // Left patrol bound of column 0
	StartY int `yaml:"start_y"`
	EndX   int `yaml:"end_x"` // Right patrol bound of column 0
	PerRow int `yaml:"per_row"`
	Rows   int `yaml:"rows"`
	XSpace int `yaml:"x_space"`
	YSpace int `yaml:"y_space"`
	Delta  int `yaml:"delta"`  // Pixels per move step
	Period int `yaml:"period"` // Idle frames between move steps
}

// DeathConfig defines the death animation clock.
type DeathConfig struct {
	Frames    int `yaml:"frames"`     // Countdown length
	FirstBand int `yaml:"first_band"` // Frames shown with the first hit sprite
	Band      int `yaml:"band"`       // Frames shown with each later hit sprite
}

// LaserConfig defines both player and enemy projectiles.
type LaserConfig struct {
	Width          int `yaml:"width"`
	Height         int `yaml:"height"`
	Speed          int `yaml:"speed"`            // Pixels per frame, stepped one at a time
	EnemyShotDelay int `yaml:"enemy_shot_delay"` // Frames between volleys
	EnemyLaserCap  int `yaml:"enemy_laser_cap"`  // No volley starts while more lasers than this exist
}

// ColorConfig holds the palette as "#rrggbb" strings.
type ColorConfig struct {
	Background  HexColor `yaml:"background"`
	Ground      HexColor `yaml:"ground"`
	LeftMarker  HexColor `yaml:"left_marker"`
	RightMarker HexColor `yaml:"right_marker"`
	Shield      HexColor `yaml:"shield"`
	Enemy       HexColor `yaml:"enemy"`
	Laser       HexColor `yaml:"laser"`
	Ship        HexColor `yaml:"ship"`
}

// GameplayConfig holds the remaining scalars.
type GameplayConfig struct {
	Lives       int `yaml:"lives"`
	SpriteScale int `yaml:"sprite_scale"`
}

// HexColor is a core.Color that reads and writes itself as "#rrggbb" in YAML.
type HexColor core.Color

// Color returns the underlying color.
func (h HexColor) Color() core.Color {
	return core.Color(h)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *HexColor) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	c, err := core.ParseHex(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*h = HexColor(c)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (h HexColor) MarshalYAML() (any, error) {
	return core.Color(h).Hex(), nil
}

// ShipLimits returns the inclusive horizontal corridor [x1, x2] of the ship,
// derived from the ground markers.
func (c *InvadersConfig) ShipLimits() (x1, x2 int) {
	x1 = c.Markers.LeftX + c.Markers.Width/2
	x2 = c.Markers.RightX + c.Markers.Width/2 - c.Ship.Width
	return x1, x2
}

// ColumnPitch is the horizontal distance between neighbouring enemy columns.
func (c *InvadersConfig) ColumnPitch() int {
	return c.Enemies.Width + c.Enemies.XSpace
}

// Validate checks the table for values the simulation cannot run with.
// All problems are reported together.
func (c *InvadersConfig) Validate() error {
	var errs []error
	positive := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}

	positive("screen.width", c.Screen.Width)
	positive("screen.height", c.Screen.Height)
	positive("ship.width", c.Ship.Width)
	positive("ship.height", c.Ship.Height)
	positive("ship.speed", c.Ship.Speed)
	positive("shields.width", c.Shields.Width)
	positive("shields.height", c.Shields.Height)
	positive("enemies.width", c.Enemies.Width)
	positive("enemies.height", c.Enemies.Height)
	positive("enemies.per_row", c.Enemies.PerRow)
	positive("enemies.rows", c.Enemies.Rows)
	positive("enemies.delta", c.Enemies.Delta)
	positive("death.frames", c.Death.Frames)
	positive("death.first_band", c.Death.FirstBand)
	positive("death.band", c.Death.Band)
	positive("lasers.width", c.Lasers.Width)
	positive("lasers.height", c.Lasers.Height)
	positive("lasers.speed", c.Lasers.Speed)
	positive("lasers.enemy_shot_delay", c.Lasers.EnemyShotDelay)
	positive("score.award", c.Score.Award)

	if c.Enemies.Rows > MaxEnemyRows {
		errs = append(errs, fmt.Errorf("enemies.rows must be at most %d, got %d", MaxEnemyRows, c.Enemies.Rows))
	}
	if c.Enemies.Period < 0 {
		errs = append(errs, fmt.Errorf("enemies.period must not be negative, got %d", c.Enemies.Period))
	}
	if c.Enemies.EndX < c.Enemies.StartX {
		errs = append(errs, fmt.Errorf("enemies.end_x (%d) is left of start_x (%d)", c.Enemies.EndX, c.Enemies.StartX))
	} else if c.Enemies.Delta > 0 && (c.Enemies.EndX-c.Enemies.StartX)%c.Enemies.Delta != 0 {
		// Patrol bounds are matched exactly.
		errs = append(errs, fmt.Errorf("enemies patrol span %d is not a multiple of delta %d",
			c.Enemies.EndX-c.Enemies.StartX, c.Enemies.Delta))
	}
	if c.Death.FirstBand+(hitFrames-1)*c.Death.Band < c.Death.Frames {
		errs = append(errs, fmt.Errorf("death bands (%d + %d*%d) do not cover %d frames",
			c.Death.FirstBand, hitFrames-1, c.Death.Band, c.Death.Frames))
	}
	if c.Lasers.EnemyLaserCap < 0 {
		errs = append(errs, fmt.Errorf("lasers.enemy_laser_cap must not be negative, got %d", c.Lasers.EnemyLaserCap))
	}
	if len(c.Shields.Positions) != ShieldCount {
		errs = append(errs, fmt.Errorf("shields.positions must list %d anchors, got %d", ShieldCount, len(c.Shields.Positions)))
	}
	if x1, x2 := c.ShipLimits(); x2 < x1 {
		errs = append(errs, fmt.Errorf("ship corridor is empty: [%d, %d]", x1, x2))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid invaders table: %w", errors.Join(errs...))
	}
	return nil
}

// hitFrames is the number of death-animation sprites.
const hitFrames = 4

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParseDifficulty maps a CLI string to a preset. Unknown strings yield "".
func ParseDifficulty(s string) DifficultyPreset {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return DifficultyPreset(s)
	default:
		return ""
	}
}

// ApplyInvadersPreset adjusts volley timing and march period for a preset.
// Normal and fixed leave the loaded table untouched.
func ApplyInvadersPreset(cfg *InvadersConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Lasers.EnemyShotDelay = 70
		cfg.Enemies.Period = 40
	case DifficultyHard:
		cfg.Lasers.EnemyShotDelay = 35
		cfg.Enemies.Period = 24
	}
}
