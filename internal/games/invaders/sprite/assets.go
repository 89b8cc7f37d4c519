package sprite

import (
	"embed"
	"fmt"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

//go:embed art/*.txt
var artFS embed.FS

// Number of distinct invader rows and death-animation frames in the art set.
const (
	InvaderKinds = 6
	HitFrames    = 4
)

// Palette selects the colors the art set is loaded with.
type Palette struct {
	Enemy  core.Color
	Ship   core.Color
	Shield core.Color
	Digits core.Color
}

// Set is the complete, read-only art set of the game.
// Callers must Clone a bitmap before mutating it.
type Set struct {
	Init   [InvaderKinds]*Bitmap // idle frame A per row
	Flip   [InvaderKinds]*Bitmap // idle frame B per row
	Hit    [HitFrames]*Bitmap    // death animation, least to most damaged
	Ship   *Bitmap
	Shield *Bitmap
	Digits [10]*Bitmap
}

// Load parses every embedded art file with the given palette.
func Load(p Palette, scale int) (*Set, error) {
	s := &Set{}
	var err error

	for i := 0; i < InvaderKinds; i++ {
		if s.Init[i], err = loadArt(fmt.Sprintf("invader_init_%d", i+1), p.Enemy, scale); err != nil {
			return nil, err
		}
		if s.Flip[i], err = loadArt(fmt.Sprintf("invader_flip_%d", i+1), p.Enemy, scale); err != nil {
			return nil, err
		}
	}
	for i := 0; i < HitFrames; i++ {
		if s.Hit[i], err = loadArt(fmt.Sprintf("invader_hit_%d", i+1), p.Enemy, scale); err != nil {
			return nil, err
		}
	}
	if s.Ship, err = loadArt("player_ship", p.Ship, scale); err != nil {
		return nil, err
	}
	if s.Shield, err = loadArt("shield", p.Shield, scale); err != nil {
		return nil, err
	}
	for d := 0; d < 10; d++ {
		if s.Digits[d], err = loadArt(fmt.Sprintf("digit_%d", d), p.Digits, scale); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// loadArt reads and parses one embedded art file.
func loadArt(name string, color core.Color, scale int) (*Bitmap, error) {
	data, err := artFS.ReadFile("art/" + name + ".txt")
	if err != nil {
		return nil, fmt.Errorf("sprite: missing art %s: %w", name, err)
	}
	b, err := Parse(string(data), color, DefaultOn, DefaultOff, scale)
	if err != nil {
		return nil, fmt.Errorf("sprite: loading %s: %w", name, err)
	}
	return b, nil
}
