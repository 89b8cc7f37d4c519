package config

import (
	_ "embed"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

//go:embed defaults/invaders.yaml
var defaultInvadersYAML []byte

// DefaultInvadersConfig returns the built-in table. It matches the embedded
// defaults/invaders.yaml.
func DefaultInvadersConfig() InvadersConfig {
	return InvadersConfig{
		Screen: ScreenConfig{
			Width:       320,
			Height:      210,
			SkyToGround: 195,
		},
		Markers: MarkerConfig{
			LeftX:  66,
			RightX: 244,
			Width:  4,
			Height: 5,
		},
		Score: ScoreConfig{
			LeftX:        8,
			RightX:       168,
			Y:            8,
			DigitSpacing: 8,
			Award:        10,
		},
		Ship: ShipConfig{
			Width:  16,
			Height: 10,
			Speed:  3,
		},
		Shields: ShieldConfig{
			Width:  16,
			Height: 18,
			Positions: []Point{
				{X: 84, Y: 157},
				{X: 148, Y: 157},
				{X: 212, Y: 157},
			},
		},
		Enemies: EnemyConfig{
			Width:  16,
			Height: 10,
			StartX: 44,
			StartY: 31,
			EndX:   98,
			PerRow: 6,
			Rows:   6,
			XSpace: 16,
			YSpace: 8,
			Delta:  2,
			Period: 32,
		},
		Death: DeathConfig{
			Frames:    29,
			FirstBand: 5,
			Band:      8,
		},
		Lasers: LaserConfig{
			Width:          2,
			Height:         11,
			Speed:          3,
			EnemyShotDelay: 50,
			EnemyLaserCap:  1,
		},
		Colors: ColorConfig{
			Background:  HexColor(core.RGB(0, 0, 0)),
			Ground:      HexColor(core.RGB(76, 80, 28)),
			LeftMarker:  HexColor(core.RGB(64, 124, 64)),
			RightMarker: HexColor(core.RGB(160, 132, 68)),
			Shield:      HexColor(core.RGB(172, 80, 48)),
			Enemy:       HexColor(core.RGB(132, 132, 36)),
			Laser:       HexColor(core.RGB(144, 144, 144)),
			Ship:        HexColor(core.RGB(35, 129, 59)),
		},
		Gameplay: GameplayConfig{
			Lives:       0,
			SpriteScale: 1,
		},
	}
}

// DefaultYAML returns the embedded default table.
func DefaultYAML() []byte {
	return defaultInvadersYAML
}
