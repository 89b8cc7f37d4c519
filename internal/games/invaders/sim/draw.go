package sim

import (
	"strconv"

	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sprite"
)

// DrawKind distinguishes drawing primitives.
type DrawKind uint8

const (
	DrawRect   DrawKind = iota // Filled rectangle
	DrawSprite                 // Bitmap blit, lit pixels only
)

// Drawable is one drawing primitive. For sprites W and H equal the bitmap
// size and Color its color.
type Drawable struct {
	Kind   DrawKind
	Color  core.Color
	X, Y   int
	W, H   int
	Sprite *sprite.Bitmap
}

// Bounds returns the area the primitive may touch.
func (d Drawable) Bounds() core.Rect {
	return core.NewRect(d.X, d.Y, d.W, d.H)
}

func rect(c core.Color, x, y, w, h int) Drawable {
	return Drawable{Kind: DrawRect, Color: c, X: x, Y: y, W: w, H: h}
}

func blit(x, y int, b *sprite.Bitmap) Drawable {
	b = b.Clone()
	return Drawable{Kind: DrawSprite, Color: b.Color, X: x, Y: y, W: b.W, H: b.H, Sprite: b}
}

// Side selects which player's score slot is drawn.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
)

// Draw returns the frame as a fresh list of primitives, back to front.
// Bitmaps in the list are copies. When lives is negative only the
// background, ground and scores are drawn.
func (s *State) Draw() []Drawable {
	cfg := &s.rules.cfg
	w, h := cfg.Screen.Width, cfg.Screen.Height
	ground := cfg.Screen.SkyToGround

	out := []Drawable{
		rect(cfg.Colors.Background.Color(), 0, 0, w, h),
		rect(cfg.Colors.Ground.Color(), 0, ground, w, h-ground),
		rect(cfg.Colors.LeftMarker.Color(), cfg.Markers.LeftX, ground+1, cfg.Markers.Width, cfg.Markers.Height),
		rect(cfg.Colors.RightMarker.Color(), cfg.Markers.RightX, ground+1, cfg.Markers.Width, cfg.Markers.Height),
	}
	out = append(out, s.rules.drawScore(s.Score, cfg.Score.LeftX, cfg.Score.Y, SideLeft)...)
	out = append(out, s.rules.drawScore(0, cfg.Score.RightX, cfg.Score.Y, SideRight)...)

	if s.Lives < 0 {
		return out
	}

	out = append(out, blit(s.Ship.X, s.Ship.Y, s.rules.art.Ship))
	for _, sh := range s.Shields {
		out = append(out, blit(sh.X, sh.Y, sh.Bitmap))
	}
	for i := range s.Enemies {
		e := &s.Enemies[i]
		if e.Alive {
			out = append(out, blit(e.X, e.Y, s.rules.EnemySprite(e)))
		}
	}
	if l := s.ShipLaser; l != nil && l.Visible() {
		out = append(out, rect(l.Color, l.X, l.Y, l.W, l.H))
	}
	for i := range s.EnemyLasers {
		if l := &s.EnemyLasers[i]; l.Visible() {
			out = append(out, rect(l.Color, l.X, l.Y, l.W, l.H))
		}
	}
	return out
}

// drawScore lays out the decimal digits of score left to right from (x, y),
// tinted with the marker color of the given side.
func (r *Rules) drawScore(score, x, y int, side Side) []Drawable {
	color := r.cfg.Colors.LeftMarker.Color()
	if side == SideRight {
		color = r.cfg.Colors.RightMarker.Color()
	}

	digits := strconv.Itoa(score)
	out := make([]Drawable, 0, len(digits))
	for i, ch := range digits {
		d := blit(x+i*r.cfg.Score.DigitSpacing, y, r.art.Digits[ch-'0'])
		d.Color = color
		d.Sprite.Color = color
		out = append(out, d)
	}
	return out
}
