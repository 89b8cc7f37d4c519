package invaders

import (
	"fmt"

	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sim"
)

// HalfBlock is the glyph used for two vertically stacked pixels: the
// foreground paints the top half, the background the bottom half.
const HalfBlock = '▀'

// Minimum terminal size for a readable playfield.
const (
	MinScreenW = 40
	MinScreenH = 12
)

var (
	overlayColor = core.RGB(255, 255, 255)
	hintColor    = core.RGB(170, 170, 170)
)

// Frame is a full-resolution RGB raster of the playfield.
type Frame struct {
	W, H int
	Pix  []core.Color // Row-major
}

// NewFrame creates a black frame.
func NewFrame(w, h int) *Frame {
	return &Frame{W: w, H: h, Pix: make([]core.Color, w*h)}
}

// At returns the pixel at (x, y). Out of bounds is black.
func (f *Frame) At(x, y int) core.Color {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return core.Black
	}
	return f.Pix[y*f.W+x]
}

// Rasterize paints a draw list in order. Rectangles are filled, sprites
// paint their lit pixels only. Everything is clipped to the frame.
func (f *Frame) Rasterize(list []sim.Drawable) {
	for _, d := range list {
		area := d.Bounds().Intersection(core.NewRect(0, 0, f.W, f.H))
		if area.Empty() {
			continue
		}
		for y := area.Y; y < area.Bottom(); y++ {
			for x := area.X; x < area.Right(); x++ {
				if d.Kind == sim.DrawSprite && !d.Sprite.At(x-d.X, y-d.Y) {
					continue
				}
				f.Pix[y*f.W+x] = d.Color
			}
		}
	}
}

// sample picks the color of the block [x0,x1)×[y0,y1). The most frequent
// color other than bg wins so thin lasers survive downsampling.
func (f *Frame) sample(x0, y0, x1, y1 int, bg core.Color) core.Color {
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	var (
		best  = bg
		count = 0
		seen  [8]core.Color
		hits  [8]int
		n     int
	)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c := f.At(x, y)
			if c == bg {
				continue
			}
			i := 0
			for i < n && seen[i] != c {
				i++
			}
			if i == n {
				if n == len(seen) {
					continue
				}
				seen[n] = c
				n++
			}
			hits[i]++
			if hits[i] > count {
				best, count = c, hits[i]
			}
		}
	}
	return best
}

// Downsample writes the frame into dst using one half-block cell per
// 1×2 block of sample areas, stretching the frame over the whole screen.
func (f *Frame) Downsample(dst *core.Screen, bg core.Color) {
	cols, rows := dst.Width(), dst.Height()
	if cols == 0 || rows == 0 {
		return
	}
	sub := rows * 2
	for cy := 0; cy < rows; cy++ {
		ty0, ty1 := (2*cy)*f.H/sub, (2*cy+1)*f.H/sub
		by0, by1 := (2*cy+1)*f.H/sub, (2*cy+2)*f.H/sub
		for cx := 0; cx < cols; cx++ {
			x0, x1 := cx*f.W/cols, (cx+1)*f.W/cols
			dst.SetCell(cx, cy, core.Cell{
				Rune: HalfBlock,
				FG:   f.sample(x0, ty0, x1, ty1, bg),
				BG:   f.sample(x0, by0, x1, by1, bg),
			})
		}
	}
}

// Render draws the current game state into the screen buffer.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.state == nil {
		return
	}

	if dst.Width() < MinScreenW || dst.Height() < MinScreenH {
		dst.DrawTextCentered(dst.Height()/2-1, "Window too small", overlayColor)
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("Need %dx%d", MinScreenW, MinScreenH), hintColor)
		return
	}

	cfg := g.rules.Config()
	if g.fb == nil || g.fb.W != cfg.Screen.Width || g.fb.H != cfg.Screen.Height {
		g.fb = NewFrame(cfg.Screen.Width, cfg.Screen.Height)
	}
	g.fb.Rasterize(g.state.Draw())
	g.fb.Downsample(dst, cfg.Colors.Background.Color())

	g.renderOverlay(dst)
}

// renderOverlay draws pause and game over messages on top of the playfield.
func (g *Game) renderOverlay(dst *core.Screen) {
	mid := dst.Height() / 2
	switch {
	case g.gameOver:
		banner(dst, mid-1, "BOARD CLEARED", overlayColor)
		banner(dst, mid, fmt.Sprintf("Score: %d", g.state.CurrentScore()), overlayColor)
		banner(dst, mid+1, "R to restart, Q to quit", hintColor)
	case g.paused:
		banner(dst, mid, "PAUSED", overlayColor)
		banner(dst, mid+1, "P to resume", hintColor)
	}
}

// banner writes centered text on a black strip so it reads over pixels.
func banner(dst *core.Screen, y int, text string, fg core.Color) {
	w := len([]rune(text)) + 2
	x0 := (dst.Width() - w) / 2
	for x := x0; x < x0+w; x++ {
		dst.SetCell(x, y, core.Cell{Rune: ' ', FG: fg, BG: core.Black})
	}
	dst.DrawText(x0+1, y, text, fg)
}
