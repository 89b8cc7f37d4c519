// Package sprite holds the pixel bitmaps used by the invaders simulation:
// the text-art loader, the embedded art set and the Bitmap type itself.
package sprite

import (
	"strings"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

// Bitmap is a W×H grid of on/off pixels drawn in a single color.
// Pixels are stored in row-major order: index = y*W + x.
type Bitmap struct {
	W      int
	H      int
	Color  core.Color
	Pixels []bool
}

// New creates an all-off bitmap.
func New(w, h int, color core.Color) *Bitmap {
	return &Bitmap{
		W:      w,
		H:      h,
		Color:  color,
		Pixels: make([]bool, w*h),
	}
}

// InBounds returns true if (x, y) is a pixel of the bitmap.
func (b *Bitmap) InBounds(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// At reports whether the pixel at (x, y) is on. Out of bounds is off.
func (b *Bitmap) At(x, y int) bool {
	if !b.InBounds(x, y) {
		return false
	}
	return b.Pixels[y*b.W+x]
}

// Set turns the pixel at (x, y) on.
func (b *Bitmap) Set(x, y int) {
	if b.InBounds(x, y) {
		b.Pixels[y*b.W+x] = true
	}
}

// Clear turns the pixel at (x, y) off and reports whether it was on.
func (b *Bitmap) Clear(x, y int) bool {
	if !b.InBounds(x, y) {
		return false
	}
	i := y*b.W + x
	was := b.Pixels[i]
	b.Pixels[i] = false
	return was
}

// OnCount returns the number of lit pixels.
func (b *Bitmap) OnCount() int {
	n := 0
	for _, on := range b.Pixels {
		if on {
			n++
		}
	}
	return n
}

// Bounds returns the bitmap's rectangle when anchored at (x, y).
func (b *Bitmap) Bounds(x, y int) core.Rect {
	return core.NewRect(x, y, b.W, b.H)
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	pixels := make([]bool, len(b.Pixels))
	copy(pixels, b.Pixels)
	return &Bitmap{W: b.W, H: b.H, Color: b.Color, Pixels: pixels}
}

// Equal returns true if both bitmaps have the same size, color and pixels.
func (b *Bitmap) Equal(other *Bitmap) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.W != other.W || b.H != other.H || b.Color != other.Color {
		return false
	}
	for i, on := range b.Pixels {
		if on != other.Pixels[i] {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every lit pixel of b is also lit in other.
func (b *Bitmap) SubsetOf(other *Bitmap) bool {
	if b.W != other.W || b.H != other.H {
		return false
	}
	for i, on := range b.Pixels {
		if on && !other.Pixels[i] {
			return false
		}
	}
	return true
}

// Rows exports the bitmap as text art using the default symbols.
// Parse(Rows...) reproduces the bitmap.
func (b *Bitmap) Rows() []string {
	rows := make([]string, b.H)
	var sb strings.Builder
	for y := 0; y < b.H; y++ {
		sb.Reset()
		for x := 0; x < b.W; x++ {
			if b.Pixels[y*b.W+x] {
				sb.WriteRune(DefaultOn)
			} else {
				sb.WriteRune(DefaultOff)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}
