package sim

import (
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders/sprite"
)

// Collides reports whether r covers at least one lit pixel of b anchored at
// (x, y). The bitmap is not modified.
func Collides(r core.Rect, x, y int, b *sprite.Bitmap) bool {
	area := r.Intersection(b.Bounds(x, y))
	if area.Empty() {
		return false
	}
	for py := area.Y; py < area.Bottom(); py++ {
		for px := area.X; px < area.Right(); px++ {
			if b.At(px-x, py-y) {
				return true
			}
		}
	}
	return false
}

// Erode clears every lit pixel of b (anchored at (x, y)) that r covers and
// reports whether any pixel changed.
func Erode(r core.Rect, x, y int, b *sprite.Bitmap) bool {
	area := r.Intersection(b.Bounds(x, y))
	if area.Empty() {
		return false
	}
	changed := false
	for py := area.Y; py < area.Bottom(); py++ {
		for px := area.X; px < area.Right(); px++ {
			if b.Clear(px-x, py-y) {
				changed = true
			}
		}
	}
	return changed
}
