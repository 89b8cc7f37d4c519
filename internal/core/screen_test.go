package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 || s.Height() != 24 {
		t.Fatalf("dimensions = %dx%d, expected 80x24", s.Width(), s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != ' ' {
				t.Fatalf("new screen should be blank, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestScreenSetCell(t *testing.T) {
	s := NewScreen(10, 10)
	red := RGB(255, 0, 0)

	s.SetCell(5, 5, Cell{Rune: '▀', FG: red, BG: Black})
	c := s.GetCell(5, 5)
	if c.Rune != '▀' || c.FG != red || c.BG != Black {
		t.Errorf("GetCell(5, 5) = %+v", c)
	}

	// Out of bounds is silent
	s.SetCell(-1, 0, Cell{Rune: 'A'})
	s.SetCell(0, 100, Cell{Rune: 'A'})
	if s.Get(-1, 0) != ' ' {
		t.Error("out of bounds Get should return space")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 4)
	s.DrawText(0, 0, "XXXX", White)
	s.Clear()

	if s.Row(0) != "    " {
		t.Errorf("after Clear row 0 = %q", s.Row(0))
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(20, 5)
	green := RGB(0, 255, 0)
	s.DrawText(2, 1, "Hello", green)

	if !strings.HasPrefix(s.Row(1)[2:], "Hello") {
		t.Errorf("row 1 = %q", s.Row(1))
	}
	if s.GetCell(2, 1).FG != green {
		t.Error("DrawText should set the foreground color")
	}

	// Clipped at the right edge
	s.DrawText(18, 0, "Hello", green)
	if s.Get(18, 0) != 'H' || s.Get(19, 0) != 'e' {
		t.Error("text should be clipped at right boundary")
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(20, 3)
	s.DrawTextCentered(1, "Hi", White)

	x := (20 - 2) / 2
	if s.Get(x, 1) != 'H' || s.Get(x+1, 1) != 'i' {
		t.Error("text not centered")
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(3, 2)
	s.DrawText(0, 0, "AAA", White)
	s.DrawText(0, 1, "BBB", White)

	if got := s.String(); got != "AAA\nBBB" {
		t.Errorf("String() = %q", got)
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(10, 10)
	s.Resize(8, 4)
	if s.Width() != 8 || s.Height() != 4 {
		t.Errorf("after resize dimensions = %dx%d", s.Width(), s.Height())
	}
	if len(s.Row(3)) != 8 {
		t.Errorf("row length = %d, expected 8", len(s.Row(3)))
	}
}
