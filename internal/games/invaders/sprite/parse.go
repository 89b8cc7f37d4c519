package sprite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

// Default text-art symbols.
const (
	DefaultOn  = 'X'
	DefaultOff = '.'
)

// ErrUnsupportedScale is returned when art is requested at a scale other
// than 1. Sprites are authored at their simulation size.
var ErrUnsupportedScale = errors.New("sprite: only scale 1 is supported")

// ErrEmptyArt is returned for art with no rows or no columns.
var ErrEmptyArt = errors.New("sprite: empty art")

// ParseError describes an unexpected symbol or a ragged row in text art.
type ParseError struct {
	Line   int // 1-based
	Column int // 1-based, 0 for row-length errors
	Symbol rune
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Column == 0 {
		return fmt.Sprintf("sprite: line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("sprite: line %d col %d: cannot construct pixel from %q, %s",
		e.Line, e.Column, e.Symbol, e.Msg)
}

// Parse builds a bitmap from text art where on marks a lit pixel and off an
// unlit one. Every other symbol is an error. All rows must have equal width.
// A single trailing newline is ignored.
func Parse(text string, color core.Color, on, off rune, scale int) (*Bitmap, error) {
	if scale != 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrUnsupportedScale, scale)
	}

	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil, ErrEmptyArt
	}
	lines := strings.Split(text, "\n")

	width := len([]rune(lines[0]))
	if width == 0 {
		return nil, ErrEmptyArt
	}

	b := New(width, len(lines), color)
	for y, line := range lines {
		runes := []rune(line)
		if len(runes) != width {
			return nil, &ParseError{
				Line: y + 1,
				Msg:  fmt.Sprintf("row has %d pixels, expected %d", len(runes), width),
			}
		}
		for x, ch := range runes {
			switch ch {
			case on:
				b.Pixels[y*width+x] = true
			case off:
			default:
				return nil, &ParseError{
					Line:   y + 1,
					Column: x + 1,
					Symbol: ch,
					Msg:    fmt.Sprintf("expected one of (on=%q, off=%q)", on, off),
				}
			}
		}
	}
	return b, nil
}

// ParseDefault parses art drawn with 'X' (on) and '.' (off) at scale 1.
func ParseDefault(text string, color core.Color) (*Bitmap, error) {
	return Parse(text, color, DefaultOn, DefaultOff, 1)
}

// FromRows parses rows produced by Bitmap.Rows.
func FromRows(rows []string, color core.Color) (*Bitmap, error) {
	return ParseDefault(strings.Join(rows, "\n"), color)
}
