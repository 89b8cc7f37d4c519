package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB color. The simulation works in the colors of the
// arcade cabinet palette; the terminal renderer converts them to hex styles.
type Color struct {
	R uint8 `json:"r" msgpack:"r" yaml:"r"`
	G uint8 `json:"g" msgpack:"g" yaml:"g"`
	B uint8 `json:"b" msgpack:"b" yaml:"b"`
}

// RGB builds a color from its components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Common palette entries.
var (
	Black = RGB(0, 0, 0)
	White = RGB(255, 255, 255)
)

// Hex returns the color as a lowercase "#rrggbb" string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// ParseHex parses "#rrggbb" (the leading '#' is optional).
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("color %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil //#nosec G115 -- masked to 8 bits by conversion
}
