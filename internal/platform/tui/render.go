package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

// cellColors is the style key of a run of cells.
type cellColors struct {
	fg, bg core.Color
}

// styleCache memoizes lipgloss styles by color pair. Frames reuse a small
// palette, so the cache stays tiny.
type styleCache map[cellColors]lipgloss.Style

func (c styleCache) get(k cellColors) lipgloss.Style {
	if s, ok := c[k]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(k.fg.Hex())).
		Background(lipgloss.Color(k.bg.Hex()))
	c[k] = s
	return s
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colors to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	return renderScreen(s, make(styleCache))
}

func renderScreen(s *core.Screen, styles styleCache) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*4 + s.Height())

	var run strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y)
			colors := cellColors{start.FG, start.BG}

			run.Reset()
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.FG != colors.fg || cell.BG != colors.bg {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			sb.WriteString(styles.get(colors).Render(run.String()))
		}
	}
	return sb.String()
}
