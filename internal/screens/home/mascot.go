package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feaquiz/internal/ui/theme"
)

// MascotVariant selects which mesh art to display.
type MascotVariant int

const (
	MascotIdle      MascotVariant = iota // No history yet, or middling scores
	MascotConverged                      // Last session scored 80% or more
	MascotDiverged                       // Last session scored below 50%
)

const mascotIdle = `┌───┬───┐
│ ◉ │ ◉ │
├───┼───┤
│  ╶┴╴  │
└───────┘`

const mascotConverged = `┌───┬───┐
│ ★ │ ★ │
├───┼───┤
│ ╰───╯ │
└───────┘
 ✓ converged`

const mascotDiverged = `┌───┬───┐
│ ◉ │ ◉ │ !
├───┼───┤
│ ╭───╮ │
└───────┘
 ✗ diverged`

// MascotFor picks the variant for the most recent session percentage.
// A negative pct means there is no history.
func MascotFor(pct float64) MascotVariant {
	switch {
	case pct < 0:
		return MascotIdle
	case pct >= 80:
		return MascotConverged
	case pct < 50:
		return MascotDiverged
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mesh art for the given variant.
func RenderMascot(variant ...MascotVariant) string {
	v := MascotIdle
	if len(variant) > 0 {
		v = variant[0]
	}

	var art string
	var fg = theme.Primary

	switch v {
	case MascotConverged:
		art = mascotConverged
		fg = theme.ArcadeYellow
	case MascotDiverged:
		art = mascotDiverged
		fg = theme.Accent
	default:
		art = mascotIdle
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
