package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/feaquiz/internal/ui/components"
	"github.com/abhisek/feaquiz/internal/ui/theme"
)

const arcadeTitleFull = ` ┏━╸┏━╸┏━┓   ┏━┓╻ ╻╻╺━┓
 ┣╸ ┣╸ ┣━┫   ┃┓┃┃ ┃┃┏━┛
 ╹  ┗━╸╹ ╹   ┗┻┛┗━┛╹┗━╸`

const arcadeTitleCompact = "F · E · A   Q · U · I · Z"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true)

	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(st dashboard, cw int, compact bool) string {
	sessionStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	avgStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	bestStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	best := dimStyle.Render("n/a")
	if st.best != "" {
		best = bestStyle.Render(st.best)
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			sessionStyle.Render(fmt.Sprintf("#%d", st.sessions)),
			avgStyle.Render(fmt.Sprintf("%.0f%%", st.avg)),
			best,
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			sessionStyle.Render(fmt.Sprintf("%d SESSIONS", st.sessions)),
			avgStyle.Render(fmt.Sprintf("AVG %.1f%%", st.avg)),
			dimStyle.Render("BEST ")+best,
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// contentWidth is the shared inner width of every home section, leaving room
// for the cabinet border and padding.
func contentWidth(frameWidth int) int {
	return max(20, min(frameWidth-6, 60))
}

// cabinetFrame centres content inside a double border filling the screen.
func cabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// buttonText joins an item's label and badge, e.g. "HISTORY · 12".
func buttonText(item components.MenuItem) string {
	if item.Badge == "" {
		return item.Label
	}
	return item.Label + " · " + item.Badge
}

// renderButton draws one bordered menu button; the selected one is filled.
func renderButton(item components.MenuItem, selected bool) string {
	style := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if selected {
		return style.
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			BorderForeground(theme.ArcadeYellow).
			Render("▸ " + buttonText(item))
	}
	return style.
		Foreground(theme.Text).
		BorderForeground(theme.Border).
		Render(buttonText(item))
}

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(m components.Menu, cw int) string {
	buttons := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		buttons = append(buttons, renderButton(item, i == m.Selected))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as simple text lines (no borders)
// for small terminals where bordered buttons would overflow.
func renderArcadeMenuCompact(m components.Menu, cw int) string {
	lines := make([]string, 0, len(m.Items))
	for i, item := range m.Items {
		var line string
		if i == m.Selected {
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render(" ▸ " + buttonText(item) + " ")
		} else {
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + buttonText(item))
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderBankNote renders a dim line describing the loaded question bank.
func renderBankNote(questions int, version string, cw int) string {
	text := fmt.Sprintf("%d questions · bank %s", questions, version)
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render(text)
}

// renderMascotBox renders the mesh art centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
