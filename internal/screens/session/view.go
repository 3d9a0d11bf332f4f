package session

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	sess "github.com/abhisek/feaquiz/internal/session"
	"github.com/abhisek/feaquiz/internal/ui/components"
	"github.com/abhisek/feaquiz/internal/ui/theme"
)

// renderInfoLine renders the domain, mode, progress and score bar.
func renderInfoLine(width int, snap sess.Snapshot) string {
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s · %s", snap.Domain, snap.Mode))

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  %s %d",
			snap.Position,
			snap.Total,
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			snap.Score,
		))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}
	return infoLine
}

// renderQuestionView renders the active question display.
func (s *SessionScreen) renderQuestionView(width, height int, snap sess.Snapshot) string {
	if snap.Question == nil {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Preparing questions...")
	}

	var b strings.Builder

	b.WriteString(renderInfoLine(width, snap))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n")

	barWidth := min(width-8, 60)
	progress := components.NewProgressBar("Progress", float64(snap.Position-1)/float64(max(snap.Total, 1)), true, barWidth)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, progress.View()))
	b.WriteString("\n")

	if snap.TimeLimit > 0 {
		frac := float64(snap.Remaining) / float64(snap.TimeLimit)
		timer := components.NewProgressBar("Time    ", frac, false, barWidth)
		timer.Suffix = formatClock(snap.Remaining)
		timer.Warn = snap.Remaining <= 5*time.Second
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, timer.View()))
		b.WriteString("\n")
	}

	if s.fallback {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Render(fmt.Sprintf("No questions tagged %q, drawing from the whole bank.", s.requested)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	mc := s.mc
	mc.Width = min(width-8, 76)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, mc.View()))

	if s.hint != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Render(s.hint))
	}

	selectLine := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("\nSelect (A-%s) or use arrows, then Enter", components.Label(len(snap.Question.Options)-1)))
	b.WriteString(selectLine)

	return b.String()
}

// renderFeedback renders the train-mode verdict for the last answer.
func (s *SessionScreen) renderFeedback(width, height int, snap sess.Snapshot) string {
	fb := snap.Feedback

	var b strings.Builder
	b.WriteString(renderInfoLine(width, snap))
	b.WriteString("\n\n")

	mc := s.mc
	mc.Width = min(width-8, 76)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, mc.View()))
	b.WriteString("\n")

	if fb == nil {
		return b.String()
	}

	if fb.Correct {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Success).
			Bold(true).
			Render("Correct!"))
	} else {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Bold(true).
			Render("Incorrect"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("Correct answer: %s", fb.CorrectText)))
	}
	b.WriteString("\n\n")

	if fb.Explanation != "" {
		expStyle := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, expStyle.Render(fb.Explanation)))
		b.WriteString("\n\n")
	}

	next := "Press Enter for the next question"
	if snap.Position >= snap.Total {
		next = "Press Enter to see your results"
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(next))

	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width, height int, snap sess.Snapshot) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("End session early?"))
	b.WriteString("\n")

	left := snap.Total - snap.Answered
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d unanswered question(s) will count as incorrect.", left)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return b.String()
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

// formatClock renders d as m:ss, rounding up so a running timer never shows
// 0:00.
func formatClock(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if d <= 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
