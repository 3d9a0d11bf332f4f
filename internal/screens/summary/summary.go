package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/recorder"
	"github.com/abhisek/feaquiz/internal/report"
	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/session"
	"github.com/abhisek/feaquiz/internal/ui/components"
	"github.com/abhisek/feaquiz/internal/ui/layout"
	"github.com/abhisek/feaquiz/internal/ui/theme"
)

// persistedMsg reports the outcome of background persistence.
type persistedMsg struct {
	Err error
}

// exportDoneMsg reports a finished PDF export.
type exportDoneMsg struct {
	Path string
	Err  error
}

// SummaryScreen displays the result of a finished session.
type SummaryScreen struct {
	env       *screen.Env
	result    *session.Result
	persisted <-chan error

	persistDone bool
	persistErr  error
	outcome     recorder.Outcome

	exporting  bool
	exportPath string
	exportErr  error

	offset int // first review row shown
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.BackHandler = (*SummaryScreen)(nil)

// New creates a SummaryScreen. persisted may be nil when nothing is being
// saved.
func New(env *screen.Env, result *session.Result, persisted <-chan error) *SummaryScreen {
	return &SummaryScreen{env: env, result: result, persisted: persisted}
}

func (s *SummaryScreen) Init() tea.Cmd {
	if s.persisted == nil {
		s.persistDone = true
		return nil
	}
	ch := s.persisted
	return func() tea.Msg {
		return persistedMsg{Err: <-ch}
	}
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

// HandlesBack sends Esc home instead of back to the domain picker.
func (s *SummaryScreen) HandlesBack() bool {
	return true
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "E", Description: "Export PDF"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case persistedMsg:
		s.persistDone = true
		s.persistErr = msg.Err
		if s.env != nil && s.env.Recorder != nil && s.result != nil {
			s.outcome, _ = s.env.Recorder.Outcome(s.result.ID)
		}
		return s, nil

	case exportDoneMsg:
		s.exporting = false
		s.exportPath = msg.Path
		s.exportErr = msg.Err
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "e", "E":
			return s, s.export()
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.result != nil && s.offset < len(s.result.Records)-1 {
				s.offset++
			}
		}
	}
	return s, nil
}

func (s *SummaryScreen) export() tea.Cmd {
	if s.exporting || s.result == nil || s.env == nil {
		return nil
	}
	s.exporting = true
	res := s.result
	dir := s.env.Layout.ReportsDir()
	path := report.DefaultPath(dir, "session", "pdf", s.env.Clock())
	logger := s.env.Log()
	return func() tea.Msg {
		err := report.WriteSessionPDF(path, res)
		if err != nil {
			logger.Warn("export session report", zap.String("path", path), zap.Error(err))
		}
		return exportDoneMsg{Path: path, Err: err}
	}
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	if res == nil {
		return ""
	}

	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder

	title := "Session complete!"
	if res.Answered() < res.Total {
		title = "Session ended early"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), title))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("%s · %s · %s · %s", res.Username, res.Domain, res.Mode, report.FormatElapsed(res.Elapsed))))
	b.WriteString("\n\n")

	scoreStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	switch {
	case res.Percent >= 80:
		scoreStyle = scoreStyle.Foreground(theme.Success)
	case res.Percent < 50:
		scoreStyle = scoreStyle.Foreground(theme.Error)
	}
	b.WriteString(center(scoreStyle,
		fmt.Sprintf("Score: %d / %d        %.2f%%", res.ScoreCount, res.Total, res.Percent)))
	b.WriteString("\n")

	bar := components.NewProgressBar("", res.Percent/100, false, min(width-8, 50))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	b.WriteString(s.renderStatus(width))
	b.WriteString("\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", max(min(width-8, 60), 0)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Review")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")

	used := lipgloss.Height(b.String())
	rows := max(height-used-1, 1)
	b.WriteString(s.renderReview(width, rows))

	return b.String()
}

// renderStatus shows what happened to the result after the session.
func (s *SummaryScreen) renderStatus(width int) string {
	line := func(kind, text string) string {
		style := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
		switch kind {
		case "ok":
			style = style.Foreground(theme.Success)
		case "warn":
			style = style.Foreground(theme.Accent)
		default:
			style = style.Foreground(theme.TextDim)
		}
		return style.Render(text) + "\n"
	}

	var out string
	switch {
	case !s.persistDone:
		out += line("dim", "Saving result...")
	case s.persistErr != nil:
		out += line("warn", "Warning: result not fully saved: "+s.persistErr.Error())
	default:
		out += line("ok", "Result saved.")
	}
	if s.outcome.Rank > 0 {
		out += line("ok", fmt.Sprintf("New %s leaderboard entry at #%d!", s.result.Domain, s.outcome.Rank))
	}
	if s.outcome.ExportPath != "" {
		out += line("dim", "Auto-exported to "+s.outcome.ExportPath)
	}

	switch {
	case s.exporting:
		out += line("dim", "Exporting PDF...")
	case s.exportErr != nil:
		out += line("warn", "Export failed: "+s.exportErr.Error())
	case s.exportPath != "":
		out += line("ok", "Report written to "+s.exportPath)
	}
	return out
}

// renderReview lists the answered questions from the scroll offset.
func (s *SummaryScreen) renderReview(width, rows int) string {
	recs := s.result.Records
	if len(recs) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).
			Foreground(theme.TextDim).Italic(true).
			Render("No questions answered.")
	}

	lineWidth := min(width-8, 76)
	var lines []string
	for i := s.offset; i < len(recs) && len(lines) < rows; i++ {
		rec := recs[i]
		mark := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		if !rec.IsCorrect {
			mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
		prompt := truncate(rec.Question.Prompt, lineWidth-8)
		line := fmt.Sprintf("%s %2d. %s", mark, i+1, prompt)
		if rec.TimedOut {
			line += lipgloss.NewStyle().Foreground(theme.Accent).Render(" (time)")
		}
		lines = append(lines, lipgloss.NewStyle().Width(lineWidth).Render(line))

		if !rec.IsCorrect && len(lines) < rows {
			lines = append(lines, lipgloss.NewStyle().
				Width(lineWidth).
				Foreground(theme.TextDim).
				Render("       → "+truncate(rec.Question.CorrectText(), lineWidth-10)))
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	if n <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
