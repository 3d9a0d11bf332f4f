package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/report"
	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/stats"
	"github.com/abhisek/feaquiz/internal/store"
	"github.com/abhisek/feaquiz/internal/ui/layout"
	"github.com/abhisek/feaquiz/internal/ui/theme"
)

// weakLimit is how many low-accuracy questions are listed.
const weakLimit = 3

// weakQuestion is a journal statistic joined with its prompt.
type weakQuestion struct {
	Stat   store.QuestionStat
	Prompt string
}

type historyLoadedMsg struct {
	Records []store.HistoryRecord // newest first
	Summary map[string]stats.DomainStats
	Weak    []weakQuestion
	Err     error
}

type exportDoneMsg struct {
	Paths []string
	Err   error
}

// HistoryScreen displays past sessions with per-domain aggregates.
type HistoryScreen struct {
	env      *screen.Env
	records  []store.HistoryRecord
	summary  map[string]stats.DomainStats
	weak     []weakQuestion
	selected int
	loaded   bool
	errMsg   string

	exportMsg string
	exportErr bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(env *screen.Env) *HistoryScreen {
	return &HistoryScreen{env: env}
}

func (s *HistoryScreen) Init() tea.Cmd {
	env := s.env
	return func() tea.Msg {
		if env == nil || env.History == nil {
			return historyLoadedMsg{Summary: map[string]stats.DomainStats{}}
		}

		recs, err := env.History.Load()
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		summary := stats.SummarizeByDomain(recs)

		newest := make([]store.HistoryRecord, len(recs))
		for i, r := range recs {
			newest[len(recs)-1-i] = r
		}

		var weak []weakQuestion
		if env.Journal != nil {
			qs, err := env.Journal.QuestionStats(context.Background(), "", weakLimit)
			if err != nil {
				env.Log().Warn("load question stats", zap.Error(err))
			}
			for _, st := range qs {
				w := weakQuestion{Stat: st, Prompt: st.QuestionID}
				if env.Bank != nil {
					if q, ok := env.Bank.Lookup(st.QuestionID); ok {
						w.Prompt = q.Prompt
					}
				}
				weak = append(weak, w)
			}
		}

		return historyLoadedMsg{Records: newest, Summary: summary, Weak: weak}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "X", Description: "Export XLSX"},
		{Key: "P", Description: "Export PDF"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Records
			s.summary = msg.Summary
			s.weak = msg.Weak
		}
		s.loaded = true
		return s, nil

	case exportDoneMsg:
		if msg.Err != nil {
			s.exportMsg = "Export failed: " + msg.Err.Error()
			s.exportErr = true
		} else {
			s.exportMsg = "Wrote " + strings.Join(msg.Paths, ", ")
			s.exportErr = false
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
			return s, nil
		case "x", "X":
			return s, s.exportXLSX()
		case "p", "P":
			return s, s.exportPDF()
		}
	}
	return s, nil
}

// exportXLSX writes the history workbook including every leaderboard.
func (s *HistoryScreen) exportXLSX() tea.Cmd {
	if !s.loaded || s.env == nil {
		return nil
	}
	env := s.env
	recs := oldestFirst(s.records)
	summary := s.summary
	path := report.DefaultPath(env.Layout.ReportsDir(), "history", "xlsx", env.Clock())
	return func() tea.Msg {
		var boards map[string][]store.LeaderboardEntry
		if env.Leaderboard != nil {
			b, err := env.Leaderboard.All()
			if err != nil {
				env.Log().Warn("load leaderboard for export", zap.Error(err))
			}
			boards = b
		}
		if err := report.WriteHistoryXLSX(path, recs, summary, boards); err != nil {
			return exportDoneMsg{Err: err}
		}
		return exportDoneMsg{Paths: []string{path}}
	}
}

// exportPDF writes the summary report.
func (s *HistoryScreen) exportPDF() tea.Cmd {
	if !s.loaded || s.env == nil {
		return nil
	}
	env := s.env
	recs := oldestFirst(s.records)
	summary := s.summary
	path := report.DefaultPath(env.Layout.ReportsDir(), "summary", "pdf", env.Clock())
	return func() tea.Msg {
		if err := report.WriteSummaryPDF(path, recs, summary); err != nil {
			return exportDoneMsg{Err: err}
		}
		return exportDoneMsg{Paths: []string{path}}
	}
}

func oldestFirst(newest []store.HistoryRecord) []store.HistoryRecord {
	out := make([]store.HistoryRecord, len(newest))
	for i, r := range newest {
		out[len(newest)-1-i] = r
	}
	return out
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No sessions yet. Run a quiz to start your record!")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderOverview(width))
	b.WriteString("\n")
	b.WriteString(s.renderDomainTable(width))
	b.WriteString("\n")
	if len(s.weak) > 0 {
		b.WriteString(s.renderWeak(width))
		b.WriteString("\n")
	}
	if s.exportMsg != "" {
		c := theme.Success
		if s.exportErr {
			c = theme.Error
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(c).Render(s.exportMsg))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	rows := max(height-lipgloss.Height(b.String())-1, 1)
	b.WriteString(s.renderSessions(width, rows))
	return b.String()
}

func (s *HistoryScreen) renderOverview(width int) string {
	sessions, avg := stats.Overall(oldestFirst(s.records))
	line := fmt.Sprintf("%d sessions · %.2f%% average", sessions, avg)
	if best, worst, ok := stats.BestAndWorstDomain(s.summary); ok {
		line += fmt.Sprintf(" · strongest %s · weakest %s", best, worst)
	}
	return lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).
		Foreground(theme.Secondary).Bold(true).
		Render(line)
}

func (s *HistoryScreen) renderDomainTable(width int) string {
	header := fmt.Sprintf("%-12s %8s %8s %8s %8s", "Domain", "Sessions", "Avg %", "Best %", "Worst %")
	lines := []string{lipgloss.NewStyle().Foreground(theme.TextDim).Render(header)}
	for _, d := range stats.SortedDomains(s.summary) {
		st := s.summary[d]
		row := fmt.Sprintf("%-12s %8d %8.2f %8.2f %8.2f", d, st.Sessions, st.AvgPct, st.BestPct, st.WorstPct)
		lines = append(lines, lipgloss.NewStyle().Foreground(pctColor(st.AvgPct)).Render(row))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(lines, "\n"))
}

func (s *HistoryScreen) renderWeak(width int) string {
	lineWidth := min(width-8, 72)
	lines := []string{lipgloss.NewStyle().Foreground(theme.TextDim).Render("Questions to revisit")}
	for _, w := range s.weak {
		prefix := fmt.Sprintf("%3.0f%% of %d  ", w.Stat.Accuracy*100, w.Stat.Attempts)
		prompt := []rune(w.Prompt)
		if room := lineWidth - len(prefix); room > 1 && len(prompt) > room {
			prompt = append(prompt[:room-1], '…')
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Accent).Render(prefix+string(prompt)))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(lineWidth).Render(strings.Join(lines, "\n")))
}

// renderSessions lists sessions newest first, keeping the selection in view.
func (s *HistoryScreen) renderSessions(width, rows int) string {
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}

	var lines []string
	for i := start; i < len(s.records) && len(lines) < rows; i++ {
		rec := s.records[i]
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %-10s %-5s %3d questions  %6.2f%%",
			prefix, rec.Timestamp.Format("Jan 02, 2006 15:04"), rec.Domain, rec.Mode, rec.Total, rec.Percent)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		lines = append(lines, style.Render(line))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(lines, "\n"))
}

func pctColor(pct float64) color.Color {
	switch {
	case pct >= 80:
		return theme.Success
	case pct < 50:
		return theme.Error
	default:
		return theme.Text
	}
}
