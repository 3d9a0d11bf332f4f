// Package leaderboard shows the top sessions per domain.
package leaderboard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/store"
	"github.com/abhisek/feaquiz/internal/ui/layout"
	"github.com/abhisek/feaquiz/internal/ui/theme"
)

type boardsLoadedMsg struct {
	Boards map[string][]store.LeaderboardEntry
	Err    error
}

// LeaderboardScreen renders one domain's ranking at a time.
type LeaderboardScreen struct {
	env    *screen.Env
	tabs   []string
	tab    int
	boards map[string][]store.LeaderboardEntry
	loaded bool
	errMsg string
}

var _ screen.Screen = (*LeaderboardScreen)(nil)
var _ screen.KeyHintProvider = (*LeaderboardScreen)(nil)

// New creates a LeaderboardScreen. The tabs cover "All" and every known
// domain even before anything is ranked.
func New(env *screen.Env) *LeaderboardScreen {
	tabs := []string{bank.DomainAll.String()}
	for _, d := range bank.Domains {
		tabs = append(tabs, d.String())
	}
	return &LeaderboardScreen{env: env, tabs: tabs}
}

func (s *LeaderboardScreen) Init() tea.Cmd {
	env := s.env
	return func() tea.Msg {
		if env == nil || env.Leaderboard == nil {
			return boardsLoadedMsg{}
		}
		boards, err := env.Leaderboard.All()
		return boardsLoadedMsg{Boards: boards, Err: err}
	}
}

func (s *LeaderboardScreen) Title() string {
	return "Leaderboard"
}

func (s *LeaderboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←→", Description: "Domain"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LeaderboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case boardsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.boards = msg.Boards
		for name := range msg.Boards {
			if !s.hasTab(name) {
				s.tabs = append(s.tabs, name)
			}
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "left", "h":
			s.tab = (s.tab - 1 + len(s.tabs)) % len(s.tabs)
		case "right", "l", "tab":
			s.tab = (s.tab + 1) % len(s.tabs)
		}
	}
	return s, nil
}

func (s *LeaderboardScreen) hasTab(name string) bool {
	for _, t := range s.tabs {
		if t == name {
			return true
		}
	}
	return false
}

// Current returns the domain whose ranking is shown.
func (s *LeaderboardScreen) Current() string {
	return s.tabs[s.tab]
}

func (s *LeaderboardScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading leaderboard...")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderTabs()))
	b.WriteString("\n\n")

	entries := s.boards[s.Current()]
	if len(entries) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).
			Foreground(theme.TextDim).Italic(true).
			Render(fmt.Sprintf("No %s scores yet.", s.Current())))
		return b.String()
	}

	header := fmt.Sprintf("%-4s %-16s %8s %8s %-5s %-16s", "#", "User", "Score", "Time", "Mode", "Date")
	lines := []string{lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).Render(header)}
	for i, e := range entries {
		row := fmt.Sprintf("%-4d %-16s %7.2f%% %7.1fs %-5s %-16s",
			i+1, clip(e.Username, 16), e.Score, e.Time, e.Mode, e.Date)
		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch i {
		case 0:
			style = style.Foreground(theme.ArcadeYellow).Bold(true)
		case 1, 2:
			style = style.Foreground(theme.Secondary)
		}
		lines = append(lines, style.Render(row))
	}
	table := theme.Card.Render(strings.Join(lines, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, table))
	return b.String()
}

func (s *LeaderboardScreen) renderTabs() string {
	parts := make([]string, 0, len(s.tabs))
	for i, name := range s.tabs {
		if i == s.tab {
			parts = append(parts, theme.ButtonActive.Render(" "+name+" "))
		} else {
			parts = append(parts, theme.ButtonInactive.Render(" "+name+" "))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
