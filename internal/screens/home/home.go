package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/screens/history"
	"github.com/abhisek/feaquiz/internal/screens/leaderboard"
	"github.com/abhisek/feaquiz/internal/screens/picker"
	settingsscreen "github.com/abhisek/feaquiz/internal/screens/settings"
	"github.com/abhisek/feaquiz/internal/session"
	"github.com/abhisek/feaquiz/internal/stats"
	"github.com/abhisek/feaquiz/internal/ui/components"
	"github.com/abhisek/feaquiz/internal/ui/layout"
)

// dashboard is the history digest shown above the menu.
type dashboard struct {
	sessions int
	avg      float64
	best     string
	last     float64 // -1 without history
}

// historyItem is the menu index whose badge counts recorded sessions.
const historyItem = 2

type dashboardLoadedMsg struct {
	dash dashboard
}

// HomeScreen is the main menu.
type HomeScreen struct {
	env           *screen.Env
	menu          components.Menu
	dash          dashboard
	mascotVariant MascotVariant
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(env *screen.Env) *HomeScreen {
	push := func(s screen.Screen) tea.Cmd {
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}

	items := []components.MenuItem{
		{Label: "TRAIN", Action: func() tea.Cmd {
			return push(picker.New(env, session.ModeTrain))
		}},
		{Label: "EXAM", Action: func() tea.Cmd {
			return push(picker.New(env, session.ModeExam))
		}},
		{Label: "HISTORY", Action: func() tea.Cmd {
			return push(history.New(env))
		}},
		{Label: "LEADERBOARD", Action: func() tea.Cmd {
			return push(leaderboard.New(env))
		}},
		{Label: "SETTINGS", Action: func() tea.Cmd {
			return push(settingsscreen.New(env))
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		env:  env,
		menu: components.NewMenu(items),
		dash: dashboard{last: -1},
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadDashboard()
}

// Resume refreshes the dashboard after returning from a quiz.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadDashboard()
}

func (h *HomeScreen) loadDashboard() tea.Cmd {
	env := h.env
	return func() tea.Msg {
		d := dashboard{last: -1}
		if env == nil || env.History == nil {
			return dashboardLoadedMsg{dash: d}
		}
		records, err := env.History.Load()
		if err != nil {
			env.Log().Warn("load history for dashboard", zap.Error(err))
			return dashboardLoadedMsg{dash: d}
		}
		d.sessions, d.avg = stats.Overall(records)
		if best, _, ok := stats.BestAndWorstDomain(stats.SummarizeByDomain(records)); ok {
			d.best = best
		}
		if len(records) > 0 {
			d.last = records[len(records)-1].Percent
		}
		return dashboardLoadedMsg{dash: d}
	}
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(dashboardLoadedMsg); ok {
		h.dash = m.dash
		h.mascotVariant = MascotFor(m.dash.last)
		h.menu.Items[historyItem].Badge = ""
		if m.dash.sessions > 0 {
			h.menu.Items[historyItem].Badge = fmt.Sprintf("%d", m.dash.sessions)
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	// All sections share a uniform content width so they line up.
	cw := contentWidth(width)

	var sections []string

	sections = append(sections, renderTitle(cw, compact))

	if !compact {
		sections = append(sections, renderMascotBox(h.mascotVariant, cw))
	}

	sections = append(sections, renderStatsBar(h.dash, cw, compact))

	if compact {
		sections = append(sections, renderArcadeMenuCompact(h.menu, cw))
	} else {
		sections = append(sections, renderArcadeMenu(h.menu, cw))
	}

	if h.env != nil && h.env.Bank != nil {
		sections = append(sections, renderBankNote(h.env.Bank.Len(), h.env.Bank.Version(), cw))
	}

	content := strings.Join(sections, "\n\n")

	return cabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
