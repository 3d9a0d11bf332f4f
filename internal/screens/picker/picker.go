// Package picker lets the user choose which domain to quiz on.
package picker

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen"
	sessionscreen "github.com/abhisek/feaquiz/internal/screens/session"
	"github.com/abhisek/feaquiz/internal/session"
	"github.com/abhisek/feaquiz/internal/ui/components"
	"github.com/abhisek/feaquiz/internal/ui/layout"
	"github.com/abhisek/feaquiz/internal/ui/theme"
)

// PickerScreen lists the bank's domains for a train or exam run.
type PickerScreen struct {
	env     *screen.Env
	mode    session.Mode
	domains []bank.Domain
	menu    components.Menu
	errMsg  string
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)

// New creates a picker that starts sessions in mode.
func New(env *screen.Env, mode session.Mode) *PickerScreen {
	s := &PickerScreen{env: env, mode: mode}

	s.domains = append(s.domains, bank.DomainAll)
	if env != nil && env.Bank != nil {
		s.domains = append(s.domains, env.Bank.Domains()...)
	}

	items := make([]components.MenuItem, 0, len(s.domains))
	for _, d := range s.domains {
		item := components.MenuItem{
			Label:    d.String(),
			Action:   func() tea.Cmd { return s.start(d) },
			Disabled: env == nil || env.Bank == nil,
		}
		if !item.Disabled {
			item.Badge, item.Hint = s.describe(d)
		}
		items = append(items, item)
	}
	s.menu = components.NewMenu(items)
	return s
}

// describe returns the question count badge and a one-line note for d.
func (s *PickerScreen) describe(d bank.Domain) (badge, hint string) {
	want := s.env.CurrentSettings().NumQuestions
	n := s.env.Bank.Count(d)
	badge = fmt.Sprintf("%d", n)
	switch {
	case n < want:
		hint = fmt.Sprintf("Short run: only %d of %d questions available", n, want)
	case d.IsAll():
		hint = fmt.Sprintf("%d questions mixed from %d domains", want, len(s.env.Bank.Domains()))
	default:
		hint = fmt.Sprintf("%d of %d questions drawn at random", want, n)
	}
	return badge, hint
}

// start builds the quiz screen and swaps it in for the picker so that
// leaving the results returns straight home.
func (s *PickerScreen) start(d bank.Domain) tea.Cmd {
	next, err := sessionscreen.Start(s.env, d, s.mode)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.errMsg = ""
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (s *PickerScreen) Init() tea.Cmd {
	return nil
}

func (s *PickerScreen) Title() string {
	return s.mode.String() + " · Choose domain"
}

func (s *PickerScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); !ok {
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *PickerScreen) View(width, height int) string {
	var b strings.Builder

	heading := "Training run"
	if s.mode == session.ModeExam {
		heading = "Timed exam"
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).
		Foreground(theme.Primary).Bold(true).
		Render(heading))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(s.settingsLine()))
	b.WriteString("\n\n")

	card := theme.Card.Width(min(width-8, 64)).Render(strings.TrimRight(s.menu.View(), "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("Could not start: " + s.errMsg))
	}
	return b.String()
}

func (s *PickerScreen) settingsLine() string {
	if s.env == nil {
		return ""
	}
	st := s.env.CurrentSettings()
	line := fmt.Sprintf("%d questions as %s", st.NumQuestions, st.Username)
	if s.mode == session.ModeExam {
		line += fmt.Sprintf(" · %ds per question", st.ExamSeconds)
	} else {
		line += " · feedback after each answer"
	}
	return line
}
