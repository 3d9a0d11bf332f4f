// Package settings is the preferences form.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/settings"
	"github.com/abhisek/feaquiz/internal/ui/components"
	"github.com/abhisek/feaquiz/internal/ui/layout"
	"github.com/abhisek/feaquiz/internal/ui/theme"
)

// Form rows in focus order.
const (
	fieldUsername = iota
	fieldDarkMode
	fieldQuestions
	fieldExamSeconds
	fieldAutoExport
	fieldSave
	fieldCount
)

// SettingsScreen edits and saves the user preferences.
type SettingsScreen struct {
	env *screen.Env

	username    components.TextInput
	questions   components.TextInput
	examSeconds components.TextInput
	darkMode    bool
	autoExport  bool

	// saved is what the store last held; the save button marks edits to it.
	saved settings.Settings

	focus  int
	status string
	failed bool
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates a form filled with the current settings.
func New(env *screen.Env) *SettingsScreen {
	st := env.CurrentSettings()

	s := &SettingsScreen{
		env:         env,
		username:    components.NewTextInput("Engineer", false, 24),
		questions:   components.NewTextInput("10", true, 2),
		examSeconds: components.NewTextInput("30", true, 3),
		darkMode:    st.DarkMode,
		autoExport:  st.AutoExport,
		saved:       st,
	}
	s.username.SetValue(st.Username)
	s.questions.SetValue(strconv.Itoa(st.NumQuestions))
	s.examSeconds.SetValue(strconv.Itoa(st.ExamSeconds))
	s.setFocus(fieldUsername)
	return s
}

func (s *SettingsScreen) Init() tea.Cmd {
	return s.username.Focus()
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Field"}}
	switch s.focus {
	case fieldDarkMode, fieldAutoExport:
		hints = append(hints, layout.KeyHint{Key: "Space", Description: "Toggle"})
	case fieldSave:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Save"})
	default:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Next"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *SettingsScreen) inputs() []*components.TextInput {
	return []*components.TextInput{&s.username, &s.questions, &s.examSeconds}
}

func (s *SettingsScreen) input(field int) *components.TextInput {
	switch field {
	case fieldUsername:
		return &s.username
	case fieldQuestions:
		return &s.questions
	case fieldExamSeconds:
		return &s.examSeconds
	}
	return nil
}

func (s *SettingsScreen) setFocus(field int) tea.Cmd {
	s.focus = (field + fieldCount) % fieldCount
	for _, in := range s.inputs() {
		in.Blur()
	}
	if in := s.input(s.focus); in != nil {
		return in.Focus()
	}
	return nil
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if in := s.input(s.focus); in != nil {
			var cmd tea.Cmd
			*in, cmd = in.Update(msg)
			return s, cmd
		}
		return s, nil
	}

	switch kmsg.String() {
	case "up", "shift+tab":
		return s, s.setFocus(s.focus - 1)
	case "down", "tab":
		return s, s.setFocus(s.focus + 1)
	}

	switch s.focus {
	case fieldDarkMode, fieldAutoExport:
		switch kmsg.String() {
		case "space", " ", "enter", "left", "right":
			if s.focus == fieldDarkMode {
				s.darkMode = !s.darkMode
			} else {
				s.autoExport = !s.autoExport
			}
		}
		return s, nil

	case fieldSave:
		if kmsg.String() == "enter" {
			return s, s.submit()
		}
		return s, nil
	}

	if kmsg.String() == "enter" {
		return s, s.setFocus(s.focus + 1)
	}
	in := s.input(s.focus)
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return s, cmd
}

// submit validates the form, saves it and announces the new settings.
func (s *SettingsScreen) submit() tea.Cmd {
	st, err := s.collect()
	if err != nil {
		s.status = err.Error()
		s.failed = true
		return nil
	}
	st = st.Normalize()

	if s.env.SettingsDB != nil {
		if err := s.env.SettingsDB.Save(st); err != nil {
			s.env.Log().Error("save settings", zap.Error(err))
			s.status = "Could not save: " + err.Error()
			s.failed = true
			return nil
		}
	}
	s.env.Log().Info("settings saved",
		zap.String("username", st.Username),
		zap.Int("num_questions", st.NumQuestions),
		zap.Int("exam_seconds", st.ExamSeconds),
	)

	// Show clamped values.
	s.username.SetValue(st.Username)
	s.questions.SetValue(strconv.Itoa(st.NumQuestions))
	s.examSeconds.SetValue(strconv.Itoa(st.ExamSeconds))
	s.saved = st
	s.status = "Saved."
	s.failed = false

	return func() tea.Msg { return screen.SettingsChangedMsg{Settings: st} }
}

func (s *SettingsScreen) collect() (settings.Settings, error) {
	n, err := s.questions.NumericValue()
	if err != nil {
		return settings.Settings{}, fmt.Errorf("questions per session must be a number")
	}
	secs, err := s.examSeconds.NumericValue()
	if err != nil {
		return settings.Settings{}, fmt.Errorf("exam seconds must be a number")
	}
	return settings.Settings{
		Username:     strings.TrimSpace(s.username.Value()),
		DarkMode:     s.darkMode,
		NumQuestions: n,
		ExamSeconds:  secs,
		AutoExport:   s.autoExport,
	}, nil
}

// dirty reports whether the form differs from the stored settings. A form
// that does not parse counts as edited.
func (s *SettingsScreen) dirty() bool {
	st, err := s.collect()
	return err != nil || st.Normalize() != s.saved
}

func (s *SettingsScreen) saveButton() string {
	text := "  ▸ SAVE "
	if s.dirty() {
		text = "  ▸ SAVE * "
	}
	if s.focus == fieldSave {
		return theme.ButtonActive.Render(text)
	}
	return theme.ButtonInactive.Render(text)
}

func (s *SettingsScreen) View(width, height int) string {
	labelStyle := lipgloss.NewStyle().Width(22).Foreground(theme.TextDim)
	focusStyle := labelStyle.Foreground(theme.Primary).Bold(true)

	label := func(field int, text string) string {
		if s.focus == field {
			return focusStyle.Render("▸ " + text)
		}
		return labelStyle.Render("  " + text)
	}
	toggle := func(on bool) string {
		if on {
			return lipgloss.NewStyle().Foreground(theme.Success).Render("[x] on")
		}
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("[ ] off")
	}

	rows := []string{
		label(fieldUsername, "Username") + s.username.View(),
		label(fieldDarkMode, "Dark mode") + toggle(s.darkMode),
		label(fieldQuestions, "Questions per session") + s.questions.View(),
		label(fieldExamSeconds, "Exam seconds") + s.examSeconds.View(),
		label(fieldAutoExport, "Auto-export PDF") + toggle(s.autoExport),
		"",
		s.saveButton(),
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Card.Width(min(width-8, 60)).Render(strings.Join(rows, "\n"))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Questions %d-%d · exam seconds %d-%d",
			settings.MinQuestions, settings.MaxQuestions,
			settings.MinExamSeconds, settings.MaxExamSeconds)))

	if s.status != "" {
		c := theme.Success
		if s.failed {
			c = theme.Error
		}
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(c).Render(s.status))
	}
	return b.String()
}
