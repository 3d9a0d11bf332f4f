package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/screen/screentest"
	"github.com/abhisek/feaquiz/internal/settings"
	"github.com/abhisek/feaquiz/internal/ui/theme"
)

// step feeds msg to m and applies any router message the command yields.
func step(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(AppModel)
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case router.PushScreenMsg, router.PopScreenMsg, router.ReplaceScreenMsg, router.PopToRootMsg:
		next, _ = m.Update(out)
		m = next.(AppModel)
	}
	return m
}

func TestApp_WelcomeThenHome(t *testing.T) {
	m := newAppModel(screentest.Env(t, nil))
	if m.router.Active().Title() != "" {
		t.Fatal("expected the welcome screen first")
	}

	m = step(t, m, tea.KeyPressMsg{Code: 'x', Text: "x"})
	if got := m.router.Active().Title(); got != "Home" {
		t.Fatalf("active = %q, want Home", got)
	}
	if m.router.Depth() != 1 {
		t.Errorf("Depth = %d, want 1", m.router.Depth())
	}
}

func TestApp_EscPopsPlainScreens(t *testing.T) {
	m := newAppModel(screentest.Env(t, nil))
	m = step(t, m, tea.KeyPressMsg{Code: 'x', Text: "x"})

	m = step(t, m, router.PushScreenMsg{Screen: &stubScreen{}})
	if m.router.Depth() != 2 {
		t.Fatalf("Depth = %d, want 2", m.router.Depth())
	}

	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.router.Depth() != 1 {
		t.Errorf("Esc should pop, Depth = %d", m.router.Depth())
	}
}

func TestApp_EscGoesToBackHandler(t *testing.T) {
	m := newAppModel(screentest.Env(t, nil))
	m = step(t, m, tea.KeyPressMsg{Code: 'x', Text: "x"})

	s := &stubScreen{handlesBack: true}
	m = step(t, m, router.PushScreenMsg{Screen: s})
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})

	if m.router.Depth() != 2 {
		t.Error("a back handler must keep the screen on the stack")
	}
	if s.escapes != 1 {
		t.Errorf("screen saw %d escapes, want 1", s.escapes)
	}
}

func TestApp_SettingsChangedAppliesTheme(t *testing.T) {
	t.Cleanup(func() { theme.Apply(true) })

	env := screentest.Env(t, nil)
	m := newAppModel(env)

	st := settings.Defaults()
	st.DarkMode = false
	st.Username = "ana"
	m = step(t, m, screen.SettingsChangedMsg{Settings: st})

	if theme.IsDark() {
		t.Error("light palette should be active")
	}
	if got := env.CurrentSettings().Username; got != "ana" {
		t.Errorf("Username = %q, want ana", got)
	}
}

func TestApp_CtrlCQuits(t *testing.T) {
	m := newAppModel(screentest.Env(t, nil))
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

type stubScreen struct {
	handlesBack bool
	escapes     int
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Title() string { return "stub" }
func (s *stubScreen) View(int, int) string {
	return "stub"
}
func (s *stubScreen) HandlesBack() bool { return s.handlesBack }
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		s.escapes++
	}
	return s, nil
}
