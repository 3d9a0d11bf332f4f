package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/screens/home"
	"github.com/abhisek/feaquiz/internal/screens/welcome"
	"github.com/abhisek/feaquiz/internal/settings"
	"github.com/abhisek/feaquiz/internal/ui/layout"
	"github.com/abhisek/feaquiz/internal/ui/theme"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	env    *screen.Env
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the welcome screen.
func newAppModel(env *screen.Env) AppModel {
	first := welcome.New(func() screen.Screen { return home.New(env) })
	return AppModel{
		env:    env,
		router: router.New(first),
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.SettingsChangedMsg:
		m.applySettings(msg.Settings)
		return m, m.router.Update(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// applySettings publishes new settings to every consumer of the holder and
// switches the palette.
func (m AppModel) applySettings(s settings.Settings) {
	if m.env.Settings != nil {
		m.env.Settings.Set(s)
	}
	theme.Apply(s.DarkMode)
	m.env.Log().Debug("settings applied", zap.Bool("dark_mode", s.DarkMode))
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.env.CurrentSettings().Username, theme.Name(), m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and keeps it in sync with edits to the
// settings file until the program exits.
func Run(ctx context.Context, env *screen.Env) error {
	theme.Apply(env.CurrentSettings().DarkMode)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newAppModel(env), tea.WithContext(ctx))

	if env.SettingsDB != nil {
		err := env.SettingsDB.Watch(ctx, func(s settings.Settings) {
			p.Send(screen.SettingsChangedMsg{Settings: s})
		})
		if err != nil {
			env.Log().Warn("settings watch disabled", zap.Error(err))
		}
	}

	env.Log().Info("tui started")
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	env.Log().Info("tui stopped")
	return nil
}
