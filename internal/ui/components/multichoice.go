package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feaquiz/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector component. It supports any
// number of options; they are labelled A, B, C and so on.
type MultiChoice struct {
	Question     string
	Options      []string
	CorrectIndex int
	Selected     int // -1 until the user highlights an option
	Submitted    bool
	ChosenIndex  int
	Width        int
}

// NewMultiChoice creates a new multiple-choice component with nothing
// highlighted.
func NewMultiChoice(question string, options []string, correctIndex int) MultiChoice {
	return MultiChoice{
		Question:     question,
		Options:      options,
		CorrectIndex: correctIndex,
		Selected:     -1,
		Submitted:    false,
		ChosenIndex:  -1,
	}
}

// Label returns the letter shown for option i.
func Label(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation. Arrow keys move the highlight; a
// letter or digit jumps to that option. Enter marks the component submitted
// when something is highlighted.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		} else if m.Selected < 0 && len(m.Options) > 0 {
			m.Selected = len(m.Options) - 1
		}
		return m, nil
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
		return m, nil
	case "enter":
		if m.Selected >= 0 {
			m.Submitted = true
			m.ChosenIndex = m.Selected
		}
		return m, nil
	}

	if i, ok := m.indexForKey(key); ok {
		m.Selected = i
	}
	return m, nil
}

// indexForKey maps "a".."z" and "1".."9" onto option indices.
func (m MultiChoice) indexForKey(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	var i int
	switch {
	case c >= 'a' && c <= 'z':
		i = int(c - 'a')
	case c >= 'A' && c <= 'Z':
		i = int(c - 'A')
	case c >= '1' && c <= '9':
		i = int(c - '1')
	default:
		return 0, false
	}
	if i >= len(m.Options) {
		return 0, false
	}
	return i, true
}

// Reveal shows the verdict: the correct option in green and a wrong choice
// in red. chosen may be -1 when nothing was picked.
func (m *MultiChoice) Reveal(chosen int) {
	m.Submitted = true
	m.ChosenIndex = chosen
}

// View renders the multiple-choice component.
func (m MultiChoice) View() string {
	questionStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	if m.Width > 0 {
		questionStyle = questionStyle.Width(m.Width)
	}

	var b strings.Builder
	b.WriteString(questionStyle.Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s)  %s", prefix, Label(i), opt)

		var style lipgloss.Style
		switch {
		case m.Submitted && i == m.CorrectIndex:
			style = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
		case m.Submitted && i == m.ChosenIndex:
			style = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		default:
			style = lipgloss.NewStyle().Foreground(theme.Text)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}

// IsCorrect returns true if the user chose the correct answer.
func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.ChosenIndex == m.CorrectIndex
}
