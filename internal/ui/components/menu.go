package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feaquiz/internal/ui/theme"
)

// MenuItem is one selectable row. Badge is drawn right-aligned after the
// label (a question count, a score). Hint is shown under the list while the
// item is selected.
type MenuItem struct {
	Label    string
	Badge    string
	Hint     string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list that skips disabled rows and wraps at both ends.
// Digits 1-9 jump straight to a row.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	for i, item := range items {
		if !item.Disabled {
			m.Selected = i
			break
		}
	}
	return m
}

// Current returns the selected item, false when the menu is empty.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		m.Selected = m.step(-1)
	case "down", "j":
		m.Selected = m.step(1)
	case "enter":
		if item, ok := m.Current(); ok && !item.Disabled && item.Action != nil {
			return m, item.Action()
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.Items) && !m.Items[i].Disabled {
				m.Selected = i
			}
		}
	}
	return m, nil
}

// step returns the next enabled index in direction dir, or the current one
// when nothing else is enabled.
func (m Menu) step(dir int) int {
	n := len(m.Items)
	for i := 1; i < n; i++ {
		j := ((m.Selected+dir*i)%n + n) % n
		if !m.Items[j].Disabled {
			return j
		}
	}
	return m.Selected
}

func (m Menu) View() string {
	labelW, badgeW := 0, 0
	for _, item := range m.Items {
		labelW = max(labelW, lipgloss.Width(item.Label))
		badgeW = max(badgeW, lipgloss.Width(item.Badge))
	}

	selected := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	normal := lipgloss.NewStyle().Foreground(theme.Text)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	rows := make([]string, 0, len(m.Items)+2)
	for i, item := range m.Items {
		marker := "    "
		style := normal
		switch {
		case item.Disabled:
			style = dim
		case i == m.Selected:
			marker = "  ▸ "
			style = selected
		}

		row := marker + item.Label
		if badgeW > 0 {
			pad := labelW - lipgloss.Width(item.Label) + 2
			row += strings.Repeat(" ", pad) +
				strings.Repeat(" ", badgeW-lipgloss.Width(item.Badge)) + item.Badge
		}
		rows = append(rows, style.Render(row))
	}

	if item, ok := m.Current(); ok && item.Hint != "" {
		rows = append(rows, "", dim.Render("    "+item.Hint))
	}
	return strings.Join(rows, "\n") + "\n"
}
