package history

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/screen/screentest"
	"github.com/abhisek/feaquiz/internal/store"
)

func seededEnv(t *testing.T) *screen.Env {
	t.Helper()
	env := screentest.Env(t, nil)
	base := screentest.Now.Add(-time.Hour)
	for i, rec := range []store.HistoryRecord{
		{Timestamp: base, Domain: "CFD", Mode: "Train", Total: 10, Percent: 90},
		{Timestamp: base.Add(time.Minute), Domain: "NVH", Mode: "Exam", Total: 10, Percent: 40},
		{Timestamp: base.Add(2 * time.Minute), Domain: "CFD", Mode: "Exam", Total: 10, Percent: 70},
	} {
		require.NoError(t, env.History.Append(rec), "record %d", i)
	}

	require.NoError(t, env.Journal.RecordSession(context.Background(), store.JournalSession{
		ID: "j1", Username: "tester", Domain: "Structural", Mode: "Train",
		Score: 0, Total: 1, Timestamp: base,
		Answers: []store.JournalAnswer{
			{QuestionID: "str-001", Domain: "Structural", Selected: 1, AnsweredAt: base},
		},
	}))
	return env
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	s.Update(s.Init()())
	require.True(t, s.loaded)
	require.Empty(t, s.errMsg)
}

func TestHistory_Empty(t *testing.T) {
	s := New(screentest.Env(t, nil))
	load(t, s)
	assert.Contains(t, s.View(100, 30), "No sessions yet")
}

func TestHistory_ShowsAggregates(t *testing.T) {
	env := seededEnv(t)
	s := New(env)
	load(t, s)

	require.Len(t, s.records, 3)
	assert.Equal(t, 70.0, s.records[0].Percent, "newest session first")

	view := s.View(120, 40)
	assert.Contains(t, view, "3 sessions · 66.67% average")
	assert.Contains(t, view, "strongest CFD · weakest NVH")
	assert.Contains(t, view, "80.00")
	assert.Contains(t, view, "Questions to revisit")

	q, ok := env.Bank.Lookup("str-001")
	require.True(t, ok)
	assert.Contains(t, view, string([]rune(q.Prompt)[:10]))
}

func TestHistory_Navigation(t *testing.T) {
	s := New(seededEnv(t))
	load(t, s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 2, s.selected)
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 1, s.selected)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	_, ok := screentest.Run[router.PopScreenMsg](cmd)
	assert.True(t, ok)
}

func TestHistory_Exports(t *testing.T) {
	tests := []struct {
		key    rune
		suffix string
	}{
		{'x', ".xlsx"},
		{'p', ".pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.suffix, func(t *testing.T) {
			s := New(seededEnv(t))
			load(t, s)

			_, cmd := s.Update(tea.KeyPressMsg{Code: tt.key, Text: string(tt.key)})
			require.NotNil(t, cmd)
			msg, ok := cmd().(exportDoneMsg)
			require.True(t, ok)
			require.NoError(t, msg.Err)
			require.Len(t, msg.Paths, 1)
			assert.True(t, strings.HasSuffix(msg.Paths[0], tt.suffix))

			_, err := os.Stat(msg.Paths[0])
			assert.NoError(t, err)

			s.Update(msg)
			assert.Contains(t, s.View(200, 40), "Wrote ")
		})
	}
}

func TestHistory_ExportBeforeLoad(t *testing.T) {
	s := New(seededEnv(t))
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	assert.Nil(t, cmd)
}
