package summary

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen/screentest"
	"github.com/abhisek/feaquiz/internal/session"
)

func testResult() *session.Result {
	q1 := bank.Question{
		ID:            "cfd-01",
		Domain:        bank.DomainCFD,
		Prompt:        "Which number characterises the ratio of inertial to viscous forces?",
		Options:       []string{"Reynolds", "Mach", "Prandtl", "Nusselt"},
		CorrectOption: 0,
	}
	q2 := bank.Question{
		ID:            "cfd-02",
		Domain:        bank.DomainCFD,
		Prompt:        "What does y+ describe?",
		Options:       []string{"Mesh skewness", "Non-dimensional wall distance", "Courant number", "Residual"},
		CorrectOption: 1,
	}
	return &session.Result{
		ID:         "sess-1",
		ScoreCount: 1,
		Total:      2,
		Percent:    50,
		Elapsed:    95 * time.Second,
		Records: []session.AnswerRecord{
			{Question: q1, Selected: 0, IsCorrect: true},
			{Question: q2, Selected: 2, IsCorrect: false},
		},
		Domain:    bank.DomainCFD,
		Mode:      session.ModeTrain,
		Username:  "tester",
		Timestamp: screentest.Now,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(screentest.Env(t, nil), testResult(), nil)
	assert.Equal(t, "Results", s.Title())
	assert.True(t, s.HandlesBack())
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(screentest.Env(t, nil), testResult(), nil)
	s.Init()

	view := s.View(100, 30)
	for _, want := range []string{"Session complete!", "1 / 2", "50.00%", "1:35", "Result saved.", "Non-dimensional wall distance"} {
		assert.Contains(t, view, want)
	}
}

func TestSummaryScreen_WaitsForPersistence(t *testing.T) {
	env := screentest.Env(t, nil)
	res := testResult()
	ch := make(chan error, 1)
	s := New(env, res, ch)

	cmd := s.Init()
	require.NotNil(t, cmd)
	assert.Contains(t, s.View(100, 30), "Saving result")

	ch <- env.Recorder.Persist(context.Background(), res)
	s.Update(cmd())

	view := s.View(100, 30)
	assert.Contains(t, view, "Result saved.")
	assert.Contains(t, view, "leaderboard entry at #1")
}

func TestSummaryScreen_PersistenceWarning(t *testing.T) {
	ch := make(chan error, 1)
	s := New(screentest.Env(t, nil), testResult(), ch)
	cmd := s.Init()

	ch <- os.ErrPermission
	s.Update(cmd())

	assert.Contains(t, s.View(120, 30), "not fully saved")
}

func TestSummaryScreen_EndedEarly(t *testing.T) {
	res := testResult()
	res.Total = 5
	s := New(screentest.Env(t, nil), res, nil)
	assert.Contains(t, s.View(100, 30), "ended early")
}

func TestSummaryScreen_Export(t *testing.T) {
	s := New(screentest.Env(t, nil), testResult(), nil)

	_, cmd := s.Update(screentest.KeyPress('e'))
	require.NotNil(t, cmd)
	msg, ok := cmd().(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)

	s.Update(msg)
	_, err := os.Stat(msg.Path)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(msg.Path, ".pdf"))
	assert.Contains(t, s.View(160, 30), "Report written to")
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, key := range []tea.KeyPressMsg{
		screentest.SpecialKey(tea.KeyEnter),
		screentest.SpecialKey(tea.KeyEscape),
	} {
		s := New(screentest.Env(t, nil), testResult(), nil)
		_, cmd := s.Update(key)
		_, ok := screentest.Run[router.PopToRootMsg](cmd)
		assert.True(t, ok, "key %q should return home", key.String())
	}
}

func TestSummaryScreen_Scroll(t *testing.T) {
	s := New(screentest.Env(t, nil), testResult(), nil)
	s.Update(screentest.SpecialKey(tea.KeyDown))
	assert.Equal(t, 1, s.offset)
	s.Update(screentest.SpecialKey(tea.KeyDown))
	assert.Equal(t, 1, s.offset, "offset clamps at the last record")
	s.Update(screentest.SpecialKey(tea.KeyUp))
	assert.Equal(t, 0, s.offset)
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(screentest.Env(t, nil), testResult(), nil)
	assert.Len(t, s.KeyHints(), 3)
}
