package session

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/screen/screentest"
	sess "github.com/abhisek/feaquiz/internal/session"
	"github.com/abhisek/feaquiz/internal/settings"
	"github.com/abhisek/feaquiz/internal/ui/components"
)

var (
	keyPress   = screentest.KeyPress
	specialKey = screentest.SpecialKey
)

func testEnv(t *testing.T, questions int) *screen.Env {
	t.Helper()
	st := settings.Defaults()
	st.NumQuestions = questions
	return screentest.Env(t, &st)
}

func startScreen(t *testing.T, env *screen.Env, d bank.Domain, mode sess.Mode) *SessionScreen {
	t.Helper()
	s, err := Start(env, d, mode)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Init()
	return s
}

// answer highlights option i of the current question and presses Enter.
func answer(t *testing.T, s *SessionScreen, i int) tea.Cmd {
	t.Helper()
	s.Update(keyPress(rune('a' + i)))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	return cmd
}

func currentQuestion(t *testing.T, s *SessionScreen) bank.Question {
	t.Helper()
	q := s.ctrl.Snapshot().Question
	if q == nil {
		t.Fatal("no current question")
	}
	return *q
}

func wrongOption(q bank.Question) int {
	return (q.CorrectOption + 1) % len(q.Options)
}

func TestStartServesFirstQuestion(t *testing.T) {
	s := startScreen(t, testEnv(t, 3), bank.DomainCFD, sess.ModeTrain)

	snap := s.ctrl.Snapshot()
	if snap.Phase != sess.PhaseQuestion {
		t.Fatalf("phase = %v, want question", snap.Phase)
	}
	if snap.Total != 3 || snap.Position != 1 {
		t.Errorf("position %d/%d, want 1/3", snap.Position, snap.Total)
	}
	if snap.Question.Domain != bank.DomainCFD {
		t.Errorf("question domain = %s, want CFD", snap.Question.Domain)
	}
	if !strings.Contains(s.View(100, 30), snap.Question.Prompt[:10]) {
		t.Error("view should contain the prompt")
	}
	if s.Title() != "Train" {
		t.Errorf("Title = %q, want Train", s.Title())
	}
}

func TestTrainFlowShowsFeedbackThenSummary(t *testing.T) {
	s := startScreen(t, testEnv(t, 2), bank.DomainStructural, sess.ModeTrain)

	q := currentQuestion(t, s)
	answer(t, s, q.CorrectOption)
	if s.ctrl.Snapshot().Phase != sess.PhaseFeedback {
		t.Fatal("train mode should show feedback after submit")
	}
	if !strings.Contains(s.View(100, 30), "Correct!") {
		t.Error("feedback should say Correct!")
	}

	s.Update(specialKey(tea.KeyEnter))
	q = currentQuestion(t, s)
	answer(t, s, wrongOption(q))
	view := s.View(100, 30)
	if !strings.Contains(view, "Incorrect") || !strings.Contains(view, q.CorrectText()) {
		t.Error("feedback should show the correct answer after a miss")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if _, ok := screentest.Run[sessionEndMsg](cmd); !ok {
		t.Fatal("last advance should end the session")
	}

	_, cmd = s.Update(sessionEndMsg{})
	msg, ok := screentest.Run[router.ReplaceScreenMsg](cmd)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg to the summary")
	}
	if msg.Screen.Title() != "Results" {
		t.Errorf("next screen = %q, want Results", msg.Screen.Title())
	}

	if err := <-s.ctrl.Persisted(); err != nil {
		t.Errorf("persist: %v", err)
	}
	res := s.ctrl.Result()
	if res.ScoreCount != 1 || res.Total != 2 || res.Percent != 50 {
		t.Errorf("result %d/%d %.2f%%, want 1/2 50%%", res.ScoreCount, res.Total, res.Percent)
	}
}

func TestExamModeSkipsFeedback(t *testing.T) {
	s := startScreen(t, testEnv(t, 2), bank.DomainNVH, sess.ModeExam)

	q := currentQuestion(t, s)
	answer(t, s, q.CorrectOption)

	snap := s.ctrl.Snapshot()
	if snap.Phase != sess.PhaseQuestion || snap.Position != 2 {
		t.Fatalf("exam mode should advance directly, got phase %v at %d", snap.Phase, snap.Position)
	}
	if snap.Score != 1 {
		t.Errorf("score = %d, want 1", snap.Score)
	}
}

func TestEnterWithoutSelectionShowsHint(t *testing.T) {
	s := startScreen(t, testEnv(t, 2), bank.DomainCrash, sess.ModeTrain)

	s.Update(specialKey(tea.KeyEnter))

	if s.ctrl.Snapshot().Phase != sess.PhaseQuestion {
		t.Error("enter without a selection must not submit")
	}
	if !strings.Contains(s.View(100, 30), "Pick an option") {
		t.Error("expected a hint to pick an option")
	}
}

func TestArrowsMoveSelection(t *testing.T) {
	s := startScreen(t, testEnv(t, 1), bank.DomainCFD, sess.ModeTrain)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))
	if got := s.ctrl.Snapshot().Selected; got != 1 {
		t.Errorf("Selected = %d, want 1", got)
	}
}

func TestQuitConfirm(t *testing.T) {
	s := startScreen(t, testEnv(t, 3), bank.DomainCFD, sess.ModeTrain)

	if !s.HandlesBack() {
		t.Fatal("quiz screen must handle Esc itself")
	}

	s.Update(specialKey(tea.KeyEscape))
	if !s.showingQuitConfirm {
		t.Fatal("Esc should ask for confirmation")
	}
	if !strings.Contains(s.View(100, 30), "End session early?") {
		t.Error("confirm dialog not rendered")
	}
	hints := s.KeyHints()
	if len(hints) != 2 || hints[0].Key != "Y" {
		t.Errorf("unexpected confirm hints %+v", hints)
	}

	s.Update(keyPress('n'))
	if s.showingQuitConfirm || s.ctrl.Snapshot().Phase != sess.PhaseQuestion {
		t.Fatal("N should resume the quiz")
	}

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('y'))
	if _, ok := screentest.Run[sessionEndMsg](cmd); !ok {
		t.Fatal("Y should end the session")
	}

	res := s.ctrl.Result()
	if res == nil {
		t.Fatal("expected a result after quitting")
	}
	<-s.ctrl.Persisted()
	if res.Total != 3 || res.ScoreCount != 0 || res.Answered() != 0 {
		t.Errorf("quit result %d/%d answered %d", res.ScoreCount, res.Total, res.Answered())
	}
}

func TestUnknownDomainFallsBackToWholeBank(t *testing.T) {
	s := startScreen(t, testEnv(t, 2), bank.Domain("Thermal"), sess.ModeTrain)

	if !s.fallback {
		t.Fatal("expected fallback for a domain with no questions")
	}
	if !strings.Contains(s.View(110, 30), "whole bank") {
		t.Error("fallback notice not rendered")
	}
}

func TestStaleTickIgnored(t *testing.T) {
	s := startScreen(t, testEnv(t, 2), bank.DomainCFD, sess.ModeExam)
	before := s.ctrl.Snapshot()

	_, cmd := s.Update(countdownTickMsg{Token: before.Token + 100, Tick: sess.Tick{Expired: true}})
	if cmd != nil {
		t.Error("stale tick should not produce a command")
	}
	if s.ctrl.Snapshot().Position != before.Position {
		t.Error("stale tick must not advance the quiz")
	}
}

func TestCountdownExpiryRecordsTimeout(t *testing.T) {
	env := testEnv(t, 1)
	set := env.Bank.Sample(bank.DomainCFD, 1, env.Rand)
	cfg := sess.Config{
		Domain:        bank.DomainCFD,
		Mode:          sess.ModeExam,
		QuestionCount: 1,
		TimeLimit:     40 * time.Millisecond,
		Username:      "tester",
	}
	base, err := sess.New(cfg, set)
	if err != nil {
		t.Fatal(err)
	}
	s := New(env, sess.NewController(base, sess.WithTickInterval(5*time.Millisecond)))
	cmd := s.Init()

	q := currentQuestion(t, s)
	s.Update(keyPress(rune('a' + wrongOption(q))))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("countdown never expired")
		default:
		}
		if cmd == nil {
			t.Fatal("countdown waiter stopped before expiry")
		}
		msg := cmd()
		if _, ok := msg.(sessionEndMsg); ok {
			break
		}
		tick, ok := msg.(countdownTickMsg)
		if !ok {
			t.Fatalf("unexpected message %T", msg)
		}
		_, cmd = s.Update(tick)
	}

	res := s.ctrl.Result()
	if res == nil || len(res.Records) != 1 {
		t.Fatal("expected one record after expiry")
	}
	rec := res.Records[0]
	if !rec.TimedOut || rec.Selected != wrongOption(q) || rec.IsCorrect {
		t.Errorf("record = %+v, want timed-out wrong answer", rec)
	}
}

func TestKeyHintsDuringQuestion(t *testing.T) {
	s := startScreen(t, testEnv(t, 1), bank.DomainCFD, sess.ModeTrain)
	hints := s.KeyHints()
	want := "A-" + components.Label(len(currentQuestion(t, s).Options)-1)
	if hints[0].Key != want {
		t.Errorf("first hint = %q, want %q", hints[0].Key, want)
	}
}
