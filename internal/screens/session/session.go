package session

import (
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/quizerr"
	"github.com/abhisek/feaquiz/internal/router"
	"github.com/abhisek/feaquiz/internal/screen"
	sess "github.com/abhisek/feaquiz/internal/session"
	"github.com/abhisek/feaquiz/internal/ui/components"
	"github.com/abhisek/feaquiz/internal/ui/layout"
)

// SessionScreen implements screen.Screen for the active quiz.
type SessionScreen struct {
	env  *screen.Env
	ctrl *sess.Controller

	// fallback is set when the requested domain had no questions and the
	// whole bank is used instead.
	fallback  bool
	requested bank.Domain

	mc      components.MultiChoice
	mcToken uint64

	showingQuitConfirm bool
	hint               string
	errMsg             string
	ended              bool
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.BackHandler = (*SessionScreen)(nil)

// New creates a SessionScreen around an unstarted controller.
func New(env *screen.Env, ctrl *sess.Controller) *SessionScreen {
	return &SessionScreen{
		env:  env,
		ctrl: ctrl,
	}
}

// Start samples questions for domain from the bank using the current
// settings and returns a screen ready to run them.
func Start(env *screen.Env, domain bank.Domain, mode sess.Mode) (*SessionScreen, error) {
	if env == nil || env.Bank == nil {
		return nil, &quizerr.ErrNotFound{What: "question bank"}
	}
	st := env.CurrentSettings()

	set := env.Bank.Sample(domain, st.NumQuestions, env.Rand)
	cfg := sess.Config{
		Domain:        set.Domain,
		Mode:          mode,
		QuestionCount: st.NumQuestions,
		Username:      st.Username,
	}
	if mode == sess.ModeExam {
		cfg.TimeLimit = st.ExamLimit()
	}

	opts := []sess.Option{sess.WithLogger(env.Log())}
	if env.Now != nil {
		opts = append(opts, sess.WithClock(env.Now))
	}
	if env.Recorder != nil {
		opts = append(opts, sess.WithPersister(env.Recorder))
	}

	s, err := sess.New(cfg, set, opts...)
	if err != nil {
		return nil, fmt.Errorf("start %s session: %w", mode, err)
	}
	if set.Fallback {
		env.Log().Info("domain has no questions, using whole bank", zap.String("domain", domain.String()))
	}

	scr := New(env, sess.NewController(s))
	scr.fallback = set.Fallback
	scr.requested = domain
	return scr, nil
}

func (s *SessionScreen) Init() tea.Cmd {
	if err := s.ctrl.Start(); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.syncChoice()
	return s.waitForTick()
}

func (s *SessionScreen) Title() string {
	return s.ctrl.Session().Config().Mode.String()
}

// HandlesBack keeps Esc inside the screen so it can ask before quitting.
func (s *SessionScreen) HandlesBack() bool {
	return true
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.showingQuitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.ctrl.Snapshot().Phase == sess.PhaseFeedback {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next question"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "A-" + components.Label(len(s.mc.Options)-1), Description: "Choose"},
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	if s.showingQuitConfirm {
		return renderQuitConfirm(width, height, s.ctrl.Snapshot())
	}
	snap := s.ctrl.Snapshot()
	if snap.Phase == sess.PhaseFeedback {
		return s.renderFeedback(width, height, snap)
	}
	return s.renderQuestionView(width, height, snap)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case countdownTickMsg:
		return s.handleTick(msg)

	case sessionEndMsg:
		return s.handleSessionEnd()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// waitForTick blocks on the current question's countdown. Untimed questions
// need no waiter.
func (s *SessionScreen) waitForTick() tea.Cmd {
	token, ch := s.ctrl.Countdown()
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ch
		return countdownTickMsg{Token: token, Tick: t, Closed: !ok}
	}
}

func (s *SessionScreen) handleTick(msg countdownTickMsg) (screen.Screen, tea.Cmd) {
	if msg.Closed || s.ended {
		return s, nil
	}
	if msg.Token != s.ctrl.Snapshot().Token {
		return s, nil
	}
	if msg.Tick.Expired {
		if s.ctrl.Expire(msg.Token) {
			s.env.Log().Debug("question timed out", zap.Uint64("token", msg.Token))
		}
		return s.afterTransition()
	}
	return s, s.waitForTick()
}

// afterTransition refreshes the choice widget after the controller moved
// and either ends the session or arms the next countdown.
func (s *SessionScreen) afterTransition() (screen.Screen, tea.Cmd) {
	s.syncChoice()
	if s.ctrl.Snapshot().Phase == sess.PhaseFinished {
		return s, func() tea.Msg { return sessionEndMsg{} }
	}
	return s, s.waitForTick()
}

// syncChoice rebuilds the choice widget when a new question is served and
// reveals the verdict during feedback.
func (s *SessionScreen) syncChoice() {
	snap := s.ctrl.Snapshot()
	if snap.Question != nil && snap.Token != s.mcToken {
		q := snap.Question
		s.mc = components.NewMultiChoice(q.Prompt, q.Options, q.CorrectOption)
		s.mcToken = snap.Token
		s.hint = ""
	}
	if snap.Feedback != nil && !s.mc.Submitted {
		s.mc.Reveal(snap.Feedback.Selected)
	}
}

func (s *SessionScreen) handleSessionEnd() (screen.Screen, tea.Cmd) {
	if s.ended {
		return s, nil
	}
	res := s.ctrl.Result()
	if res == nil {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	s.ended = true
	s.env.Log().Info("session finished",
		zap.String("id", res.ID),
		zap.String("domain", res.Domain.String()),
		zap.String("mode", res.Mode.String()),
		zap.Int("score", res.ScoreCount),
		zap.Int("total", res.Total),
	)

	next := newSummaryScreenAdapter(s.env, res, s.ctrl.Persisted())
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state: any key goes back.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.ended {
		return s, nil
	}

	// Quit confirmation dialog.
	if s.showingQuitConfirm {
		switch key {
		case "y", "Y":
			s.showingQuitConfirm = false
			if _, err := s.ctrl.Quit(); err != nil {
				var inv *quizerr.ErrInvalidState
				if !errors.As(err, &inv) {
					s.errMsg = err.Error()
					return s, nil
				}
			}
			return s.afterTransition()
		case "n", "N", "esc":
			s.showingQuitConfirm = false
			return s, nil
		}
		return s, nil
	}

	switch s.ctrl.Snapshot().Phase {
	case sess.PhaseFeedback:
		switch key {
		case "esc":
			s.showingQuitConfirm = true
			return s, nil
		case "enter", "space", " ", "n":
			if err := s.ctrl.Advance(); err != nil {
				s.errMsg = err.Error()
				return s, nil
			}
			return s.afterTransition()
		}
		return s, nil

	case sess.PhaseQuestion:
		switch key {
		case "esc":
			s.showingQuitConfirm = true
			return s, nil
		case "enter":
			return s.submitAnswer()
		}

		var cmd tea.Cmd
		s.mc, cmd = s.mc.Update(msg)
		if s.mc.Selected >= 0 {
			if err := s.ctrl.Select(s.mc.Selected); err == nil {
				s.hint = ""
			}
		}
		return s, cmd
	}

	return s, nil
}

// submitAnswer submits the highlighted option.
func (s *SessionScreen) submitAnswer() (screen.Screen, tea.Cmd) {
	if s.mc.Selected < 0 {
		s.hint = "Pick an option first."
		return s, nil
	}
	if err := s.ctrl.Select(s.mc.Selected); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	if err := s.ctrl.Submit(); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	return s.afterTransition()
}
