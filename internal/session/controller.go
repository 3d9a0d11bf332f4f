package session

import (
	"sync"
	"time"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/quizerr"
)

// DefaultTickInterval is how often a running countdown publishes.
const DefaultTickInterval = 250 * time.Millisecond

// Phase is what the controller is currently showing.
type Phase int

const (
	PhaseIdle     Phase = iota // Not started
	PhaseQuestion              // Waiting for an answer
	PhaseFeedback              // Train mode: showing the verdict until Advance
	PhaseFinished              // Result available
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseQuestion:
		return "question"
	case PhaseFeedback:
		return "feedback"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Feedback is the verdict for the last submitted question.
type Feedback struct {
	QuestionID  string
	Selected    int
	Correct     bool
	CorrectText string
	Explanation string
	TimedOut    bool
}

// Snapshot is a render-ready copy of the controller state.
type Snapshot struct {
	Phase  Phase
	Mode   Mode
	Domain bank.Domain

	Question *bank.Question

	// Position is 1-based; zero before the first question.
	Position int
	Total    int

	// Selected is the highlighted option, -1 for none.
	Selected int

	Remaining time.Duration
	TimeLimit time.Duration

	Feedback *Feedback
	Score    int
	Answered int

	// Token identifies the question being shown. It changes every time a
	// question is served.
	Token uint64

	Result *Result
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithTickInterval sets how often countdown ticks are published.
func WithTickInterval(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.tickInterval = d
	}
}

// Controller drives a Session from user intents. All methods are safe for
// concurrent use; a countdown expiry and a manual submit for the same
// question are mutually exclusive.
type Controller struct {
	mu sync.Mutex

	sess  *Session
	phase Phase

	current   *bank.Question
	selected  int
	token     uint64
	countdown *Countdown
	feedback  *Feedback
	result    *Result

	tickInterval time.Duration
}

// NewController wraps sess, which must not have been started.
func NewController(sess *Session, opts ...ControllerOption) *Controller {
	c := &Controller{
		sess:         sess,
		selected:     -1,
		tickInterval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the underlying session.
func (c *Controller) Session() *Session { return c.sess }

// Start begins the session and serves the first question.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseIdle {
		return &quizerr.ErrInvalidState{Op: "start", State: c.phase.String()}
	}
	if err := c.sess.Start(); err != nil {
		return err
	}
	return c.advanceLocked()
}

// Select highlights option i of the current question.
func (c *Controller) Select(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseQuestion {
		return &quizerr.ErrInvalidState{Op: "select", State: c.phase.String()}
	}
	if i < 0 || i >= len(c.current.Options) {
		return &quizerr.ErrInvalidState{Op: "select", State: c.phase.String(), Reason: "option out of range"}
	}
	c.selected = i
	return nil
}

// Submit answers the current question with the highlighted option. In train
// mode the controller moves to PhaseFeedback; in exam mode it advances.
func (c *Controller) Submit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseQuestion {
		return &quizerr.ErrInvalidState{Op: "submit", State: c.phase.String()}
	}
	if c.selected < 0 {
		return &quizerr.ErrInvalidState{Op: "submit", State: c.phase.String(), Reason: "no option selected"}
	}

	c.stopCountdownLocked()
	correct, err := c.sess.SubmitAnswer(*c.current, c.selected)
	if err != nil {
		return err
	}

	if c.sess.Config().Mode == ModeTrain {
		c.feedback = &Feedback{
			QuestionID:  c.current.ID,
			Selected:    c.selected,
			Correct:     correct,
			CorrectText: c.current.CorrectText(),
			Explanation: c.current.Explanation,
		}
		c.phase = PhaseFeedback
		return nil
	}
	return c.advanceLocked()
}

// Advance leaves the feedback phase for the next question or the result.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseFeedback {
		return &quizerr.ErrInvalidState{Op: "advance", State: c.phase.String()}
	}
	c.feedback = nil
	return c.advanceLocked()
}

// Expire handles a countdown expiry for the question identified by token.
// The current selection (possibly none) is recorded and the controller
// advances. A stale token, or a question already answered, makes this a
// no-op returning false.
func (c *Controller) Expire(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.token || c.phase != PhaseQuestion || !c.sess.Config().Timed() {
		return false
	}
	if _, err := c.sess.SubmitTimedOut(*c.current, c.selected); err != nil {
		return false
	}
	c.stopCountdownLocked()
	_ = c.advanceLocked()
	return true
}

// Quit ends the session early. Unanswered questions count as incorrect.
func (c *Controller) Quit() (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseIdle || c.phase == PhaseFinished {
		return nil, &quizerr.ErrInvalidState{Op: "quit", State: c.phase.String()}
	}
	c.stopCountdownLocked()
	if err := c.finishLocked(); err != nil {
		return nil, err
	}
	return c.result, nil
}

// Countdown returns the token of the current question and its tick channel,
// or a nil channel when the question is untimed.
func (c *Controller) Countdown() (uint64, <-chan Tick) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.countdown == nil {
		return c.token, nil
	}
	return c.token, c.countdown.C()
}

// Result returns the result once finished.
func (c *Controller) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Persisted forwards Session.Persisted.
func (c *Controller) Persisted() <-chan error {
	return c.sess.Persisted()
}

// Snapshot returns a copy of the state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := c.sess.Config()
	snap := Snapshot{
		Phase:    c.phase,
		Mode:     cfg.Mode,
		Domain:   cfg.Domain,
		Position: c.sess.Served(),
		Total:    c.sess.Total(),
		Selected: c.selected,
		Score:    c.sess.Score(),
		Answered: len(c.sess.records),
		Token:    c.token,
		Result:   c.result,
	}
	if cfg.Timed() {
		snap.TimeLimit = cfg.TimeLimit
	}
	if c.current != nil && c.phase != PhaseFinished {
		q := *c.current
		snap.Question = &q
	}
	if c.countdown != nil {
		snap.Remaining = c.countdown.Remaining()
	}
	if c.feedback != nil {
		fb := *c.feedback
		snap.Feedback = &fb
	}
	return snap
}

// advanceLocked serves the next question or finishes. Any live countdown is
// cancelled first so that at most one runs.
func (c *Controller) advanceLocked() error {
	c.stopCountdownLocked()

	q, err := c.sess.NextQuestion()
	if err != nil {
		return err
	}
	if q == nil {
		return c.finishLocked()
	}

	c.current = q
	c.selected = -1
	c.token++
	c.phase = PhaseQuestion

	cfg := c.sess.Config()
	if cfg.Timed() {
		c.countdown = StartCountdown(cfg.TimeLimit, c.tickInterval)
	}
	return nil
}

func (c *Controller) finishLocked() error {
	res, err := c.sess.Finish()
	if err != nil {
		return err
	}
	c.result = res
	c.phase = PhaseFinished
	c.feedback = nil
	c.token++
	return nil
}

func (c *Controller) stopCountdownLocked() {
	if c.countdown != nil {
		c.countdown.Cancel()
		c.countdown = nil
	}
}
