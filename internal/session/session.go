package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/quizerr"
)

// DefaultPersistTimeout bounds the background persistence of a result.
const DefaultPersistTimeout = 5 * time.Second

// Persister stores a finished result. Implementations must respect ctx.
type Persister interface {
	Persist(ctx context.Context, r *Result) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, r *Result) error

func (f PersisterFunc) Persist(ctx context.Context, r *Result) error {
	return f(ctx, r)
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithPersister sets the sink that receives the result on Finish.
func WithPersister(p Persister) Option {
	return func(s *Session) {
		s.persister = p
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithPersistTimeout overrides DefaultPersistTimeout.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.persistTimeout = d
	}
}

// WithID fixes the result ID instead of generating one.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// Session is one run through a question set. It is not safe for concurrent
// use; Controller serializes access.
type Session struct {
	id        string
	cfg       Config
	questions []bank.Question

	state     State
	next      int // index of the next question to serve
	current   int // index of the last served question, -1 before the first
	answered  bool
	correct   int
	records   []AnswerRecord
	startedAt time.Time
	result    *Result

	now            func() time.Time
	persister      Persister
	persistTimeout time.Duration
	persisted      chan error
	logger         *zap.Logger
}

// New creates a session over set. At most cfg.QuestionCount questions of the
// set are used, in set order.
func New(cfg Config, set bank.QuestionSet, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	if set.Len() == 0 {
		return nil, errors.New("question set is empty")
	}

	qs := set.Questions
	if len(qs) > cfg.QuestionCount {
		qs = qs[:cfg.QuestionCount]
	}

	s := &Session{
		cfg:            cfg,
		questions:      slices.Clone(qs),
		current:        -1,
		now:            time.Now,
		persistTimeout: DefaultPersistTimeout,
		persisted:      make(chan error, 1),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.New().String()
	}
	return s, nil
}

// ID returns the session (and result) identifier.
func (s *Session) ID() string { return s.id }

// Config returns the session configuration.
func (s *Session) Config() Config { return s.cfg }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Total returns the number of questions in the session.
func (s *Session) Total() int { return len(s.questions) }

// Served returns how many questions have been handed out.
func (s *Session) Served() int { return s.next }

// Score returns the running correct count.
func (s *Session) Score() int { return s.correct }

// Records returns a copy of the answer log.
func (s *Session) Records() []AnswerRecord { return slices.Clone(s.records) }

// Start moves NotStarted to InProgress and resets all counters.
func (s *Session) Start() error {
	if s.state != StateNotStarted {
		return &quizerr.ErrInvalidState{Op: "start", State: s.state.String()}
	}
	s.state = StateInProgress
	s.startedAt = s.now()
	s.next = 0
	s.current = -1
	s.answered = false
	s.correct = 0
	s.records = nil

	s.logger.Debug("session started",
		zap.String("id", s.id),
		zap.Stringer("mode", s.cfg.Mode),
		zap.String("domain", s.cfg.Domain.String()),
		zap.Int("total", len(s.questions)),
	)
	return nil
}

// NextQuestion returns the next question in order, or nil when none remain.
// While the current question is unanswered it is returned again.
func (s *Session) NextQuestion() (*bank.Question, error) {
	if s.state != StateInProgress {
		return nil, &quizerr.ErrInvalidState{Op: "get next question", State: s.state.String()}
	}
	if s.current >= 0 && !s.answered {
		q := s.questions[s.current]
		return &q, nil
	}
	if s.next >= len(s.questions) {
		return nil, nil
	}

	s.current = s.next
	s.next++
	s.answered = false
	q := s.questions[s.current]
	return &q, nil
}

// SubmitAnswer records selected for q, which must be the current unanswered
// question, and reports whether it was correct. -1 means no selection.
func (s *Session) SubmitAnswer(q bank.Question, selected int) (bool, error) {
	return s.submit(q, selected, false)
}

// SubmitTimedOut records the answer for q after its time ran out. selected is
// whatever was chosen at that moment, possibly -1.
func (s *Session) SubmitTimedOut(q bank.Question, selected int) (bool, error) {
	return s.submit(q, selected, true)
}

func (s *Session) submit(q bank.Question, selected int, timedOut bool) (bool, error) {
	if s.state != StateInProgress {
		return false, &quizerr.ErrInvalidState{Op: "submit answer", State: s.state.String()}
	}
	if s.current < 0 || s.questions[s.current].ID != q.ID {
		return false, &quizerr.ErrInvalidState{Op: "submit answer", State: s.state.String(), Reason: "question is not the current one"}
	}
	if s.answered {
		return false, &quizerr.ErrInvalidState{Op: "submit answer", State: s.state.String(), Reason: "question already answered"}
	}

	cur := s.questions[s.current]
	if selected < -1 || selected >= len(cur.Options) {
		return false, fmt.Errorf("option %d out of range for %d options", selected, len(cur.Options))
	}

	ok := cur.IsCorrect(selected)
	s.answered = true
	if ok {
		s.correct++
	}
	s.records = append(s.records, AnswerRecord{
		Question:    cur,
		Selected:    selected,
		IsCorrect:   ok,
		Explanation: cur.Explanation,
		AnsweredAt:  s.now(),
		TimedOut:    timedOut,
	})
	return ok, nil
}

// Finish moves InProgress to Finished and returns the result. Unanswered
// questions count as incorrect. When a persister is set, the result is stored
// in the background; the outcome arrives on Persisted.
func (s *Session) Finish() (*Result, error) {
	if s.state != StateInProgress {
		return nil, &quizerr.ErrInvalidState{Op: "finish", State: s.state.String()}
	}
	s.state = StateFinished

	end := s.now()
	r := &Result{
		ID:         s.id,
		ScoreCount: s.correct,
		Total:      len(s.questions),
		Percent:    Percent(s.correct, len(s.questions)),
		Elapsed:    end.Sub(s.startedAt),
		Records:    slices.Clone(s.records),
		Domain:     s.cfg.Domain,
		Mode:       s.cfg.Mode,
		Username:   s.cfg.Username,
		Timestamp:  end,
	}
	s.result = r

	s.logger.Info("session finished",
		zap.String("id", r.ID),
		zap.Int("score", r.ScoreCount),
		zap.Int("total", r.Total),
		zap.Float64("percent", r.Percent),
		zap.Duration("elapsed", r.Elapsed),
	)

	if s.persister == nil {
		s.persisted <- nil
		close(s.persisted)
		return s.Result(), nil
	}

	go s.persist(s.Result())
	return s.Result(), nil
}

// Result returns a copy of the finished result, or nil before Finish.
func (s *Session) Result() *Result {
	if s.result == nil {
		return nil
	}
	r := *s.result
	r.Records = slices.Clone(s.result.Records)
	return &r
}

// Persisted yields the persistence outcome exactly once after Finish, then
// is closed.
func (s *Session) Persisted() <-chan error {
	return s.persisted
}

func (s *Session) persist(r *Result) {
	defer close(s.persisted)

	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.persister.Persist(ctx, r)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("persist result: %w", ctx.Err())
	}

	if err != nil {
		s.logger.Warn("persist session result", zap.String("id", r.ID), zap.Error(err))
	}
	s.persisted <- err
}
