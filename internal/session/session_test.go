package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/quizerr"
)

// testSet builds n Structural questions whose correct option is 1.
func testSet(n int) bank.QuestionSet {
	qs := make([]bank.Question, n)
	for i := range qs {
		qs[i] = bank.Question{
			ID:            fmt.Sprintf("q%d", i),
			Prompt:        fmt.Sprintf("Question %d?", i),
			Options:       []string{"wrong", "right", "also wrong"},
			CorrectOption: 1,
			Explanation:   "because",
			Domain:        bank.DomainStructural,
		}
	}
	return bank.QuestionSet{Domain: bank.DomainStructural, Questions: qs}
}

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func newTestSession(t *testing.T, n int, opts ...Option) *Session {
	t.Helper()
	cfg := Config{Domain: bank.DomainStructural, Mode: ModeTrain, QuestionCount: n, Username: "tester"}
	s, err := New(cfg, testSet(n), opts...)
	require.NoError(t, err)
	return s
}

func TestSession_ThreeOfFive(t *testing.T) {
	s := newTestSession(t, 5)
	require.NoError(t, s.Start())

	answers := []int{1, 1, 0, 1, 2}
	for _, sel := range answers {
		q, err := s.NextQuestion()
		require.NoError(t, err)
		require.NotNil(t, q)
		_, err = s.SubmitAnswer(*q, sel)
		require.NoError(t, err)
	}

	q, err := s.NextQuestion()
	require.NoError(t, err)
	assert.Nil(t, q, "expected exhaustion")

	res, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, 3, res.ScoreCount)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 60.0, res.Percent)
	assert.Len(t, res.Records, 5)
	assert.Equal(t, "tester", res.Username)
	assert.Equal(t, bank.DomainStructural, res.Domain)
	assert.NotEmpty(t, res.ID)
}

func TestSession_QuestionsServedInOrder(t *testing.T) {
	s := newTestSession(t, 3)
	require.NoError(t, s.Start())

	var ids []string
	for {
		q, err := s.NextQuestion()
		require.NoError(t, err)
		if q == nil {
			break
		}
		ids = append(ids, q.ID)
		_, err = s.SubmitAnswer(*q, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"q0", "q1", "q2"}, ids)
}

func TestSession_NextQuestionRepeatsUnanswered(t *testing.T) {
	s := newTestSession(t, 3)
	require.NoError(t, s.Start())

	first, err := s.NextQuestion()
	require.NoError(t, err)
	again, err := s.NextQuestion()
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 1, s.Served())
}

func TestSession_SubmitTwiceRejected(t *testing.T) {
	s := newTestSession(t, 2)
	require.NoError(t, s.Start())

	q, err := s.NextQuestion()
	require.NoError(t, err)

	ok, err := s.SubmitAnswer(*q, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.SubmitAnswer(*q, 1)
	var inv *quizerr.ErrInvalidState
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "question already answered", inv.Reason)
	assert.Equal(t, 1, s.Score())
	assert.Len(t, s.Records(), 1)
}

func TestSession_SubmitWrongQuestionRejected(t *testing.T) {
	s := newTestSession(t, 2)
	require.NoError(t, s.Start())

	_, err := s.NextQuestion()
	require.NoError(t, err)

	other := testSet(2).Questions[1]
	_, err = s.SubmitAnswer(other, 1)
	var inv *quizerr.ErrInvalidState
	assert.True(t, errors.As(err, &inv))
}

func TestSession_SubmitOutOfRange(t *testing.T) {
	s := newTestSession(t, 1)
	require.NoError(t, s.Start())
	q, err := s.NextQuestion()
	require.NoError(t, err)

	_, err = s.SubmitAnswer(*q, 3)
	assert.Error(t, err)

	// Still answerable after a rejected option.
	ok, err := s.SubmitAnswer(*q, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSession_InvalidTransitions(t *testing.T) {
	s := newTestSession(t, 1)

	_, err := s.NextQuestion()
	assert.Error(t, err, "next before start")
	_, err = s.Finish()
	assert.Error(t, err, "finish before start")

	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "double start")

	q, err := s.NextQuestion()
	require.NoError(t, err)
	_, err = s.Finish()
	require.NoError(t, err)

	_, err = s.SubmitAnswer(*q, 1)
	var inv *quizerr.ErrInvalidState
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "finished", inv.State)

	_, err = s.Finish()
	assert.Error(t, err, "double finish")
}

func TestSession_UnansweredCountAsIncorrect(t *testing.T) {
	s := newTestSession(t, 4)
	require.NoError(t, s.Start())

	q, err := s.NextQuestion()
	require.NoError(t, err)
	_, err = s.SubmitAnswer(*q, 1)
	require.NoError(t, err)

	res, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, 1, res.ScoreCount)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 25.0, res.Percent)
}

func TestSession_ElapsedUsesClock(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), step: 10 * time.Second}
	s := newTestSession(t, 1, WithClock(clock.Now), WithID("fixed"))

	require.NoError(t, s.Start()) // t0
	q, err := s.NextQuestion()
	require.NoError(t, err)
	_, err = s.SubmitAnswer(*q, 1) // t0+10s
	require.NoError(t, err)

	res, err := s.Finish() // t0+20s
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, res.Elapsed)
	assert.Equal(t, "fixed", res.ID)
}

func TestSession_TruncatesToQuestionCount(t *testing.T) {
	cfg := Config{Domain: bank.DomainAll, Mode: ModeExam, QuestionCount: 2}
	s, err := New(cfg, testSet(5))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		set  bank.QuestionSet
	}{
		{"zero count", Config{Mode: ModeTrain}, testSet(1)},
		{"bad mode", Config{Mode: Mode(7), QuestionCount: 1}, testSet(1)},
		{"negative limit", Config{Mode: ModeExam, QuestionCount: 1, TimeLimit: -time.Second}, testSet(1)},
		{"empty set", Config{Mode: ModeTrain, QuestionCount: 1}, bank.QuestionSet{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.set)
			assert.Error(t, err)
		})
	}
}

func TestSession_PersistsInBackground(t *testing.T) {
	got := make(chan *Result, 1)
	p := PersisterFunc(func(_ context.Context, r *Result) error {
		got <- r
		return nil
	})
	s := newTestSession(t, 1, WithPersister(p))
	require.NoError(t, s.Start())

	res, err := s.Finish()
	require.NoError(t, err)

	select {
	case err := <-s.Persisted():
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("persistence outcome not delivered")
	}
	assert.Equal(t, res.ID, (<-got).ID)

	_, open := <-s.Persisted()
	assert.False(t, open, "channel should be closed after the outcome")
}

func TestSession_PersistFailureDoesNotAffectResult(t *testing.T) {
	boom := errors.New("disk full")
	p := PersisterFunc(func(context.Context, *Result) error { return boom })
	s := newTestSession(t, 2, WithPersister(p))
	require.NoError(t, s.Start())

	q, err := s.NextQuestion()
	require.NoError(t, err)
	_, err = s.SubmitAnswer(*q, 1)
	require.NoError(t, err)

	res, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.Percent)

	assert.ErrorIs(t, <-s.Persisted(), boom)
	assert.Equal(t, 50.0, s.Result().Percent)
}

func TestSession_PersistTimeout(t *testing.T) {
	p := PersisterFunc(func(ctx context.Context, _ *Result) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	s := newTestSession(t, 1, WithPersister(p), WithPersistTimeout(20*time.Millisecond))
	require.NoError(t, s.Start())
	_, err := s.Finish()
	require.NoError(t, err)

	assert.ErrorIs(t, <-s.Persisted(), context.DeadlineExceeded)
}

func TestSession_NoPersisterDeliversNil(t *testing.T) {
	s := newTestSession(t, 1)
	require.NoError(t, s.Start())
	_, err := s.Finish()
	require.NoError(t, err)
	assert.NoError(t, <-s.Persisted())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("EXAM")
	require.NoError(t, err)
	assert.Equal(t, ModeExam, m)

	m, err = ParseMode(" train ")
	require.NoError(t, err)
	assert.Equal(t, ModeTrain, m)

	_, err = ParseMode("practice")
	assert.Error(t, err)
}
