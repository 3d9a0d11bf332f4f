package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/feaquiz/internal/bank"
)

// Mode selects how a session gives feedback and whether it is timed.
type Mode int

const (
	ModeTrain Mode = iota // Immediate feedback, untimed
	ModeExam              // Per-question countdown, feedback at the end
)

func (m Mode) String() string {
	switch m {
	case ModeTrain:
		return "Train"
	case ModeExam:
		return "Exam"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "train" or "exam" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "train":
		return ModeTrain, nil
	case "exam":
		return ModeExam, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// State is the lifecycle position of a Session.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateInProgress:
		return "in progress"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config describes one session.
type Config struct {
	Domain        bank.Domain
	Mode          Mode
	QuestionCount int

	// TimeLimit is the per-question limit in exam mode. Zero means untimed.
	// Ignored in train mode.
	TimeLimit time.Duration

	Username string
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.QuestionCount < 1 {
		return fmt.Errorf("question count must be at least 1, got %d", c.QuestionCount)
	}
	if c.Mode != ModeTrain && c.Mode != ModeExam {
		return fmt.Errorf("invalid mode %v", c.Mode)
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf("time limit must not be negative, got %s", c.TimeLimit)
	}
	return nil
}

// Timed reports whether questions run against a countdown.
func (c Config) Timed() bool {
	return c.Mode == ModeExam && c.TimeLimit > 0
}

// AnswerRecord is one answered (or timed-out) question.
type AnswerRecord struct {
	Question bank.Question

	// Selected is the chosen option index, -1 when nothing was chosen.
	Selected int

	IsCorrect   bool
	Explanation string
	AnsweredAt  time.Time
	TimedOut    bool
}

// Result is the immutable outcome of a finished session.
type Result struct {
	ID         string
	ScoreCount int
	Total      int

	// Percent is 100*ScoreCount/Total rounded to two decimals.
	Percent float64

	Elapsed   time.Duration
	Records   []AnswerRecord
	Domain    bank.Domain
	Mode      Mode
	Username  string
	Timestamp time.Time
}

// Answered returns how many questions received a record.
func (r *Result) Answered() int {
	return len(r.Records)
}
