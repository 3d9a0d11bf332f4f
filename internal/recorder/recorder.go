// Package recorder fans a finished session result out to every persistence
// sink.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/feaquiz/internal/quizerr"
	"github.com/abhisek/feaquiz/internal/report"
	"github.com/abhisek/feaquiz/internal/session"
	"github.com/abhisek/feaquiz/internal/store"
)

// Sink names used in quizerr.ErrPersistence.
const (
	SinkHistory     = "history"
	SinkLeaderboard = "leaderboard"
	SinkJournal     = "journal"
	SinkExport      = "export"
)

// HistoryAppender appends a completed session to the history log.
type HistoryAppender interface {
	Append(rec store.HistoryRecord) error
}

// LeaderboardUpdater ranks a session within its domain.
type LeaderboardUpdater interface {
	Update(domain string, e store.LeaderboardEntry) (int, error)
}

// JournalWriter stores a session with its individual answers.
type JournalWriter interface {
	RecordSession(ctx context.Context, s store.JournalSession) error
}

// ExportFunc renders a result to path.
type ExportFunc func(path string, r *session.Result) error

// Sinks are the persistence targets. Nil sinks are skipped.
type Sinks struct {
	History     HistoryAppender
	Leaderboard LeaderboardUpdater
	Journal     JournalWriter
}

// Outcome is what the sinks reported for one result.
type Outcome struct {
	// Rank is the 1-based leaderboard position, 0 when not placed.
	Rank int

	// ExportPath is the auto-exported report, empty when none was written.
	ExportPath string
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithAutoExport writes a session PDF into dir whenever enabled returns true
// at persistence time.
func WithAutoExport(dir string, enabled func() bool) Option {
	return func(r *Recorder) {
		r.exportDir = dir
		r.exportEnabled = enabled
	}
}

// WithExporter replaces report.WriteSessionPDF.
func WithExporter(fn ExportFunc) Option {
	return func(r *Recorder) {
		r.export = fn
	}
}

// Recorder implements session.Persister.
type Recorder struct {
	sinks  Sinks
	logger *zap.Logger

	exportDir     string
	exportEnabled func() bool
	export        ExportFunc

	mu       sync.Mutex
	outcomes map[string]Outcome
}

var _ session.Persister = (*Recorder)(nil)

// New returns a Recorder writing to sinks.
func New(sinks Sinks, logger *zap.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		sinks:    sinks,
		logger:   logger,
		export:   report.WriteSessionPDF,
		outcomes: make(map[string]Outcome),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Persist writes res to every sink concurrently. A failing sink does not stop
// or undo the others; all failures are joined, each wrapped in
// quizerr.ErrPersistence.
func (r *Recorder) Persist(ctx context.Context, res *session.Result) error {
	var (
		eg   errgroup.Group
		mu   sync.Mutex
		errs []error
		out  Outcome
	)

	run := func(sink string, fn func() error) {
		eg.Go(func() error {
			if err := fn(); err != nil {
				perr := &quizerr.ErrPersistence{Sink: sink, Err: err}
				r.logger.Warn("persistence sink failed", zap.String("sink", sink), zap.String("id", res.ID), zap.Error(err))
				mu.Lock()
				errs = append(errs, perr)
				mu.Unlock()
				return perr
			}
			return nil
		})
	}

	if r.sinks.History != nil {
		run(SinkHistory, func() error {
			return r.sinks.History.Append(HistoryRecordOf(res))
		})
	}
	if r.sinks.Leaderboard != nil {
		run(SinkLeaderboard, func() error {
			rank, err := r.sinks.Leaderboard.Update(res.Domain.String(), LeaderboardEntryOf(res))
			mu.Lock()
			out.Rank = rank
			mu.Unlock()
			return err
		})
	}
	if r.sinks.Journal != nil {
		run(SinkJournal, func() error {
			return r.sinks.Journal.RecordSession(ctx, JournalSessionOf(res))
		})
	}
	if r.exportDir != "" && r.exportEnabled != nil && r.exportEnabled() {
		run(SinkExport, func() error {
			path := report.DefaultPath(r.exportDir, "session", "pdf", res.Timestamp)
			if err := r.export(path, res); err != nil {
				return err
			}
			mu.Lock()
			out.ExportPath = path
			mu.Unlock()
			return nil
		})
	}

	// Wait surfaces only the first failure; errs holds every sink's.
	first := eg.Wait()

	r.mu.Lock()
	r.outcomes[res.ID] = out
	r.mu.Unlock()

	if first != nil {
		return errors.Join(errs...)
	}
	r.logger.Debug("session persisted", zap.String("id", res.ID), zap.Int("rank", out.Rank))
	return nil
}

// Outcome returns what Persist recorded for the result with id.
func (r *Recorder) Outcome(id string) (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.outcomes[id]
	return o, ok
}

// HistoryRecordOf flattens res into a history row.
func HistoryRecordOf(res *session.Result) store.HistoryRecord {
	return store.HistoryRecord{
		Timestamp: res.Timestamp,
		Domain:    res.Domain.String(),
		Mode:      res.Mode.String(),
		Total:     res.Total,
		Percent:   res.Percent,
	}
}

// LeaderboardEntryOf converts res into a ranking entry.
func LeaderboardEntryOf(res *session.Result) store.LeaderboardEntry {
	secs := res.Elapsed.Round(10 * time.Millisecond).Seconds()
	return store.LeaderboardEntry{
		Username: res.Username,
		Score:    res.Percent,
		Time:     secs,
		Mode:     res.Mode.String(),
		Date:     res.Timestamp.Local().Format(store.LeaderboardDateLayout),
	}
}

// JournalSessionOf converts res into a journal row with its answers.
func JournalSessionOf(res *session.Result) store.JournalSession {
	js := store.JournalSession{
		ID:        res.ID,
		Username:  res.Username,
		Domain:    res.Domain.String(),
		Mode:      res.Mode.String(),
		Score:     res.ScoreCount,
		Total:     res.Total,
		Percent:   res.Percent,
		Elapsed:   res.Elapsed,
		Timestamp: res.Timestamp,
		Answers:   make([]store.JournalAnswer, 0, len(res.Records)),
	}
	for _, rec := range res.Records {
		js.Answers = append(js.Answers, store.JournalAnswer{
			QuestionID: rec.Question.ID,
			Domain:     rec.Question.Domain.String(),
			Selected:   rec.Selected,
			Correct:    rec.IsCorrect,
			TimedOut:   rec.TimedOut,
			AnsweredAt: rec.AnsweredAt,
		})
	}
	return js
}

// String describes o for status lines.
func (o Outcome) String() string {
	s := "not ranked"
	if o.Rank > 0 {
		s = fmt.Sprintf("leaderboard #%d", o.Rank)
	}
	if o.ExportPath != "" {
		s += ", report " + o.ExportPath
	}
	return s
}
