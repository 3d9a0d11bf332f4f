// Package screentest builds fully wired screen environments for tests.
package screentest

import (
	"math/rand/v2"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/recorder"
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/settings"
	"github.com/abhisek/feaquiz/internal/store"
)

// Now is the fixed clock used by Env.
var Now = time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

// Env returns an environment over a temporary data directory, the embedded
// question bank and an in-memory journal. st overrides the default settings
// when non-nil.
func Env(t testing.TB, st *settings.Settings) *screen.Env {
	t.Helper()

	b, err := bank.Load("")
	if err != nil {
		t.Fatalf("load embedded bank: %v", err)
	}

	layout := store.NewLayout(t.TempDir())
	if err := layout.Ensure(); err != nil {
		t.Fatalf("create data dir: %v", err)
	}

	journal, err := store.OpenJournal(":memory:")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { journal.Close() })

	current := settings.Defaults()
	if st != nil {
		current = *st
	}
	holder := settings.NewHolder(current)

	logger := zap.NewNop()
	history := store.NewHistoryLog(layout.HistoryPath(), logger)
	board := store.NewLeaderboard(layout.LeaderboardPath(), logger)

	rec := recorder.New(recorder.Sinks{
		History:     history,
		Leaderboard: board,
		Journal:     journal,
	}, logger, recorder.WithAutoExport(layout.ReportsDir(), holder.AutoExport))

	return &screen.Env{
		Bank:        b,
		Layout:      layout,
		History:     history,
		Leaderboard: board,
		Journal:     journal,
		Recorder:    rec,
		Settings:    holder,
		SettingsDB:  settings.NewStore(layout.Dir, logger),
		Logger:      logger,
		Now:         func() time.Time { return Now },
		Rand:        rand.New(rand.NewPCG(1, 2)),
	}
}

// KeyPress returns a printable key press.
func KeyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// SpecialKey returns a non-printable key press such as tea.KeyEnter.
func SpecialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Run executes cmd and returns its message, descending into batches and
// returning the first message of type T.
func Run[T tea.Msg](cmd tea.Cmd) (T, bool) {
	var zero T
	if cmd == nil {
		return zero, false
	}
	msg := cmd()
	if m, ok := msg.(T); ok {
		return m, true
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if m, ok := Run[T](c); ok {
				return m, true
			}
		}
	}
	return zero, false
}
