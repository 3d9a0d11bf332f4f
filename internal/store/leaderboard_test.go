package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLeaderboard(t *testing.T) *Leaderboard {
	t.Helper()
	return NewLeaderboard(filepath.Join(t.TempDir(), "leaderboard.json"), zap.NewNop())
}

func entry(name string, score float64) LeaderboardEntry {
	return LeaderboardEntry{Username: name, Score: score, Time: 30, Mode: "Exam", Date: "2025-06-01 10:00"}
}

func TestLeaderboardGetEmpty(t *testing.T) {
	lb := newTestLeaderboard(t)
	got, err := lb.Get("CFD")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLeaderboardEvictsMinimum(t *testing.T) {
	lb := newTestLeaderboard(t)

	for i := 0; i < MaxLeaderboardEntries; i++ {
		_, err := lb.Update("CFD", entry(fmt.Sprintf("u%d", i), float64(10+i*5)))
		require.NoError(t, err)
	}
	before, err := lb.Get("CFD")
	require.NoError(t, err)
	require.Len(t, before, 10)
	minimum := before[len(before)-1]
	assert.Equal(t, 10.0, minimum.Score)

	rank, err := lb.Update("CFD", entry("newcomer", 42))
	require.NoError(t, err)

	after, err := lb.Get("CFD")
	require.NoError(t, err)
	require.Len(t, after, 10)

	for _, e := range after {
		assert.NotEqual(t, minimum.Username, e.Username, "minimum should be evicted")
	}
	require.GreaterOrEqual(t, rank, 1)
	assert.Equal(t, "newcomer", after[rank-1].Username)
	for i := 1; i < len(after); i++ {
		assert.GreaterOrEqual(t, after[i-1].Score, after[i].Score)
	}
}

func TestLeaderboardTiesKeepInsertionOrder(t *testing.T) {
	lb := newTestLeaderboard(t)

	for _, name := range []string{"first", "second", "third"} {
		_, err := lb.Update("NVH", entry(name, 80))
		require.NoError(t, err)
	}
	rank, err := lb.Update("NVH", entry("top", 90))
	require.NoError(t, err)
	assert.Equal(t, 1, rank)

	got, err := lb.Get("NVH")
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, e := range got {
		names[i] = e.Username
	}
	assert.Equal(t, []string{"top", "first", "second", "third"}, names)
}

func TestLeaderboardLowScoreNotPlaced(t *testing.T) {
	lb := newTestLeaderboard(t)
	for i := 0; i < MaxLeaderboardEntries; i++ {
		_, err := lb.Update("Crash", entry("u", 50))
		require.NoError(t, err)
	}

	rank, err := lb.Update("Crash", entry("late", 50))
	require.NoError(t, err)
	assert.Equal(t, 0, rank, "equal score after a full board does not place")

	got, err := lb.Get("Crash")
	require.NoError(t, err)
	assert.Len(t, got, MaxLeaderboardEntries)
}

func TestLeaderboardDomainsIndependent(t *testing.T) {
	lb := newTestLeaderboard(t)
	_, err := lb.Update("CFD", entry("a", 10))
	require.NoError(t, err)
	_, err = lb.Update("NVH", entry("b", 20))
	require.NoError(t, err)

	all, err := lb.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, all["CFD"], 1)
	assert.Len(t, all["NVH"], 1)
}

func TestLeaderboardSkipsMalformedEntries(t *testing.T) {
	lb := newTestLeaderboard(t)
	doc := `{
  "CFD": [
    {"username": "ok", "score": 70, "time": 12, "mode": "Exam", "date": "2025-06-01 10:00"},
    {"username": "bad", "score": "high"},
    {"username": "", "score": 90},
    {"username": "neg", "score": -5},
    {"username": "ok2", "score": 80, "time": 10, "mode": "Train", "date": "2025-06-01 11:00"}
  ]
}`
	require.NoError(t, os.WriteFile(lb.Path(), []byte(doc), 0o644))

	got, err := lb.Get("CFD")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ok2", got[0].Username)
	assert.Equal(t, "ok", got[1].Username)
}

func TestLeaderboardCorruptDocumentMovedAside(t *testing.T) {
	lb := newTestLeaderboard(t)
	lb.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	require.NoError(t, os.WriteFile(lb.Path(), []byte("{{{"), 0o644))

	got, err := lb.Get("CFD")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = lb.Update("CFD", entry("fresh", 50))
	require.NoError(t, err)

	_, err = os.Stat(lb.Path() + ".corrupt-20250102T030405")
	assert.NoError(t, err, "corrupt copy should be kept")

	got, err = lb.Get("CFD")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Username)
}

func TestLeaderboardReset(t *testing.T) {
	lb := newTestLeaderboard(t)
	_, err := lb.Update("CFD", entry("a", 10))
	require.NoError(t, err)
	require.NoError(t, lb.Reset())

	all, err := lb.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("FEAQUIZ_HOME", "/custom/feaquiz")
	got, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/feaquiz", got)

	t.Setenv("FEAQUIZ_HOME", "")
	t.Setenv("XDG_DATA_HOME", "/xdg")
	got, err = DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "feaquiz"), got)
}

func TestLayoutPaths(t *testing.T) {
	l := NewLayout("/data")
	assert.Equal(t, filepath.Join("/data", "history.log"), l.HistoryPath())
	assert.Equal(t, filepath.Join("/data", "leaderboard.json"), l.LeaderboardPath())
	assert.Equal(t, filepath.Join("/data", "journal.db"), l.JournalPath())
	assert.Equal(t, filepath.Join("/data", "reports"), l.ReportsDir())
}
