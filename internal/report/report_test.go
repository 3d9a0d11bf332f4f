package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/session"
	"github.com/abhisek/feaquiz/internal/stats"
	"github.com/abhisek/feaquiz/internal/store"
)

func testResult() *session.Result {
	q1 := bank.Question{
		ID:            "cfd-001",
		Prompt:        "What does a y+ value of about 1 indicate?",
		Options:       []string{"Viscous sublayer resolved", "Wall functions", "Laminar flow"},
		CorrectOption: 0,
		Explanation:   "y+ ≈ 1 resolves the viscous sublayer.",
		Domain:        bank.DomainCFD,
	}
	q2 := q1
	q2.ID = "cfd-002"
	q2.Prompt = "The CFL number relates Δt, u and Δx?"

	ts := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	return &session.Result{
		ID:         "r1",
		ScoreCount: 1,
		Total:      3,
		Percent:    33.33,
		Elapsed:    95 * time.Second,
		Domain:     bank.DomainCFD,
		Mode:       session.ModeExam,
		Username:   "tester",
		Timestamp:  ts,
		Records: []session.AnswerRecord{
			{Question: q1, Selected: 0, IsCorrect: true, Explanation: q1.Explanation, AnsweredAt: ts},
			{Question: q2, Selected: -1, IsCorrect: false, Explanation: q2.Explanation, AnsweredAt: ts, TimedOut: true},
		},
	}
}

func testHistory() []store.HistoryRecord {
	ts := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return []store.HistoryRecord{
		{Timestamp: ts, Domain: "CFD", Mode: "Train", Total: 5, Percent: 60},
		{Timestamp: ts.Add(time.Hour), Domain: "NVH", Mode: "Exam", Total: 4, Percent: 75},
		{Timestamp: ts.Add(2 * time.Hour), Domain: "CFD", Mode: "Exam", Total: 5, Percent: 80},
	}
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")), "missing PDF header")
}

func TestWriteSessionPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "session.pdf")
	require.NoError(t, WriteSessionPDF(path, testResult()))
	assertPDF(t, path)
}

func TestWriteSessionPDF_NilResult(t *testing.T) {
	err := WriteSessionPDF(filepath.Join(t.TempDir(), "x.pdf"), nil)
	assert.Error(t, err)
}

func TestWriteSummaryPDF(t *testing.T) {
	history := testHistory()
	path := filepath.Join(t.TempDir(), "summary.pdf")
	require.NoError(t, WriteSummaryPDF(path, history, stats.SummarizeByDomain(history)))
	assertPDF(t, path)
}

func TestWriteSummaryPDF_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.pdf")
	require.NoError(t, WriteSummaryPDF(path, nil, nil))
	assertPDF(t, path)
}

func TestWriteHistoryXLSX(t *testing.T) {
	history := testHistory()
	boards := map[string][]store.LeaderboardEntry{
		"CFD": {
			{Username: "a", Score: 80, Time: 40, Mode: "Exam", Date: "2025-06-01 11:00"},
			{Username: "b", Score: 60, Time: 50, Mode: "Train", Date: "2025-06-01 09:00"},
		},
	}
	path := filepath.Join(t.TempDir(), "history.xlsx")
	require.NoError(t, WriteHistoryXLSX(path, history, stats.SummarizeByDomain(history), boards))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetHistory, SheetByDomain, SheetLeaderboard}, f.GetSheetList())

	rows, err := f.GetRows(SheetHistory)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Timestamp", "Domain", "Mode", "Questions", "Percent"}, rows[0])
	assert.Equal(t, "NVH", rows[2][1])

	rows, err = f.GetRows(SheetByDomain)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "CFD", rows[1][0])
	assert.Equal(t, "70", rows[1][2])

	rows, err = f.GetRows(SheetLeaderboard)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"CFD", "1", "a"}, rows[1][:3])
}

func TestDefaultPath(t *testing.T) {
	ts := time.Date(2025, 6, 1, 14, 5, 9, 0, time.UTC)
	got := DefaultPath("/out", "session", "pdf", ts)
	assert.Equal(t, filepath.Join("/out", "session-20250601-140509.pdf"), got)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "1:35", FormatElapsed(95*time.Second))
	assert.Equal(t, "0:00", FormatElapsed(0))
	assert.Equal(t, "12:01", FormatElapsed(721*time.Second))
}
