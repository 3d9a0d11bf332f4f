package store

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/quizerr"
)

// HistoryRecord is one completed session in the history log.
type HistoryRecord struct {
	Timestamp time.Time
	Domain    string
	Mode      string
	Total     int
	Percent   float64
}

// HistoryLog is an append-only, line-oriented log of completed sessions.
// Each line is timestamp|domain|mode|total|percent.
type HistoryLog struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewHistoryLog returns a log backed by the file at path.
func NewHistoryLog(path string, logger *zap.Logger) *HistoryLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryLog{path: path, logger: logger}
}

// Path returns the log file location.
func (h *HistoryLog) Path() string { return h.path }

// Append writes rec as a new line. Existing lines are never rewritten.
func (h *HistoryLog) Append(rec HistoryRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := EnsureDir(h.path); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatHistoryLine(rec) + "\n"); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync history: %w", err)
	}
	return nil
}

// Load returns all readable records in file order. Malformed lines are
// logged and skipped. A missing file yields no records.
func (h *HistoryLog) Load() ([]HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	var out []HistoryRecord
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := parseHistoryLine(text)
		if err != nil {
			h.logger.Warn("skip history line",
				zap.Error(&quizerr.ErrMalformedRecord{Source: h.path, Line: line, Err: err}))
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read history: %w", err)
	}
	return out, nil
}

// Reset deletes the log.
func (h *HistoryLog) Reset() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.Remove(h.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove history: %w", err)
	}
	return nil
}

func formatHistoryLine(rec HistoryRecord) string {
	return strings.Join([]string{
		rec.Timestamp.Format(time.RFC3339),
		sanitizeField(rec.Domain),
		sanitizeField(rec.Mode),
		strconv.Itoa(rec.Total),
		strconv.FormatFloat(rec.Percent, 'f', 2, 64),
	}, "|")
}

func parseHistoryLine(s string) (HistoryRecord, error) {
	fields := strings.Split(s, "|")
	if len(fields) != 5 {
		return HistoryRecord{}, fmt.Errorf("want 5 fields, got %d", len(fields))
	}

	ts, err := time.Parse(time.RFC3339, fields[0])
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("timestamp: %w", err)
	}
	if fields[1] == "" || fields[2] == "" {
		return HistoryRecord{}, errors.New("empty domain or mode")
	}
	total, err := strconv.Atoi(fields[3])
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("total: %w", err)
	}
	if total < 1 {
		return HistoryRecord{}, fmt.Errorf("total %d out of range", total)
	}
	pct, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("percent: %w", err)
	}
	if pct < 0 || pct > 100 {
		return HistoryRecord{}, fmt.Errorf("percent %v out of range", pct)
	}

	return HistoryRecord{
		Timestamp: ts,
		Domain:    fields[1],
		Mode:      fields[2],
		Total:     total,
		Percent:   pct,
	}, nil
}

func sanitizeField(s string) string {
	return strings.NewReplacer("|", "/", "\n", " ", "\r", " ").Replace(s)
}
