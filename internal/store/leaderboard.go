package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/quizerr"
)

// MaxLeaderboardEntries caps each domain's ranking.
const MaxLeaderboardEntries = 10

// LeaderboardEntry is one ranked session.
type LeaderboardEntry struct {
	Username string `json:"username"`

	// Score is the session percent.
	Score float64 `json:"score"`

	// Time is the elapsed session time in seconds.
	Time float64 `json:"time"`

	Mode string `json:"mode"`
	Date string `json:"date"`
}

// LeaderboardDateLayout formats LeaderboardEntry.Date.
const LeaderboardDateLayout = "2006-01-02 15:04"

// Leaderboard keeps the top entries per domain in one JSON document. Every
// update replaces the whole file atomically.
type Leaderboard struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// NewLeaderboard returns a leaderboard backed by the file at path.
func NewLeaderboard(path string, logger *zap.Logger) *Leaderboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Leaderboard{path: path, logger: logger, now: time.Now}
}

// Path returns the document location.
func (l *Leaderboard) Path() string { return l.path }

// Update adds e to domain's ranking and returns e's 1-based rank, or 0 when
// it did not make the top entries. Entries with equal scores keep insertion
// order.
func (l *Leaderboard) Update(domain string, e LeaderboardEntry) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all, corrupt, err := l.load()
	if err != nil {
		return 0, err
	}
	if corrupt {
		if err := l.moveAside(); err != nil {
			return 0, err
		}
	}

	list := all[domain]
	sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })

	pos := sort.Search(len(list), func(i int) bool { return list[i].Score < e.Score })
	list = append(list, LeaderboardEntry{})
	copy(list[pos+1:], list[pos:])
	list[pos] = e

	if len(list) > MaxLeaderboardEntries {
		list = list[:MaxLeaderboardEntries]
	}
	all[domain] = list

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode leaderboard: %w", err)
	}
	if err := writeFileAtomic(l.path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write leaderboard: %w", err)
	}

	if pos >= MaxLeaderboardEntries {
		return 0, nil
	}
	return pos + 1, nil
}

// Get returns domain's ranking, best first. Unknown domains yield an empty
// slice.
func (l *Leaderboard) Get(domain string) ([]LeaderboardEntry, error) {
	all, err := l.All()
	if err != nil {
		return nil, err
	}
	return all[domain], nil
}

// All returns every domain's ranking.
func (l *Leaderboard) All() (map[string][]LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all, _, err := l.load()
	if err != nil {
		return nil, err
	}
	for d, list := range all {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })
		if len(list) > MaxLeaderboardEntries {
			all[d] = list[:MaxLeaderboardEntries]
		}
	}
	return all, nil
}

// Reset deletes the document.
func (l *Leaderboard) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove leaderboard: %w", err)
	}
	return nil
}

// load reads the document, skipping unreadable entries. corrupt reports that
// the document as a whole could not be parsed; the result is then empty.
func (l *Leaderboard) load() (map[string][]LeaderboardEntry, bool, error) {
	out := make(map[string][]LeaderboardEntry)

	raw, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, false, nil
		}
		return nil, false, fmt.Errorf("read leaderboard: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return out, false, nil
	}

	var doc map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		l.logger.Warn("leaderboard unreadable",
			zap.Error(&quizerr.ErrMalformedRecord{Source: l.path, Err: err}))
		return out, true, nil
	}

	for domain, entries := range doc {
		list := make([]LeaderboardEntry, 0, len(entries))
		for i, rawEntry := range entries {
			var e LeaderboardEntry
			if err := json.Unmarshal(rawEntry, &e); err != nil {
				l.logger.Warn("skip leaderboard entry",
					zap.String("domain", domain), zap.Int("index", i),
					zap.Error(&quizerr.ErrMalformedRecord{Source: l.path, Err: err}))
				continue
			}
			if err := validateEntry(e); err != nil {
				l.logger.Warn("skip leaderboard entry",
					zap.String("domain", domain), zap.Int("index", i),
					zap.Error(&quizerr.ErrMalformedRecord{Source: l.path, Err: err}))
				continue
			}
			list = append(list, e)
		}
		out[domain] = list
	}
	return out, false, nil
}

func (l *Leaderboard) moveAside() error {
	dst := fmt.Sprintf("%s.corrupt-%s", l.path, l.now().Format("20060102T150405"))
	if err := os.Rename(l.path, dst); err != nil {
		return fmt.Errorf("move corrupt leaderboard aside: %w", err)
	}
	l.logger.Warn("corrupt leaderboard moved aside", zap.String("path", dst))
	return nil
}

func validateEntry(e LeaderboardEntry) error {
	if strings.TrimSpace(e.Username) == "" {
		return errors.New("missing username")
	}
	if e.Score < 0 || e.Score > 100 {
		return fmt.Errorf("score %v out of range", e.Score)
	}
	if e.Time < 0 {
		return fmt.Errorf("negative time %v", e.Time)
	}
	return nil
}
