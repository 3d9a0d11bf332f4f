package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout names the files kept inside a data directory.
type Layout struct {
	Dir string
}

// NewLayout returns the layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{Dir: dir}
}

func (l Layout) HistoryPath() string     { return filepath.Join(l.Dir, "history.log") }
func (l Layout) LeaderboardPath() string { return filepath.Join(l.Dir, "leaderboard.json") }
func (l Layout) JournalPath() string     { return filepath.Join(l.Dir, "journal.db") }
func (l Layout) ReportsDir() string      { return filepath.Join(l.Dir, "reports") }

// Ensure creates the data directory.
func (l Layout) Ensure() error {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

// DefaultDataDir resolves the data directory in priority order:
// 1. FEAQUIZ_HOME environment variable
// 2. $XDG_DATA_HOME/feaquiz
// 3. ~/.local/share/feaquiz
func DefaultDataDir() (string, error) {
	if p := os.Getenv("FEAQUIZ_HOME"); p != "" {
		return p, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "feaquiz"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// writeFileAtomic replaces path with data. The content is written to a temp
// file in the same directory, synced, then renamed over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
