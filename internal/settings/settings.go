package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Limits applied by Normalize.
const (
	MinQuestions   = 1
	MaxQuestions   = 50
	MinExamSeconds = 5
	MaxExamSeconds = 600
)

// FileName is the settings document inside the data directory.
const FileName = "settings.json"

// Settings are the user preferences persisted between runs.
type Settings struct {
	Username     string `mapstructure:"username"`
	DarkMode     bool   `mapstructure:"dark_mode"`
	NumQuestions int    `mapstructure:"num_questions"`
	ExamSeconds  int    `mapstructure:"exam_seconds"`
	AutoExport   bool   `mapstructure:"auto_export"`
}

// Defaults returns the settings used when nothing is stored.
func Defaults() Settings {
	return Settings{
		Username:     "Engineer",
		DarkMode:     true,
		NumQuestions: 10,
		ExamSeconds:  30,
		AutoExport:   false,
	}
}

// Normalize clamps numeric values into range and restores an empty username.
func (s Settings) Normalize() Settings {
	s.Username = strings.TrimSpace(s.Username)
	if s.Username == "" {
		s.Username = Defaults().Username
	}
	s.NumQuestions = clamp(s.NumQuestions, MinQuestions, MaxQuestions)
	s.ExamSeconds = clamp(s.ExamSeconds, MinExamSeconds, MaxExamSeconds)
	return s
}

// ExamLimit returns the per-question time limit as a duration.
func (s Settings) ExamLimit() time.Duration {
	return time.Duration(s.ExamSeconds) * time.Second
}

// Store reads and writes the settings document at a fixed path.
type Store struct {
	path     string
	logger   *zap.Logger
	debounce time.Duration
}

// NewStore returns a Store for the settings file inside dataDir.
func NewStore(dataDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:     filepath.Join(dataDir, FileName),
		logger:   logger,
		debounce: 250 * time.Millisecond,
	}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored settings merged over the defaults. A missing file
// is not an error. An unreadable file yields the defaults and the error.
func (s *Store) Load() (Settings, error) {
	defaults := Defaults()

	v := viper.New()
	m := make(map[string]any)
	if err := mapstructure.Decode(defaults, &m); err != nil {
		return defaults, fmt.Errorf("mapstructure: %w", err)
	}
	// Defaults sit below the file layer; ReadInConfig replaces merged maps.
	for k, val := range m {
		v.SetDefault(k, val)
	}

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return defaults, nil
	}

	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return defaults, fmt.Errorf("read settings from %s: %w", s.path, err)
	}

	var out Settings
	if err := v.Unmarshal(&out); err != nil {
		return defaults, fmt.Errorf("unmarshal settings: %w", err)
	}
	return out.Normalize(), nil
}

// Save normalizes and writes st. The file is replaced by rename so readers
// never see a partial document.
func (s *Store) Save(st Settings) error {
	st = st.Normalize()

	m := make(map[string]any)
	if err := mapstructure.Decode(st, &m); err != nil {
		return fmt.Errorf("mapstructure: %w", err)
	}

	v := viper.New()
	for k, val := range m {
		v.Set(k, val)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	// viper picks the encoder from the extension, so the temp file keeps .json.
	tmp := strings.TrimSuffix(s.path, ".json") + ".tmp.json"
	if err := v.WriteConfigAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Reset removes the settings file.
func (s *Store) Reset() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove settings: %w", err)
	}
	return nil
}

// Watch calls fn with freshly loaded settings whenever the file changes on
// disk, until ctx is done. The parent directory is watched so that atomic
// replaces are seen.
func (s *Store) Watch(ctx context.Context, fn func(Settings)) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go s.watchLoop(ctx, watcher, fn)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, fn func(Settings)) {
	defer watcher.Close()

	target := filepath.Clean(s.path)
	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(s.debounce)

		case <-timer.C:
			st, err := s.Load()
			if err != nil {
				s.logger.Warn("reload settings", zap.Error(err))
				continue
			}
			s.logger.Debug("settings reloaded", zap.String("path", s.path))
			fn(st)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("settings watcher", zap.Error(err))
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
