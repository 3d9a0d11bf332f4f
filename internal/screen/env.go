package screen

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/recorder"
	"github.com/abhisek/feaquiz/internal/settings"
	"github.com/abhisek/feaquiz/internal/store"
)

// Env carries the services shared by every screen.
type Env struct {
	Bank        *bank.Bank
	Layout      store.Layout
	History     *store.HistoryLog
	Leaderboard *store.Leaderboard
	Journal     *store.Journal // nil when the journal could not be opened
	Recorder    *recorder.Recorder
	Settings    *settings.Holder
	SettingsDB  *settings.Store
	Logger      *zap.Logger

	Now  func() time.Time
	Rand *rand.Rand
}

// SettingsChangedMsg is broadcast after settings are saved or reloaded from
// disk.
type SettingsChangedMsg struct {
	Settings settings.Settings
}

// Clock returns Env.Now or time.Now.
func (e *Env) Clock() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Log returns the logger, never nil.
func (e *Env) Log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// CurrentSettings returns the live settings, or the defaults when no holder
// is wired.
func (e *Env) CurrentSettings() settings.Settings {
	if e.Settings == nil {
		return settings.Defaults()
	}
	return e.Settings.Get()
}
