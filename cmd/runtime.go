package cmd

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/bank"
	"github.com/abhisek/feaquiz/internal/logging"
	"github.com/abhisek/feaquiz/internal/recorder"
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/settings"
	"github.com/abhisek/feaquiz/internal/store"
)

// runtime owns everything opened for one command invocation.
type runtime struct {
	env *screen.Env
}

// openRuntime resolves paths, builds the logger, loads settings and opens
// every store. console enables stderr logging with --debug; the TUI passes
// false because it owns the terminal.
func openRuntime(cmd *cobra.Command, console bool) (*runtime, error) {
	dir, err := resolveDataDir(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	layout := store.NewLayout(dir)
	if err := layout.Ensure(); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := logging.New(logging.Config{
		Path:    logging.DefaultPath(dir),
		Debug:   debug,
		Console: console && debug,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	logger = logger.With(zap.String("cmd", cmd.Name()))

	b, err := bank.Load(resolveBankPath(cmd))
	if err != nil {
		logger.Error("load question bank", zap.Error(err))
		_ = logger.Sync()
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	settingsDB := settings.NewStore(dir, logger)
	st, err := settingsDB.Load()
	if err != nil {
		logger.Warn("load settings, using defaults", zap.Error(err))
		st = settings.Defaults()
	}
	holder := settings.NewHolder(st)

	history := store.NewHistoryLog(layout.HistoryPath(), logger)
	board := store.NewLeaderboard(layout.LeaderboardPath(), logger)

	// The journal is optional: without it sessions still reach the flat files.
	journal, err := store.OpenJournal(layout.JournalPath())
	if err != nil {
		logger.Warn("journal unavailable", zap.String("path", layout.JournalPath()), zap.Error(err))
		journal = nil
	}

	sinks := recorder.Sinks{History: history, Leaderboard: board}
	if journal != nil {
		sinks.Journal = journal
	}
	rec := recorder.New(sinks, logger, recorder.WithAutoExport(layout.ReportsDir(), holder.AutoExport))

	logger.Debug("runtime ready",
		zap.String("data_dir", dir),
		zap.String("bank_version", b.Version()),
		zap.Int("questions", b.Len()),
	)

	return &runtime{env: &screen.Env{
		Bank:        b,
		Layout:      layout,
		History:     history,
		Leaderboard: board,
		Journal:     journal,
		Recorder:    rec,
		Settings:    holder,
		SettingsDB:  settingsDB,
		Logger:      logger,
		Now:         time.Now,
		Rand:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}}, nil
}

// Close releases the journal and flushes the logger.
func (r *runtime) Close() {
	if r.env.Journal != nil {
		if err := r.env.Journal.Close(); err != nil {
			r.env.Log().Warn("close journal", zap.Error(err))
		}
	}
	_ = r.env.Log().Sync()
}
