package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/feaquiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "feaquiz",
	Short: "FEA quiz trainer",
	Long:  "feaquiz: terminal quiz trainer for finite element analysis engineers (structural, crash, CFD, NVH).",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for history, leaderboard, settings and reports (overrides FEAQUIZ_HOME)")
	rootCmd.PersistentFlags().String("bank", "", "Path to a question bank JSON file (overrides FEAQUIZ_BANK)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log at debug level; subcommands also log to stderr")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDataDir returns the data directory using --data-dir (highest
// priority), then FEAQUIZ_HOME, then the default XDG path.
func resolveDataDir(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("data-dir"); p != "" {
		return p, nil
	}
	return store.DefaultDataDir()
}

// resolveBankPath returns --bank, then FEAQUIZ_BANK. Empty selects the
// embedded bank.
func resolveBankPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("bank"); p != "" {
		return p
	}
	return os.Getenv("FEAQUIZ_BANK")
}
