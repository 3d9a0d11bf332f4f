package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete history, leaderboard, journal and settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return errors.New("reset deletes all recorded sessions; rerun with --yes to confirm")
		}

		rt, err := openRuntime(cmd, true)
		if err != nil {
			return err
		}
		defer rt.Close()
		env := rt.env

		var errs []error
		if err := env.History.Reset(); err != nil {
			errs = append(errs, err)
		}
		if err := env.Leaderboard.Reset(); err != nil {
			errs = append(errs, err)
		}
		if env.Journal != nil {
			if err := env.Journal.Reset(cmd.Context()); err != nil {
				errs = append(errs, err)
			}
		}
		if err := env.SettingsDB.Reset(); err != nil {
			errs = append(errs, err)
		}
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("reset: %w", err)
		}

		env.Log().Info("data reset", zap.String("data_dir", env.Layout.Dir))
		fmt.Fprintln(cmd.OutOrStdout(), "All quiz data removed from", env.Layout.Dir)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
