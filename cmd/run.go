package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/feaquiz/internal/app"
)

// runApp opens the stores, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	rt, err := openRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	return app.Run(cmd.Context(), rt.env)
}
