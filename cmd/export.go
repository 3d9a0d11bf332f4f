package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/feaquiz/internal/report"
	"github.com/abhisek/feaquiz/internal/stats"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the history summary as PDF and XLSX reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = rt.env.Layout.ReportsDir()
		}

		recs, err := rt.env.History.Load()
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		boards, err := rt.env.Leaderboard.All()
		if err != nil {
			return fmt.Errorf("load leaderboard: %w", err)
		}
		summary := stats.SummarizeByDomain(recs)

		now := time.Now()
		pdfPath := report.DefaultPath(out, "summary", "pdf", now)
		if err := report.WriteSummaryPDF(pdfPath, recs, summary); err != nil {
			return fmt.Errorf("write summary pdf: %w", err)
		}
		xlsxPath := report.DefaultPath(out, "history", "xlsx", now)
		if err := report.WriteHistoryXLSX(xlsxPath, recs, summary, boards); err != nil {
			return fmt.Errorf("write history xlsx: %w", err)
		}

		rt.env.Log().Info("reports exported", zap.String("pdf", pdfPath), zap.String("xlsx", xlsxPath))
		fmt.Fprintln(cmd.OutOrStdout(), pdfPath)
		fmt.Fprintln(cmd.OutOrStdout(), xlsxPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "Output directory (default: <data-dir>/reports)")
}
