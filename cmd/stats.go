package cmd

import (
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/abhisek/feaquiz/internal/stats"
	"github.com/abhisek/feaquiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-domain statistics from the session history",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		recs, err := rt.env.History.Load()
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		var weak []store.QuestionStat
		if rt.env.Journal != nil {
			weak, err = rt.env.Journal.QuestionStats(cmd.Context(), "", 5)
			if err != nil {
				return fmt.Errorf("load question stats: %w", err)
			}
		}
		return printStats(cmd.OutOrStdout(), recs, weak)
	},
}

func printStats(w io.Writer, recs []store.HistoryRecord, weak []store.QuestionStat) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}

	sessions, avg := stats.Overall(recs)
	fmt.Fprintf(w, "Sessions: %d   Average: %.2f%%\n", sessions, avg)

	summary := stats.SummarizeByDomain(recs)
	if best, worst, ok := stats.BestAndWorstDomain(summary); ok {
		fmt.Fprintf(w, "Strongest: %s   Weakest: %s\n", best, worst)
	}
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(summary))
	for _, d := range stats.SortedDomains(summary) {
		st := summary[d]
		rows = append(rows, []string{
			d,
			fmt.Sprintf("%d", st.Sessions),
			fmt.Sprintf("%.2f", st.AvgPct),
			fmt.Sprintf("%.2f", st.BestPct),
			fmt.Sprintf("%.2f", st.WorstPct),
		})
	}
	if _, err := fmt.Fprintln(w, domainTable(rows)); err != nil {
		return err
	}

	if len(weak) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Least accurate questions:")
		for _, q := range weak {
			fmt.Fprintf(w, "  %-10s %-10s %5.1f%% of %d\n", q.QuestionID, q.Domain, q.Accuracy*100, q.Attempts)
		}
	}
	return nil
}

// domainTable renders the per-domain rows without colour so the output
// stays readable when piped.
func domainTable(rows [][]string) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Domain", "Sessions", "Avg %", "Best %", "Worst %").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return cell
			}
			return cell.Align(lipgloss.Right)
		}).
		Render()
}
