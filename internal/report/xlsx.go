package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/feaquiz/internal/stats"
	"github.com/abhisek/feaquiz/internal/store"
)

// Sheet names in the history workbook.
const (
	SheetHistory     = "History"
	SheetByDomain    = "By Domain"
	SheetLeaderboard = "Leaderboard"
)

// WriteHistoryXLSX writes a workbook with the raw history, the per-domain
// summary and every leaderboard.
func WriteHistoryXLSX(path string, history []store.HistoryRecord, summary map[string]stats.DomainStats, boards map[string][]store.LeaderboardEntry) error {
	if err := store.EnsureDir(path); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetHistory); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetByDomain, SheetLeaderboard} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	historyRows := make([][]any, 0, len(history))
	for _, h := range history {
		historyRows = append(historyRows, []any{
			h.Timestamp.Local().Format("2006-01-02 15:04:05"),
			h.Domain,
			h.Mode,
			h.Total,
			h.Percent,
		})
	}
	if err := writeTable(f, SheetHistory, bold,
		[]any{"Timestamp", "Domain", "Mode", "Questions", "Percent"}, historyRows); err != nil {
		return err
	}

	domainRows := make([][]any, 0, len(summary))
	for _, d := range stats.SortedDomains(summary) {
		s := summary[d]
		domainRows = append(domainRows, []any{d, s.Sessions, s.AvgPct, s.BestPct, s.WorstPct})
	}
	if err := writeTable(f, SheetByDomain, bold,
		[]any{"Domain", "Sessions", "Average %", "Best %", "Worst %"}, domainRows); err != nil {
		return err
	}

	domains := make([]string, 0, len(boards))
	for d := range boards {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	var boardRows [][]any
	for _, d := range domains {
		for i, e := range boards[d] {
			boardRows = append(boardRows, []any{d, i + 1, e.Username, e.Score, e.Time, e.Mode, e.Date})
		}
	}
	if err := writeTable(f, SheetLeaderboard, bold,
		[]any{"Domain", "Rank", "User", "Score %", "Time (s)", "Mode", "Date"}, boardRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("%s header range: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return fmt.Errorf("%s columns: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("%s column width: %w", sheet, err)
	}
	return nil
}
