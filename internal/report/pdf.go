// Package report renders session results and history to PDF and XLSX files.
package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/abhisek/feaquiz/internal/session"
	"github.com/abhisek/feaquiz/internal/stats"
	"github.com/abhisek/feaquiz/internal/store"
)

const (
	pageWidth  = 190.0 // A4 width minus default margins, in mm
	lineHeight = 6.0
)

// DefaultPath returns dir/prefix-YYYYMMDD-HHMMSS.ext.
func DefaultPath(dir, prefix, ext string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.%s", prefix, t.Format("20060102-150405"), ext))
}

// WriteSessionPDF writes a one-session report: a summary block followed by
// every answered question with the chosen and correct options.
func WriteSessionPDF(path string, r *session.Result) (err error) {
	defer recoverInto(&err)

	if r == nil {
		return fmt.Errorf("write session report: no result")
	}
	if err := store.EnsureDir(path); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	pdf := newDocument("FEA Quiz Session Report")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	heading(pdf, tr("FEA Quiz Session Report"))

	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"User", r.Username},
		{"Domain", r.Domain.String()},
		{"Mode", r.Mode.String()},
		{"Date", r.Timestamp.Format("2006-01-02 15:04")},
		{"Score", fmt.Sprintf("%d / %d", r.ScoreCount, r.Total)},
		{"Percent", fmt.Sprintf("%.2f%%", r.Percent)},
		{"Time", FormatElapsed(r.Elapsed)},
	}
	keyValueTable(pdf, tr, rows)

	pdf.Ln(4)
	subheading(pdf, "Questions")

	for i, rec := range r.Records {
		q := rec.Question

		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(pageWidth, lineHeight, tr(fmt.Sprintf("%d. %s", i+1, q.Prompt)), "", "L", false)

		pdf.SetFont("Helvetica", "", 10)
		chosen := "(no answer)"
		if rec.Selected >= 0 {
			chosen = q.OptionText(rec.Selected)
		}
		if rec.TimedOut {
			chosen += " [time expired]"
		}

		verdict := "Incorrect"
		if rec.IsCorrect {
			pdf.SetTextColor(22, 128, 61)
			verdict = "Correct"
		} else {
			pdf.SetTextColor(190, 18, 60)
		}
		pdf.CellFormat(pageWidth, lineHeight, verdict, "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)

		pdf.MultiCell(pageWidth, lineHeight, tr("Your answer: "+chosen), "", "L", false)
		pdf.MultiCell(pageWidth, lineHeight, tr("Correct answer: "+q.CorrectText()), "", "L", false)
		if rec.Explanation != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.MultiCell(pageWidth, lineHeight, tr(rec.Explanation), "", "L", false)
		}
		pdf.Ln(3)
	}

	if unanswered := r.Total - len(r.Records); unanswered > 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(pageWidth, lineHeight,
			fmt.Sprintf("%d question(s) not answered, counted as incorrect.", unanswered),
			"", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write session report: %w", err)
	}
	return nil
}

// WriteSummaryPDF writes an aggregate report over the whole history.
func WriteSummaryPDF(path string, history []store.HistoryRecord, summary map[string]stats.DomainStats) (err error) {
	defer recoverInto(&err)

	if err := store.EnsureDir(path); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	pdf := newDocument("FEA Quiz Progress Report")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	heading(pdf, "FEA Quiz Progress Report")

	n, avg := stats.Overall(history)
	rows := [][2]string{
		{"Sessions", fmt.Sprintf("%d", n)},
		{"Average", fmt.Sprintf("%.2f%%", avg)},
	}
	if best, worst, ok := stats.BestAndWorstDomain(summary); ok {
		rows = append(rows,
			[2]string{"Strongest domain", best},
			[2]string{"Weakest domain", worst},
		)
	}
	pdf.SetFont("Helvetica", "", 11)
	keyValueTable(pdf, tr, rows)

	pdf.Ln(4)
	subheading(pdf, "By domain")

	widths := []float64{60, 30, 33, 33, 34}
	tableHeader(pdf, widths, []string{"Domain", "Sessions", "Average %", "Best %", "Worst %"})
	pdf.SetFont("Helvetica", "", 10)
	for _, d := range stats.SortedDomains(summary) {
		s := summary[d]
		cells := []string{
			d,
			fmt.Sprintf("%d", s.Sessions),
			fmt.Sprintf("%.2f", s.AvgPct),
			fmt.Sprintf("%.2f", s.BestPct),
			fmt.Sprintf("%.2f", s.WorstPct),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, tr(c), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	subheading(pdf, "Recent sessions")

	recent := history
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	widths = []float64{50, 45, 30, 30, 35}
	tableHeader(pdf, widths, []string{"Date", "Domain", "Mode", "Questions", "Percent"})
	pdf.SetFont("Helvetica", "", 10)
	for i := len(recent) - 1; i >= 0; i-- {
		h := recent[i]
		cells := []string{
			h.Timestamp.Local().Format("2006-01-02 15:04"),
			h.Domain,
			h.Mode,
			fmt.Sprintf("%d", h.Total),
			fmt.Sprintf("%.2f", h.Percent),
		}
		for j, c := range cells {
			pdf.CellFormat(widths[j], 7, tr(c), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write summary report: %w", err)
	}
	return nil
}

// FormatElapsed renders d as m:ss.
func FormatElapsed(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func newDocument(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("feaquiz", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	return pdf
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(pageWidth, 12, text, "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func subheading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(pageWidth, 8, text, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func keyValueTable(pdf *fpdf.Fpdf, tr func(string) string, rows [][2]string) {
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 7, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(pageWidth-45, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, titles []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(226, 232, 240)
	for i, t := range titles {
		pdf.CellFormat(widths[i], 7, t, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("render report: %v", r)
	}
}
