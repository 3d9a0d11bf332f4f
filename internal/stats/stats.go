// Package stats derives aggregate figures from the session history.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/abhisek/feaquiz/internal/store"
)

// DomainStats summarizes every recorded session of one domain.
type DomainStats struct {
	Sessions int
	AvgPct   float64
	BestPct  float64
	WorstPct float64
}

// SummarizeByDomain groups history by domain. Averages are rounded to two
// decimals.
func SummarizeByDomain(history []store.HistoryRecord) map[string]DomainStats {
	type acc struct {
		sum         decimal.Decimal
		n           int
		best, worst float64
	}
	groups := make(map[string]*acc)

	for _, rec := range history {
		a, ok := groups[rec.Domain]
		if !ok {
			a = &acc{best: rec.Percent, worst: rec.Percent}
			groups[rec.Domain] = a
		}
		a.sum = a.sum.Add(decimal.NewFromFloat(rec.Percent))
		a.n++
		a.best = max(a.best, rec.Percent)
		a.worst = min(a.worst, rec.Percent)
	}

	out := make(map[string]DomainStats, len(groups))
	for d, a := range groups {
		out[d] = DomainStats{
			Sessions: a.n,
			AvgPct:   a.sum.Div(decimal.NewFromInt(int64(a.n))).Round(2).InexactFloat64(),
			BestPct:  a.best,
			WorstPct: a.worst,
		}
	}
	return out
}

// BestAndWorstDomain returns the domains with the highest and lowest average.
// Ties resolve to the alphabetically first domain. ok is false when summary
// is empty.
func BestAndWorstDomain(summary map[string]DomainStats) (best, worst string, ok bool) {
	if len(summary) == 0 {
		return "", "", false
	}

	domains := SortedDomains(summary)
	best, worst = domains[0], domains[0]
	for _, d := range domains[1:] {
		if summary[d].AvgPct > summary[best].AvgPct {
			best = d
		}
		if summary[d].AvgPct < summary[worst].AvgPct {
			worst = d
		}
	}
	return best, worst, true
}

// SortedDomains returns the summary keys in alphabetical order.
func SortedDomains(summary map[string]DomainStats) []string {
	out := make([]string, 0, len(summary))
	for d := range summary {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Overall averages every session regardless of domain.
func Overall(history []store.HistoryRecord) (sessions int, avgPct float64) {
	if len(history) == 0 {
		return 0, 0
	}
	sum := decimal.Zero
	for _, rec := range history {
		sum = sum.Add(decimal.NewFromFloat(rec.Percent))
	}
	return len(history), sum.Div(decimal.NewFromInt(int64(len(history)))).Round(2).InexactFloat64()
}
