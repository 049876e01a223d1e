// Package ranker computes top-N cumulative gainers over configurable
// trading-day windows.
package ranker

import (
	"math"
	"sort"
	"sync"

	"BoardPulse/internal/model"
	"BoardPulse/internal/snapshot"
)

// DefaultWindows are the review windows, in trading days.
var DefaultWindows = []int{10, 20, 30, 50}

// DefaultTopN is how many symbols each window ranking keeps.
const DefaultTopN = 5

// Result is one window's ranking plus the symbols skipped for lacking
// history. Skipped applies to this window only.
type Result struct {
	Window  int
	Top     []model.RankedStock
	Skipped []*model.InsufficientHistoryError
}

// Rank computes all window rankings. Windows are independent and run in
// parallel; each result is finalized by sort + tie-break, so output never
// depends on completion order.
func Rank(st *snapshot.Store, windows []int, topN int) []Result {
	if len(windows) == 0 {
		windows = DefaultWindows
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	results := make([]Result, len(windows))
	var wg sync.WaitGroup
	for i, w := range windows {
		wg.Add(1)
		go func(i, w int) {
			defer wg.Done()
			results[i] = rankWindow(st, w, topN)
		}(i, w)
	}
	wg.Wait()
	return results
}

// rankWindow ranks every eligible symbol by cumulative gain over w trading
// days ending at the report date. Eligibility is w+1 days of history; a
// symbol short of that is excluded, never treated as zero gain.
func rankWindow(st *snapshot.Store, w, topN int) Result {
	res := Result{Window: w}
	var ranked []model.RankedStock

	for _, sym := range st.Symbols() {
		today, ok := st.At(sym, st.ReportDate())
		if !ok || !today.Traded() {
			continue
		}
		if have := st.HistoryLen(sym); have < w+1 {
			res.Skipped = append(res.Skipped, &model.InsufficientHistoryError{
				Symbol: sym, Window: w, Have: have,
			})
			continue
		}
		base, ok := st.CloseAgo(sym, w)
		if !ok {
			res.Skipped = append(res.Skipped, &model.InsufficientHistoryError{
				Symbol: sym, Window: w, Have: st.HistoryLen(sym),
			})
			continue
		}
		gain := Round2((today.Close - base) / base * 100)
		ranked = append(ranked, model.RankedStock{Symbol: sym, Name: today.Name, Pct: gain})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Pct != ranked[j].Pct {
			return ranked[i].Pct > ranked[j].Pct
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	res.Top = ranked
	return res
}

// Round2 rounds half away from zero to 2 decimals, the report-wide
// percentage convention.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
