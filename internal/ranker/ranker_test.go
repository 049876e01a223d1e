package ranker

import (
	"testing"

	"BoardPulse/internal/model"
	"BoardPulse/internal/snapshot"
)

// tradingDates returns n synthetic consecutive dates ending at 2026-03-31.
func tradingDates(n int) []string {
	all := make([]string, 0, n)
	// Fixed pre-generated axis keeps tests independent of calendar logic.
	base := []string{
		"20260302", "20260303", "20260304", "20260305", "20260306",
		"20260309", "20260310", "20260311", "20260312", "20260313",
		"20260316", "20260317", "20260318", "20260319", "20260320",
		"20260323", "20260324", "20260325", "20260326", "20260327",
		"20260330", "20260331",
	}
	all = append(all, base[len(base)-n:]...)
	return all
}

// buildStore creates a store where each symbol has `days[sym]` history days
// ending at the report date, with close walking from start[sym] by +1% per
// day.
func buildStore(t *testing.T, days map[string]int, start map[string]float64) *snapshot.Store {
	t.Helper()
	maxDays := 0
	for _, n := range days {
		if n > maxDays {
			maxDays = n
		}
	}
	dates := tradingDates(maxDays)
	report := dates[len(dates)-1]

	var day []model.InstrumentSnapshot
	hist := map[string][]model.InstrumentSnapshot{}
	for sym, n := range days {
		closes := make([]float64, n)
		c := start[sym]
		for i := range closes {
			closes[i] = c
			c *= 1.01
		}
		symDates := dates[len(dates)-n:]
		for i, d := range symDates {
			s := model.InstrumentSnapshot{
				Symbol: sym, Date: d, Board: model.BoardMain,
				Open: closes[i], High: closes[i], Low: closes[i],
				Close: closes[i], PrevClose: closes[i], Volume: 1000,
			}
			if d == report {
				day = append(day, s)
			} else {
				hist[sym] = append(hist[sym], s)
			}
		}
	}
	st, err := snapshot.Build(report, day, hist)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestRankWindow_InsufficientHistoryExcluded(t *testing.T) {
	// Scenario: Y has only 8 days, window 10 requested.
	st := buildStore(t,
		map[string]int{"600001": 15, "600002": 8},
		map[string]float64{"600001": 10, "600002": 20},
	)
	results := Rank(st, []int{10}, 5)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	for _, r := range res.Top {
		if r.Symbol == "600002" {
			t.Error("600002 has 8 days of history, must not appear in window 10")
		}
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("expected 1 skip, got %d", len(res.Skipped))
	}
	if sk := res.Skipped[0]; sk.Symbol != "600002" || sk.Window != 10 || sk.Have != 8 {
		t.Errorf("skip = %+v", sk)
	}
}

func TestRankWindow_QualifiesForSmallerWindow(t *testing.T) {
	st := buildStore(t,
		map[string]int{"600001": 15, "600002": 8},
		map[string]float64{"600001": 10, "600002": 20},
	)
	results := Rank(st, []int{5, 10}, 5)
	byWindow := map[int]Result{}
	for _, r := range results {
		byWindow[r.Window] = r
	}
	found := false
	for _, r := range byWindow[5].Top {
		if r.Symbol == "600002" {
			found = true
		}
	}
	if !found {
		t.Error("600002 has 8 days, should rank in window 5")
	}
	if len(byWindow[5].Skipped) != 0 {
		t.Errorf("window 5 skips = %v, want none", byWindow[5].Skipped)
	}
}

func TestRankWindow_OrderAndTieBreak(t *testing.T) {
	// Equal +1%/day walks produce identical window gains; tie breaks by
	// ascending symbol code.
	st := buildStore(t,
		map[string]int{"600300": 11, "600100": 11, "600200": 11},
		map[string]float64{"600300": 10, "600100": 20, "600200": 30},
	)
	res := Rank(st, []int{10}, 5)[0]
	if len(res.Top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(res.Top))
	}
	want := []string{"600100", "600200", "600300"}
	for i, w := range want {
		if res.Top[i].Symbol != w {
			t.Errorf("rank %d = %s, want %s", i, res.Top[i].Symbol, w)
		}
	}
	for i := 1; i < len(res.Top); i++ {
		if res.Top[i].Pct > res.Top[i-1].Pct {
			t.Error("ranking must be non-ascending by gain")
		}
	}
	// 1.01^10 - 1 = 10.46%
	if res.Top[0].Pct != 10.46 {
		t.Errorf("gain = %v, want 10.46", res.Top[0].Pct)
	}
}

func TestRank_TopNCap(t *testing.T) {
	days := map[string]int{}
	start := map[string]float64{}
	syms := []string{"600001", "600002", "600003", "600004", "600005", "600006", "600007"}
	for i, s := range syms {
		days[s] = 11
		start[s] = float64(10 + i)
	}
	res := Rank(buildStore(t, days, start), []int{10}, 5)[0]
	if len(res.Top) != 5 {
		t.Errorf("top list = %d entries, want 5", len(res.Top))
	}
}

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{10.456, 10.46},
		{-3.336, -3.34},
		{0.004, 0.0},
		{99.996, 100.0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
