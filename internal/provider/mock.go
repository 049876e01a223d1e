package provider

import (
	"context"
	"fmt"
	"time"

	"BoardPulse/internal/limitrule"
	"BoardPulse/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
// Canned fields win when set; otherwise a deterministic universe is
// generated, including a handful of sealed limit-ups so the streak and
// explosion metrics have something to chew on.
type MockProvider struct {
	Day       []model.InstrumentSnapshot
	Histories map[string][]model.InstrumentSnapshot
	Sectors   map[string][]string
	NumStocks int
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) FetchDailySnapshot(_ context.Context, date string) ([]model.InstrumentSnapshot, error) {
	if m.Day != nil {
		return m.Day, nil
	}
	// Generate from the same walk FetchHistory uses so the day's bar agrees
	// with its own history.
	var out []model.InstrumentSnapshot
	for _, sym := range m.universe() {
		series := genSeries(sym, date, 60)
		if len(series) > 0 {
			out = append(out, series[len(series)-1])
		}
	}
	idx := genSeries(model.IndexSymbol, date, 60)
	out = append(out, idx[len(idx)-1])
	return out, nil
}

func (m *MockProvider) FetchHistory(_ context.Context, symbol, asOf string, lookbackDays int) ([]model.InstrumentSnapshot, error) {
	if m.Histories != nil {
		return m.Histories[symbol], nil
	}
	return genSeries(symbol, asOf, lookbackDays), nil
}

func (m *MockProvider) SymbolsForSector(_ context.Context, _ string) (map[string][]string, error) {
	if m.Sectors != nil {
		return m.Sectors, nil
	}
	out := map[string][]string{}
	for i, sym := range m.universe() {
		code := fmt.Sprintf("BK%04d", i%5)
		out[code] = append(out[code], sym)
	}
	return out, nil
}

func (m *MockProvider) universe() []string {
	n := m.NumStocks
	if n <= 0 {
		n = 80
	}
	syms := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch i % 4 {
		case 0:
			syms = append(syms, fmt.Sprintf("600%03d", i))
		case 1:
			syms = append(syms, fmt.Sprintf("000%03d", i))
		case 2:
			syms = append(syms, fmt.Sprintf("300%03d", i))
		default:
			syms = append(syms, fmt.Sprintf("688%03d", i))
		}
	}
	return syms
}

// mockEpoch anchors every generated walk so the same (symbol, date) yields
// the same bar regardless of the requested lookback.
const mockEpoch = "20250601"

// genSeries builds a deterministic daily walk from the epoch to asOf,
// weekends skipped, and returns the last `days` bars.
func genSeries(symbol, asOf string, days int) []model.InstrumentSnapshot {
	end, err := time.Parse(model.DateFormat, asOf)
	if err != nil {
		return nil
	}
	start, _ := time.Parse(model.DateFormat, mockEpoch)
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return nil
	}

	seed := 0
	for _, c := range symbol {
		seed = seed*31 + int(c)
	}
	board, _ := classifyBoard(symbol)
	if symbol == model.IndexSymbol {
		board = model.BoardMain
	}
	ratio, err := limitrule.Resolve(board, false)
	if err != nil {
		ratio = 0.10
	}

	base := 8 + float64(seed%40)
	if symbol == model.IndexSymbol {
		base = 3200
	}
	prev := base
	out := make([]model.InstrumentSnapshot, 0, len(dates))
	for i, d := range dates {
		var close float64
		if symbol != model.IndexSymbol && seed%9 == 0 && i >= len(dates)-6 {
			// Every ninth symbol rides a limit-up streak into the report date.
			close = limitrule.LimitUpPrice(prev, ratio)
		} else {
			pct := float64((seed+i*17)%9-4) / 100 // -4% .. +4%
			close = limitrule.LimitUpPrice(prev, pct) // reuse 2-decimal rounding
		}
		high := close
		if prev > high {
			high = prev
		}
		low := close
		if prev < low {
			low = prev
		}
		vol := float64(1_000_000 + (seed+i)%500_000)
		out = append(out, model.InstrumentSnapshot{
			Symbol:    symbol,
			Date:      d.Format(model.DateFormat),
			Name:      "MOCK" + symbol,
			Board:     board,
			Open:      prev,
			High:      high,
			Low:       low,
			Close:     close,
			PrevClose: prev,
			Volume:    vol,
			Turnover:  close * vol,
		})
		prev = close
	}
	if len(out) > days {
		out = out[len(out)-days:]
	}
	return out
}
