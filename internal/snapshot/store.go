// Package snapshot holds the immutable per-run view of one trading day's
// full-market data plus the trailing history the windowed metrics need.
package snapshot

import (
	"errors"
	"fmt"
	"sort"

	"BoardPulse/internal/model"
)

// ErrEmptySnapshot aborts a run whose report-day snapshot set is absent or
// empty. Nothing can be computed without the day itself.
var ErrEmptySnapshot = errors.New("snapshot: report day has no instruments")

// Store is an append-only-at-build, read-only-after view. The last date on
// its axis is the report date.
type Store struct {
	dates  []string
	byDate []map[string]*model.InstrumentSnapshot
	pos    map[string]int // date -> index into dates
}

// Build assembles a Store from the report day's snapshot set and the
// per-symbol trailing histories (each ascending by date, report day
// excluded or included; duplicates collapse, first write wins).
func Build(date string, day []model.InstrumentSnapshot, histories map[string][]model.InstrumentSnapshot) (*Store, error) {
	if len(day) == 0 {
		return nil, ErrEmptySnapshot
	}

	byDate := map[string]map[string]*model.InstrumentSnapshot{}
	put := func(s model.InstrumentSnapshot) {
		if s.Date == "" || s.Symbol == "" {
			return
		}
		m := byDate[s.Date]
		if m == nil {
			m = map[string]*model.InstrumentSnapshot{}
			byDate[s.Date] = m
		}
		if _, ok := m[s.Symbol]; !ok {
			c := s
			m[s.Symbol] = &c
		}
	}

	for i := range day {
		s := day[i]
		if s.Date == "" {
			s.Date = date
		}
		if s.Date != date {
			return nil, fmt.Errorf("snapshot: day record %s dated %s, want %s", s.Symbol, s.Date, date)
		}
		put(s)
	}
	for _, series := range histories {
		for i := range series {
			put(series[i])
		}
	}
	if len(byDate[date]) == 0 {
		return nil, ErrEmptySnapshot
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		if d <= date {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	st := &Store{
		dates: dates,
		pos:   make(map[string]int, len(dates)),
	}
	for i, d := range dates {
		st.pos[d] = i
		st.byDate = append(st.byDate, byDate[d])
	}
	return st, nil
}

// ReportDate returns the date the report is computed for.
func (st *Store) ReportDate() string { return st.dates[len(st.dates)-1] }

// DayCount returns how many trading dates the store covers.
func (st *Store) DayCount() int { return len(st.dates) }

// Day returns the snapshot map for a date. The map must be treated as
// read-only.
func (st *Store) Day(date string) map[string]*model.InstrumentSnapshot {
	if i, ok := st.pos[date]; ok {
		return st.byDate[i]
	}
	return nil
}

// Today returns the report-day snapshot map.
func (st *Store) Today() map[string]*model.InstrumentSnapshot {
	return st.byDate[len(st.byDate)-1]
}

// PrevDate returns the trading date n days before the report date.
func (st *Store) PrevDate(n int) (string, bool) {
	i := len(st.dates) - 1 - n
	if i < 0 {
		return "", false
	}
	return st.dates[i], true
}

// At returns a symbol's snapshot on a date.
func (st *Store) At(symbol, date string) (*model.InstrumentSnapshot, bool) {
	i, ok := st.pos[date]
	if !ok {
		return nil, false
	}
	s, ok := st.byDate[i][symbol]
	return s, ok
}

// CloseAgo returns a symbol's close n trading days before the report date.
func (st *Store) CloseAgo(symbol string, n int) (float64, bool) {
	i := len(st.dates) - 1 - n
	if i < 0 {
		return 0, false
	}
	s, ok := st.byDate[i][symbol]
	if !ok || s.Close == 0 {
		return 0, false
	}
	return s.Close, true
}

// HistoryLen counts the trading dates on which the symbol has a record,
// ending at the report date.
func (st *Store) HistoryLen(symbol string) int {
	n := 0
	for _, day := range st.byDate {
		if _, ok := day[symbol]; ok {
			n++
		}
	}
	return n
}

// MarketVolumeAgo sums the traded volume across all stocks (index excluded)
// n trading days before the report date.
func (st *Store) MarketVolumeAgo(n int) (float64, bool) {
	i := len(st.byDate) - 1 - n
	if i < 0 {
		return 0, false
	}
	var total float64
	for sym, s := range st.byDate[i] {
		if sym == model.IndexSymbol {
			continue
		}
		total += s.Volume
	}
	return total, true
}

// Symbols returns the report day's stock symbols in ascending order, index
// pseudo-symbol excluded.
func (st *Store) Symbols() []string {
	today := st.Today()
	out := make([]string, 0, len(today))
	for sym := range today {
		if sym == model.IndexSymbol {
			continue
		}
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Index returns the report day's index pseudo-symbol record, if present.
func (st *Store) Index() (*model.InstrumentSnapshot, bool) {
	s, ok := st.Today()[model.IndexSymbol]
	return s, ok
}
