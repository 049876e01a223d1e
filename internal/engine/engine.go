// Package engine computes the full post-market DailyReport from one day's
// immutable snapshot set plus trailing history and prior streak state. It
// performs no I/O; localized failures degrade into report notes and only an
// absent or empty day aborts a run.
package engine

import (
	"fmt"
	"sort"

	"BoardPulse/internal/limitrule"
	"BoardPulse/internal/model"
	"BoardPulse/internal/ranker"
	"BoardPulse/internal/sector"
	"BoardPulse/internal/snapshot"
	"BoardPulse/internal/streak"
)

// Params are the tunable metric knobs, all defaulted to the review's
// conventional values.
type Params struct {
	Windows        []int   // rolling gain windows, trading days
	TopN           int     // entries per top list
	StreakMin      int     // streak list threshold
	TopSectors     int     // sectors ranked by activity score
	TopGainSectors int     // sectors ranked by average gain
	Rank60         int     // decliner rank for rank60_decline_pct
	Decline3dPct   float64 // 3-day cumulative loss threshold
	VolumeAvgDays  int     // trailing days behind the volume ratio
}

// DefaultParams returns the standard configuration.
func DefaultParams() Params {
	return Params{
		Windows:        []int{10, 20, 30, 50},
		TopN:           5,
		StreakMin:      5,
		TopSectors:     3,
		TopGainSectors: 5,
		Rank60:         60,
		Decline3dPct:   -20,
		VolumeAvgDays:  5,
	}
}

// Engine is the metrics orchestrator.
type Engine struct {
	params Params
}

// New creates an Engine, filling zero-valued params from the defaults.
func New(params Params) *Engine {
	def := DefaultParams()
	if len(params.Windows) == 0 {
		params.Windows = def.Windows
	}
	if params.TopN <= 0 {
		params.TopN = def.TopN
	}
	if params.StreakMin <= 0 {
		params.StreakMin = def.StreakMin
	}
	if params.TopSectors <= 0 {
		params.TopSectors = def.TopSectors
	}
	if params.TopGainSectors <= 0 {
		params.TopGainSectors = def.TopGainSectors
	}
	if params.Rank60 <= 0 {
		params.Rank60 = def.Rank60
	}
	if params.Decline3dPct == 0 {
		params.Decline3dPct = def.Decline3dPct
	}
	if params.VolumeAvgDays <= 0 {
		params.VolumeAvgDays = def.VolumeAvgDays
	}
	return &Engine{params: params}
}

// Run computes the DailyReport for the store's report date. It returns the
// report and the streak state to persist for that date.
func (e *Engine) Run(st *snapshot.Store, prevStreaks streak.State, membership sector.Membership) (*model.DailyReport, streak.State) {
	date := st.ReportDate()
	today := st.Today()
	report := &model.DailyReport{Date: date, WindowTop: map[int][]model.RankedStock{}}

	prevDate, hasPrev := st.PrevDate(1)

	// Streaks first: Advance also surfaces the day's missing-data flags.
	tracker := streak.NewTracker(prevDate, prevStreaks)
	for _, err := range tracker.Advance(date, today) {
		report.AddNote(noteCodeFor(err), err.Error())
	}
	streaks := tracker.State()
	for _, sym := range tracker.AtLeast(e.params.StreakMin) {
		entry := model.StreakStock{Symbol: sym, Days: streaks[sym]}
		if s, ok := today[sym]; ok {
			entry.Name = s.Name
			entry.Close = s.Close
		}
		report.Streak5Plus = append(report.Streak5Plus, entry)
	}

	e.scanDay(st, report)
	e.cohorts(st, hasPrev, prevDate, prevStreaks, report)

	for _, res := range ranker.Rank(st, e.params.Windows, e.params.TopN) {
		report.WindowTop[res.Window] = res.Top
		for _, sk := range res.Skipped {
			report.AddNote(model.NoteInsufficientHistory, sk.Error())
		}
	}

	m := sector.FromSnapshots(today)
	if membership != nil {
		m = m.Merge(membership)
	}
	stats, errs := sector.Aggregate(today, m)
	for _, err := range errs {
		report.AddNote(model.NoteUnknownBoard, err.Error())
	}
	report.Sectors = sector.MergeRankings(stats, e.params.TopSectors, e.params.TopGainSectors)

	return report, streaks
}

// scanDay makes the single deterministic pass over the day's instruments
// and derives every market-wide scalar plus the intraday extreme lists.
func (e *Engine) scanDay(st *snapshot.Store, report *model.DailyReport) {
	today := st.Today()

	var (
		traded, closedUp   int
		limitUp, limitDown int
		touched, exploded  int
		totalTurnover      float64
		todayVolume        float64
		decliners          []model.RankedStock
		rebound, pullback  []model.RankedStock
		decline3d          int
	)

	for _, sym := range st.Symbols() {
		s := today[sym]
		totalTurnover += s.Turnover
		todayVolume += s.Volume
		if !s.Traded() {
			continue
		}
		up, err := limitrule.IsLimitUp(s)
		if err != nil {
			// Unclassifiable board: treat as missing data for the day.
			report.AddNote(model.NoteUnknownBoard, fmt.Sprintf("%s: %v", sym, err))
			continue
		}
		down, _ := limitrule.IsLimitDown(s)
		touchedUp, _ := limitrule.TouchedLimitUp(s)

		traded++
		if s.Close > s.Open {
			closedUp++
		}
		if up {
			limitUp++
		}
		if down {
			limitDown++
		}
		if touchedUp {
			touched++
			if !up {
				exploded++
			}
		}

		gain := s.ChangePct()
		if gain < 0 {
			decliners = append(decliners, model.RankedStock{Symbol: sym, Name: s.Name, Pct: ranker.Round2(gain)})
		}
		if s.Low > 0 {
			rebound = append(rebound, model.RankedStock{
				Symbol: sym, Name: s.Name, Pct: ranker.Round2((s.Close - s.Low) / s.Low * 100),
			})
		}
		if s.High > 0 {
			pullback = append(pullback, model.RankedStock{
				Symbol: sym, Name: s.Name, Pct: ranker.Round2((s.Close - s.High) / s.High * 100),
			})
		}
		if base, ok := st.CloseAgo(sym, 3); ok {
			if (s.Close-base)/base*100 <= e.params.Decline3dPct {
				decline3d++
			}
		}
	}

	report.TotalTurnover = totalTurnover
	report.LimitUpCount = limitUp
	report.LimitDownCount = limitDown
	report.Decline3dOver20 = decline3d

	if traded > 0 {
		report.MoneyEffectPct = ranker.Round2(float64(closedUp) / float64(traded) * 100)
	}
	if touched > 0 {
		report.ExplosionRate = ranker.Round2(float64(exploded) / float64(touched) * 100)
	}

	e.volumeRatio(st, todayVolume, report)

	if idx, ok := st.Index(); ok && idx.PrevClose > 0 {
		report.IndexChangePct = ranker.Round2(idx.ChangePct())
	} else {
		report.AddNote(model.NoteMissingData, "index pseudo-symbol absent from day")
	}

	// Rank-60 decliner: the Nth-largest loss, or null when fewer than N
	// symbols declined.
	sort.Slice(decliners, func(i, j int) bool {
		if decliners[i].Pct != decliners[j].Pct {
			return decliners[i].Pct < decliners[j].Pct
		}
		return decliners[i].Symbol < decliners[j].Symbol
	})
	if len(decliners) >= e.params.Rank60 {
		v := decliners[e.params.Rank60-1].Pct
		report.Rank60DeclinePct = &v
	} else {
		report.AddNote(model.NoteInsufficientData,
			fmt.Sprintf("rank60_decline_pct: %d decliners, need %d", len(decliners), e.params.Rank60))
	}

	report.Top5Rebound = topN(rebound, e.params.TopN, func(a, b model.RankedStock) bool {
		if a.Pct != b.Pct {
			return a.Pct > b.Pct
		}
		return a.Symbol < b.Symbol
	})
	report.Top5Pullback = topN(pullback, e.params.TopN, func(a, b model.RankedStock) bool {
		if a.Pct != b.Pct {
			return a.Pct < b.Pct
		}
		return a.Symbol < b.Symbol
	})
}

// volumeRatio divides today's total volume by the mean of the preceding
// VolumeAvgDays totals.
func (e *Engine) volumeRatio(st *snapshot.Store, todayVolume float64, report *model.DailyReport) {
	var sum float64
	n := 0
	for i := 1; i <= e.params.VolumeAvgDays; i++ {
		v, ok := st.MarketVolumeAgo(i)
		if !ok {
			break
		}
		sum += v
		n++
	}
	if n < e.params.VolumeAvgDays || sum == 0 {
		report.AddNote(model.NoteInsufficientData,
			fmt.Sprintf("volume_ratio: %d trailing days, need %d", n, e.params.VolumeAvgDays))
		return
	}
	report.VolumeRatio = ranker.Round2(todayVolume / (sum / float64(n)))
}

// cohorts computes today's mean performance of yesterday's limit-up,
// exploded, and streak>=2 cohorts, restricted to members still trading.
func (e *Engine) cohorts(st *snapshot.Store, hasPrev bool, prevDate string, prevStreaks streak.State, report *model.DailyReport) {
	if !hasPrev {
		report.AddNote(model.NoteInsufficientData, "cohort performance: no prior trading day in history")
		return
	}
	prevDay := st.Day(prevDate)
	today := st.Today()

	var limitUpCohort, explodedCohort []string
	for sym, s := range prevDay {
		if sym == model.IndexSymbol || !s.Traded() {
			continue
		}
		up, err := limitrule.IsLimitUp(s)
		if err != nil {
			continue
		}
		if up {
			limitUpCohort = append(limitUpCohort, sym)
			continue
		}
		if ex, _ := limitrule.Exploded(s); ex {
			explodedCohort = append(explodedCohort, sym)
		}
	}

	report.PrevLimitUpPerf = cohortMean(limitUpCohort, today)
	if report.PrevLimitUpPerf == nil {
		report.AddNote(model.NoteInsufficientData, "prev_limit_up_performance: empty cohort")
	}
	report.PrevExplodedPerf = cohortMean(explodedCohort, today)
	if report.PrevExplodedPerf == nil {
		report.AddNote(model.NoteInsufficientData, "prev_exploded_performance: empty cohort")
	}
	report.PrevStreak2Perf = cohortMean(prevStreaks.AtLeast(2), today)
	if report.PrevStreak2Perf == nil {
		report.AddNote(model.NoteInsufficientData, "prev_streak2plus_performance: empty cohort")
	}
}

// cohortMean averages today's daily gain over the cohort members that still
// trade today. Nil when no member does.
func cohortMean(cohort []string, today map[string]*model.InstrumentSnapshot) *float64 {
	var sum float64
	n := 0
	for _, sym := range cohort {
		s, ok := today[sym]
		if !ok || !s.Traded() {
			continue
		}
		sum += s.ChangePct()
		n++
	}
	if n == 0 {
		return nil
	}
	v := ranker.Round2(sum / float64(n))
	return &v
}

func topN(list []model.RankedStock, n int, less func(a, b model.RankedStock) bool) []model.RankedStock {
	sort.Slice(list, func(i, j int) bool { return less(list[i], list[j]) })
	if len(list) > n {
		list = list[:n]
	}
	return list
}

func noteCodeFor(err error) model.NoteCode {
	switch err.(type) {
	case *limitrule.UnknownBoardError:
		return model.NoteUnknownBoard
	default:
		return model.NoteMissingData
	}
}
