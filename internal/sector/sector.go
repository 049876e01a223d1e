// Package sector aggregates per-sector activity from theme/industry tags.
// Membership is many-to-many: a symbol can sit in several sectors and a
// sector's stats count it once.
package sector

import (
	"sort"

	"BoardPulse/internal/limitrule"
	"BoardPulse/internal/model"
	"BoardPulse/internal/ranker"
)

// bigGainPct is the daily-gain threshold that counts toward a sector's
// activity when the symbol did not seal the limit.
const bigGainPct = 10.0

// Membership maps sector code -> member symbols.
type Membership map[string][]string

// FromSnapshots derives membership from the tags carried on the day's
// snapshots.
func FromSnapshots(day map[string]*model.InstrumentSnapshot) Membership {
	m := Membership{}
	for sym, s := range day {
		if sym == model.IndexSymbol {
			continue
		}
		for _, tag := range s.Sectors {
			m[tag] = append(m[tag], sym)
		}
	}
	return m
}

// Merge folds another membership table in, dropping duplicate members.
func (m Membership) Merge(other Membership) Membership {
	for code, syms := range other {
		m[code] = append(m[code], syms...)
	}
	for code, syms := range m {
		seen := map[string]bool{}
		out := syms[:0]
		for _, s := range syms {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
		sort.Strings(out)
		m[code] = out
	}
	return m
}

// Stats is one sector's aggregated activity for the day.
type Stats struct {
	Code          string
	LimitUpCount  int
	BigGainCount  int
	ActivityScore int
	AvgGain       float64 // mean gain over members that are up, 2 decimals
	Members       int
}

// Aggregate computes per-sector stats for the day. Members absent from the
// day are skipped (the day-level missing-data note already covers them);
// unclassifiable boards are returned as localized errors and skipped.
func Aggregate(day map[string]*model.InstrumentSnapshot, m Membership) ([]Stats, []error) {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var out []Stats
	var errs []error
	for _, code := range codes {
		st := Stats{Code: code}
		var upSum float64
		var upN int
		for _, sym := range m[code] {
			s, ok := day[sym]
			if !ok || !s.Traded() {
				continue
			}
			st.Members++
			up, err := limitrule.IsLimitUp(s)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			gain := s.ChangePct()
			switch {
			case up:
				st.LimitUpCount++
			case gain >= bigGainPct:
				st.BigGainCount++
			}
			if gain > 0 {
				upSum += gain
				upN++
			}
		}
		st.ActivityScore = st.LimitUpCount + st.BigGainCount
		if upN > 0 {
			st.AvgGain = ranker.Round2(upSum / float64(upN))
		}
		out = append(out, st)
	}
	return out, errs
}

// MergeRankings produces the merged sector list: top-N by activity score and
// top-M by average gain, ties broken by ascending sector code, duplicates
// collapsed with combined origin labels. Entries keep activity-ranking order
// first, then the remaining avg-gain entries in their ranking order.
func MergeRankings(stats []Stats, topActivity, topAvgGain int) []model.SectorEntry {
	byActivity := make([]Stats, len(stats))
	copy(byActivity, stats)
	sort.Slice(byActivity, func(i, j int) bool {
		if byActivity[i].ActivityScore != byActivity[j].ActivityScore {
			return byActivity[i].ActivityScore > byActivity[j].ActivityScore
		}
		return byActivity[i].Code < byActivity[j].Code
	})
	if len(byActivity) > topActivity {
		byActivity = byActivity[:topActivity]
	}

	byGain := make([]Stats, len(stats))
	copy(byGain, stats)
	sort.Slice(byGain, func(i, j int) bool {
		if byGain[i].AvgGain != byGain[j].AvgGain {
			return byGain[i].AvgGain > byGain[j].AvgGain
		}
		return byGain[i].Code < byGain[j].Code
	})
	if len(byGain) > topAvgGain {
		byGain = byGain[:topAvgGain]
	}

	var merged []model.SectorEntry
	pos := map[string]int{}
	add := func(s Stats, origin string) {
		if i, ok := pos[s.Code]; ok {
			merged[i].Origins = append(merged[i].Origins, origin)
			return
		}
		pos[s.Code] = len(merged)
		merged = append(merged, model.SectorEntry{
			Code:          s.Code,
			ActivityScore: s.ActivityScore,
			AvgGain:       s.AvgGain,
			Origins:       []string{origin},
		})
	}
	for _, s := range byActivity {
		add(s, model.SectorByActivity)
	}
	for _, s := range byGain {
		add(s, model.SectorByAvgGain)
	}
	return merged
}
