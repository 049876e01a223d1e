// Package streak tracks per-symbol consecutive limit-up closes across
// trading days. Streak state is the engine's only cross-day state; it is
// versioned per date so a run is reproducible from yesterday's persisted
// state plus today's snapshot.
package streak

import (
	"sort"

	"BoardPulse/internal/limitrule"
	"BoardPulse/internal/model"
)

// Tracker advances streak state one trading day at a time.
type Tracker struct {
	date       string
	state      State
	prior      State
	unresolved map[string]int // carried counts for symbols missing from the day
}

// NewTracker starts from the state persisted for the prior trading date.
// A nil prev means no prior state (first run or fresh history).
func NewTracker(prevDate string, prev State) *Tracker {
	if prev == nil {
		prev = State{}
	}
	return &Tracker{date: prevDate, state: prev, prior: State{}, unresolved: map[string]int{}}
}

// Advance applies one day's snapshot set and returns the localized errors
// it recovered from: a MissingDataError per known symbol absent from the
// day (its streak is carried unresolved, neither continued nor broken) and
// an UnknownBoardError per symbol whose board cannot be classified (treated
// as missing data for the day).
func (t *Tracker) Advance(date string, day map[string]*model.InstrumentSnapshot) []error {
	next := State{}
	carried := map[string]int{}
	var errs []error

	for sym, s := range day {
		if sym == model.IndexSymbol {
			continue
		}
		up, err := limitrule.IsLimitUp(s)
		if err != nil {
			// Unclassifiable board: the day is unusable for this symbol.
			errs = append(errs, err)
			if n, ok := t.state[sym]; ok {
				carried[sym] = n
			}
			continue
		}
		if !up {
			continue
		}
		// A streak interrupted by an unresolved gap restarts at 1: the
		// closes inside the gap were never verified.
		next[sym] = t.state[sym] + 1
	}

	for sym, n := range t.state {
		if _, ok := day[sym]; ok {
			continue
		}
		carried[sym] = n
		errs = append(errs, &model.MissingDataError{Symbol: sym, Date: date})
	}

	t.prior = t.state
	t.state = next
	t.unresolved = carried
	t.date = date

	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errs
}

// Date returns the date the current state is valid for.
func (t *Tracker) Date() string { return t.date }

// State returns the streak counts as of the tracked date.
func (t *Tracker) State() State { return t.state }

// Prior returns the streak counts as of the previously advanced date, used
// for yesterday's-cohort metrics.
func (t *Tracker) Prior() State { return t.prior }

// AtLeast returns symbols with a current streak of at least k days.
// Symbols whose streak is carried unresolved are excluded; an unverified
// streak never qualifies.
func (t *Tracker) AtLeast(k int) []string {
	return t.state.AtLeast(k)
}

// Unresolved returns the carried counts for symbols that were absent from
// the last advanced day.
func (t *Tracker) Unresolved() map[string]int { return t.unresolved }
