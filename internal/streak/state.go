package streak

import "sort"

// State maps symbol -> consecutive limit-up closes ending at one trading
// date. Symbols without a streak are simply absent; stored values are >= 1.
type State map[string]int

// AtLeast returns the symbols whose streak count is >= k, ascending by
// symbol code so output is deterministic.
func (s State) AtLeast(k int) []string {
	var out []string
	for sym, n := range s {
		if n >= k {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s State) Clone() State {
	c := make(State, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}
