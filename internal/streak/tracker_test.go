package streak

import (
	"errors"
	"testing"

	"BoardPulse/internal/limitrule"
	"BoardPulse/internal/model"
)

// limitDay builds a one-symbol day where the symbol either seals its 10%
// limit or closes flat.
func limitDay(date, sym string, prevClose float64, sealed bool) (map[string]*model.InstrumentSnapshot, float64) {
	limit := limitrule.LimitUpPrice(prevClose, 0.10)
	close := prevClose
	if sealed {
		close = limit
	}
	return map[string]*model.InstrumentSnapshot{
		sym: {
			Symbol:    sym,
			Date:      date,
			Board:     model.BoardMain,
			Open:      prevClose,
			High:      close,
			Low:       prevClose,
			Close:     close,
			PrevClose: prevClose,
			Volume:    1000,
		},
	}, close
}

func TestTracker_FiveDayStreakThenReset(t *testing.T) {
	tr := NewTracker("20260102", nil)
	dates := []string{"20260105", "20260106", "20260107", "20260108", "20260109"}
	prevClose := 10.0
	for _, d := range dates {
		day, close := limitDay(d, "600100", prevClose, true)
		if errs := tr.Advance(d, day); len(errs) != 0 {
			t.Fatalf("day %s: unexpected errors %v", d, errs)
		}
		prevClose = close
	}
	if got := tr.State()["600100"]; got != 5 {
		t.Fatalf("after 5 sealed days streak = %d, want 5", got)
	}
	five := tr.AtLeast(5)
	if len(five) != 1 || five[0] != "600100" {
		t.Errorf("AtLeast(5) = %v, want [600100]", five)
	}

	// Day 6 closes below the limit: streak resets.
	day, _ := limitDay("20260112", "600100", prevClose, false)
	tr.Advance("20260112", day)
	if got := tr.State()["600100"]; got != 0 {
		t.Errorf("after failed day streak = %d, want 0", got)
	}
	if len(tr.AtLeast(1)) != 0 {
		t.Errorf("AtLeast(1) should be empty after reset")
	}
	// Prior state still shows the 5-day streak.
	if got := tr.Prior()["600100"]; got != 5 {
		t.Errorf("Prior streak = %d, want 5", got)
	}
}

func TestTracker_MissingSymbolCarriedUnresolved(t *testing.T) {
	tr := NewTracker("20260105", State{"600100": 3})

	// 600100 absent from the day: flagged, carried, excluded from AtLeast.
	day, _ := limitDay("20260106", "600200", 20.0, true)
	errs := tr.Advance("20260106", day)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	var md *model.MissingDataError
	if !errors.As(errs[0], &md) || md.Symbol != "600100" {
		t.Fatalf("expected MissingDataError for 600100, got %v", errs[0])
	}
	if n := tr.Unresolved()["600100"]; n != 3 {
		t.Errorf("carried count = %d, want 3", n)
	}
	if got := tr.AtLeast(3); len(got) != 0 {
		t.Errorf("unresolved streak must not qualify, got %v", got)
	}
}

func TestTracker_UnknownBoardTreatedAsMissing(t *testing.T) {
	tr := NewTracker("20260105", State{"999999": 2})
	day := map[string]*model.InstrumentSnapshot{
		"999999": {
			Symbol: "999999", Date: "20260106", Board: model.Board("otc"),
			Open: 10, High: 11, Low: 10, Close: 11, PrevClose: 10, Volume: 100,
		},
	}
	errs := tr.Advance("20260106", day)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	var ub *limitrule.UnknownBoardError
	if !errors.As(errs[0], &ub) {
		t.Fatalf("expected UnknownBoardError, got %v", errs[0])
	}
	if n := tr.Unresolved()["999999"]; n != 2 {
		t.Errorf("carried count = %d, want 2", n)
	}
}

func TestState_AtLeastSorted(t *testing.T) {
	s := State{"600300": 5, "600100": 6, "600200": 2}
	got := s.AtLeast(5)
	if len(got) != 2 || got[0] != "600100" || got[1] != "600300" {
		t.Errorf("AtLeast(5) = %v, want [600100 600300]", got)
	}
}
