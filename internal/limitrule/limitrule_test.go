package limitrule

import (
	"errors"
	"testing"

	"BoardPulse/internal/model"
)

func TestResolve_AllBoards(t *testing.T) {
	tests := []struct {
		board model.Board
		st    bool
		want  float64
	}{
		{model.BoardMain, false, 0.10},
		{model.BoardMain, true, 0.05},
		{model.BoardChiNext, false, 0.20},
		{model.BoardChiNext, true, 0.20},
		{model.BoardSTAR, false, 0.20},
		{model.BoardBSE, false, 0.30},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.board, tt.st)
		if err != nil {
			t.Fatalf("Resolve(%s, st=%v): %v", tt.board, tt.st, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%s, st=%v) = %v, want %v", tt.board, tt.st, got, tt.want)
		}
	}
}

func TestResolve_UnknownBoard(t *testing.T) {
	_, err := Resolve(model.Board("neeq"), false)
	if err == nil {
		t.Fatal("expected error for unknown board")
	}
	var ub *UnknownBoardError
	if !errors.As(err, &ub) {
		t.Fatalf("expected UnknownBoardError, got %T", err)
	}
}

func TestLimitUpPrice_Rounding(t *testing.T) {
	tests := []struct {
		prevClose float64
		ratio     float64
		want      float64
	}{
		{10.00, 0.10, 11.00},
		{9.87, 0.10, 10.86},  // 10.857 rounds up
		{12.34, 0.10, 13.57}, // 13.574 rounds down
		{5.55, 0.20, 6.66},
		{3.33, 0.05, 3.50},  // 3.4965 rounds up
		{10.01, 0.30, 13.01}, // 13.013 rounds down
	}
	for _, tt := range tests {
		if got := LimitUpPrice(tt.prevClose, tt.ratio); got != tt.want {
			t.Errorf("LimitUpPrice(%.2f, %.2f) = %v, want %v", tt.prevClose, tt.ratio, got, tt.want)
		}
	}
}

func TestLimitDownPrice(t *testing.T) {
	if got := LimitDownPrice(10.00, 0.10); got != 9.00 {
		t.Errorf("LimitDownPrice(10, 0.10) = %v, want 9.00", got)
	}
	if got := LimitDownPrice(9.87, 0.10); got != 8.88 { // 8.883 rounds down
		t.Errorf("LimitDownPrice(9.87, 0.10) = %v, want 8.88", got)
	}
}

func snap(board model.Board, st bool, prevClose, high, close float64) *model.InstrumentSnapshot {
	return &model.InstrumentSnapshot{
		Symbol:    "600000",
		Board:     board,
		ST:        st,
		Open:      prevClose,
		High:      high,
		Low:       prevClose,
		Close:     close,
		PrevClose: prevClose,
		Volume:    1000,
	}
}

func TestIsLimitUp(t *testing.T) {
	s := snap(model.BoardMain, false, 10.00, 11.00, 11.00)
	up, err := IsLimitUp(s)
	if err != nil {
		t.Fatal(err)
	}
	if !up {
		t.Error("close at 11.00 from 10.00 on main board should be limit-up")
	}

	s = snap(model.BoardMain, false, 10.00, 11.00, 10.95)
	up, _ = IsLimitUp(s)
	if up {
		t.Error("close at 10.95 should not be limit-up")
	}

	// 20% board at the 10% price is not limit-up.
	s = snap(model.BoardChiNext, false, 10.00, 11.00, 11.00)
	up, _ = IsLimitUp(s)
	if up {
		t.Error("chinext needs 12.00, 11.00 is not limit-up")
	}
}

func TestExploded(t *testing.T) {
	// Touched 11.00 but closed lower: exploded.
	s := snap(model.BoardMain, false, 10.00, 11.00, 10.60)
	ex, err := Exploded(s)
	if err != nil {
		t.Fatal(err)
	}
	if !ex {
		t.Error("touched limit, closed below: should be exploded")
	}

	// Closed at the limit: touched but not exploded.
	s = snap(model.BoardMain, false, 10.00, 11.00, 11.00)
	if ex, _ = Exploded(s); ex {
		t.Error("sealed limit-up is not exploded")
	}

	// Never touched the limit.
	s = snap(model.BoardMain, false, 10.00, 10.50, 10.40)
	if ex, _ = Exploded(s); ex {
		t.Error("never touched the limit, cannot be exploded")
	}
}

func TestIsLimitDown(t *testing.T) {
	s := snap(model.BoardMain, false, 10.00, 10.00, 9.00)
	s.Low = 9.00
	down, err := IsLimitDown(s)
	if err != nil {
		t.Fatal(err)
	}
	if !down {
		t.Error("close at 9.00 from 10.00 on main board should be limit-down")
	}
}

func TestPredicates_Untraded(t *testing.T) {
	s := &model.InstrumentSnapshot{Symbol: "600001", Board: model.BoardMain, PrevClose: 10}
	if up, _ := IsLimitUp(s); up {
		t.Error("suspended symbol must not count as limit-up")
	}
	if touched, _ := TouchedLimitUp(s); touched {
		t.Error("suspended symbol must not count as touched")
	}
}
