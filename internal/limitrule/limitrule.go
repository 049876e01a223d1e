// Package limitrule centralizes the board-dependent price-limit table and
// the limit-state predicates derived from it.
package limitrule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"BoardPulse/internal/model"
)

// PriceTolerance absorbs float noise when comparing a traded price against
// the theoretical limit price. Half a price tick.
const PriceTolerance = 0.005

// UnknownBoardError reports an unrecognized board classification.
type UnknownBoardError struct {
	Board model.Board
}

func (e *UnknownBoardError) Error() string {
	return fmt.Sprintf("unknown board type %q", e.Board)
}

// Resolve returns the daily price-limit ratio for a board and its
// special-treatment flag. Pure lookup, no side effects.
func Resolve(board model.Board, st bool) (float64, error) {
	switch board {
	case model.BoardMain:
		if st {
			return 0.05, nil
		}
		return 0.10, nil
	case model.BoardChiNext, model.BoardSTAR:
		return 0.20, nil
	case model.BoardBSE:
		return 0.30, nil
	default:
		return 0, &UnknownBoardError{Board: board}
	}
}

// LimitUpPrice returns the theoretical limit-up price for a previous close:
// prevClose*(1+ratio) rounded half-up to 2 decimals, the way the exchange
// forms it. Done in decimal so 0.1 noise never moves the rounded cent.
func LimitUpPrice(prevClose, ratio float64) float64 {
	return roundPrice(prevClose, 1+ratio)
}

// LimitDownPrice is symmetric with (1-ratio).
func LimitDownPrice(prevClose, ratio float64) float64 {
	return roundPrice(prevClose, 1-ratio)
}

func roundPrice(prevClose, factor float64) float64 {
	p := decimal.NewFromFloat(prevClose).Mul(decimal.NewFromFloat(factor))
	f, _ := p.Round(2).Float64()
	return f
}

// IsLimitUp reports whether the snapshot closed at its limit-up price.
func IsLimitUp(s *model.InstrumentSnapshot) (bool, error) {
	ratio, err := Resolve(s.Board, s.ST)
	if err != nil {
		return false, err
	}
	if !s.Traded() {
		return false, nil
	}
	return near(s.Close, LimitUpPrice(s.PrevClose, ratio)), nil
}

// IsLimitDown reports whether the snapshot closed at its limit-down price.
func IsLimitDown(s *model.InstrumentSnapshot) (bool, error) {
	ratio, err := Resolve(s.Board, s.ST)
	if err != nil {
		return false, err
	}
	if !s.Traded() {
		return false, nil
	}
	return near(s.Close, LimitDownPrice(s.PrevClose, ratio)), nil
}

// TouchedLimitUp reports whether the day's high reached the limit-up price
// at any point, regardless of where the symbol closed.
func TouchedLimitUp(s *model.InstrumentSnapshot) (bool, error) {
	ratio, err := Resolve(s.Board, s.ST)
	if err != nil {
		return false, err
	}
	if !s.Traded() {
		return false, nil
	}
	return s.High >= LimitUpPrice(s.PrevClose, ratio)-PriceTolerance, nil
}

// Exploded reports whether the symbol touched its limit-up price intraday
// but failed to close there (炸板).
func Exploded(s *model.InstrumentSnapshot) (bool, error) {
	touched, err := TouchedLimitUp(s)
	if err != nil || !touched {
		return false, err
	}
	up, err := IsLimitUp(s)
	if err != nil {
		return false, err
	}
	return !up, nil
}

func near(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < PriceTolerance
}
