package model

// Board identifies the listing board of an A-share instrument.
type Board string

const (
	BoardMain    Board = "main"    // 主板
	BoardChiNext Board = "chinext" // 创业板
	BoardSTAR    Board = "star"    // 科创板
	BoardBSE     Board = "bse"     // 北交所
)

// IndexSymbol is the pseudo-symbol carrying the Shanghai Composite index.
// It travels inside the daily snapshot set but is excluded from all
// per-stock metrics.
const IndexSymbol = "sh000001"

// DateFormat is the trading-date key format (YYYYMMDD), sortable as text.
const DateFormat = "20060102"

// InstrumentSnapshot is one instrument's end-of-day record for a single
// trading date. Immutable once produced.
type InstrumentSnapshot struct {
	Symbol    string
	Date      string // trading date in DateFormat
	Name      string
	Board     Board
	ST        bool // special-treatment flag (ST / *ST)
	Open      float64
	High      float64
	Low       float64
	Close     float64
	PrevClose float64
	Volume    float64 // shares
	Turnover  float64 // yuan
	Sectors   []string
}

// ChangePct returns the day's close-over-prev-close change in percent.
func (s *InstrumentSnapshot) ChangePct() float64 {
	if s.PrevClose == 0 {
		return 0
	}
	return (s.Close - s.PrevClose) / s.PrevClose * 100
}

// Traded reports whether the snapshot carries a valid trade for the day.
// Suspended symbols come back with zero volume and zero OHLC.
func (s *InstrumentSnapshot) Traded() bool {
	return s.Volume > 0 && s.Close > 0 && s.PrevClose > 0
}
