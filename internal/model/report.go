package model

// NoteCode classifies a recovered, localized failure annotated on a report.
type NoteCode string

const (
	NoteMissingData         NoteCode = "MissingData"
	NoteInsufficientHistory NoteCode = "InsufficientHistory"
	NoteInsufficientData    NoteCode = "InsufficientData"
	NoteUnknownBoard        NoteCode = "UnknownBoard"
)

// Note is one degradation annotation. A report with notes is still valid;
// the noted symbol or metric was skipped, never silently guessed.
type Note struct {
	Code   NoteCode `json:"code"`
	Detail string   `json:"detail"`
}

// RankedStock is one entry of a top-N list (window gainers, rebound,
// pullback). Pct carries the list's ranking percentage, rounded to 2
// decimals.
type RankedStock struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name,omitempty"`
	Pct    float64 `json:"pct"`
}

// StreakStock is one entry of the consecutive limit-up streak list.
type StreakStock struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name,omitempty"`
	Days   int     `json:"days"`
	Close  float64 `json:"close"`
}

// Sector ranking origin labels.
const (
	SectorByActivity = "activity"
	SectorByAvgGain  = "avg_gain"
)

// SectorEntry is one sector in the merged sector ranking. Origins lists
// which ranking(s) placed it there; a sector appearing in both carries both
// labels and appears once.
type SectorEntry struct {
	Code          string   `json:"code"`
	Name          string   `json:"name,omitempty"`
	ActivityScore int      `json:"activity_score"`
	AvgGain       float64  `json:"avg_gain"`
	Origins       []string `json:"origins"`
}

// DailyReport holds the full post-market review for one trading date.
// Date is the primary key; a report is immutable once written and writing a
// second report for the same date is a conflict.
type DailyReport struct {
	Date string `json:"date"`

	TotalTurnover    float64  `json:"total_turnover"`
	VolumeRatio      float64  `json:"volume_ratio"`
	IndexChangePct   float64  `json:"index_change_pct"`
	LimitUpCount     int      `json:"limit_up_count"`
	LimitDownCount   int      `json:"limit_down_count"`
	MoneyEffectPct   float64  `json:"money_effect_pct"`
	ExplosionRate    float64  `json:"explosion_rate"`
	Decline3dOver20  int      `json:"decline3d_over20_count"`
	Rank60DeclinePct *float64 `json:"rank60_decline_pct"` // nil when fewer than 60 decliners

	// Mean performance today of yesterday's cohorts, nil when the cohort is
	// empty or none of its members trade today.
	PrevLimitUpPerf  *float64 `json:"prev_limit_up_perf"`
	PrevExplodedPerf *float64 `json:"prev_exploded_perf"`
	PrevStreak2Perf  *float64 `json:"prev_streak2plus_perf"`

	WindowTop    map[int][]RankedStock `json:"window_top"` // window days -> top 5
	Streak5Plus  []StreakStock         `json:"streak5plus"`
	Sectors      []SectorEntry         `json:"sectors"`
	Top5Rebound  []RankedStock         `json:"top5_rebound"`
	Top5Pullback []RankedStock         `json:"top5_pullback"`

	Notes []Note `json:"notes,omitempty"`
}

// AddNote appends a degradation annotation.
func (r *DailyReport) AddNote(code NoteCode, detail string) {
	r.Notes = append(r.Notes, Note{Code: code, Detail: detail})
}
