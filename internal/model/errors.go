package model

import "fmt"

// MissingDataError marks a known symbol that lacks a record for the day.
// The symbol is excluded from per-symbol metrics and streak continuation;
// the run itself continues.
type MissingDataError struct {
	Symbol string
	Date   string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing data for %s on %s", e.Symbol, e.Date)
}

// InsufficientHistoryError marks a symbol that lacks the trailing days a
// specific ranking window needs. It excludes the symbol from that window
// only.
type InsufficientHistoryError struct {
	Symbol string
	Window int
	Have   int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("%s: %d days of history, window %d needs %d",
		e.Symbol, e.Have, e.Window, e.Window+1)
}
