package observ

import (
	"sync/atomic"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SearchStats counts the work done by prime search. Search workers update
// it concurrently.
type SearchStats struct {
	Candidates  atomic.Uint64 // values drawn
	TrialReject atomic.Uint64 // rejected by trial division
	Rounds      atomic.Uint64 // Miller–Rabin rounds run
	Found       atomic.Uint64
}

// StatsReport is a point-in-time copy of SearchStats.
type StatsReport struct {
	Candidates  uint64 `json:"candidates"`
	TrialReject uint64 `json:"trial_rejected"`
	Rounds      uint64 `json:"rounds"`
	Found       uint64 `json:"found"`
}

// Snapshot copies the counters.
func (s *SearchStats) Snapshot() StatsReport {
	return StatsReport{
		Candidates:  s.Candidates.Load(),
		TrialReject: s.TrialReject.Load(),
		Rounds:      s.Rounds.Load(),
		Found:       s.Found.Load(),
	}
}

var printer = message.NewPrinter(language.English)

// Summary renders the counters with grouped digits.
func (r StatsReport) Summary() string {
	return printer.Sprintf("search: %d candidates, %d rejected by trial division, %d Miller-Rabin rounds, %d found\n",
		r.Candidates, r.TrialReject, r.Rounds, r.Found)
}
