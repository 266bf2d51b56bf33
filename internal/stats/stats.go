// Package stats aggregates fault.GroupResult values across an entire
// run into the summary figures spec.md §4.7 and §6's report trailer
// require.
package stats

import "github.com/sarchlab/bitfault/internal/fault"

// Statistics is a run-wide rollup over every evaluated bit group.
type Statistics struct {
	GroupsEvaluated       int
	GroupsWithSignificant int
	BitsEvaluated         int

	SignificantBits int
	UndefinedBits   int
	UnknownBits     int
	ErrorlessBits   int

	CLBAltered int
	PipOpen    int
	PipShort   int

	// Routing, CLB, Unsupported, and Unknown are per-classification
	// counts (fault.BitClass), distinct from the fault-kind counts
	// above: a single significant bit has exactly one Class and,
	// separately, zero or one Kind.
	Routing     int
	CLB         int
	Unsupported int
	Unknown     int

	ZeroToOne int
	OneToZero int

	OverflowedTraces int
}

// Collect folds a slice of per-group results into a single Statistics
// value, in group order.
func Collect(groups []fault.GroupResult) Statistics {
	var s Statistics
	s.GroupsEvaluated = len(groups)
	for _, g := range groups {
		s.BitsEvaluated += g.BitsTotal
		s.SignificantBits += len(g.Significant)
		s.UndefinedBits += len(g.Undefined)
		s.UnknownBits += len(g.Unknown)
		s.ErrorlessBits += len(g.Errorless)
		if len(g.Significant) > 0 {
			s.GroupsWithSignificant++
		}

		for _, r := range g.Records {
			if r.PrevValue == 0 && r.NewValue == 1 {
				s.ZeroToOne++
			} else if r.PrevValue == 1 && r.NewValue == 0 {
				s.OneToZero++
			}
			if r.Overflowed {
				s.OverflowedTraces++
			}
			switch r.Kind {
			case fault.KindCLBAltered:
				s.CLBAltered++
			case fault.KindPipOpen:
				s.PipOpen++
			case fault.KindPipShort:
				s.PipShort++
			}
			switch r.Class {
			case fault.ClassMuxRow, fault.ClassMuxCol:
				s.Routing++
			case fault.ClassSiteInit:
				s.CLB++
			case fault.ClassUnsupported:
				s.Unsupported++
			case fault.ClassUnknown:
				s.Unknown++
			}
		}
	}
	return s
}
