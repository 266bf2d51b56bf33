// Package fault implements the FaultEvaluator: the per-bit-group
// classify/apply/evaluate/aggregate pipeline of spec.md §4.5, joining
// a TileMap and a DesignModel to produce fault records.
package fault

import "github.com/sarchlab/bitfault/internal/bitcoord"

// BitClass is the outcome of classifying a single bitstream coordinate
// against the device database, per spec.md §4.5 step 1.
type BitClass int

const (
	ClassSiteInit BitClass = iota
	ClassMuxRow
	ClassMuxCol
	ClassUnsupported
	ClassUnknown
	ClassUndefined
)

func (c BitClass) String() string {
	switch c {
	case ClassSiteInit:
		return "SiteInit"
	case ClassMuxRow:
		return "MuxRow"
	case ClassMuxCol:
		return "MuxCol"
	case ClassUnsupported:
		return "Unsupported"
	case ClassUnknown:
		return "Unknown"
	case ClassUndefined:
		return "Undefined"
	default:
		return "Unknown"
	}
}

// Kind names the specific fault a record represents, once evaluated.
type Kind int

const (
	// KindNone means the flip produced no design-visible effect: the
	// bit is real but errorless (an unplaced site, an unrouted pip, or
	// a no-op transition).
	KindNone Kind = iota
	// KindCLBAltered is any INIT-bit change on a placed cell.
	KindCLBAltered
	// KindPipOpen is a routed pip that this flip deactivates.
	KindPipOpen
	// KindPipShort is one or more routed pips this flip newly
	// activates onto an already-loaded or already-driven node.
	KindPipShort
)

func (k Kind) String() string {
	switch k {
	case KindCLBAltered:
		return "CLBAltered"
	case KindPipOpen:
		return "PipOpen"
	case KindPipShort:
		return "PipShort"
	default:
		return "Errorless"
	}
}

// PIPEvent is one PIP whose activation state the flip changed, for the
// "Affected PIPs" report line.
type PIPEvent struct {
	Input     string
	Output    string
	Activated bool
}

// Record is the outcome of evaluating a single flipped bit within a
// bit group: its classification, the fault it resolves to (if any),
// and every piece of context the report needs to render it.
type Record struct {
	Coord     bitcoord.Coord
	PrevValue int
	NewValue  int

	Class BitClass
	Kind  Kind

	Tile     string
	TileType string

	// Populated for ClassSiteInit.
	Site string
	Bel  string
	Func string

	// Populated for ClassMuxRow / ClassMuxCol.
	Mux string

	// Cells are the design cells this record implicates: the altered
	// cell for CLBAltered, or empty otherwise.
	Cells []string
	// Nets are the net names implicated, sorted ascending by name.
	Nets []string
	// UnconnectedNodes are mux input nodes newly activated that no net
	// drives, reported alongside Nets in a short.
	UnconnectedNodes []string
	// PIPs are the specific pip activations/deactivations this flip
	// caused.
	PIPs []PIPEvent
	// Sinks are the downstream sink cell names reached by tracing from
	// the disturbed pip, sorted ascending.
	Sinks []string
	// Overflowed reports a TraceOverflow advisory encountered while
	// tracing Sinks (spec.md §7); the record is still emitted.
	Overflowed bool

	// Reason is a short human-readable note for errorless/passthrough
	// records (e.g. "no cell placed").
	Reason string

	// Significant is true for any record that belongs in the
	// significant bucket: not errorless, not Unknown, not Undefined.
	Significant bool
}

// GroupResult is the aggregated outcome of evaluating one bit group,
// per spec.md §4.5 step 4 and the bucket-partition invariant of §8.
type GroupResult struct {
	Index   int
	Records []Record

	Significant []Record
	Undefined   []Record
	Unknown     []Record
	Errorless   []Record

	BitsTotal   int
	ErrorsFound int
}

func aggregate(idx int, records []Record) GroupResult {
	gr := GroupResult{Index: idx, Records: records, BitsTotal: len(records)}
	for _, r := range records {
		switch {
		case r.Class == ClassUndefined:
			gr.Undefined = append(gr.Undefined, r)
		case r.Class == ClassUnknown:
			gr.Unknown = append(gr.Unknown, r)
		case !r.Significant:
			gr.Errorless = append(gr.Errorless, r)
		default:
			gr.Significant = append(gr.Significant, r)
		}
	}
	gr.ErrorsFound = len(gr.Significant)
	return gr
}
