package fault

import (
	"context"
	"sort"
	"sync"

	"github.com/sarchlab/bitfault/internal/bitcoord"
	"github.com/sarchlab/bitfault/internal/design"
	"github.com/sarchlab/bitfault/internal/nettracer"
	"github.com/sarchlab/bitfault/internal/tilemap"
)

// Group is one bit group: the set of bitstream coordinates flipped and
// evaluated together, per spec.md §4.5 and §5.
type Group []bitcoord.Coord

// Options configures EvaluateGroups.
type Options struct {
	// Parallelism bounds the number of bit groups evaluated
	// concurrently. Values <= 1 evaluate sequentially.
	Parallelism int
	// MaxTraceDepth overrides nettracer's default walk bound; 0 uses
	// nettracer.DefaultMaxDepth.
	MaxTraceDepth int
}

// Evaluator is the FaultEvaluator of spec.md §4.5: it joins a TileMap
// and a DesignModel, read-only after construction, and evaluates bit
// groups against them.
type Evaluator struct {
	tm            *tilemap.TileMap
	dm            *design.Model
	maxTraceDepth int
}

// New builds an Evaluator over a fixed TileMap/DesignModel pair.
func New(tm *tilemap.TileMap, dm *design.Model) *Evaluator {
	return &Evaluator{tm: tm, dm: dm}
}

// EvaluateGroup runs the classify/apply/evaluate/aggregate pipeline
// for one bit group and returns its aggregated result. index is the
// 1-based group number used in the report.
func (e *Evaluator) EvaluateGroup(index int, group Group) GroupResult {
	flipped := e.tm.WithFlips(group)
	records := make([]Record, 0, len(group))
	for _, c := range group {
		records = append(records, e.evaluateBit(c, flipped))
	}
	return aggregate(index, records)
}

// EvaluateGroups runs EvaluateGroup over every group, per spec.md §5's
// concurrency model: sequential by default, or a bounded worker pool
// when opts.Parallelism > 1, with cooperative cancellation honored at
// group boundaries only (an in-flight group always finishes).
func (e *Evaluator) EvaluateGroups(ctx context.Context, groups []Group, opts Options) ([]GroupResult, error) {
	maxDepth := opts.MaxTraceDepth
	worker := &Evaluator{tm: e.tm, dm: e.dm, maxTraceDepth: maxDepth}

	if opts.Parallelism <= 1 {
		results := make([]GroupResult, 0, len(groups))
		for i, g := range groups {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			default:
			}
			results = append(results, worker.EvaluateGroup(i+1, g))
		}
		return results, nil
	}

	results := make([]GroupResult, len(groups))
	filled := make([]bool, len(groups))

	type job struct {
		idx   int
		group Group
	}
	jobs := make(chan job)
	var wg sync.WaitGroup
	for w := 0; w < opts.Parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				r := worker.EvaluateGroup(j.idx+1, j.group)
				results[j.idx] = r
				filled[j.idx] = true
			}
		}()
	}

	var cancelled bool
feed:
	for i, g := range groups {
		select {
		case <-ctx.Done():
			cancelled = true
			break feed
		case jobs <- job{idx: i, group: g}:
		}
	}
	close(jobs)
	wg.Wait()

	out := make([]GroupResult, 0, len(groups))
	for i := range groups {
		if !filled[i] {
			break
		}
		out = append(out, results[i])
	}
	if cancelled {
		return out, ctx.Err()
	}
	return out, nil
}

func (e *Evaluator) evaluateBit(c bitcoord.Coord, flipped *tilemap.TileMap) Record {
	ref := e.tm.ResourceAt(c)
	rec := Record{
		Coord:     c,
		PrevValue: e.tm.Bit(c),
		NewValue:  flipped.Bit(c),
		Tile:      ref.Tile,
		TileType:  ref.TileType,
	}

	switch ref.Kind {
	case tilemap.ResourceUndefined:
		rec.Class = ClassUndefined
		rec.Reason = "frame not defined for this part"
		return rec

	case tilemap.ResourceUnknown:
		rec.Class = ClassUnknown
		rec.Reason = "defined frame has no device database mapping"
		return rec

	case tilemap.ResourceOther:
		rec.Class = ClassUnsupported
		rec.Reason = "defined bit not modeled beyond its existence"
		rec.Significant = true
		return rec

	case tilemap.ResourceSiteBit:
		rec.Class = ClassSiteInit
		rec.Site, rec.Bel, rec.Func = ref.Site, ref.Bel, ref.Func
		cell, ok := e.dm.CellAt(ref.Tile, ref.Site, ref.Bel)
		if !ok {
			rec.Kind = KindNone
			rec.Reason = "no cell placed at this site"
			return rec
		}
		rec.Kind = KindCLBAltered
		rec.Cells = []string{cell.Name}
		rec.Significant = true
		return rec

	case tilemap.ResourceMuxRow:
		rec.Class = ClassMuxRow
		rec.Mux = ref.Mux
		e.evaluateMux(&rec, ref.Tile, ref.Mux, flipped)
		return rec

	case tilemap.ResourceMuxCol:
		rec.Class = ClassMuxCol
		rec.Mux = ref.Mux
		e.evaluateMux(&rec, ref.Tile, ref.Mux, flipped)
		return rec

	default:
		rec.Class = ClassUnsupported
		rec.Significant = true
		return rec
	}
}

// evaluateMux implements spec.md §4.5 step 3's mux-transition state
// machine: Active(x)→Inactive, Active(x)→Active(y), Inactive→Active(y),
// and the multi-way Conflicted case.
func (e *Evaluator) evaluateMux(rec *Record, tile, muxOutput string, flipped *tilemap.TileMap) {
	base := e.tm.MuxState(tile, muxOutput)
	post := flipped.MuxState(tile, muxOutput)

	switch {
	case base.Kind == tilemap.MuxActive && post.Kind == tilemap.MuxInactive:
		x := base.Active
		net, ok := e.dm.NetThroughPIP(tile, x, muxOutput)
		if !ok {
			rec.Kind = KindNone
			rec.Reason = "deactivated pip was not used by any routed net"
			return
		}
		tr := nettracer.TraceFromPIP(net, design.PIP{Tile: tile, Input: x, Output: muxOutput}, e.maxTraceDepth)
		rec.Kind = KindPipOpen
		rec.Nets = []string{net.Name}
		rec.PIPs = []PIPEvent{{Input: x, Output: muxOutput, Activated: false}}
		rec.Sinks = tr.Cells
		rec.Overflowed = tr.Overflowed
		rec.Significant = true

	case base.Kind == tilemap.MuxActive && post.Kind == tilemap.MuxActive && post.Active != base.Active:
		x, y := base.Active, post.Active
		netX, hasX := e.dm.NetDrivingNode(tile, x)
		netY, hasY := e.dm.NetDrivingNode(tile, y)
		switch {
		case hasX && hasY:
			tr := nettracer.TraceFromPIP(netX, design.PIP{Tile: tile, Input: x, Output: muxOutput}, e.maxTraceDepth)
			rec.Kind = KindPipShort
			rec.Nets = sortedUnique([]string{netX.Name, netY.Name})
			rec.PIPs = []PIPEvent{{Input: y, Output: muxOutput, Activated: true}}
			rec.Sinks = tr.Cells
			rec.Overflowed = tr.Overflowed
			rec.Significant = true
		case hasX && !hasY:
			tr := nettracer.TraceFromPIP(netX, design.PIP{Tile: tile, Input: x, Output: muxOutput}, e.maxTraceDepth)
			rec.Kind = KindPipShort
			rec.Nets = []string{netX.Name}
			rec.UnconnectedNodes = []string{y}
			rec.PIPs = []PIPEvent{{Input: y, Output: muxOutput, Activated: true}}
			rec.Sinks = tr.Cells
			rec.Overflowed = tr.Overflowed
			rec.Significant = true
		default:
			// x was itself unconnected: no design net is disturbed by
			// replacing it with y, per the resolved open question.
			rec.Kind = KindNone
			rec.Reason = "no design net perturbed by this mux reselection"
		}

	case base.Kind == tilemap.MuxInactive && post.Kind == tilemap.MuxActive:
		y := post.Active
		netY, hasY := e.dm.NetDrivingNode(tile, y)
		_, outputIsSink := e.dm.NetSinkingNode(tile, muxOutput)
		if hasY && outputIsSink {
			tr := nettracer.TraceFromPIP(netY, design.PIP{Tile: tile, Input: y, Output: muxOutput}, e.maxTraceDepth)
			rec.Kind = KindPipShort
			rec.Nets = []string{netY.Name}
			rec.PIPs = []PIPEvent{{Input: y, Output: muxOutput, Activated: true}}
			rec.Sinks = tr.Cells
			rec.Overflowed = tr.Overflowed
			rec.Significant = true
			return
		}
		// No sink net loads this output: activating an otherwise-idle
		// mux input disturbs nothing in the routed design.
		rec.Kind = KindNone
		rec.Reason = "no design net perturbed"

	case post.Kind == tilemap.MuxConflicted:
		baseActive := map[string]bool{}
		if base.Kind == tilemap.MuxActive {
			baseActive[base.Active] = true
		}

		var nets, unconnected []string
		var sinkCells []string
		seenCell := map[string]bool{}
		overflow := false
		for _, node := range post.ActiveSet {
			rec.PIPs = append(rec.PIPs, PIPEvent{
				Input: node, Output: muxOutput, Activated: !baseActive[node],
			})
			n, ok := e.dm.NetDrivingNode(tile, node)
			if !ok {
				unconnected = append(unconnected, node)
				continue
			}
			nets = append(nets, n.Name)
			tr := nettracer.TraceFromPIP(n, design.PIP{Tile: tile, Input: node, Output: muxOutput}, e.maxTraceDepth)
			overflow = overflow || tr.Overflowed
			for _, cell := range tr.Cells {
				if !seenCell[cell] {
					seenCell[cell] = true
					sinkCells = append(sinkCells, cell)
				}
			}
		}
		sort.Strings(sinkCells)
		rec.Nets = sortedUnique(nets)
		rec.UnconnectedNodes = sortedUnique(unconnected)
		rec.Sinks = sinkCells
		rec.Overflowed = overflow
		if len(rec.Nets) > 0 || len(rec.UnconnectedNodes) > 0 {
			rec.Kind = KindPipShort
			rec.Significant = true
		} else {
			rec.Kind = KindNone
			rec.Reason = "conflicted selection touches no design resource"
		}

	default:
		// Inactive→Inactive, or a transition back to the same active
		// input: the mux's effective selection is unchanged.
		rec.Kind = KindNone
		rec.Reason = "no change in mux selection"
	}
}

func sortedUnique(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
