// Package nettracer implements trace_from_pip (spec.md §4.6): given a
// net and a PIP, it walks the net's routing graph forward from that PIP
// and collects every sink cell reachable downstream.
package nettracer

import (
	"sort"

	"github.com/sarchlab/bitfault/internal/design"
)

// DefaultMaxDepth bounds the BFS so a malformed (non-DAG) net degrades
// to a TraceOverflow advisory instead of looping forever, per spec.md §7.
const DefaultMaxDepth = 4096

// Result is the outcome of a single trace.
type Result struct {
	// Cells are the distinct sink cell names reached, sorted ascending
	// by design name (spec.md §5 ordering requirement).
	Cells []string
	// Overflowed is set when the walk hit its depth bound (maxDepth, or
	// DefaultMaxDepth when maxDepth <= 0) or revisited a
	// node — the TraceOverflow condition of spec.md §7. The Cells
	// collected up to that point are still returned as a partial set.
	Overflowed bool
}

type frontierNode struct {
	node  design.NodeRef
	depth int
}

// TraceFromPIP walks net forward from pip's output node, collecting
// every distinct sink cell in the downstream subtree. It never re-enters
// the upstream portion of the net (traversal only ever moves along
// DownstreamPIPs edges, which point away from the disturbance point),
// tolerates branching (multi-sink) nets by visiting every branch, and
// detects cycles defensively even though routed nets are DAGs in
// practice.
func TraceFromPIP(net *design.Net, pip design.PIP, maxDepth int) Result {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	start := pip.OutputNode()
	visited := map[design.NodeRef]bool{start: true}
	cellSet := map[string]bool{}
	overflowed := false

	queue := []frontierNode{{node: start, depth: 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, sink := range net.SinksAt(cur.node) {
			cellSet[sink.Cell] = true
		}

		if cur.depth >= maxDepth {
			overflowed = true
			continue
		}

		for _, next := range net.DownstreamPIPs(cur.node) {
			nd := next.OutputNode()
			if visited[nd] {
				overflowed = true
				continue
			}
			visited[nd] = true
			queue = append(queue, frontierNode{node: nd, depth: cur.depth + 1})
		}
	}

	cells := make([]string, 0, len(cellSet))
	for c := range cellSet {
		cells = append(cells, c)
	}
	sort.Strings(cells)

	return Result{Cells: cells, Overflowed: overflowed}
}
