// Package design models the routed design checkpoint: cells placed at
// sites, nets, and the programmed routing paths (ordered PIP sequences)
// that realize them, per spec.md §3 and §4.4.
package design

import (
	"fmt"
	"sort"

	"github.com/sarchlab/bitfault/internal/common"
)

// Cell is a design cell placed at a specific (tile, site, bel).
type Cell struct {
	Name         string
	Tile         string
	Site         string
	Bel          string
	ResourceType string // "LUT6", "FF", "SRL16", ...
}

// siteKey identifies a cell by its placement.
type siteKey struct{ Tile, Site, Bel string }

// NodeRef identifies a routing node: a tile-relative node name qualified
// by the specific tile instance it belongs to. Tile instance names are
// unique across the design, so NodeRef is globally unique even though
// node names themselves are only unique within a tile.
type NodeRef struct {
	Tile string
	Node string
}

func (n NodeRef) String() string { return n.Tile + "/" + n.Node }

// PIP is a single programmable interconnect point: a driver from one
// routing node to another inside one tile.
type PIP struct {
	Tile      string
	Input     string
	Output    string
	Direction string
}

// InputNode and OutputNode qualify a PIP's endpoints into NodeRefs.
func (p PIP) InputNode() NodeRef  { return NodeRef{Tile: p.Tile, Node: p.Input} }
func (p PIP) OutputNode() NodeRef { return NodeRef{Tile: p.Tile, Node: p.Output} }

func (p PIP) String() string {
	return fmt.Sprintf("%s->%s", p.Input, p.Output)
}

// SinkRef is a sink pin of a net, reached at a particular routing node.
type SinkRef struct {
	Node NodeRef
	Cell string
	Pin  string
}

// Net is a logical signal: one driver, one or more sinks, realized by a
// (possibly branching) routing tree of PIPs.
type Net struct {
	Name       string
	DriverPin  string
	DriverNode NodeRef
	Sinks      []SinkRef
	PIPs       []PIP

	// graph maps a node to the PIPs it drives onward; built once at
	// Model construction time so TraceFromPIP never re-scans PIPs.
	graph map[NodeRef][]PIP
}

func (n *Net) buildGraph() {
	n.graph = make(map[NodeRef][]PIP, len(n.PIPs))
	for _, p := range n.PIPs {
		from := p.InputNode()
		n.graph[from] = append(n.graph[from], p)
	}
}

// SinksAt returns every sink of the net whose node equals ref.
func (n *Net) SinksAt(ref NodeRef) []SinkRef {
	var out []SinkRef
	for _, s := range n.Sinks {
		if s.Node == ref {
			out = append(out, s)
		}
	}
	return out
}

// DownstreamPIPs returns the PIPs the net drives onward from node —
// the forward adjacency nettracer.TraceFromPIP walks.
func (n *Net) DownstreamPIPs(node NodeRef) []PIP {
	return n.graph[node]
}

// RawCell and RawNet are the shapes a Provider hands to Build — plain
// data, with no back-references, so any dcp-reader backend can produce
// them without knowing about the Model's internal indices.
type RawCell = Cell

type RawNet struct {
	Name       string
	DriverPin  string
	DriverTile string
	DriverNode string
	Sinks      []RawSink
	PIPs       []PIP
}

// RawSink is a sink pin as reported by a Provider, before NodeRef
// qualification.
type RawSink struct {
	Tile string
	Node string
	Cell string
	Pin  string
}

// Provider is the capability every dcp-reader backend must satisfy:
// a flat dump of cells and nets for one design checkpoint. Two
// interchangeable backends exist (internal/dcpreader): a subprocess
// driver over an external EDA tool, and a native in-process reader.
// Neither shares state with the other, per spec.md §9.
type Provider interface {
	RawCells() ([]RawCell, error)
	RawNets() ([]RawNet, error)
}

// Model is the immutable, once-per-run DesignModel: cells indexed by
// placement and by name, nets indexed by name, and fast lookup tables
// for "what net uses this PIP" and "what net drives this node" — the
// joins spec.md §3 calls out between routing and the design.
type Model struct {
	cellsBySite siteKeyIndex
	cellsByName map[string]*Cell
	netsByName  map[string]*Net

	pipIndex       map[pipKey]*Net
	nodeDriverIdx  map[NodeRef]*Net
	sinkIdx        map[NodeRef]*Net
	orderedNetList []string

	// netIDs interns net names into dense IDs, so callers that compare
	// or index nets heavily (e.g. report de-duplication) can do so by
	// int rather than by repeated string comparison.
	netIDs *common.NameIDBinding
}

type pipKey struct{ Tile, Input, Output string }

type siteKeyIndex map[siteKey]*Cell

// Build indexes a Provider's raw dump into an immutable Model. It is
// called once per run; the resulting Model is read-only thereafter.
func Build(p Provider) (*Model, error) {
	rawCells, err := p.RawCells()
	if err != nil {
		return nil, fmt.Errorf("design: loading cells: %w", err)
	}
	rawNets, err := p.RawNets()
	if err != nil {
		return nil, fmt.Errorf("design: loading nets: %w", err)
	}

	m := &Model{
		cellsBySite:   make(siteKeyIndex, len(rawCells)),
		cellsByName:   make(map[string]*Cell, len(rawCells)),
		netsByName:    make(map[string]*Net, len(rawNets)),
		pipIndex:      make(map[pipKey]*Net),
		nodeDriverIdx: make(map[NodeRef]*Net),
		sinkIdx:       make(map[NodeRef]*Net),
		netIDs:        common.NewNameIDBinding(),
	}

	for i := range rawCells {
		c := rawCells[i]
		cell := &c
		m.cellsBySite[siteKey{c.Tile, c.Site, c.Bel}] = cell
		m.cellsByName[c.Name] = cell
	}

	for _, rn := range rawNets {
		net := &Net{
			Name:       rn.Name,
			DriverPin:  rn.DriverPin,
			DriverNode: NodeRef{Tile: rn.DriverTile, Node: rn.DriverNode},
			PIPs:       rn.PIPs,
		}
		for _, s := range rn.Sinks {
			net.Sinks = append(net.Sinks, SinkRef{
				Node: NodeRef{Tile: s.Tile, Node: s.Node},
				Cell: s.Cell,
				Pin:  s.Pin,
			})
		}
		net.buildGraph()

		m.netsByName[net.Name] = net
		m.orderedNetList = append(m.orderedNetList, net.Name)
		m.netIDs.Intern(net.Name)

		for _, pip := range net.PIPs {
			m.pipIndex[pipKey{pip.Tile, pip.Input, pip.Output}] = net
			m.nodeDriverIdx[pip.OutputNode()] = net
		}
		for _, s := range net.Sinks {
			m.sinkIdx[s.Node] = net
		}
	}
	sort.Strings(m.orderedNetList)

	return m, nil
}

// CellAt returns the cell placed at (tile, site, bel), if any.
func (m *Model) CellAt(tile, site, bel string) (*Cell, bool) {
	c, ok := m.cellsBySite[siteKey{tile, site, bel}]
	return c, ok
}

// CellByName returns the cell with the given hierarchical name, if any.
func (m *Model) CellByName(name string) (*Cell, bool) {
	c, ok := m.cellsByName[name]
	return c, ok
}

// NetByName returns the net with the given hierarchical name, if any.
func (m *Model) NetByName(name string) (*Net, bool) {
	n, ok := m.netsByName[name]
	return n, ok
}

// NetThroughPIP returns the net whose routed path currently traverses
// the given PIP, if any.
func (m *Model) NetThroughPIP(tile, input, output string) (*Net, bool) {
	n, ok := m.pipIndex[pipKey{tile, input, output}]
	return n, ok
}

// NetDrivingNode returns the net whose route reaches node (as a PIP
// output) in the design, if any.
func (m *Model) NetDrivingNode(tile, node string) (*Net, bool) {
	n, ok := m.nodeDriverIdx[NodeRef{Tile: tile, Node: node}]
	return n, ok
}

// NetSinkingNode returns the net that has a sink pin at node, if any —
// used to tell whether a routing node is a load for some other net
// (spec.md §4.5's Inactive→Active(y) short case).
func (m *Model) NetSinkingNode(tile, node string) (*Net, bool) {
	n, ok := m.sinkIdx[NodeRef{Tile: tile, Node: node}]
	return n, ok
}

// Nets returns every net name, sorted ascending — the design-name order
// spec.md §5 requires for deterministic output.
func (m *Model) Nets() []string {
	out := make([]string, len(m.orderedNetList))
	copy(out, m.orderedNetList)
	return out
}

// NetID returns the dense ID a net name was interned under, if it
// exists in this design.
func (m *Model) NetID(name string) (int, bool) {
	return m.netIDs.ID(name)
}

// NetCount returns the number of distinct nets in the design.
func (m *Model) NetCount() int {
	return m.netIDs.Len()
}
