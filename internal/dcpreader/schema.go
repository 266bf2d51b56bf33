// Package dcpreader provides two interchangeable design.Provider
// backends for reading a routed design checkpoint, per spec.md §9's
// "design-query backend polymorphism" note: a native in-process reader
// and a subprocess-driven reader over an external EDA tool. Neither
// shares state with the other.
//
// Both backends consume the same intermediate JSON dump schema — a
// flat {cells, nets} document — produced either by reading a
// pre-exported file directly (Native) or by invoking an external tool
// that emits the same shape on stdout (Subprocess). No dcp-specific
// library appears anywhere in the example pack, so this schema and
// encoding/json are used directly (see DESIGN.md).
package dcpreader

import "github.com/sarchlab/bitfault/internal/design"

// dumpCell and dumpNet mirror design.RawCell / design.RawNet field for
// field; they exist only to give the JSON document stable tags
// independent of the design package's Go field names.
type dumpCell struct {
	Name         string `json:"name"`
	Tile         string `json:"tile"`
	Site         string `json:"site"`
	Bel          string `json:"bel"`
	ResourceType string `json:"resource_type"`
}

type dumpPIP struct {
	Tile      string `json:"tile"`
	Input     string `json:"input"`
	Output    string `json:"output"`
	Direction string `json:"direction"`
}

type dumpSink struct {
	Tile string `json:"tile"`
	Node string `json:"node"`
	Cell string `json:"cell"`
	Pin  string `json:"pin"`
}

type dumpNet struct {
	Name       string     `json:"name"`
	DriverPin  string     `json:"driver_pin"`
	DriverTile string     `json:"driver_tile"`
	DriverNode string     `json:"driver_node"`
	Sinks      []dumpSink `json:"sinks"`
	PIPs       []dumpPIP  `json:"pips"`
}

type dump struct {
	Cells []dumpCell `json:"cells"`
	Nets  []dumpNet  `json:"nets"`
}

func (d dump) rawCells() []design.RawCell {
	out := make([]design.RawCell, 0, len(d.Cells))
	for _, c := range d.Cells {
		out = append(out, design.RawCell{
			Name: c.Name, Tile: c.Tile, Site: c.Site, Bel: c.Bel, ResourceType: c.ResourceType,
		})
	}
	return out
}

func (d dump) rawNets() []design.RawNet {
	out := make([]design.RawNet, 0, len(d.Nets))
	for _, n := range d.Nets {
		rn := design.RawNet{
			Name: n.Name, DriverPin: n.DriverPin, DriverTile: n.DriverTile, DriverNode: n.DriverNode,
		}
		for _, p := range n.PIPs {
			rn.PIPs = append(rn.PIPs, design.PIP{Tile: p.Tile, Input: p.Input, Output: p.Output, Direction: p.Direction})
		}
		for _, s := range n.Sinks {
			rn.Sinks = append(rn.Sinks, design.RawSink{Tile: s.Tile, Node: s.Node, Cell: s.Cell, Pin: s.Pin})
		}
		out = append(out, rn)
	}
	return out
}
