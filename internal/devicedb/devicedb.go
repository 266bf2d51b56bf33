// Package devicedb loads the static per-part device database: tile
// types, site types, routing-mux encodings, and configuration-bit
// frame/offset assignments. It mirrors the Project X-Ray database layout
// named in spec.md §6, simplified to a small YAML tree (see loader.go).
package devicedb

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedPart is returned by Load when the database has no entry
// for the requested part, and fatally aborts analysis per spec.md §7.
var ErrUnsupportedPart = errors.New("devicedb: unsupported part")

// BitRole classifies what a configuration bit inside a tile type does.
type BitRole int

const (
	// RoleSiteInit marks a LUT/SRL INIT-style functional bit.
	RoleSiteInit BitRole = iota
	// RoleMuxRow marks a row-select bit of a routing mux.
	RoleMuxRow
	// RoleMuxCol marks a column-select bit of a routing mux.
	RoleMuxCol
	// RoleOther marks a defined bit the database does not model further
	// (classified Unsupported by the evaluator).
	RoleOther
)

func (r BitRole) String() string {
	switch r {
	case RoleSiteInit:
		return "SiteInit"
	case RoleMuxRow:
		return "MuxRow"
	case RoleMuxCol:
		return "MuxCol"
	default:
		return "Other"
	}
}

// BitRef addresses a configuration bit relative to a tile: FrameDelta
// frames past the tile's base frame address, at (Word, Bit) within that
// frame. Keeping bit positions tile-relative, rather than absolute,
// lets the same TileType be stamped down at many grid locations.
type BitRef struct {
	FrameDelta int
	Word       int
	Bit        int
}

// CfgBit is one entry of a TileType's configuration-bit table.
type CfgBit struct {
	Ref  BitRef
	Role BitRole

	// Populated when Role == RoleSiteInit.
	Site string
	Bel  string
	Func string // e.g. "INIT[00]"

	// Populated when Role == RoleMuxRow or RoleMuxCol: the routing mux
	// output node name this bit participates in selecting.
	Mux string
}

// MuxInput is one candidate driver of a RoutingMux's output node. The
// input is selected when both RowBit and ColBit currently read 1 —
// mirroring the row/column encoding matrix spec.md §3 and §9 describe.
type MuxInput struct {
	Node   string
	RowBit BitRef
	ColBit BitRef
}

// RoutingMux is a switchbox-output multiplexer inside a tile type.
type RoutingMux struct {
	Output string
	Inputs []MuxInput
}

// FrameSegment describes where a tile type's configuration bits live,
// relative to the frame address assigned to the tile's column: the
// range of frame deltas it touches and the word range within them.
// Tile types with no configuration bits (routing-only overlays) get the
// zero value, per spec.md §4.1's edge case.
type FrameSegment struct {
	MinFrameDelta int
	MaxFrameDelta int
	WordOffset    int
	WordCount     int
}

// TileType describes one kind of tile (e.g. "CLBLM_L", "INT_R"): the
// site types it hosts, the routing muxes inside it, and its
// configuration-bit table.
type TileType struct {
	Name      string
	SiteTypes []string
	Muxes     []RoutingMux
	CfgBits   map[BitRef]CfgBit
}

// MuxByOutput returns the routing mux whose output node is name, if any.
func (t *TileType) MuxByOutput(name string) (*RoutingMux, bool) {
	for i := range t.Muxes {
		if t.Muxes[i].Output == name {
			return &t.Muxes[i], true
		}
	}
	return nil, false
}

// segment computes the FrameSegment on demand from the cfg-bit table.
func (t *TileType) segment() FrameSegment {
	first := true
	var seg FrameSegment
	note := func(ref BitRef) {
		if first {
			seg = FrameSegment{MinFrameDelta: ref.FrameDelta, MaxFrameDelta: ref.FrameDelta, WordOffset: ref.Word, WordCount: 1}
			first = false
			return
		}
		if ref.FrameDelta < seg.MinFrameDelta {
			seg.MinFrameDelta = ref.FrameDelta
		}
		if ref.FrameDelta > seg.MaxFrameDelta {
			seg.MaxFrameDelta = ref.FrameDelta
		}
		if ref.Word < seg.WordOffset {
			seg.WordCount += seg.WordOffset - ref.Word
			seg.WordOffset = ref.Word
		}
		if ref.Word-seg.WordOffset+1 > seg.WordCount {
			seg.WordCount = ref.Word - seg.WordOffset + 1
		}
	}
	for ref := range t.CfgBits {
		note(ref)
	}
	for _, mux := range t.Muxes {
		for _, in := range mux.Inputs {
			note(in.RowBit)
			note(in.ColBit)
		}
	}
	return seg
}

// GridTile is one instantiated tile in the part's layout.
type GridTile struct {
	Name      string
	Type      string
	X, Y      int
	FrameBase uint32
}

// DeviceDB is the immutable, once-per-run loaded device database for a
// single part.
type DeviceDB struct {
	part       string
	idcode     uint32
	tileTypes  map[string]*TileType
	grid       []GridTile
	gridByName map[string]int
	frameAddrs map[uint32]struct{}
}

// New builds a DeviceDB directly from in-memory tile types and a grid,
// bypassing the YAML loader. Tests and fixture helpers use this to
// stand up a small synthetic device without a filesystem tree; Load
// itself is just New's field assembly plus a YAML decode step. A
// tile's FrameBase is its only defined frame, matching loadTilegrid's
// one-frame-per-tile-row simplification (see DESIGN.md).
func New(part string, idcode uint32, tileTypes map[string]*TileType, grid []GridTile) *DeviceDB {
	gridByName := make(map[string]int, len(grid))
	frameAddrs := make(map[uint32]struct{}, len(grid))
	for i, t := range grid {
		gridByName[t.Name] = i
		frameAddrs[t.FrameBase] = struct{}{}
	}
	return &DeviceDB{
		part:       part,
		idcode:     idcode,
		tileTypes:  tileTypes,
		grid:       grid,
		gridByName: gridByName,
		frameAddrs: frameAddrs,
	}
}

// PartName returns the part this database was loaded for.
func (d *DeviceDB) PartName() string { return d.part }

// IDCode returns the part's IDCODE, used to match against the
// bitstream's reported part_id.
func (d *DeviceDB) IDCode() uint32 { return d.idcode }

// TileType looks up a tile type by name.
func (d *DeviceDB) TileType(name string) (*TileType, bool) {
	t, ok := d.tileTypes[name]
	return t, ok
}

// Grid returns every tile instance of the part, in the order loaded.
func (d *DeviceDB) Grid() []GridTile { return d.grid }

// TileByName looks up a single grid tile by its instance name.
func (d *DeviceDB) TileByName(name string) (GridTile, bool) {
	idx, ok := d.gridByName[name]
	if !ok {
		return GridTile{}, false
	}
	return d.grid[idx], true
}

// Segment returns the FrameSegment for a tile type name. Unknown tile
// types and tile types with no configuration bits both yield the zero
// value, matching spec.md §4.1's edge case for routing-only overlays.
func (d *DeviceDB) Segment(tileType string) FrameSegment {
	t, ok := d.tileTypes[tileType]
	if !ok {
		return FrameSegment{}
	}
	return t.segment()
}

// IsDefinedFrame reports whether the database lists frame as belonging
// to this part — half of spec.md §4.2's is_defined_frame join (the
// Bitstream supplies the other half: whether the frame was written).
func (d *DeviceDB) IsDefinedFrame(frame uint32) bool {
	_, ok := d.frameAddrs[frame]
	return ok
}

// sortedTileTypeNames is a small helper used by tests and diagnostics
// that want deterministic output.
func (d *DeviceDB) sortedTileTypeNames() []string {
	names := make([]string, 0, len(d.tileTypes))
	for n := range d.tileTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (d *DeviceDB) String() string {
	return fmt.Sprintf("DeviceDB{part=%s, tiles=%d, tileTypes=%d}", d.part, len(d.grid), len(d.tileTypes))
}
