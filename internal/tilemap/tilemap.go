// Package tilemap binds the tiles of a device to a bitstream and
// materializes per-tile routing-mux and site-bit state, per spec.md §4.3.
package tilemap

import (
	"sort"

	"github.com/sarchlab/bitfault/internal/bitcoord"
	"github.com/sarchlab/bitfault/internal/bitstream"
	"github.com/sarchlab/bitfault/internal/devicedb"
)

// ResourceKind is the outcome of resolving a bitstream coordinate.
type ResourceKind int

const (
	// ResourceSiteBit is a LUT/SRL-style functional bit (e.g. INIT[i]).
	ResourceSiteBit ResourceKind = iota
	// ResourceMuxRow is a routing mux's row-select bit.
	ResourceMuxRow
	// ResourceMuxCol is a routing mux's column-select bit.
	ResourceMuxCol
	// ResourceOther is a defined bit the database does not model beyond
	// knowing it exists (evaluator classifies this Unsupported).
	ResourceOther
	// ResourceUnknown is inside a defined frame but has no database
	// mapping at all.
	ResourceUnknown
	// ResourceUndefined is inside a frame the database does not list for
	// the part.
	ResourceUndefined
)

// ResourceRef is what a bitstream coordinate resolves to.
type ResourceRef struct {
	Kind     ResourceKind
	Tile     string
	TileType string

	// Populated when Kind == ResourceSiteBit.
	Site string
	Bel  string
	Func string

	// Populated when Kind == ResourceMuxRow or ResourceMuxCol.
	Mux string
}

// MuxStateKind categorizes a routing mux's current selection.
type MuxStateKind int

const (
	MuxInactive MuxStateKind = iota
	MuxActive
	MuxConflicted
)

// MuxState is the result of evaluating a routing mux's current row/column
// encoding bits: Active(input), Inactive, or Conflicted(set), per
// spec.md §4.3.
type MuxState struct {
	Kind      MuxStateKind
	Active    string   // valid when Kind == MuxActive
	ActiveSet []string // valid when Kind == MuxConflicted; sorted ascending
}

type resolvedBit struct {
	tile devicedb.GridTile
	cfg  devicedb.CfgBit
}

// TileMap is the immutable, read-only-after-construction join of a
// DeviceDB's grid and a Bitstream's contents. TileMap exclusively owns
// the per-coordinate index; tiles never back-reference it, avoiding the
// cyclic ownership spec.md §9 warns against.
type TileMap struct {
	db      *devicedb.DeviceDB
	bs      *bitstream.Bitstream
	byCoord map[bitcoord.Coord]resolvedBit
}

// Build constructs a TileMap from a DeviceDB and a Bitstream. It is
// called once per run; the per-coordinate index is an arena shared by
// every shadow view produced by WithFlips.
func Build(db *devicedb.DeviceDB, bs *bitstream.Bitstream) *TileMap {
	tm := &TileMap{db: db, bs: bs, byCoord: make(map[bitcoord.Coord]resolvedBit)}
	for _, t := range db.Grid() {
		tt, ok := db.TileType(t.Type)
		if !ok {
			continue
		}
		for ref, cfg := range tt.CfgBits {
			coord := bitcoord.Coord{
				Frame: t.FrameBase + uint32(ref.FrameDelta),
				Word:  uint8(ref.Word),
				Bit:   uint8(ref.Bit),
			}
			tm.byCoord[coord] = resolvedBit{tile: t, cfg: cfg}
		}
	}
	return tm
}

// Bit returns the current value (0 or 1) of a bitstream coordinate under
// this view.
func (tm *TileMap) Bit(c bitcoord.Coord) int {
	return tm.bs.Get(c)
}

// ResourceAt resolves a bitstream coordinate to the resource it
// configures, per spec.md §4.3 and the classification invariant of
// spec.md §8 (exactly one of the six ResourceKind values).
func (tm *TileMap) ResourceAt(c bitcoord.Coord) ResourceRef {
	rb, ok := tm.byCoord[c]
	if !ok {
		if tm.db.IsDefinedFrame(c.Frame) {
			return ResourceRef{Kind: ResourceUnknown}
		}
		return ResourceRef{Kind: ResourceUndefined}
	}

	switch rb.cfg.Role {
	case devicedb.RoleSiteInit:
		return ResourceRef{
			Kind: ResourceSiteBit, Tile: rb.tile.Name, TileType: rb.tile.Type,
			Site: rb.cfg.Site, Bel: rb.cfg.Bel, Func: rb.cfg.Func,
		}
	case devicedb.RoleMuxRow:
		return ResourceRef{Kind: ResourceMuxRow, Tile: rb.tile.Name, TileType: rb.tile.Type, Mux: rb.cfg.Mux}
	case devicedb.RoleMuxCol:
		return ResourceRef{Kind: ResourceMuxCol, Tile: rb.tile.Name, TileType: rb.tile.Type, Mux: rb.cfg.Mux}
	default:
		return ResourceRef{Kind: ResourceOther, Tile: rb.tile.Name, TileType: rb.tile.Type}
	}
}

func (tm *TileMap) bitCoordFor(t devicedb.GridTile, ref devicedb.BitRef) bitcoord.Coord {
	return bitcoord.Coord{Frame: t.FrameBase + uint32(ref.FrameDelta), Word: uint8(ref.Word), Bit: uint8(ref.Bit)}
}

// MuxState evaluates the given routing mux in the given tile instance
// under this view, per spec.md §4.3. Tiles or muxes that do not exist
// report MuxInactive with an empty result; callers that need to
// distinguish "no such mux" should check devicedb directly.
func (tm *TileMap) MuxState(tileName, muxOutput string) MuxState {
	t, ok := tm.db.TileByName(tileName)
	if !ok {
		return MuxState{Kind: MuxInactive}
	}
	tt, ok := tm.db.TileType(t.Type)
	if !ok {
		return MuxState{Kind: MuxInactive}
	}
	mux, ok := tt.MuxByOutput(muxOutput)
	if !ok {
		return MuxState{Kind: MuxInactive}
	}

	var active []string
	for _, in := range mux.Inputs {
		rowCoord := tm.bitCoordFor(t, in.RowBit)
		colCoord := tm.bitCoordFor(t, in.ColBit)
		if tm.bs.Get(rowCoord) == 1 && tm.bs.Get(colCoord) == 1 {
			active = append(active, in.Node)
		}
	}
	sort.Strings(active)

	switch len(active) {
	case 0:
		return MuxState{Kind: MuxInactive}
	case 1:
		return MuxState{Kind: MuxActive, Active: active[0]}
	default:
		return MuxState{Kind: MuxConflicted, ActiveSet: active}
	}
}

// WithFlips returns a shadow view of the TileMap with the given bits
// toggled. The per-coordinate index is shared with the parent view; only
// the underlying Bitstream is replaced, by a flipped copy from
// bitstream.WithFlips.
func (tm *TileMap) WithFlips(coords []bitcoord.Coord) *TileMap {
	return &TileMap{db: tm.db, bs: tm.bs.WithFlips(coords), byCoord: tm.byCoord}
}

// DB returns the underlying DeviceDB, for callers (e.g. the fault
// evaluator) that need tile-type lookups TileMap doesn't expose directly.
func (tm *TileMap) DB() *devicedb.DeviceDB { return tm.db }
