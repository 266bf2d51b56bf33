// Package fixtures builds small, self-consistent synthetic devices and
// designs for tests: a three-tile part (two CLB-like tiles, only one of
// which has a placed cell, and one interconnect-like tile with a single
// routing mux) big enough to
// exercise every FaultEvaluator branch without needing a real Project
// X-Ray database or design checkpoint.
package fixtures

import (
	"strings"

	"github.com/sarchlab/bitfault/internal/bitcoord"
	"github.com/sarchlab/bitfault/internal/bitstream"
	"github.com/sarchlab/bitfault/internal/design"
	"github.com/sarchlab/bitfault/internal/devicedb"
)

// Tile and node names shared between the device and design fixtures.
const (
	CLBTile      = "CLB_X0Y0"
	UnplacedTile = "CLB_X1Y0"
	INTTile      = "INT_X0Y0"
	CLBType      = "CLB_TYPE"
	INTType      = "INT_TYPE"
	Site         = "SLICE_X0Y0"
	Bel          = "A6LUT"
	MuxOut       = "SS6BEG0"
	NodeA        = "NR1END3"    // driven by NetA in the design fixture
	NodeB        = "WR1END3"    // driven by NetB in the design fixture
	NodeOpen     = "LOGIC_OUTS7" // never driven by any net

	CLBFrameBase      = 0x1000
	UnplacedFrameBase = 0x1100
	INTFrameBase      = 0x2000
	UndefinedFrame    = 0x9999
)

// Coordinates of every configuration bit the fixture device defines.
var (
	InitBit         = bitcoord.Coord{Frame: CLBFrameBase, Word: 0, Bit: 0}
	UnplacedInitBit = bitcoord.Coord{Frame: UnplacedFrameBase, Word: 0, Bit: 0}
	RowA            = bitcoord.Coord{Frame: INTFrameBase, Word: 1, Bit: 0}
	ColA            = bitcoord.Coord{Frame: INTFrameBase, Word: 1, Bit: 1}
	RowB            = bitcoord.Coord{Frame: INTFrameBase, Word: 2, Bit: 0}
	ColB            = bitcoord.Coord{Frame: INTFrameBase, Word: 2, Bit: 1}
	RowOpen         = bitcoord.Coord{Frame: INTFrameBase, Word: 3, Bit: 0}
	ColOpen         = bitcoord.Coord{Frame: INTFrameBase, Word: 3, Bit: 1}
	OtherBit        = bitcoord.Coord{Frame: INTFrameBase, Word: 4, Bit: 0}

	// UnknownBit sits in CLBTile's defined frame but has no CfgBits entry.
	UnknownBit = bitcoord.Coord{Frame: CLBFrameBase, Word: 5, Bit: 5}
	// UndefinedBit falls in a frame no tile claims at all.
	UndefinedBit = bitcoord.Coord{Frame: UndefinedFrame, Word: 0, Bit: 0}
)

// DeviceDB returns the fixture's three-tile device database.
func DeviceDB() *devicedb.DeviceDB {
	clbType := &devicedb.TileType{
		Name:      CLBType,
		SiteTypes: []string{"SLICEM"},
		CfgBits: map[devicedb.BitRef]devicedb.CfgBit{
			{FrameDelta: 0, Word: 0, Bit: 0}: {
				Ref: devicedb.BitRef{FrameDelta: 0, Word: 0, Bit: 0}, Role: devicedb.RoleSiteInit,
				Site: Site, Bel: Bel, Func: "INIT[00]",
			},
		},
	}

	intType := &devicedb.TileType{
		Name: INTType,
		Muxes: []devicedb.RoutingMux{
			{
				Output: MuxOut,
				Inputs: []devicedb.MuxInput{
					{Node: NodeA, RowBit: devicedb.BitRef{FrameDelta: 0, Word: 1, Bit: 0}, ColBit: devicedb.BitRef{FrameDelta: 0, Word: 1, Bit: 1}},
					{Node: NodeB, RowBit: devicedb.BitRef{FrameDelta: 0, Word: 2, Bit: 0}, ColBit: devicedb.BitRef{FrameDelta: 0, Word: 2, Bit: 1}},
					{Node: NodeOpen, RowBit: devicedb.BitRef{FrameDelta: 0, Word: 3, Bit: 0}, ColBit: devicedb.BitRef{FrameDelta: 0, Word: 3, Bit: 1}},
				},
			},
		},
		CfgBits: map[devicedb.BitRef]devicedb.CfgBit{
			{FrameDelta: 0, Word: 4, Bit: 0}: {Ref: devicedb.BitRef{FrameDelta: 0, Word: 4, Bit: 0}, Role: devicedb.RoleOther},
		},
	}
	// Row/col bits belonging to routing muxes are folded into CfgBits by
	// the loader's convertTileType; the fixture does the same so
	// ResourceAt resolves them without going through YAML.
	for _, mux := range intType.Muxes {
		for _, in := range mux.Inputs {
			intType.CfgBits[in.RowBit] = devicedb.CfgBit{Ref: in.RowBit, Role: devicedb.RoleMuxRow, Mux: mux.Output}
			intType.CfgBits[in.ColBit] = devicedb.CfgBit{Ref: in.ColBit, Role: devicedb.RoleMuxCol, Mux: mux.Output}
		}
	}

	tileTypes := map[string]*devicedb.TileType{CLBType: clbType, INTType: intType}
	grid := []devicedb.GridTile{
		{Name: CLBTile, Type: CLBType, X: 0, Y: 0, FrameBase: CLBFrameBase},
		{Name: UnplacedTile, Type: CLBType, X: 0, Y: 1, FrameBase: UnplacedFrameBase},
		{Name: INTTile, Type: INTType, X: 1, Y: 0, FrameBase: INTFrameBase},
	}
	return devicedb.New("xc7fixture", 0x03633093, tileTypes, grid)
}

// BaselineBitstream returns the fixture bitstream with NodeA selected
// (its row and column bits both set) and every other configuration bit
// clear.
func BaselineBitstream() *bitstream.Bitstream {
	return BitstreamWithBitsSet(RowA, ColA)
}

// AllInactiveBitstream returns the fixture bitstream with every
// configuration bit clear — no mux input selected.
func AllInactiveBitstream() *bitstream.Bitstream {
	return BitstreamWithBitsSet()
}

// BitstreamWithBitsSet returns a fixture-part bitstream with exactly
// the given coordinates set to 1.
func BitstreamWithBitsSet(coords ...bitcoord.Coord) *bitstream.Bitstream {
	var b bitstreamBuilder
	for _, c := range coords {
		b.set(c, 1)
	}
	return b.build(0x03633093)
}

// PlacedCellName is the cell the design fixture places at (CLBTile,
// Site, Bel).
const PlacedCellName = "builder_state_reg_TMR_1"

// NetAName and NetBName are the two nets the design fixture routes
// through the fixture mux's NodeA and NodeB inputs, respectively.
const (
	NetAName = "decode_to_execute_INSTRUCTION_reg_n_0__TMR_0"
	NetBName = "second_stage_operand_reg_TMR_0"
)

// DesignProvider returns a design.Provider backed entirely by in-memory
// fixture data: one placed cell at the fixture site, and two nets
// routed through the fixture mux's NodeA and NodeB inputs to distinct
// downstream sink cells.
type DesignProvider struct{}

func (DesignProvider) RawCells() ([]design.RawCell, error) {
	return []design.RawCell{
		{Name: PlacedCellName, Tile: CLBTile, Site: Site, Bel: Bel, ResourceType: "LUT6"},
		{Name: "sink_cell_0", Tile: INTTile, Site: "SLICE_X1Y0", Bel: "AFF", ResourceType: "FF"},
		{Name: "sink_cell_1", Tile: INTTile, Site: "SLICE_X2Y0", Bel: "BFF", ResourceType: "FF"},
	}, nil
}

func (DesignProvider) RawNets() ([]design.RawNet, error) {
	return []design.RawNet{
		{
			Name:       NetAName,
			DriverTile: INTTile,
			DriverNode: "A_SOURCE",
			PIPs: []design.PIP{
				{Tile: INTTile, Input: "A_SOURCE", Output: NodeA},
				{Tile: INTTile, Input: NodeA, Output: MuxOut},
			},
			Sinks: []design.RawSink{
				{Tile: INTTile, Node: MuxOut, Cell: "sink_cell_0", Pin: "D"},
			},
		},
		{
			Name:       NetBName,
			DriverTile: INTTile,
			DriverNode: "B_SOURCE",
			PIPs: []design.PIP{
				{Tile: INTTile, Input: "B_SOURCE", Output: NodeB},
			},
			Sinks: []design.RawSink{
				{Tile: INTTile, Node: NodeB, Cell: "sink_cell_1", Pin: "D"},
			},
		},
	}, nil
}

// Model builds the design.Model for DesignProvider directly, for tests
// that want the joined model without calling design.Build themselves.
func Model() (*design.Model, error) {
	return design.Build(DesignProvider{})
}

type bitstreamBuilder struct {
	lines []string
}

func (b *bitstreamBuilder) set(c bitcoord.Coord, v int) {
	if v == 1 {
		b.lines = append(b.lines, c.String())
	}
}

func (b *bitstreamBuilder) build(partID uint32) *bitstream.Bitstream {
	var sb strings.Builder
	sb.WriteString("part_id 0x")
	sb.WriteString(hexPartID(partID))
	sb.WriteString("\n")
	for _, l := range b.lines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	bs, err := bitstream.ParseBits(strings.NewReader(sb.String()))
	if err != nil {
		panic(err)
	}
	return bs
}

func hexPartID(v uint32) string {
	const digits = "0123456789abcdef"
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = digits[v&0xF]
		v >>= 4
	}
	return string(buf)
}
