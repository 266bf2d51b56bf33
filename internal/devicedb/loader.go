package devicedb

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlParts is the root/parts.yaml document: part name -> IDCODE.
type yamlParts struct {
	Parts map[string]string `yaml:"parts"`
}

// yamlTilegrid is the root/<part>/tilegrid.yaml document.
type yamlTilegrid struct {
	Tiles []yamlGridTile `yaml:"tiles"`
}

type yamlGridTile struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	FrameBase string `yaml:"frame_base"`
}

// yamlTileType is the root/<part>/tile_types/<type>.yaml document.
type yamlTileType struct {
	Name         string          `yaml:"name"`
	SiteTypes    []string        `yaml:"site_types"`
	CfgBits      []yamlCfgBit    `yaml:"cfg_bits"`
	RoutingMuxes []yamlMux       `yaml:"routing_muxes"`
}

type yamlCfgBit struct {
	FrameDelta int    `yaml:"frame_delta"`
	Word       int    `yaml:"word"`
	Bit        int    `yaml:"bit"`
	Role       string `yaml:"role"` // "site_init" | "other"
	Site       string `yaml:"site"`
	Bel        string `yaml:"bel"`
	Func       string `yaml:"func"`
}

type yamlMux struct {
	Output string         `yaml:"output"`
	Inputs []yamlMuxInput `yaml:"inputs"`
}

type yamlMuxInput struct {
	Node   string     `yaml:"node"`
	RowBit yamlBitRef `yaml:"row_bit"`
	ColBit yamlBitRef `yaml:"col_bit"`
}

type yamlBitRef struct {
	FrameDelta int `yaml:"frame_delta"`
	Word       int `yaml:"word"`
	Bit        int `yaml:"bit"`
}

func (r yamlBitRef) toBitRef() BitRef {
	return BitRef{FrameDelta: r.FrameDelta, Word: r.Word, Bit: r.Bit}
}

// Load reads the device database tree rooted at dbRoot for part, and
// returns the immutable, queryable DeviceDB. It fails with
// ErrUnsupportedPart if dbRoot/parts.yaml has no entry for part, or if
// the part's own subdirectory is missing.
func Load(dbRoot, part string) (*DeviceDB, error) {
	idcode, err := loadPartIDCode(dbRoot, part)
	if err != nil {
		return nil, err
	}

	partDir := filepath.Join(dbRoot, part)
	if info, err := os.Stat(partDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("devicedb: %w: no database directory for %q", ErrUnsupportedPart, part)
	}

	grid, frameAddrs, err := loadTilegrid(partDir)
	if err != nil {
		return nil, err
	}

	tileTypes, err := loadTileTypes(partDir)
	if err != nil {
		return nil, err
	}

	db := New(part, idcode, tileTypes, grid)
	db.frameAddrs = frameAddrs
	return db, nil
}

// PartForIDCode resolves a bitstream's reported IDCODE to a part name by
// scanning dbRoot/parts.yaml. It is the join spec.md §4.2 needs between
// Bitstream.part_id() and DeviceDB.Load(part_name).
func PartForIDCode(dbRoot string, idcode uint32) (string, error) {
	parts, err := readParts(dbRoot)
	if err != nil {
		return "", err
	}
	for name, code := range parts {
		if code == idcode {
			return name, nil
		}
	}
	return "", fmt.Errorf("devicedb: %w: no part registered for idcode 0x%08x", ErrUnsupportedPart, idcode)
}

func readParts(dbRoot string) (map[string]uint32, error) {
	raw, err := os.ReadFile(filepath.Join(dbRoot, "parts.yaml"))
	if err != nil {
		return nil, fmt.Errorf("devicedb: reading parts.yaml: %w", err)
	}
	var doc yamlParts
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("devicedb: parsing parts.yaml: %w", err)
	}
	out := make(map[string]uint32, len(doc.Parts))
	for name, hex := range doc.Parts {
		var code uint32
		if _, err := fmt.Sscanf(hex, "0x%x", &code); err != nil {
			return nil, fmt.Errorf("devicedb: parts.yaml: part %q has invalid idcode %q: %w", name, hex, err)
		}
		out[name] = code
	}
	return out, nil
}

func loadPartIDCode(dbRoot, part string) (uint32, error) {
	parts, err := readParts(dbRoot)
	if err != nil {
		return 0, err
	}
	code, ok := parts[part]
	if !ok {
		return 0, fmt.Errorf("devicedb: %w: %q not listed in parts.yaml", ErrUnsupportedPart, part)
	}
	return code, nil
}

func loadTilegrid(partDir string) ([]GridTile, map[uint32]struct{}, error) {
	raw, err := os.ReadFile(filepath.Join(partDir, "tilegrid.yaml"))
	if err != nil {
		return nil, nil, fmt.Errorf("devicedb: reading tilegrid.yaml: %w", err)
	}
	var doc yamlTilegrid
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("devicedb: parsing tilegrid.yaml: %w", err)
	}

	grid := make([]GridTile, 0, len(doc.Tiles))
	frameAddrs := make(map[uint32]struct{})
	for _, t := range doc.Tiles {
		var base uint32
		if _, err := fmt.Sscanf(t.FrameBase, "0x%x", &base); err != nil {
			return nil, nil, fmt.Errorf("devicedb: tile %q has invalid frame_base %q: %w", t.Name, t.FrameBase, err)
		}
		grid = append(grid, GridTile{Name: t.Name, Type: t.Type, X: t.X, Y: t.Y, FrameBase: base})
		frameAddrs[base] = struct{}{}
	}
	return grid, frameAddrs, nil
}

func loadTileTypes(partDir string) (map[string]*TileType, error) {
	dir := filepath.Join(partDir, "tile_types")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("devicedb: reading tile_types: %w", err)
	}

	tileTypes := make(map[string]*TileType, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("devicedb: reading tile type %q: %w", e.Name(), err)
		}
		var doc yamlTileType
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("devicedb: parsing tile type %q: %w", e.Name(), err)
		}
		tileTypes[doc.Name] = convertTileType(doc)
	}
	return tileTypes, nil
}

func convertTileType(doc yamlTileType) *TileType {
	t := &TileType{
		Name:      doc.Name,
		SiteTypes: doc.SiteTypes,
		CfgBits:   make(map[BitRef]CfgBit, len(doc.CfgBits)),
	}

	for _, cb := range doc.CfgBits {
		ref := BitRef{FrameDelta: cb.FrameDelta, Word: cb.Word, Bit: cb.Bit}
		role := RoleOther
		if cb.Role == "site_init" {
			role = RoleSiteInit
		}
		t.CfgBits[ref] = CfgBit{
			Ref:  ref,
			Role: role,
			Site: cb.Site,
			Bel:  cb.Bel,
			Func: cb.Func,
		}
	}

	for _, m := range doc.RoutingMuxes {
		mux := RoutingMux{Output: m.Output}
		for _, in := range m.Inputs {
			rowRef := in.RowBit.toBitRef()
			colRef := in.ColBit.toBitRef()
			mux.Inputs = append(mux.Inputs, MuxInput{Node: in.Node, RowBit: rowRef, ColBit: colRef})
			t.CfgBits[rowRef] = CfgBit{Ref: rowRef, Role: RoleMuxRow, Mux: m.Output}
			t.CfgBits[colRef] = CfgBit{Ref: colRef, Role: RoleMuxCol, Mux: m.Output}
		}
		t.Muxes = append(t.Muxes, mux)
	}

	return t
}
