package design_test

import (
	"testing"

	"github.com/sarchlab/bitfault/internal/design"
	"github.com/sarchlab/bitfault/internal/fixtures"
)

func TestBuildIndexesCellsAndNets(t *testing.T) {
	dm, err := fixtures.Model()
	if err != nil {
		t.Fatalf("fixtures.Model: %v", err)
	}

	cell, ok := dm.CellAt(fixtures.CLBTile, fixtures.Site, fixtures.Bel)
	if !ok || cell.Name != fixtures.PlacedCellName {
		t.Fatalf("CellAt(placed site) = (%v, %v), want (%s, true)", cell, ok, fixtures.PlacedCellName)
	}

	if _, ok := dm.CellAt(fixtures.UnplacedTile, fixtures.Site, fixtures.Bel); ok {
		t.Fatal("CellAt(unplaced tile/site) reported found")
	}

	byName, ok := dm.CellByName(fixtures.PlacedCellName)
	if !ok || byName != cell {
		t.Fatalf("CellByName(%s) = (%v, %v), want the same cell", fixtures.PlacedCellName, byName, ok)
	}

	net, ok := dm.NetByName(fixtures.NetAName)
	if !ok || net.Name != fixtures.NetAName {
		t.Fatalf("NetByName(%s) = (%v, %v)", fixtures.NetAName, net, ok)
	}

	nets := dm.Nets()
	if len(nets) != 2 {
		t.Fatalf("len(Nets()) = %d, want 2", len(nets))
	}
	if nets[0] > nets[1] {
		t.Fatalf("Nets() = %v, want ascending sorted order", nets)
	}
}

func TestNetDrivingAndSinkingNode(t *testing.T) {
	dm, err := fixtures.Model()
	if err != nil {
		t.Fatalf("fixtures.Model: %v", err)
	}

	net, ok := dm.NetDrivingNode(fixtures.INTTile, fixtures.NodeA)
	if !ok || net.Name != fixtures.NetAName {
		t.Fatalf("NetDrivingNode(NodeA) = (%v, %v), want (%s, true)", net, ok, fixtures.NetAName)
	}

	if _, ok := dm.NetDrivingNode(fixtures.INTTile, fixtures.NodeOpen); ok {
		t.Fatal("NetDrivingNode(NodeOpen) reported found, want not found (never driven)")
	}

	sinking, ok := dm.NetSinkingNode(fixtures.INTTile, fixtures.NodeB)
	if !ok || sinking.Name != fixtures.NetBName {
		t.Fatalf("NetSinkingNode(NodeB) = (%v, %v), want (%s, true)", sinking, ok, fixtures.NetBName)
	}

	if _, ok := dm.NetSinkingNode(fixtures.INTTile, fixtures.NodeOpen); ok {
		t.Fatal("NetSinkingNode(NodeOpen) reported found, want not found")
	}
}

func TestNetThroughPIP(t *testing.T) {
	dm, err := fixtures.Model()
	if err != nil {
		t.Fatalf("fixtures.Model: %v", err)
	}

	net, ok := dm.NetThroughPIP(fixtures.INTTile, fixtures.NodeA, fixtures.MuxOut)
	if !ok || net.Name != fixtures.NetAName {
		t.Fatalf("NetThroughPIP(NodeA->MuxOut) = (%v, %v), want (%s, true)", net, ok, fixtures.NetAName)
	}

	if _, ok := dm.NetThroughPIP(fixtures.INTTile, fixtures.NodeB, fixtures.MuxOut); ok {
		t.Fatal("NetThroughPIP(NodeB->MuxOut) reported found, want not found (net_b never routes through this pip)")
	}
}

func TestNetIDInterning(t *testing.T) {
	dm, err := fixtures.Model()
	if err != nil {
		t.Fatalf("fixtures.Model: %v", err)
	}

	if dm.NetCount() != 2 {
		t.Fatalf("NetCount() = %d, want 2", dm.NetCount())
	}

	idA, ok := dm.NetID(fixtures.NetAName)
	if !ok {
		t.Fatalf("NetID(%s) not found", fixtures.NetAName)
	}
	idB, ok := dm.NetID(fixtures.NetBName)
	if !ok {
		t.Fatalf("NetID(%s) not found", fixtures.NetBName)
	}
	if idA == idB {
		t.Fatal("distinct nets interned to the same ID")
	}

	if _, ok := dm.NetID("no_such_net"); ok {
		t.Fatal("NetID on an unknown net reported found")
	}
}

func TestBuildPropagatesProviderErrors(t *testing.T) {
	if _, err := design.Build(erroringProvider{}); err == nil {
		t.Fatal("Build with a failing provider succeeded, want error")
	}
}

type erroringProvider struct{}

func (erroringProvider) RawCells() ([]design.RawCell, error) {
	return nil, errBoom
}

func (erroringProvider) RawNets() ([]design.RawNet, error) {
	return nil, errBoom
}

var errBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }
