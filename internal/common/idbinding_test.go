package common_test

import (
	"testing"

	"github.com/sarchlab/bitfault/internal/common"
)

func TestInternIsStableAndDense(t *testing.T) {
	b := common.NewNameIDBinding()

	first := b.Intern("net_a")
	second := b.Intern("net_b")
	again := b.Intern("net_a")

	if again != first {
		t.Fatalf("Intern(net_a) second call = %d, want %d (stable)", again, first)
	}
	if first == second {
		t.Fatal("distinct names interned to the same ID")
	}
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
}

func TestLookupAndID(t *testing.T) {
	b := common.NewNameIDBinding()
	id := b.Intern("net_a")

	name, ok := b.Lookup(id)
	if !ok || name != "net_a" {
		t.Fatalf("Lookup(%d) = (%q, %v), want (\"net_a\", true)", id, name, ok)
	}

	gotID, ok := b.ID("net_a")
	if !ok || gotID != id {
		t.Fatalf("ID(net_a) = (%d, %v), want (%d, true)", gotID, ok, id)
	}

	if _, ok := b.ID("never_interned"); ok {
		t.Fatal("ID on a never-interned name reported ok = true")
	}
	if _, ok := b.Lookup(999); ok {
		t.Fatal("Lookup on an unused ID reported ok = true")
	}
}
