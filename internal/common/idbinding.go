// Package common holds small, dependency-free helpers shared across the
// device, design, and fault packages.
package common

// NameIDBinding binds a set of names to dense, zero-based integer IDs.
// The design package uses it to intern net names so nets can be
// compared by ID rather than by string.
type NameIDBinding struct {
	distributed int
	nameToID    map[string]int
	idToName    map[int]string
}

// NewNameIDBinding creates an empty binding.
func NewNameIDBinding() *NameIDBinding {
	return &NameIDBinding{
		nameToID: make(map[string]int),
		idToName: make(map[int]string),
	}
}

// Intern returns the ID for name, registering a new one if this is the
// first time name has been seen.
func (b *NameIDBinding) Intern(name string) int {
	if id, ok := b.nameToID[name]; ok {
		return id
	}
	id := b.distributed
	b.nameToID[name] = id
	b.idToName[id] = name
	b.distributed++
	return id
}

// Lookup returns the name registered under id, if any.
func (b *NameIDBinding) Lookup(id int) (string, bool) {
	name, ok := b.idToName[id]
	return name, ok
}

// ID returns the ID already registered for name, if any, without
// registering a new one.
func (b *NameIDBinding) ID(name string) (int, bool) {
	id, ok := b.nameToID[name]
	return id, ok
}

// Len returns the number of distinct names registered so far.
func (b *NameIDBinding) Len() int {
	return b.distributed
}
