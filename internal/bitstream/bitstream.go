// Package bitstream parses a placed-and-routed 7-Series bitstream — either
// a raw binary .bit file or a pre-decoded textual .bits listing — into a
// queryable (frame, word, bit) -> {0,1} mapping, per spec.md §4.2.
package bitstream

import (
	"fmt"
	"io"
	"sort"

	"github.com/sarchlab/bitfault/internal/bitcoord"
)

// FrameWordCount is the number of 32-bit words in a single 7-Series
// configuration frame.
const FrameWordCount = 101

// Bitstream is the immutable, parsed configuration-memory contents of a
// design. It answers two questions: what value a bit currently holds,
// and whether the frame it lives in is one the configuration stream
// actually wrote.
type Bitstream struct {
	partID        uint32
	bits          map[bitcoord.Coord]struct{}
	writtenFrames map[uint32]struct{}
}

// PartID returns the IDCODE reported by the bitstream (from its IDCODE
// packet, or from an explicit part_id line in a .bits file).
func (b *Bitstream) PartID() uint32 { return b.partID }

// Get returns the current value (0 or 1) of a configuration bit. Any
// coordinate never explicitly set reads as 0, per spec.md §4.2.
func (b *Bitstream) Get(c bitcoord.Coord) int {
	if _, ok := b.bits[c]; ok {
		return 1
	}
	return 0
}

// WrittenFrame reports whether the configuration stream targeted frame
// at all (independent of whether the device database lists it).
func (b *Bitstream) WrittenFrame(frame uint32) bool {
	_, ok := b.writtenFrames[frame]
	return ok
}

// IsDefinedFrameIn reports whether frame is defined for the given
// database: written by the configuration stream AND listed by the
// database for the part, per spec.md §4.2. The join is split this way
// (rather than baked into Bitstream) so Bitstream never needs to import
// devicedb.
func (b *Bitstream) IsDefinedFrameIn(frame uint32, dbKnown func(uint32) bool) bool {
	return b.WrittenFrame(frame) && dbKnown(frame)
}

// SetBits returns every set bit, sorted ascending by (frame, word, bit).
func (b *Bitstream) SetBits() []bitcoord.Coord {
	out := make([]bitcoord.Coord, 0, len(b.bits))
	for c := range b.bits {
		out = append(out, c)
	}
	sort.Sort(bitcoord.ByOrder(out))
	return out
}

// EncodeBits writes the .bits textual round-trip form: one
// bit_<frame>_<word>_<bit> line per set bit, sorted ascending, matching
// spec.md §6 and the round-trip property of spec.md §8.
func (b *Bitstream) EncodeBits(w io.Writer) error {
	for _, c := range b.SetBits() {
		if _, err := fmt.Fprintln(w, c.String()); err != nil {
			return fmt.Errorf("bitstream: writing .bits line: %w", err)
		}
	}
	return nil
}

// withFlips returns a new Bitstream with the given coordinates XORed
// against their current value. It never mutates b, and writtenFrames is
// shared (flips never change which frames are written).
func (b *Bitstream) withFlips(coords []bitcoord.Coord) *Bitstream {
	flipped := &Bitstream{
		partID:        b.partID,
		bits:          make(map[bitcoord.Coord]struct{}, len(b.bits)+len(coords)),
		writtenFrames: b.writtenFrames,
	}
	for c := range b.bits {
		flipped.bits[c] = struct{}{}
	}
	for _, c := range coords {
		if _, ok := flipped.bits[c]; ok {
			delete(flipped.bits, c)
		} else {
			flipped.bits[c] = struct{}{}
		}
	}
	return flipped
}

// WithFlips returns a new Bitstream, a copy of the set bits with the
// given bits toggled, without mutating the original — the flipped view
// tilemap.TileMap.WithFlips builds on top of.
func (b *Bitstream) WithFlips(coords []bitcoord.Coord) *Bitstream {
	return b.withFlips(coords)
}
