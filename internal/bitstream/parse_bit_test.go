package bitstream_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/sarchlab/bitfault/internal/bitcoord"
	"github.com/sarchlab/bitfault/internal/bitstream"
)

// buildRawBit assembles a minimal, container-free 7-Series configuration
// stream: sync word, an IDCODE write, a FAR write, and a single
// type-1 FDRI write carrying exactly one frame's worth of data.
func buildRawBit(t *testing.T, idcode, frame uint32, frameWords []uint32) []byte {
	t.Helper()
	if len(frameWords) != bitstream.FrameWordCount {
		t.Fatalf("frameWords has %d words, want %d", len(frameWords), bitstream.FrameWordCount)
	}

	const (
		type1     = uint32(1) << 29
		opWrite   = uint32(2) << 27
		regIDCODE = uint32(0x0C) << 13
		regFAR    = uint32(0x01) << 13
		regFDRI   = uint32(0x02) << 13
	)

	var words []uint32
	words = append(words, 0xAA995566) // sync
	words = append(words, type1|opWrite|regIDCODE|1, idcode)
	words = append(words, type1|opWrite|regFAR|1, frame)
	words = append(words, type1|opWrite|regFDRI|uint32(bitstream.FrameWordCount))
	words = append(words, frameWords...)

	var buf bytes.Buffer
	for _, w := range words {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], w)
		buf.Write(b[:])
	}
	return buf.Bytes()
}

func TestParseBitReadsIDCodeAndFrameData(t *testing.T) {
	frameWords := make([]uint32, bitstream.FrameWordCount)
	frameWords[0] = 1 // bit 0 of word 0 set

	raw := buildRawBit(t, 0x03633093, 0x00001000, frameWords)
	bs, err := bitstream.ParseBit(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseBit: %v", err)
	}

	if bs.PartID() != 0x03633093 {
		t.Fatalf("PartID() = %#x, want 0x03633093", bs.PartID())
	}
	if !bs.WrittenFrame(0x1000) {
		t.Fatal("WrittenFrame(0x1000) = false, want true")
	}
	if bs.Get(bitcoord.Coord{Frame: 0x1000, Word: 0, Bit: 0}) != 1 {
		t.Fatal("Get(frame 0x1000, word 0, bit 0) = 0, want 1")
	}
	if bs.Get(bitcoord.Coord{Frame: 0x1000, Word: 0, Bit: 1}) != 0 {
		t.Fatal("Get(frame 0x1000, word 0, bit 1) = 1, want 0 (never set)")
	}
}

func TestParseBitRejectsMissingSyncWord(t *testing.T) {
	raw := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	if _, err := bitstream.ParseBit(bytes.NewReader(raw)); err == nil {
		t.Fatal("ParseBit without a sync word succeeded, want error")
	}
}
