package bitstream

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/bitfault/internal/bitcoord"
)

// ParseBits parses the pre-decoded textual .bits form: one
// bit_<frame_hex>_<word_decimal>_<bit_decimal> line per set bit, sorted
// ascending, per spec.md §6. An optional leading "part_id 0x..." line
// supplies the part IDCODE; it is not required by every producer, so its
// absence is not an error.
//
// Because a .bits listing only records set bits, a frame that is fully
// zero never appears in it; WrittenFrame therefore only reports true for
// frames that had at least one set bit, and IsDefinedFrameIn (which
// requires WrittenFrame) reports false for an all-zero frame as well.
// ParseBitsWithFrames seeds the written-frame set explicitly.
func ParseBits(r io.Reader) (*Bitstream, error) {
	return ParseBitsWithFrames(r, nil)
}

// ParseBitsWithFrames is ParseBits, additionally marking every frame in
// knownFrames as written even if none of its bits happened to be set.
func ParseBitsWithFrames(r io.Reader, knownFrames []uint32) (*Bitstream, error) {
	b := &Bitstream{
		bits:          make(map[bitcoord.Coord]struct{}),
		writtenFrames: make(map[uint32]struct{}),
	}
	for _, f := range knownFrames {
		b.writtenFrames[f] = struct{}{}
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "part_id") {
			fields := strings.Fields(line)
			if len(fields) != 2 {
				return nil, fmt.Errorf("bitstream: .bits line %d: malformed part_id line %q", lineNo, line)
			}
			id, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
			if err != nil {
				return nil, fmt.Errorf("bitstream: .bits line %d: invalid part_id %q: %w", lineNo, fields[1], err)
			}
			b.partID = uint32(id)
			continue
		}

		c, err := bitcoord.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("bitstream: .bits line %d: %w", lineNo, err)
		}
		b.bits[c] = struct{}{}
		b.writtenFrames[c.Frame] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bitstream: reading .bits: %w", err)
	}
	return b, nil
}
