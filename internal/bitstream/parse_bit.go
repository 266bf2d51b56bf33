package bitstream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sarchlab/bitfault/internal/bitcoord"
)

// syncWord is the 7-Series configuration sync word.
const syncWord uint32 = 0xAA995566

// Register addresses used by the handful of configuration packets this
// parser cares about (UG470 Table 5-23).
const (
	regFAR    = 0x01
	regFDRI   = 0x02
	regIDCODE = 0x0C
)

const (
	opNOP   = 0x0
	opRead  = 0x1
	opWrite = 0x2
)

// ParseBit parses a raw 7-Series configuration bitstream: an optional
// .bit container header (design name/part/date/time fields), the sync
// word, and a type-1/type-2 packet stream that writes frame data to
// FDRI, per spec.md §4.2 and §6.
//
// Frame-address auto-increment follows a simplified model: the value
// written to FAR is treated as an opaque address
// that increments by one after each full frame write, rather than
// reproducing the Series-7 block/row/column/minor encoding. DeviceDB's
// per-tile FrameBase values are expected to be expressed in that same
// address space.
func ParseBit(r io.Reader) (*Bitstream, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("bitstream: reading .bit: %w", err)
	}

	payload := stripContainerHeader(raw)
	words := toWords(payload)

	start := findSync(words)
	if start < 0 {
		return nil, fmt.Errorf("bitstream: sync word not found")
	}

	b := &Bitstream{
		bits:          make(map[bitcoord.Coord]struct{}),
		writtenFrames: make(map[uint32]struct{}),
	}

	p := &packetReader{words: words, pos: start}
	state := &parseState{}
	for p.pos < len(p.words) {
		header, ok := p.next()
		if !ok {
			break
		}
		ptype := header >> 29
		switch ptype {
		case 0x1: // Type 1
			opcode := (header >> 27) & 0x3
			reg := (header >> 13) & 0x3FFF
			wordCount := header & 0x7FF
			data := p.take(wordCount)
			state.lastReg = reg
			state.lastOpcode = opcode
			if opcode == opWrite {
				applyWrite(b, state, reg, data)
			}
		case 0x2: // Type 2 — continuation of the previous Type 1 header
			wordCount := header & 0x07FFFFFF
			data := p.take(wordCount)
			if state.lastOpcode == opWrite {
				applyWrite(b, state, state.lastReg, data)
			}
		default:
			// Unrecognized packet type; skip a single word defensively
			// rather than looping forever on malformed input.
		}
	}

	b.partID = state.idcode
	return b, nil
}

type parseState struct {
	idcode       uint32
	currentFrame uint32
	haveFrame    bool
	lastReg      uint32
	lastOpcode   uint32
}

func applyWrite(b *Bitstream, st *parseState, reg uint32, data []uint32) {
	switch reg {
	case regIDCODE:
		if len(data) > 0 {
			st.idcode = data[0]
		}
	case regFAR:
		if len(data) > 0 {
			st.currentFrame = data[0]
			st.haveFrame = true
		}
	case regFDRI:
		fillFrames(b, st, data)
	}
}

// fillFrames consumes data FrameWordCount words at a time, writing each
// group into the current frame and then auto-incrementing.
func fillFrames(b *Bitstream, st *parseState, data []uint32) {
	if !st.haveFrame {
		return
	}
	for i := 0; i < len(data); i += FrameWordCount {
		end := i + FrameWordCount
		if end > len(data) {
			end = len(data)
		}
		frame := st.currentFrame
		b.writtenFrames[frame] = struct{}{}
		for w := i; w < end; w++ {
			word := data[w]
			if word == 0 {
				continue
			}
			wordIdx := uint8(w - i)
			for bit := 0; bit < 32; bit++ {
				if word&(1<<uint(bit)) != 0 {
					b.bits[bitcoord.Coord{Frame: frame, Word: wordIdx, Bit: uint8(bit)}] = struct{}{}
				}
			}
		}
		st.currentFrame++
	}
}

type packetReader struct {
	words []uint32
	pos   int
}

func (p *packetReader) next() (uint32, bool) {
	if p.pos >= len(p.words) {
		return 0, false
	}
	w := p.words[p.pos]
	p.pos++
	return w, true
}

func (p *packetReader) take(n uint32) []uint32 {
	out := make([]uint32, 0, n)
	for i := uint32(0); i < n; i++ {
		w, ok := p.next()
		if !ok {
			break
		}
		out = append(out, w)
	}
	return out
}

func toWords(b []byte) []uint32 {
	n := len(b) / 4
	words := make([]uint32, n)
	for i := 0; i < n; i++ {
		words[i] = binary.BigEndian.Uint32(b[i*4:])
	}
	return words
}

func findSync(words []uint32) int {
	for i, w := range words {
		if w == syncWord {
			return i + 1
		}
	}
	return -1
}

// stripContainerHeader removes the standard .bit file container (a/b/c/d
// tagged metadata fields followed by an 'e'-tagged raw-bitstream length
// and payload). If the container framing isn't recognized, data is
// assumed to already be the raw bitstream.
func stripContainerHeader(data []byte) []byte {
	i := 0
	for i < len(data) {
		tag := data[i]
		switch tag {
		case 'a', 'b', 'c', 'd':
			i++
			if i+2 > len(data) {
				return data
			}
			length := int(data[i])<<8 | int(data[i+1])
			i += 2
			i += length
		case 'e':
			i++
			if i+4 > len(data) {
				return data
			}
			length := int(binary.BigEndian.Uint32(data[i : i+4]))
			i += 4
			if i+length <= len(data) {
				return data[i : i+length]
			}
			return data[i:]
		default:
			return data
		}
	}
	return data
}
