// Package faultlist parses the fault bit list input of spec.md §6: a
// JSON document listing ordered bit groups, each an ordered list of
// 3-element [frame_hex, word_decimal, bit_decimal] triples.
//
// No third-party JSON library appears anywhere in the example pack, so
// this package uses encoding/json directly (see DESIGN.md).
package faultlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/bitfault/internal/bitcoord"
	"github.com/sarchlab/bitfault/internal/fault"
)

// ErrMalformedInput is returned for any fault bit list that does not
// parse as the documented shape.
var ErrMalformedInput = errors.New("faultlist: malformed input")

// Parse reads a fault bit list from r and returns it as ordered bit
// groups, preserving input order throughout (spec.md §5's ordering
// requirement starts here).
func Parse(r io.Reader) ([]fault.Group, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("faultlist: reading input: %w", err)
	}

	var groups [][][3]string
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	out := make([]fault.Group, 0, len(groups))
	for gi, g := range groups {
		group := make(fault.Group, 0, len(g))
		for bi, triple := range g {
			c, err := bitcoord.ParseTriple(triple[0], triple[1], triple[2])
			if err != nil {
				return nil, fmt.Errorf("%w: group %d bit %d: %v", ErrMalformedInput, gi, bi, err)
			}
			group = append(group, c)
		}
		out = append(out, group)
	}
	return out, nil
}
