package bitcoord_test

import (
	"sort"
	"testing"

	"github.com/sarchlab/bitfault/internal/bitcoord"
)

func TestStringRoundTrip(t *testing.T) {
	c := bitcoord.Coord{Frame: 0x00402b22, Word: 7, Bit: 15}
	want := "bit_00402b22_007_15"
	if got := c.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	parsed, err := bitcoord.ParseLine(want)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if parsed != c {
		t.Fatalf("ParseLine(%q) = %+v, want %+v", want, parsed, c)
	}
}

func TestParseTripleRejectsBadInput(t *testing.T) {
	cases := []struct{ frame, word, bit string }{
		{"zz", "007", "15"},
		{"00402b22", "aa", "15"},
		{"00402b22", "007", ""},
	}
	for _, c := range cases {
		if _, err := bitcoord.ParseTriple(c.frame, c.word, c.bit); err == nil {
			t.Errorf("ParseTriple(%q,%q,%q) succeeded, want error", c.frame, c.word, c.bit)
		}
	}
}

func TestParseLineRejectsMalformed(t *testing.T) {
	cases := []string{"", "nope", "bit_007_15", "bit_00402b22_007"}
	for _, line := range cases {
		if _, err := bitcoord.ParseLine(line); err == nil {
			t.Errorf("ParseLine(%q) succeeded, want error", line)
		}
	}
}

func TestByOrderSortsAscending(t *testing.T) {
	coords := bitcoord.ByOrder{
		{Frame: 2, Word: 0, Bit: 0},
		{Frame: 1, Word: 5, Bit: 0},
		{Frame: 1, Word: 0, Bit: 9},
		{Frame: 1, Word: 0, Bit: 0},
	}
	sort.Sort(coords)

	want := bitcoord.ByOrder{
		{Frame: 1, Word: 0, Bit: 0},
		{Frame: 1, Word: 0, Bit: 9},
		{Frame: 1, Word: 5, Bit: 0},
		{Frame: 2, Word: 0, Bit: 0},
	}
	for i := range want {
		if coords[i] != want[i] {
			t.Fatalf("sorted[%d] = %+v, want %+v", i, coords[i], want[i])
		}
	}
}
