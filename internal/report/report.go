// Package report renders fault.GroupResult values and stats.Statistics
// into the text report format spec.md §6 specifies: banners, ordered
// sections, per-bit entries, and a statistics footer table.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/bitfault/internal/fault"
	"github.com/sarchlab/bitfault/internal/stats"
)

const bannerWidth = 70

// Write renders the full report — every group in order, then the
// statistics footer — to w.
func Write(w io.Writer, groups []fault.GroupResult, st stats.Statistics) error {
	for _, g := range groups {
		if err := writeGroup(w, g); err != nil {
			return err
		}
	}
	return writeFooter(w, st)
}

func writeGroup(w io.Writer, g fault.GroupResult) error {
	header := fmt.Sprintf("Bit Group %d", g.Index)
	if err := writeBanner(w, header); err != nil {
		return err
	}

	if len(g.Significant) > 0 {
		fmt.Fprintln(w, "Significant Bits")
		fmt.Fprintln(w, strings.Repeat("-", len("Significant Bits")))
		for _, r := range g.Significant {
			writeEntry(w, r)
		}
	}
	if len(g.Undefined) > 0 {
		fmt.Fprintln(w, "Undefined Bits")
		fmt.Fprintln(w, strings.Repeat("-", len("Undefined Bits")))
		for _, r := range g.Undefined {
			writeEntry(w, r)
		}
	}
	if len(g.Errorless) > 0 {
		fmt.Fprintln(w, "Errorless Bits")
		fmt.Fprintln(w, strings.Repeat("-", len("Errorless Bits")))
		for _, r := range g.Errorless {
			writeEntry(w, r)
		}
	}

	pct := 0.0
	if g.BitsTotal > 0 {
		pct = 100 * float64(g.ErrorsFound) / float64(g.BitsTotal)
	}
	fmt.Fprintf(w, "Bits: %d\n", g.BitsTotal)
	fmt.Fprintf(w, "Errors Found: %d (%.1f%%)\n\n", g.ErrorsFound, pct)
	return nil
}

func writeBanner(w io.Writer, title string) error {
	bar := strings.Repeat("=", bannerWidth)
	pad := (bannerWidth - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	centered := strings.Repeat(" ", pad) + title
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n", bar, centered, bar)
	return err
}

func writeEntry(w io.Writer, r fault.Record) {
	fmt.Fprintf(w, "bit_%08x_%03d_%02d (%d->%d)\n", r.Coord.Frame, r.Coord.Word, r.Coord.Bit, r.PrevValue, r.NewValue)

	switch r.Class {
	case fault.ClassSiteInit:
		fmt.Fprintf(w, "  %s/%s.%s %s\n", r.Tile, r.Site, r.Bel, r.Func)
	case fault.ClassMuxRow, fault.ClassMuxCol:
		fmt.Fprintf(w, "  %s %s\n", r.Tile, r.Mux)
	default:
		fmt.Fprintf(w, "  %s\n", r.Tile)
	}

	fmt.Fprintf(w, "  Resource Design Name: %s\n", resourceDesignName(r))
	fmt.Fprintf(w, "  %s\n", faultMessage(r))

	if len(r.PIPs) > 0 {
		fmt.Fprintln(w, "  Affected PIPs:")
		for _, p := range r.PIPs {
			state := "deactivated"
			if p.Activated {
				state = "activated"
			}
			fmt.Fprintf(w, "    %s->%s (%s)\n", p.Input, p.Output, state)
		}
	}

	if len(r.Sinks) > 0 {
		fmt.Fprintln(w, "  Affected Resources:")
		for _, c := range r.Sinks {
			fmt.Fprintf(w, "    %s\n", c)
		}
	}
	if r.Overflowed {
		fmt.Fprintln(w, "  Trace overflow: sink set may be incomplete")
	}

	for _, sel := range selectObjects(r) {
		fmt.Fprintf(w, "  select_objects [%s]\n", sel)
	}

	fmt.Fprintln(w)
}

func resourceDesignName(r fault.Record) string {
	switch {
	case len(r.Cells) > 0:
		return strings.Join(r.Cells, ", ")
	case len(r.Nets) > 0:
		return strings.Join(r.Nets, ", ")
	case r.Reason != "":
		return r.Reason
	default:
		return "-"
	}
}

func faultMessage(r fault.Record) string {
	switch r.Kind {
	case fault.KindCLBAltered:
		return fmt.Sprintf("%s bit altered for %s", initIndex(r), strings.Join(r.Cells, ", "))
	case fault.KindPipOpen:
		return fmt.Sprintf("Opens created for net(s): %s", strings.Join(r.Nets, ", "))
	case fault.KindPipShort:
		names := append([]string{}, r.Nets...)
		for _, u := range r.UnconnectedNodes {
			names = append(names, fmt.Sprintf("Unconnected Node(%s)", u))
		}
		return fmt.Sprintf("Shorts formed between net(s): %s", strings.Join(names, ", "))
	default:
		if r.Reason != "" {
			return r.Reason
		}
		return r.Class.String()
	}
}

func initIndex(r fault.Record) string {
	if r.Func == "" {
		return fmt.Sprintf("INIT[%02d]", r.Coord.Bit)
	}
	return r.Func
}

func selectObjects(r fault.Record) []string {
	var out []string
	if len(r.Cells) > 0 {
		out = append(out, strings.Join(r.Cells, " "))
	}
	if len(r.Nets) > 0 {
		out = append(out, strings.Join(r.Nets, " "))
	}
	return out
}

func writeFooter(w io.Writer, st stats.Statistics) error {
	fmt.Fprintln(w, "Statistics")
	fmt.Fprintln(w, "----------")

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Groups Evaluated", st.GroupsEvaluated},
		{"Groups With Significant Bit", st.GroupsWithSignificant},
		{"Bits Evaluated", st.BitsEvaluated},
		{"Significant Bits", st.SignificantBits},
		{"Undefined Bits", st.UndefinedBits},
		{"Unknown Bits", st.UnknownBits},
		{"Errorless Bits", st.ErrorlessBits},
		{"CLB Altered", st.CLBAltered},
		{"Pip Open", st.PipOpen},
		{"Pip Short", st.PipShort},
		{"Routing", st.Routing},
		{"CLB", st.CLB},
		{"Unsupported", st.Unsupported},
		{"Unknown", st.Unknown},
		{"0 -> 1 Flips", st.ZeroToOne},
		{"1 -> 0 Flips", st.OneToZero},
		{"Overflowed Traces", st.OverflowedTraces},
	})
	t.Render()
	return nil
}
