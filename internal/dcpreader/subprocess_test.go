package dcpreader_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sarchlab/bitfault/internal/dcpreader"
)

func writeDumpForSubprocess(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.json")
	if err := os.WriteFile(path, []byte(sampleDump), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestSubprocessParsesToolStdout(t *testing.T) {
	s := &dcpreader.Subprocess{
		Command: "sh",
		Args:    []string{"-c", `cat "$0"`},
		DCPPath: writeDumpForSubprocess(t),
	}

	cells, err := s.RawCells()
	if err != nil {
		t.Fatalf("RawCells: %v", err)
	}
	if len(cells) != 1 || cells[0].Name != "reg_0" {
		t.Fatalf("RawCells() = %+v, want one cell named reg_0", cells)
	}

	nets, err := s.RawNets()
	if err != nil {
		t.Fatalf("RawNets: %v", err)
	}
	if len(nets) != 1 || nets[0].Name != "net_a" {
		t.Fatalf("RawNets() = %+v, want one net named net_a", nets)
	}
}

func TestSubprocessWrapsNonZeroExitWithStderr(t *testing.T) {
	s := &dcpreader.Subprocess{
		Command: "sh",
		Args:    []string{"-c", `echo "boom" 1>&2; exit 1`},
		DCPPath: "unused",
	}
	_, err := s.RawCells()
	if err == nil {
		t.Fatal("RawCells on a failing command succeeded, want error")
	}
	if got := err.Error(); !strings.Contains(got, "boom") {
		t.Fatalf("error = %q, want it to include the subprocess's stderr", got)
	}
}

func TestSubprocessRejectsMalformedStdout(t *testing.T) {
	s := &dcpreader.Subprocess{
		Command: "sh",
		Args:    []string{"-c", `echo "not json"`},
		DCPPath: "unused",
	}
	if _, err := s.RawNets(); err == nil {
		t.Fatal("RawNets on malformed stdout succeeded, want error")
	}
}

func TestSubprocessTimesOut(t *testing.T) {
	s := &dcpreader.Subprocess{
		Command: "sh",
		Args:    []string{"-c", "sleep 2"},
		DCPPath: "unused",
		Timeout: 50 * time.Millisecond,
	}
	if _, err := s.RawCells(); err == nil {
		t.Fatal("RawCells on a command exceeding Timeout succeeded, want error")
	}
}
