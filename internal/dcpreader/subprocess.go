package dcpreader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/sarchlab/bitfault/internal/design"
)

// Subprocess drives an external EDA tool (e.g. a Vivado Tcl batch
// script) that reads a .dcp and emits the intermediate JSON schema on
// stdout. It shares no state with Native: each instance owns its own
// cached dump.
type Subprocess struct {
	// Command is the executable to run; Args are passed as-is, with
	// DCPPath appended as the final argument.
	Command string
	Args    []string
	DCPPath string
	Timeout time.Duration

	once    sync.Once
	cached  dump
	loadErr error
}

var _ design.Provider = (*Subprocess)(nil)

func (s *Subprocess) load() (dump, error) {
	s.once.Do(func() {
		timeout := s.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		args := append(append([]string{}, s.Args...), s.DCPPath)
		cmd := exec.CommandContext(ctx, s.Command, args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			s.loadErr = fmt.Errorf("dcpreader: running %s: %w: %s", s.Command, err, stderr.String())
			return
		}
		if err := json.Unmarshal(stdout.Bytes(), &s.cached); err != nil {
			s.loadErr = fmt.Errorf("dcpreader: parsing %s output: %w", s.Command, err)
		}
	})
	return s.cached, s.loadErr
}

// RawCells implements design.Provider.
func (s *Subprocess) RawCells() ([]design.RawCell, error) {
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return d.rawCells(), nil
}

// RawNets implements design.Provider.
func (s *Subprocess) RawNets() ([]design.RawNet, error) {
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return d.rawNets(), nil
}
