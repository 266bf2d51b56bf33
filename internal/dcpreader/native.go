package dcpreader

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sarchlab/bitfault/internal/design"
)

// Native reads a design checkpoint dump that has already been
// exported to the intermediate JSON schema on disk — no subprocess
// involved, no shared state with Subprocess.
type Native struct {
	Path string

	once   sync.Once
	cached dump
	loadErr error
}

var _ design.Provider = (*Native)(nil)

func (n *Native) load() (dump, error) {
	n.once.Do(func() {
		raw, err := os.ReadFile(n.Path)
		if err != nil {
			n.loadErr = fmt.Errorf("dcpreader: reading %s: %w", n.Path, err)
			return
		}
		if err := json.Unmarshal(raw, &n.cached); err != nil {
			n.loadErr = fmt.Errorf("dcpreader: parsing %s: %w", n.Path, err)
		}
	})
	return n.cached, n.loadErr
}

// RawCells implements design.Provider.
func (n *Native) RawCells() ([]design.RawCell, error) {
	d, err := n.load()
	if err != nil {
		return nil, err
	}
	return d.rawCells(), nil
}

// RawNets implements design.Provider.
func (n *Native) RawNets() ([]design.RawNet, error) {
	d, err := n.load()
	if err != nil {
		return nil, err
	}
	return d.rawNets(), nil
}
