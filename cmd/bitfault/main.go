// Command bitfault evaluates a fault bit list against a bitstream and
// routed design checkpoint, classifying each flipped bit and emitting
// a text fault report with a trailing statistics table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/bitfault/internal/bitstream"
	"github.com/sarchlab/bitfault/internal/config"
	"github.com/sarchlab/bitfault/internal/dcpreader"
	"github.com/sarchlab/bitfault/internal/design"
	"github.com/sarchlab/bitfault/internal/devicedb"
	"github.com/sarchlab/bitfault/internal/fault"
	"github.com/sarchlab/bitfault/internal/faultlist"
	"github.com/sarchlab/bitfault/internal/logging"
	"github.com/sarchlab/bitfault/internal/report"
	"github.com/sarchlab/bitfault/internal/stats"
	"github.com/sarchlab/bitfault/internal/tilemap"
)

func main() {
	deviceDB := flag.String("device-db", "", "path to the device database root")
	part := flag.String("part", "", "part name, or empty to resolve from the bitstream IDCODE")
	bitstreamPath := flag.String("bitstream", "", "path to a .bit or .bits file")
	faultListPath := flag.String("faultlist", "", "path to the fault bit list JSON document")
	dcpPath := flag.String("dcp", "", "path to a pre-exported design checkpoint dump")
	configPath := flag.String("config", "", "optional YAML file supplying values for the flags above; flags set to a non-zero value take precedence")
	outPath := flag.String("out", "", "report output path, or empty for stdout")
	parallelism := flag.Int("parallelism", 0, "number of bit groups evaluated concurrently (values <= 1 evaluate sequentially)")
	verbose := flag.Bool("verbose", false, "enable trace-level logging")
	flag.Parse()

	logging.Setup(slog.LevelInfo, *verbose)

	fileCfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	cfg := fileCfg.Override(config.RunConfig{
		DeviceDB:    *deviceDB,
		Part:        *part,
		Bitstream:   *bitstreamPath,
		FaultList:   *faultListPath,
		DCP:         *dcpPath,
		Out:         *outPath,
		Parallelism: *parallelism,
		Verbose:     *verbose,
	})

	if err := run(cfg); err != nil {
		fatal(err)
	}
	atexit.Exit(0)
}

func fatal(err error) {
	slog.Error("bitfault run failed", "error", err)
	atexit.Exit(1)
}

func run(cfg config.RunConfig) error {
	bsFile, err := os.Open(cfg.Bitstream)
	if err != nil {
		return fmt.Errorf("bitfault: opening bitstream: %w", err)
	}
	defer bsFile.Close()

	bs, err := openBitstream(cfg.Bitstream, bsFile)
	if err != nil {
		return err
	}

	part := cfg.Part
	if part == "" {
		part, err = devicedb.PartForIDCode(cfg.DeviceDB, bs.PartID())
		if err != nil {
			return fmt.Errorf("bitfault: resolving part from IDCODE: %w", err)
		}
	}

	db, err := devicedb.Load(cfg.DeviceDB, part)
	if err != nil {
		return fmt.Errorf("bitfault: loading device database: %w", err)
	}

	tm := tilemap.Build(db, bs)

	provider := &dcpreader.Native{Path: cfg.DCP}
	dm, err := design.Build(provider)
	if err != nil {
		return fmt.Errorf("bitfault: building design model: %w", err)
	}

	flFile, err := os.Open(cfg.FaultList)
	if err != nil {
		return fmt.Errorf("bitfault: opening fault list: %w", err)
	}
	defer flFile.Close()

	groups, err := faultlist.Parse(flFile)
	if err != nil {
		return fmt.Errorf("bitfault: parsing fault list: %w", err)
	}

	evaluator := fault.New(tm, dm)
	results, err := evaluator.EvaluateGroups(context.Background(), groups, fault.Options{
		Parallelism: cfg.Parallelism,
	})
	if err != nil {
		return fmt.Errorf("bitfault: evaluating bit groups: %w", err)
	}

	summary := stats.Collect(results)

	out := os.Stdout
	if cfg.Out != "" {
		f, err := os.Create(cfg.Out)
		if err != nil {
			return fmt.Errorf("bitfault: creating report file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return report.Write(out, results, summary)
}

func openBitstream(path string, f *os.File) (*bitstream.Bitstream, error) {
	if strings.HasSuffix(path, ".bits") {
		return bitstream.ParseBits(f)
	}
	return bitstream.ParseBit(f)
}
