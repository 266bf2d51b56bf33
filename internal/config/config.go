// Package config loads cmd/bitfault's run configuration from YAML,
// mirroring the teacher's YAMLProgram-style config loading in
// core/program.go: a plain YAML-tagged struct decoded with
// gopkg.in/yaml.v3, with CLI flags overriding individual fields.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLRunConfig is the on-disk shape of a -config file.
type YAMLRunConfig struct {
	DeviceDB      string `yaml:"device_db"`
	Part          string `yaml:"part"`
	Bitstream     string `yaml:"bitstream"`
	FaultList     string `yaml:"fault_list"`
	DCP           string `yaml:"dcp"`
	Out           string `yaml:"out"`
	Parallelism   int    `yaml:"parallelism"`
	TimeoutSecond int    `yaml:"timeout_seconds"`
	Verbose       bool   `yaml:"verbose"`
}

// RunConfig is the resolved configuration cmd/bitfault acts on, after
// merging a YAML file (if any) with CLI flag overrides.
type RunConfig struct {
	DeviceDB    string
	Part        string
	Bitstream   string
	FaultList   string
	DCP         string
	Out         string
	Parallelism int
	Timeout     time.Duration
	Verbose     bool
}

// Load reads a YAML run configuration from path. An empty path is not
// an error: it returns a zero-value RunConfig for the caller's flags
// to fill in entirely.
func Load(path string) (RunConfig, error) {
	if path == "" {
		return RunConfig{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var y YAMLRunConfig
	if err := yaml.Unmarshal(raw, &y); err != nil {
		return RunConfig{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return RunConfig{
		DeviceDB:    y.DeviceDB,
		Part:        y.Part,
		Bitstream:   y.Bitstream,
		FaultList:   y.FaultList,
		DCP:         y.DCP,
		Out:         y.Out,
		Parallelism: y.Parallelism,
		Timeout:     time.Duration(y.TimeoutSecond) * time.Second,
		Verbose:     y.Verbose,
	}, nil
}

// Override returns cfg with any non-zero-value field from over
// replacing cfg's, giving CLI flags priority over a loaded YAML file.
func (cfg RunConfig) Override(over RunConfig) RunConfig {
	out := cfg
	if over.DeviceDB != "" {
		out.DeviceDB = over.DeviceDB
	}
	if over.Part != "" {
		out.Part = over.Part
	}
	if over.Bitstream != "" {
		out.Bitstream = over.Bitstream
	}
	if over.FaultList != "" {
		out.FaultList = over.FaultList
	}
	if over.DCP != "" {
		out.DCP = over.DCP
	}
	if over.Out != "" {
		out.Out = over.Out
	}
	if over.Parallelism != 0 {
		out.Parallelism = over.Parallelism
	}
	if over.Timeout != 0 {
		out.Timeout = over.Timeout
	}
	if over.Verbose {
		out.Verbose = true
	}
	return out
}
