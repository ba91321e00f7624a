// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// VenueFile is the on-disk list of harvest runs, so several venues can
// be collected with one invocation.
type VenueFile struct {
	Runs []RunSpec `yaml:"runs"`
}

// RunSpec configures one harvest run in a venue file.
type RunSpec struct {
	// Venue is a registered venue key.
	Venue string `yaml:"venue"`

	// OutputDir overrides the run's output directory. Empty inherits the
	// command-line setting.
	OutputDir string `yaml:"output_dir,omitempty"`
}

// ReadVenueFile loads a venue file and verifies that every run names a
// registered venue, so a typo surfaces before any harvesting starts.
func ReadVenueFile(path string) (*VenueFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading venue file: %w", err)
	}
	var vf VenueFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("parsing venue file: %w", err)
	}
	if len(vf.Runs) == 0 {
		return nil, fmt.Errorf("venue file %s lists no runs", path)
	}
	for i, run := range vf.Runs {
		if !known(run.Venue) {
			return nil, fmt.Errorf("venue file %s run %d: unknown venue %q", path, i+1, run.Venue)
		}
	}
	return &vf, nil
}

// WriteVenueFile saves runs to a YAML venue file.
func WriteVenueFile(path string, vf *VenueFile) error {
	data, err := yaml.Marshal(vf)
	if err != nil {
		return fmt.Errorf("marshaling venue file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func known(key string) bool {
	for _, e := range entries {
		if e.Key == key {
			return true
		}
	}
	return false
}
