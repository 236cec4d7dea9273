package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes one extract run: what went in, what came out.
type Manifest struct {
	RunTime        string         `yaml:"run_time"`
	Cutoff         string         `yaml:"cutoff"`
	FilesProcessed []string       `yaml:"files_processed"`
	RecordCounts   map[string]int `yaml:"record_counts"`
	Outputs        []string       `yaml:"outputs"`
}

// WriteManifest serializes the manifest to dir as run<stamp>.yaml and
// returns the written path. stamp is the run's compact timestamp, the
// same one the CSV file names carry.
func WriteManifest(m Manifest, dir, stamp string) (string, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("archive: marshaling manifest: %w", err)
	}
	path := filepath.Join(dir, "run"+stamp+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("archive: writing manifest: %w", err)
	}
	return path, nil
}
