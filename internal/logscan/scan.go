// Package logscan finds the log files a run should process and tracks
// the high-water mark between runs.
package logscan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stanbell/analytics/internal/model"
)

// Scanner lists processable log files in one directory.
type Scanner struct {
	dir string
}

// NewScanner creates a scanner over dir.
func NewScanner(dir string) *Scanner {
	return &Scanner{dir: dir}
}

// ListNewer returns the paths of .log files modified strictly after the
// cutoff, in directory order. The cutoff is injected by the caller; the
// scanner holds no state of its own.
func (s *Scanner) ListNewer(cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("logscan: reading %s: %w", s.dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != model.DefaultLogExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("logscan: stat %s: %w", entry.Name(), err)
		}
		if !info.ModTime().After(cutoff) {
			continue
		}
		files = append(files, filepath.Join(s.dir, entry.Name()))
	}
	return files, nil
}
