package logscan

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const watermarkFileMode = 0644

// Watermark persists the "last log processed" instant between runs as
// unix milliseconds in a small sidecar file. It is read once at the
// start of a run and committed only after the run fully succeeds, so a
// failed run reprocesses its files.
type Watermark struct {
	path string
}

// NewWatermark creates a watermark backed by the file at path.
func NewWatermark(path string) *Watermark {
	return &Watermark{path: path}
}

// Load reads the persisted cutoff. A missing or empty file yields the
// zero time, which makes every existing log file eligible.
func (w *Watermark) Load() (time.Time, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("logscan: read watermark: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return time.Time{}, nil
	}
	millis, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("logscan: parse watermark: %w", err)
	}
	return time.UnixMilli(millis), nil
}

// Commit atomically replaces the persisted cutoff with t.
func (w *Watermark) Commit(t time.Time) error {
	tmp := w.path + ".tmp"
	payload := []byte(strconv.FormatInt(t.UnixMilli(), 10) + "\n")
	if err := os.WriteFile(tmp, payload, watermarkFileMode); err != nil {
		return fmt.Errorf("logscan: write watermark tmp: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("logscan: rename watermark: %w", err)
	}
	return nil
}
