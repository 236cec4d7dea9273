// Package runner orchestrates one extract run end to end: snapshot the
// app database, parse the new log files, derive navigations and
// sessions, write the delimited outputs, and advance the watermark.
package runner

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stanbell/analytics/internal/archive"
	"github.com/stanbell/analytics/internal/csvout"
	"github.com/stanbell/analytics/internal/extract"
	"github.com/stanbell/analytics/internal/logparse"
	"github.com/stanbell/analytics/internal/logscan"
	"github.com/stanbell/analytics/internal/model"
	"github.com/stanbell/analytics/internal/nav"
	"github.com/stanbell/analytics/internal/session"
	"github.com/stanbell/analytics/internal/timestamp"
)

// parseWorkers bounds concurrent log file parsing.
const parseWorkers = 8

// Config carries the run parameters.
type Config struct {
	LogsDir          string
	AnalyticsDir     string
	WatermarkPath    string
	Delimiter        string
	ExcludedUsers    []string
	ExcludedPatients []string
}

// Runner performs extract runs. The snapshot source, session writer and
// archiver are optional; a nil collaborator skips its stage.
type Runner struct {
	cfg      Config
	snapshot model.SnapshotSource
	sessions model.SessionWriter
	archiver *archive.Archiver
}

// New creates a runner.
func New(cfg Config, snapshot model.SnapshotSource, sessions model.SessionWriter, archiver *archive.Archiver) *Runner {
	return &Runner{
		cfg:      cfg,
		snapshot: snapshot,
		sessions: sessions,
		archiver: archiver,
	}
}

// Result summarizes one run.
type Result struct {
	FilesProcessed []string
	RecordCounts   map[string]int
	Outputs        []string
}

// Run executes one extract run. The watermark only advances after every
// stage has succeeded, so a failed run reprocesses its files next time.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	watermark := logscan.NewWatermark(r.cfg.WatermarkPath)
	cutoff, err := watermark.Load()
	if err != nil {
		return Result{}, err
	}

	var (
		admissions []model.Admission
		users      []model.User
		records    []model.LogRecord
		processed  []string
		newest     time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if r.snapshot == nil {
			return nil
		}
		var err error
		if admissions, err = r.snapshot.Admissions(gctx); err != nil {
			return err
		}
		users, err = r.snapshot.Users(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, processed, newest, err = r.parseNewLogs(cutoff)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	navigations := nav.Build(records)
	sessions := session.Segment(navigations)
	roleEvents := extract.UserRoles(records)
	surveys := extract.Surveys(records)

	names := csvout.FileNames(r.cfg.AnalyticsDir, start)
	writer := csvout.NewWriter(r.cfg.Delimiter, r.cfg.ExcludedUsers, r.cfg.ExcludedPatients)

	writes := []struct {
		path  string
		count int
		write func() error
	}{
		{names.Admission, len(admissions), func() error { return writer.WriteAdmissions(names.Admission, admissions) }},
		{names.User, len(users), func() error { return writer.WriteUsers(names.User, users) }},
		{names.UserRole, len(roleEvents), func() error { return writer.WriteUserRoles(names.UserRole, roleEvents) }},
		{names.Navigation, len(navigations), func() error { return writer.WriteNavigations(names.Navigation, navigations) }},
		{names.Session, len(sessions), func() error { return writer.WriteSessions(names.Session, sessions) }},
		{names.Survey, len(surveys), func() error { return writer.WriteSurveys(names.Survey, surveys) }},
	}

	var outputs []string
	for _, w := range writes {
		if err := w.write(); err != nil {
			return Result{}, err
		}
		if w.count > 0 {
			outputs = append(outputs, filepath.Base(w.path))
		}
	}

	if r.sessions != nil {
		if err := r.sessions.LoadRun(sessions, navigations); err != nil {
			return Result{}, fmt.Errorf("runner: loading warehouse: %w", err)
		}
	}

	result := Result{
		FilesProcessed: processed,
		RecordCounts: map[string]int{
			"records":     len(records),
			"admissions":  len(admissions),
			"users":       len(users),
			"userroles":   len(roleEvents),
			"navigations": len(navigations),
			"sessions":    len(sessions),
			"surveys":     len(surveys),
		},
		Outputs: outputs,
	}

	if r.archiver != nil {
		manifest := archive.Manifest{
			RunTime:        timestamp.Format(start.UTC()),
			Cutoff:         timestamp.Format(cutoff.UTC()),
			FilesProcessed: processed,
			RecordCounts:   result.RecordCounts,
			Outputs:        outputs,
		}
		if err := r.archiver.ArchiveRun(ctx, manifest, r.cfg.AnalyticsDir, timestamp.Compact(start)); err != nil {
			return Result{}, err
		}
	}

	if newest.After(cutoff) {
		if err := watermark.Commit(newest); err != nil {
			return Result{}, err
		}
	}

	log.Printf("runner: processed %d files, %d records, %d navigations, %d sessions in %s",
		len(processed), len(records), len(navigations), len(sessions), time.Since(start).Round(time.Millisecond))
	return result, nil
}

// parseNewLogs lists the log files newer than the cutoff and parses them
// concurrently. File order is preserved in the combined record stream so
// repeated runs over the same files produce identical output. A file
// that cannot be read is logged and skipped; the batch continues.
func (r *Runner) parseNewLogs(cutoff time.Time) ([]model.LogRecord, []string, time.Time, error) {
	files, err := logscan.NewScanner(r.cfg.LogsDir).ListNewer(cutoff)
	if err != nil {
		return nil, nil, time.Time{}, err
	}

	perFile := make([][]model.LogRecord, len(files))
	skipped := make([]bool, len(files))
	var mu sync.Mutex
	var newest time.Time

	var g errgroup.Group
	g.SetLimit(parseWorkers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				log.Printf("runner: skipping %s: %v", filepath.Base(path), err)
				skipped[i] = true
				return nil
			}
			defer f.Close()

			records, err := logparse.ParseRecords(f)
			if err != nil {
				log.Printf("runner: skipping %s: %v", filepath.Base(path), err)
				skipped[i] = true
				return nil
			}
			perFile[i] = records

			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("runner: stat %s: %w", filepath.Base(path), err)
			}
			mu.Lock()
			if info.ModTime().After(newest) {
				newest = info.ModTime()
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, time.Time{}, err
	}

	var records []model.LogRecord
	var processed []string
	for i, path := range files {
		if skipped[i] {
			continue
		}
		records = append(records, perFile[i]...)
		processed = append(processed, filepath.Base(path))
	}
	return records, processed, newest, nil
}
