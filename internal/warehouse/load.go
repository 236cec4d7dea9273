package warehouse

import (
	"fmt"

	"github.com/stanbell/analytics/internal/model"
)

// LoadRun replaces both derived tables with the run's sessions and
// navigations in one transaction, so readers never see a half-loaded
// run.
func (s *Store) LoadRun(sessions []model.Session, navigations []model.Navigation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("warehouse: begin load: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"sessions", "navigations"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("warehouse: clearing %s: %w", table, err)
		}
	}

	sessStmt, err := tx.Prepare(
		"INSERT INTO sessions (user_id, device, session_start, last_navigation, duration_secs, depth) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("warehouse: preparing session insert: %w", err)
	}
	defer sessStmt.Close()
	for _, sess := range sessions {
		if _, err := sessStmt.Exec(sess.User, sess.Device, sess.SessionStart, sess.LastNavigation, sess.Duration, sess.Depth); err != nil {
			return fmt.Errorf("warehouse: inserting session: %w", err)
		}
	}

	navStmt, err := tx.Prepare(
		"INSERT INTO navigations (user_id, device, to_page, arrived_time, departed_time, duration_secs, depth, timed_out) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("warehouse: preparing navigation insert: %w", err)
	}
	defer navStmt.Close()
	for _, n := range navigations {
		if _, err := navStmt.Exec(n.User, n.Device, n.ToPage, n.ArrivedTime, n.DepartedTime, n.Duration, n.Depth, n.TimedOut); err != nil {
			return fmt.Errorf("warehouse: inserting navigation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("warehouse: commit load: %w", err)
	}
	return nil
}
