// Package session segments an ordered, timeout-normalized navigation
// trail into discrete sessions and aggregates each session's dwell time
// and navigation depth.
package session

import (
	"sort"
	"strings"

	"github.com/stanbell/analytics/internal/model"
)

// Segment walks the navigation trail and emits one Session per
// contiguous run of activity for a (user, device) pair.
//
// The walk carries a single open-session accumulator with explicit emit
// points. For each event in (user, device, arrivedTime) order:
//
//   - no session open: the event opens one.
//   - the event's (user, device) differs from the open session's: the
//     session is emitted as-is and the same event opens the next one.
//   - the event then folds into the open session. A timed-out event or
//     one with no departure closes the session, contributing its arrival
//     time as the session's last navigation; any other event extends it
//     with its departure time.
//
// A trailing open session is flushed exactly once. Every event lands in
// exactly one session.
func Segment(navigations []model.Navigation) []model.Session {
	sorted := make([]model.Navigation, len(navigations))
	copy(sorted, navigations)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if c := strings.Compare(a.User, b.User); c != 0 {
			return c < 0
		}
		if c := strings.Compare(a.Device, b.Device); c != 0 {
			return c < 0
		}
		return a.ArrivedTime < b.ArrivedTime
	})

	var sessions []model.Session
	var current model.Session
	open := false

	for _, event := range sorted {
		if !open {
			current = openSession(event)
			open = true
		} else if event.User != current.User || event.Device != current.Device {
			// Different group: the open session ends with the state it
			// had after the previous event.
			sessions = append(sessions, current)
			current = openSession(event)
		}

		switch {
		case event.TimedOut:
			// Idle gap: the user never really left the page; count the
			// capped dwell but close the session at the arrival.
			current.Duration += event.Duration
			current.Depth = maxDepth(current.Depth, event.Depth)
			current.LastNavigation = event.ArrivedTime
			sessions = append(sessions, current)
			open = false
		case event.DepartedTime == "":
			// End of this user's trail.
			current.Depth = maxDepth(current.Depth, event.Depth)
			current.LastNavigation = event.ArrivedTime
			sessions = append(sessions, current)
			open = false
		default:
			current.LastNavigation = event.DepartedTime
			current.Duration += event.Duration
			current.Depth = maxDepth(current.Depth, event.Depth)
		}
	}

	if open {
		sessions = append(sessions, current)
	}
	return sessions
}

func openSession(event model.Navigation) model.Session {
	return model.Session{
		User:           event.User,
		Device:         event.Device,
		SessionStart:   event.ArrivedTime,
		LastNavigation: event.DepartedTime,
	}
}

func maxDepth(a, b int) int {
	if a >= b {
		return a
	}
	return b
}
