// Package nav derives navigation events from CLIENT-NAV log records and
// fills in departure times and dwell durations.
package nav

import (
	"sort"
	"strings"

	"github.com/stanbell/analytics/internal/model"
	"github.com/stanbell/analytics/internal/pageclass"
	"github.com/stanbell/analytics/internal/timestamp"
)

// Extract converts the CLIENT-NAV records of a batch into navigation
// events. The record's message field carries the device identifier,
// variable content one the URL and variable content two the optional
// sub-navigation hint. Records with no URL still produce an event with a
// blank page; they participate in pairing and sessionization like any
// other.
func Extract(records []model.LogRecord) []model.Navigation {
	var navigations []model.Navigation
	for _, rec := range records {
		if rec.EntryType != model.EntryClientNav {
			continue
		}
		url := ""
		if rec.VariableContentOne != nil {
			url = *rec.VariableContentOne
		}
		subNav := ""
		if rec.VariableContentTwo != nil {
			subNav = *rec.VariableContentTwo
		}
		page := pageclass.Classify(url, subNav)
		navigations = append(navigations, model.Navigation{
			User:        rec.User,
			Device:      rec.Message,
			ToPage:      page.Page,
			ArrivedTime: rec.Timestamp,
			Depth:       page.Depth,
		})
	}
	return navigations
}

// Sort orders events by (user, device, arrivedTime) in place.
//
// Precondition: arrival timestamps are zero-padded ISO-8601 strings, so
// lexical comparison is chronological within a group.
func Sort(navigations []model.Navigation) {
	sort.SliceStable(navigations, func(i, j int) bool {
		a, b := navigations[i], navigations[j]
		if c := strings.Compare(a.User, b.User); c != 0 {
			return c < 0
		}
		if c := strings.Compare(a.Device, b.Device); c != 0 {
			return c < 0
		}
		return a.ArrivedTime < b.ArrivedTime
	})
}

// PairDepartures fills each event's departure time from the arrival of
// the immediately following event in sorted order, when that event
// belongs to the same user.
//
// Only the user is re-checked here, not the device: a user's last event
// on one device inherits their first arrival on the next device as its
// departure. That cross-device approximation is how the client's end of
// visit has always been measured, and the session math downstream
// depends on it. The last event of a user's trail keeps an empty
// departure and zero duration.
func PairDepartures(navigations []model.Navigation) {
	for i := range navigations {
		if i == len(navigations)-1 {
			break
		}
		next := navigations[i+1]
		if navigations[i].User != next.User {
			continue
		}
		navigations[i].DepartedTime = next.ArrivedTime
		navigations[i].Duration = timestamp.Seconds(navigations[i].ArrivedTime, navigations[i].DepartedTime)
	}
}

// NormalizeTimeouts caps any dwell longer than the idle timeout. The
// departure becomes a synthetic arrival-plus-timeout instant, the
// duration recomputes to exactly the timeout, and the event is flagged so
// segmentation treats it as a session boundary instead of an unbounded
// outlier.
func NormalizeTimeouts(navigations []model.Navigation) {
	for i := range navigations {
		if navigations[i].Duration <= model.IdleTimeoutSeconds {
			continue
		}
		navigations[i].DepartedTime = timestamp.AddSeconds(navigations[i].ArrivedTime, model.IdleTimeoutSeconds)
		navigations[i].Duration = timestamp.Seconds(navigations[i].ArrivedTime, navigations[i].DepartedTime)
		navigations[i].TimedOut = true
	}
}

// Build runs the full navigation stage over one batch of records:
// extract, global sort, departure pairing, timeout normalization.
func Build(records []model.LogRecord) []model.Navigation {
	navigations := Extract(records)
	Sort(navigations)
	PairDepartures(navigations)
	NormalizeTimeouts(navigations)
	return navigations
}
