// Package timestamp handles the log timestamp format.
//
// The client emits zero-padded ISO-8601 timestamps, so lexical comparison
// of the raw strings is chronological and the pipeline sorts on them
// directly. Arithmetic (durations, timeout synthesis) parses to time.Time
// here instead.
package timestamp

import (
	"strings"
	"time"
)

// ISOLayout is the canonical output layout, matching what the client logs
// (millisecond precision, UTC with a Z suffix).
const ISOLayout = "2006-01-02T15:04:05.000Z"

// DateTimeLayout is the layout used for app-database date columns in the
// delimited outputs.
const DateTimeLayout = "2006-01-02 15:04:05"

// layouts accepted when parsing, most common first.
var layouts = []string{
	ISOLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	DateTimeLayout,
}

// Parse converts a log timestamp string to an instant. The second return
// is false when the string matches none of the accepted layouts.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Seconds returns end minus start in seconds. Either side failing to
// parse yields 0, matching the best-effort posture of the batch.
func Seconds(start, end string) float64 {
	st, ok := Parse(start)
	if !ok {
		return 0
	}
	en, ok := Parse(end)
	if !ok {
		return 0
	}
	return en.Sub(st).Seconds()
}

// AddSeconds returns the timestamp secs after s, formatted in the
// canonical ISO layout. An unparseable input returns the empty string.
func AddSeconds(s string, secs int) string {
	t, ok := Parse(s)
	if !ok {
		return ""
	}
	return Format(t.Add(time.Duration(secs) * time.Second))
}

// Format renders an instant in the canonical ISO layout.
func Format(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// FormatDateTime renders an instant in the app-database date layout.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// Compact renders an instant as a 14-digit stamp for output file names,
// e.g. 20210915213001.
func Compact(t time.Time) string {
	return t.Format("20060102150405")
}
