package model

// Shared defaults used by both the runner and the CLI entrypoint.
const (
	// IdleTimeoutSeconds caps a navigation's inferred dwell time. A gap
	// longer than this closes the session rather than counting as dwell.
	IdleTimeoutSeconds = 300

	DefaultDelimiter = "|"
	DefaultLogExt    = ".log"
)
