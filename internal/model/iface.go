package model

import "context"

// SnapshotSource provides the relational admissions/users snapshot.
// The MySQL store implements it; the runner only sees this contract.
type SnapshotSource interface {
	Admissions(ctx context.Context) ([]Admission, error)
	Users(ctx context.Context) ([]User, error)
}

// SessionWriter receives the run's derived session and navigation tables.
// The DuckDB warehouse implements it; it is optional at the runner level.
type SessionWriter interface {
	LoadRun(sessions []Session, navigations []Navigation) error
}
