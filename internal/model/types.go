package model

// Entry types that carry analytics signal. Everything else in the logs is
// passed over by the extract stages.
const (
	EntryClientNav      = "CLIENT-NAV"
	EntryClientAPICall  = "CLIENT-API-REQUEST"
	EntrySurveyResponse = "SURVEY-RESPONSE"
	EntryAuthResponse   = "AUTH-RESPONSE"
)

// LogRecord is one parsed line of the application log. The first nine
// fields are positional and always assigned; the variable-content fields
// are nil when the line had fewer delimited fields, never the empty
// string, so consumers can tell "absent" from "logged as empty".
type LogRecord struct {
	Timestamp string
	RequestID string
	Component string
	Version   string
	EntryType string
	User      string
	Patient   string
	Hospital  string
	Message   string

	VariableContentOne   *string
	VariableContentTwo   *string
	VariableContentThree *string
	VariableContentFour  *string
	VariableContentFive  *string
	VariableContentSix   *string
}

// Navigation is one user-initiated page transition derived from a
// CLIENT-NAV record. DepartedTime and Duration are filled by the pairing
// pass; TimedOut is set by the idle-timeout pass. DepartedTime stays
// empty only for the chronologically last event of a user's trail.
type Navigation struct {
	User         string
	Device       string
	ToPage       string
	ArrivedTime  string
	DepartedTime string
	Duration     float64 // seconds
	Depth        int
	TimedOut     bool
}

// Session is a contiguous run of navigations for one (user, device) pair,
// bounded by the idle timeout or end of data.
type Session struct {
	User           string
	Device         string
	SessionStart   string
	LastNavigation string
	Duration       float64 // seconds
	Depth          int
}

// Admission is one row of the encounter snapshot from the app database.
type Admission struct {
	PatientID        string
	HospitalID       string
	EncounterID      string
	NoLongerEligible string
}

// User is one row of the user snapshot from the app database.
type User struct {
	User             string
	PatientID        string
	EncounterID      string
	HospitalID       string
	EULAAcceptedDate string
	CreatedDate      string
	CurrentRole      string
	InvitedDate      string
	InvitedBy        string
	NoLongerEligible string
	RemovedDate      string
	RemovedBy        string
}

// UserRoleEvent records one role change observed in the logs.
type UserRoleEvent struct {
	User        string
	ChangedTo   string
	ChangedDate string
	ChangedBy   string
}

// SurveyResponse is one answered survey question from the logs.
type SurveyResponse struct {
	User          string
	ResponseTime  string
	Question      string
	Response      string
	ResponseIndex []int
	Comment       string
}
