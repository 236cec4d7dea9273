// Package csvout writes the extract's delimited output tables. Row
// shapes match the downstream warehouse loader that has consumed these
// files for years, including the trailing delimiter some tables carry,
// so nothing here goes through a quoting CSV encoder.
package csvout

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/stanbell/analytics/internal/model"
	"github.com/stanbell/analytics/internal/timestamp"
)

const outputFileMode = 0644

// Names holds the output file paths for one run, all sharing the run's
// timestamp, e.g. Session20210915213001.csv.
type Names struct {
	Admission  string
	User       string
	UserRole   string
	Session    string
	Navigation string
	Survey     string
}

// FileNames derives the run's output paths under dir.
func FileNames(dir string, now time.Time) Names {
	stamp := timestamp.Compact(now)
	name := func(table string) string {
		return filepath.Join(dir, table+stamp+".csv")
	}
	return Names{
		Admission:  name("Admissions"),
		User:       name("User"),
		UserRole:   name("UserRoleEvent"),
		Session:    name("Session"),
		Navigation: name("Navigation"),
		Survey:     name("Survey"),
	}
}

// Writer appends delimited rows to the output files, dropping rows for
// the configured synthetic/test identities. The filter lives here, at
// the output boundary, not in the engine.
type Writer struct {
	delimiter        string
	excludedUsers    map[string]bool
	excludedPatients map[string]bool
}

// NewWriter creates a writer using the configured delimiter and
// exclusion lists.
func NewWriter(delimiter string, excludedUsers, excludedPatients []string) *Writer {
	if delimiter == "" {
		delimiter = model.DefaultDelimiter
	}
	return &Writer{
		delimiter:        delimiter,
		excludedUsers:    toSet(excludedUsers),
		excludedPatients: toSet(excludedPatients),
	}
}

// WriteAdmissions appends admission rows. No file is created for an
// empty table.
func (w *Writer) WriteAdmissions(path string, admissions []model.Admission) error {
	return w.writeRows(path, len(admissions), func(emit func(...string)) {
		for _, a := range admissions {
			if w.excludedPatients[a.PatientID] {
				continue
			}
			// Historical format: this table ends each row with a delimiter.
			emit(a.PatientID, a.HospitalID, a.EncounterID, a.NoLongerEligible, "")
		}
	})
}

// WriteUsers appends user snapshot rows, filtered by patient identity.
func (w *Writer) WriteUsers(path string, users []model.User) error {
	return w.writeRows(path, len(users), func(emit func(...string)) {
		for _, u := range users {
			if w.excludedPatients[u.PatientID] {
				continue
			}
			emit(u.User, u.PatientID, u.HospitalID, u.EncounterID,
				u.EULAAcceptedDate, u.CreatedDate, u.CurrentRole,
				u.InvitedDate, u.InvitedBy, u.NoLongerEligible,
				u.RemovedDate, u.RemovedBy)
		}
	})
}

// WriteUserRoles appends role-change rows.
func (w *Writer) WriteUserRoles(path string, events []model.UserRoleEvent) error {
	return w.writeRows(path, len(events), func(emit func(...string)) {
		for _, e := range events {
			if w.excludedUsers[e.User] {
				continue
			}
			emit(e.User, e.ChangedTo, e.ChangedDate, e.ChangedBy)
		}
	})
}

// WriteNavigations appends navigation rows. Depth and the timeout flag
// are session-level signals and are not part of this table.
func (w *Writer) WriteNavigations(path string, navigations []model.Navigation) error {
	return w.writeRows(path, len(navigations), func(emit func(...string)) {
		for _, n := range navigations {
			if w.excludedUsers[n.User] {
				continue
			}
			emit(n.User, n.Device, n.ToPage, n.ArrivedTime, n.DepartedTime, roundSeconds(n.Duration), "")
		}
	})
}

// WriteSessions appends session rows.
func (w *Writer) WriteSessions(path string, sessions []model.Session) error {
	return w.writeRows(path, len(sessions), func(emit func(...string)) {
		for _, s := range sessions {
			if w.excludedUsers[s.User] {
				continue
			}
			emit(s.User, s.Device, s.SessionStart, s.LastNavigation,
				roundSeconds(s.Duration), strconv.Itoa(s.Depth))
		}
	})
}

// WriteSurveys appends survey rows.
func (w *Writer) WriteSurveys(path string, surveys []model.SurveyResponse) error {
	return w.writeRows(path, len(surveys), func(emit func(...string)) {
		for _, s := range surveys {
			if w.excludedUsers[s.User] {
				continue
			}
			emit(s.User, s.ResponseTime, s.Question, s.Response,
				joinIndexes(s.ResponseIndex), s.Comment)
		}
	})
}

// writeRows opens path in append mode and calls build with an emitter
// that writes one delimited row per call. A zero-length table writes
// nothing and creates no file.
func (w *Writer) writeRows(path string, count int, build func(emit func(...string))) error {
	if count == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, outputFileMode)
	if err != nil {
		return fmt.Errorf("csvout: open %s: %w", path, err)
	}

	var writeErr error
	build(func(fields ...string) {
		if writeErr != nil {
			return
		}
		row := strings.Join(fields, w.delimiter) + "\n"
		if _, err := f.WriteString(row); err != nil {
			writeErr = fmt.Errorf("csvout: write %s: %w", path, err)
		}
	})

	if err := f.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("csvout: close %s: %w", path, err)
	}
	return writeErr
}

func roundSeconds(seconds float64) string {
	return strconv.FormatInt(int64(math.Round(seconds)), 10)
}

func joinIndexes(indexes []int) string {
	parts := make([]string, len(indexes))
	for i, n := range indexes {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
