package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stanbell/analytics/internal/model"
)

type fakeSource struct {
	admissions []model.Admission
	users      []model.User
}

func (f *fakeSource) Admissions(_ context.Context) ([]model.Admission, error) {
	return f.admissions, nil
}

func (f *fakeSource) Users(_ context.Context) ([]model.User, error) {
	return f.users, nil
}

const navURL = "https://myapp.com/#/dashboard"

var fixtureLines = []string{
	// u1: two dashboard hits 30s apart, then a 600s gap that exceeds the
	// idle timeout, splitting the trail into two sessions.
	"2021-09-15T21:00:00.000Z^r1^web^1.0^CLIENT-NAV^u1^p1^h1^deviceA^" + navURL + "^",
	"2021-09-15T21:00:30.000Z^r2^web^1.0^CLIENT-NAV^u1^p1^h1^deviceA^" + navURL + "^",
	"2021-09-15T21:10:30.000Z^r3^web^1.0^CLIENT-NAV^u1^p1^h1^deviceA^" + navURL + "^",
	"2021-09-15T21:01:00.000Z^r4^web^1.0^CLIENT-API-REQUEST^staff1^p1^h1^msg^call^" +
		`action:CHANGE-ROLE,resource:USER,data:{"commIdentifier":"12345","role":"PROXY"}`,
	"2021-09-15T21:02:00.000Z^r5^web^1.0^SURVEY-RESPONSE^u1^p1^h1^msg^x^y^" +
		`question:"How helpful?"^answerNumber:"0,2"^answer:"Very"^comment:"null"`,
	"2021-09-15T21:03:00.000Z^r6^web^1.0^CLIENT-NAV^zz-test^p9^h1^deviceB^" + navURL + "^",
}

func writeFixture(t *testing.T, logsDir string) {
	t.Helper()
	content := strings.Join(fixtureLines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(logsDir, "app1.log"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestRunner(t *testing.T, snapshot model.SnapshotSource) (*Runner, Config) {
	t.Helper()
	cfg := Config{
		LogsDir:       t.TempDir(),
		AnalyticsDir:  t.TempDir(),
		WatermarkPath: filepath.Join(t.TempDir(), "lastlog"),
		ExcludedUsers: []string{"zz-test"},
	}
	return New(cfg, snapshot, nil, nil), cfg
}

func readOutput(t *testing.T, dir, table string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, table+"*.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("%s outputs = %v, want exactly one", table, matches)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRun_EndToEnd(t *testing.T) {
	src := &fakeSource{
		admissions: []model.Admission{{PatientID: "p1", HospitalID: "h1", EncounterID: "e1"}},
		users:      []model.User{{User: "u1", PatientID: "p1", CurrentRole: "PATIENT"}},
	}
	r, cfg := newTestRunner(t, src)
	writeFixture(t, cfg.LogsDir)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.FilesProcessed) != 1 || result.FilesProcessed[0] != "app1.log" {
		t.Errorf("files processed = %v", result.FilesProcessed)
	}
	wantCounts := map[string]int{
		"records":     6,
		"admissions":  1,
		"users":       1,
		"userroles":   1,
		"navigations": 4,
		"sessions":    3,
		"surveys":     1,
	}
	for key, want := range wantCounts {
		if got := result.RecordCounts[key]; got != want {
			t.Errorf("count %s = %d, want %d", key, got, want)
		}
	}

	sessions := readOutput(t, cfg.AnalyticsDir, "Session")
	rows := strings.Split(strings.TrimRight(sessions, "\n"), "\n")
	if len(rows) != 2 {
		t.Fatalf("session rows = %d, want 2 (excluded user dropped): %q", len(rows), sessions)
	}
	// First session absorbs the clamped idle dwell: 30 + 300 seconds.
	if !strings.Contains(rows[0], "|330|") {
		t.Errorf("first session row = %q, want duration 330", rows[0])
	}

	navs := readOutput(t, cfg.AnalyticsDir, "Navigation")
	if strings.Contains(navs, "zz-test") {
		t.Errorf("navigation output contains excluded user: %q", navs)
	}

	roles := readOutput(t, cfg.AnalyticsDir, "UserRoleEvent")
	if !strings.Contains(roles, "12345|PROXY|2021-09-15T21:01:00.000Z|staff1") {
		t.Errorf("role output = %q", roles)
	}

	surveys := readOutput(t, cfg.AnalyticsDir, "Survey")
	if !strings.Contains(surveys, "How helpful?") || !strings.Contains(surveys, "0,2") {
		t.Errorf("survey output = %q", surveys)
	}

	admissions := readOutput(t, cfg.AnalyticsDir, "Admissions")
	if !strings.HasPrefix(admissions, "p1|h1|e1||") {
		t.Errorf("admissions output = %q", admissions)
	}
}

func TestRun_SecondRunSkipsProcessedFiles(t *testing.T) {
	r, cfg := newTestRunner(t, nil)
	writeFixture(t, cfg.LogsDir)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(result.FilesProcessed) != 0 {
		t.Errorf("second run reprocessed %v", result.FilesProcessed)
	}
	if result.RecordCounts["records"] != 0 {
		t.Errorf("second run parsed %d records, want 0", result.RecordCounts["records"])
	}
}

func TestRun_NoSnapshotSource(t *testing.T) {
	r, cfg := newTestRunner(t, nil)
	writeFixture(t, cfg.LogsDir)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RecordCounts["admissions"] != 0 || result.RecordCounts["users"] != 0 {
		t.Errorf("snapshot counts = %v, want zero without a source", result.RecordCounts)
	}
	if result.RecordCounts["sessions"] != 3 {
		t.Errorf("sessions = %d, want 3", result.RecordCounts["sessions"])
	}
}

func TestRun_EmptyLogsDir(t *testing.T) {
	r, _ := newTestRunner(t, nil)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.FilesProcessed) != 0 || len(result.Outputs) != 0 {
		t.Errorf("empty dir produced %v / %v", result.FilesProcessed, result.Outputs)
	}
}
