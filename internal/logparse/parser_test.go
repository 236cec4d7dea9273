package logparse

import (
	"strings"
	"testing"
)

const fullLine = "2021-09-15T21:30:01.123Z^req-1^client^1.2.0^CLIENT-NAV^u1@example.com^p1^h1^ios^://myapp.com/#/dashboard^sub^three^four^five^six"

func TestParseLine_AllFields(t *testing.T) {
	rec := ParseLine(fullLine)

	if rec.Timestamp != "2021-09-15T21:30:01.123Z" {
		t.Errorf("Timestamp = %q", rec.Timestamp)
	}
	if rec.EntryType != "CLIENT-NAV" {
		t.Errorf("EntryType = %q", rec.EntryType)
	}
	if rec.User != "u1@example.com" {
		t.Errorf("User = %q", rec.User)
	}
	if rec.Message != "ios" {
		t.Errorf("Message = %q", rec.Message)
	}
	if rec.VariableContentOne == nil || *rec.VariableContentOne != "://myapp.com/#/dashboard" {
		t.Errorf("VariableContentOne = %v", rec.VariableContentOne)
	}
	if rec.VariableContentSix == nil || *rec.VariableContentSix != "six" {
		t.Errorf("VariableContentSix = %v", rec.VariableContentSix)
	}
}

func TestParseLine_OptionalFieldsAbsentNotEmpty(t *testing.T) {
	// Exactly the nine positional fields.
	rec := ParseLine("t^r^c^v^CLIENT-NAV^u^p^h^ios")

	if rec.Message != "ios" {
		t.Errorf("Message = %q", rec.Message)
	}
	for i, opt := range []*string{
		rec.VariableContentOne, rec.VariableContentTwo, rec.VariableContentThree,
		rec.VariableContentFour, rec.VariableContentFive, rec.VariableContentSix,
	} {
		if opt != nil {
			t.Errorf("variable content %d = %q, want nil", i+1, *opt)
		}
	}
}

func TestParseLine_PresentButEmptyStaysEmpty(t *testing.T) {
	// A trailing delimiter means the tenth field was logged as empty.
	rec := ParseLine("t^r^c^v^CLIENT-NAV^u^p^h^ios^")

	if rec.VariableContentOne == nil {
		t.Fatal("VariableContentOne = nil, want present empty string")
	}
	if *rec.VariableContentOne != "" {
		t.Errorf("VariableContentOne = %q, want empty", *rec.VariableContentOne)
	}
	if rec.VariableContentTwo != nil {
		t.Errorf("VariableContentTwo = %v, want nil", rec.VariableContentTwo)
	}
}

func TestParseLine_ShortLine(t *testing.T) {
	rec := ParseLine("t^r^c")

	if rec.Component != "c" {
		t.Errorf("Component = %q", rec.Component)
	}
	if rec.EntryType != "" || rec.Message != "" {
		t.Errorf("missing positional fields should be empty, got EntryType=%q Message=%q", rec.EntryType, rec.Message)
	}
	if rec.VariableContentOne != nil {
		t.Error("VariableContentOne should be nil on a short line")
	}
}

func TestParseRecords(t *testing.T) {
	input := fullLine + "\n" +
		"\n" + // blank lines are skipped
		"t^r^c^v^AUTH-RESPONSE^u^p^h^User added\r\n"

	records, err := ParseRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1].EntryType != "AUTH-RESPONSE" {
		t.Errorf("second EntryType = %q", records[1].EntryType)
	}
	if records[1].Message != "User added" {
		t.Errorf("CRLF not stripped: Message = %q", records[1].Message)
	}
}

func TestParseRecords_Empty(t *testing.T) {
	records, err := ParseRecords(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}
