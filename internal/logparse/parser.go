// Package logparse turns raw delimited application log lines into typed
// records. Lines use '^' as the field delimiter: nine positional fields
// followed by up to six optional variable-content fields whose meaning
// depends on the entry type.
package logparse

import (
	"bufio"
	"io"

	"strings"

	"github.com/stanbell/analytics/internal/model"
)

// FieldDelimiter separates fields within one log line.
const FieldDelimiter = "^"

// requiredFields is the positional field count; everything past it is
// optional variable content.
const requiredFields = 9

// ParseLine parses one log line into a LogRecord. A short line still
// parses: missing positional fields are empty and missing variable
// content stays nil. No validation happens here; the timestamp is an
// opaque, lexically ordered string to this layer.
func ParseLine(line string) model.LogRecord {
	fields := strings.Split(line, FieldDelimiter)

	var rec model.LogRecord
	rec.Timestamp = fieldAt(fields, 0)
	rec.RequestID = fieldAt(fields, 1)
	rec.Component = fieldAt(fields, 2)
	rec.Version = fieldAt(fields, 3)
	rec.EntryType = fieldAt(fields, 4)
	rec.User = fieldAt(fields, 5)
	rec.Patient = fieldAt(fields, 6)
	rec.Hospital = fieldAt(fields, 7)
	rec.Message = fieldAt(fields, 8)

	rec.VariableContentOne = optionalAt(fields, 9)
	rec.VariableContentTwo = optionalAt(fields, 10)
	rec.VariableContentThree = optionalAt(fields, 11)
	rec.VariableContentFour = optionalAt(fields, 12)
	rec.VariableContentFive = optionalAt(fields, 13)
	rec.VariableContentSix = optionalAt(fields, 14)

	return rec
}

// ParseRecords reads newline-terminated log lines from r and parses each
// into a LogRecord. Blank lines are skipped. A read error is returned to
// the caller, which treats the whole file as unreadable.
func ParseRecords(r io.Reader) ([]model.LogRecord, error) {
	var records []model.LogRecord

	scanner := bufio.NewScanner(r)
	// Call bodies and survey payloads can make for long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		records = append(records, ParseLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func fieldAt(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func optionalAt(fields []string, i int) *string {
	if i < len(fields) {
		v := fields[i]
		return &v
	}
	return nil
}
