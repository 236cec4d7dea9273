package extract

import (
	"strconv"
	"strings"

	"github.com/stanbell/analytics/internal/model"
)

// Surveys extracts answered survey questions from SURVEY-RESPONSE
// records. The payload fields arrive as key:"value" fragments, e.g.
//
//	question:"What features were most helpful?"  answerNumber:"0,1,2"
//
// so each field is sliced out of its fragment rather than decoded.
func Surveys(records []model.LogRecord) []model.SurveyResponse {
	var surveys []model.SurveyResponse
	for _, rec := range records {
		if rec.EntryType != model.EntrySurveyResponse {
			continue
		}

		survey := model.SurveyResponse{
			User:          rec.User,
			ResponseTime:  rec.Timestamp,
			ResponseIndex: responseIndexes(rec.VariableContentFour),
		}
		if rec.VariableContentThree != nil {
			survey.Question = strings.ReplaceAll(quotedValue(*rec.VariableContentThree), `"`, "")
		}
		if rec.VariableContentFive != nil {
			response := strings.ReplaceAll(quotedValue(*rec.VariableContentFive), `"`, "")
			survey.Response = strings.ReplaceAll(response, "undefined", "")
		}
		if rec.VariableContentSix != nil {
			comment := strings.ReplaceAll(quotedValue(*rec.VariableContentSix), `"`, "")
			comment = strings.ReplaceAll(comment, "null", "")
			survey.Comment = strings.ReplaceAll(comment, "undefined", "")
		}

		surveys = append(surveys, survey)
	}
	return surveys
}

// responseIndexes parses the answerNumber fragment. It may hold a single
// value or a comma list; non-numeric entries coerce to 0.
func responseIndexes(fragment *string) []int {
	if fragment == nil {
		return nil
	}
	raw := quotedValue(*fragment)
	if raw == "" {
		return nil
	}

	var indexes []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			n = 0
		}
		indexes = append(indexes, n)
	}
	return indexes
}

// quotedValue slices the value out of a `key:"value"` fragment, dropping
// the closing quote. Fragments without the marker yield the empty string.
func quotedValue(fragment string) string {
	idx := strings.Index(fragment, `:"`)
	if idx < 0 {
		return ""
	}
	value := fragment[idx+2:]
	if len(value) == 0 {
		return ""
	}
	return value[:len(value)-1]
}
