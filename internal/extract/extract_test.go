package extract

import (
	"reflect"
	"testing"

	"github.com/stanbell/analytics/internal/model"
)

func strptr(s string) *string { return &s }

func TestUserRoles(t *testing.T) {
	records := []model.LogRecord{
		{
			Timestamp:          "2021-09-15T21:00:00.000Z",
			EntryType:          model.EntryClientAPICall,
			User:               "admin@example.com",
			VariableContentTwo: strptr(`action:CHANGE-ROLE,resource:USER,data:{"commIdentifier":"3026502469","role":"PROXY"}`),
		},
		{
			// Wrong resource; ignored.
			EntryType:          model.EntryClientAPICall,
			VariableContentTwo: strptr(`action:CHANGE-ROLE,resource:PATIENT,data:{"role":"PROXY"}`),
		},
		{
			// USER resource but not a role action; ignored.
			EntryType:          model.EntryClientAPICall,
			VariableContentTwo: strptr(`action:CREATE,resource:USER,data:{"commIdentifier":"x"}`),
		},
		{
			// Navigation record; ignored.
			EntryType: model.EntryClientNav,
		},
	}

	events := UserRoles(records)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	want := model.UserRoleEvent{
		User:        "3026502469",
		ChangedTo:   "PROXY",
		ChangedDate: "2021-09-15T21:00:00.000Z",
		ChangedBy:   "admin@example.com",
	}
	if events[0] != want {
		t.Errorf("event = %+v, want %+v", events[0], want)
	}
}

func TestUserRoles_UserRoleFieldFallback(t *testing.T) {
	records := []model.LogRecord{{
		EntryType:          model.EntryClientAPICall,
		User:               "admin@example.com",
		VariableContentTwo: strptr(`action:CHANGE-ROLE,resource:USER,data:{"commIdentifier":"555","userRole":"PATIENT"}`),
	}}

	events := UserRoles(records)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].ChangedTo != "PATIENT" {
		t.Errorf("ChangedTo = %q, want PATIENT", events[0].ChangedTo)
	}
}

func TestUserRoles_MalformedBodySkipped(t *testing.T) {
	records := []model.LogRecord{
		{
			EntryType:          model.EntryClientAPICall,
			VariableContentTwo: strptr(`action:CHANGE-ROLE,resource:USER,data:{"commIdentifier":`),
		},
		{
			// No JSON object at all.
			EntryType:          model.EntryClientAPICall,
			VariableContentTwo: strptr(`action:CHANGE-ROLE,resource:USER`),
		},
		{
			// Decodes but carries no role fields.
			EntryType:          model.EntryClientAPICall,
			VariableContentTwo: strptr(`action:CHANGE-ROLE,resource:USER,data:{"other":1}`),
		},
	}

	if events := UserRoles(records); len(events) != 0 {
		t.Errorf("got %d events from malformed bodies, want 0", len(events))
	}
}

func TestSurveys(t *testing.T) {
	records := []model.LogRecord{{
		Timestamp:            "2021-09-15T21:00:00.000Z",
		EntryType:            model.EntrySurveyResponse,
		User:                 "u1@example.com",
		VariableContentThree: strptr(`question:"What features were most helpful?"`),
		VariableContentFour:  strptr(`answerNumber:"0,1,2"`),
		VariableContentFive:  strptr(`answer:"Goals, Messages"`),
		VariableContentSix:   strptr(`comment:"undefined"`),
	}}

	surveys := Surveys(records)
	if len(surveys) != 1 {
		t.Fatalf("got %d surveys, want 1", len(surveys))
	}
	s := surveys[0]
	if s.Question != "What features were most helpful?" {
		t.Errorf("Question = %q", s.Question)
	}
	if !reflect.DeepEqual(s.ResponseIndex, []int{0, 1, 2}) {
		t.Errorf("ResponseIndex = %v", s.ResponseIndex)
	}
	if s.Response != "Goals, Messages" {
		t.Errorf("Response = %q", s.Response)
	}
	if s.Comment != "" {
		t.Errorf("Comment = %q, want empty after undefined scrub", s.Comment)
	}
}

func TestSurveys_SingleAndBadIndexes(t *testing.T) {
	records := []model.LogRecord{
		{
			EntryType:           model.EntrySurveyResponse,
			VariableContentFour: strptr(`answerNumber:"3"`),
		},
		{
			EntryType:           model.EntrySurveyResponse,
			VariableContentFour: strptr(`answerNumber:"abc"`),
		},
		{
			EntryType: model.EntrySurveyResponse,
			// No answer field at all.
		},
	}

	surveys := Surveys(records)
	if len(surveys) != 3 {
		t.Fatalf("got %d surveys, want 3", len(surveys))
	}
	if !reflect.DeepEqual(surveys[0].ResponseIndex, []int{3}) {
		t.Errorf("single index = %v", surveys[0].ResponseIndex)
	}
	if !reflect.DeepEqual(surveys[1].ResponseIndex, []int{0}) {
		t.Errorf("non-numeric index = %v, want [0]", surveys[1].ResponseIndex)
	}
	if surveys[2].ResponseIndex != nil {
		t.Errorf("absent index = %v, want nil", surveys[2].ResponseIndex)
	}
}
