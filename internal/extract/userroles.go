// Package extract pulls user-role changes and survey responses out of a
// parsed log batch. These are positional slices of free-form payload
// fields; only the embedded API call body is real JSON and gets a typed
// decode.
package extract

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/stanbell/analytics/internal/model"
)

// roleChangeBody is the JSON object embedded in a role-change API call
// body, e.g.
//
//	action:UPDATE,resource:USER,data:{"commIdentifier":"3026502469","role":"PROXY"}
type roleChangeBody struct {
	CommIdentifier string `json:"commIdentifier"`
	Role           string `json:"role"`
	UserRole       string `json:"userRole"`
}

// UserRoles extracts role-change events from CLIENT-API-REQUEST records
// whose call body targets the USER resource with a ROLE action. A body
// that fails to decode, or decodes without the fields a role change
// needs, is logged and skipped; it never degrades into a half-populated
// event.
func UserRoles(records []model.LogRecord) []model.UserRoleEvent {
	var events []model.UserRoleEvent
	for _, rec := range records {
		if rec.EntryType != model.EntryClientAPICall || rec.VariableContentTwo == nil {
			continue
		}
		body := *rec.VariableContentTwo
		if !strings.Contains(body, "resource:USER") || !strings.Contains(body, "ROLE") {
			continue
		}

		parsed, ok := decodeCallBody(body)
		if !ok {
			log.Printf("extract: skipping undecodable role-change body for user %s at %s", rec.User, rec.Timestamp)
			continue
		}
		role := parsed.Role
		if role == "" {
			role = parsed.UserRole
		}
		if parsed.CommIdentifier == "" || role == "" {
			log.Printf("extract: role-change body missing fields for user %s at %s", rec.User, rec.Timestamp)
			continue
		}

		events = append(events, model.UserRoleEvent{
			User:        parsed.CommIdentifier,
			ChangedTo:   role,
			ChangedDate: rec.Timestamp,
			ChangedBy:   rec.User,
		})
	}
	return events
}

// decodeCallBody finds the JSON object embedded in a call body and
// decodes it into a typed struct. Returns false when there is no object
// or it is not valid JSON.
func decodeCallBody(body string) (roleChangeBody, bool) {
	var parsed roleChangeBody
	start := strings.Index(body, "{")
	if start < 0 {
		return parsed, false
	}
	if err := json.Unmarshal([]byte(body[start:]), &parsed); err != nil {
		return parsed, false
	}
	return parsed, true
}
